// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 Wrb Works
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wrbpod

import (
	"github.com/wrb-works/wrbpod/chunk"
	"github.com/wrb-works/wrbpod/fault"
	"github.com/wrb-works/wrbpod/signer"
)

// putChunk - sign and submit one slot write, retrying stale versions
//
// a reject that echoes metadata means the version raced another
// writer; the write is resubmitted at the echoed version plus one.
// a reject without metadata is permanent
func (w *Wrbpod) putChunk(slotID uint32, slotVersion uint32, data []byte) error {
	version := slotVersion
	attempts := 0
	for {
		if err := w.retry.pace(); nil != err {
			return err
		}

		d := chunk.NewData(slotID, version, data)
		d.Sign(w.privateKey)

		ack, err := w.replicaClient.PutChunk(d)
		if nil != err {
			w.log.Errorf("put chunk slot: %d  error: %s", slotID, err)
			return err
		}
		if ack.Accepted {
			w.log.Debugf("put chunk slot: %d  version: %d accepted", slotID, version)
			return nil
		}
		if nil == ack.Metadata {
			w.log.Errorf("put chunk slot: %d rejected: %q code: %d", slotID, ack.Reason, ack.Code)
			return fault.ErrChunkRejected
		}

		attempts += 1
		if w.retry.exhausted(attempts) {
			w.log.Errorf("put chunk slot: %d retries exhausted at version: %d", slotID, version)
			return fault.ErrRetriesExceeded
		}
		w.log.Infof("put chunk slot: %d version: %d stale, service at: %d", slotID, version, ack.Metadata.SlotVersion)
		version = ack.Metadata.SlotVersion + 1
	}
}

// RawChunk - fetch one slot at its current version without decoding
//
// the returned bytes are checked against the expected hash but not
// against a roster signature
func (w *Wrbpod) RawChunk(slotID uint32, expectedHash chunk.Hash) ([]byte, error) {
	if slotID >= chunk.MaximumSlots {
		return nil, fault.ErrSlotOutOfRange
	}
	data, err := w.replicaClient.GetLatestChunks([]uint32{slotID})
	if nil != err {
		return nil, err
	}
	if 1 != len(data) || nil == data[0] {
		return nil, fault.ErrChunkNotFound
	}
	if chunk.HashData(data[0]) != expectedHash {
		return nil, fault.ErrChunkDataHashMismatch
	}
	return data[0], nil
}

// VerifiedRawChunk - fetch one slot and verify the roster signature
//
// an empty slot yields nil bytes and a nil signer
func (w *Wrbpod) VerifiedRawChunk(slotID uint32) ([]byte, *signer.Signer, error) {
	if slotID >= chunk.MaximumSlots {
		return nil, nil, fault.ErrSlotOutOfRange
	}

	listing, err := w.replicaClient.ListChunks()
	if nil != err {
		return nil, nil, err
	}
	var metadata *chunk.SlotMetadata
	for i := 0; i < len(listing); i += 1 {
		if slotID == listing[i].SlotID {
			metadata = &listing[i]
			break
		}
	}
	if nil == metadata {
		return nil, nil, fault.ErrChunkNotFound
	}
	if metadata.IsEmpty() {
		return nil, nil, nil
	}

	slotSigner, err := w.verifyMetadata(metadata)
	if nil != err {
		return nil, nil, err
	}

	data, err := w.RawChunk(slotID, metadata.DataHash)
	if nil != err {
		return nil, nil, err
	}
	return data, slotSigner, nil
}

// ListChunks - the current per-slot metadata from the replica service
func (w *Wrbpod) ListChunks() ([]chunk.SlotMetadata, error) {
	return w.replicaClient.ListChunks()
}

// PutChunk - sign and store raw bytes at a slot, bypassing slices
//
// intended for manual repair; normal writes go through SyncSlot
func (w *Wrbpod) PutChunk(slotID uint32, slotVersion uint32, data []byte) error {
	if slotID >= chunk.MaximumSlots {
		return fault.ErrSlotOutOfRange
	}
	if uint64(len(data)) > chunk.MaximumSize {
		return fault.ErrChunkTooLarge
	}
	return w.putChunk(slotID, slotVersion, data)
}
