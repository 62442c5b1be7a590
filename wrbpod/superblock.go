// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 Wrb Works
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wrbpod

import (
	"github.com/wrb-works/wrbpod/chunk"
	"github.com/wrb-works/wrbpod/fault"
	"github.com/wrb-works/wrbpod/superblock"
)

// downloadSuperblock - fetch and verify the allocation table at slot 0
//
// an empty sentinel at slot 0 yields a fresh superblock without a
// second round trip
func (w *Wrbpod) downloadSuperblock() error {
	listing, err := w.replicaClient.ListChunks()
	if nil != err {
		w.log.Errorf("list chunks from: %s  error: %s", w.replicaClient.Host(), err)
		return err
	}

	var metadata *chunk.SlotMetadata
	for i := 0; i < len(listing); i += 1 {
		if chunk.SuperblockSlot == listing[i].SlotID {
			metadata = &listing[i]
			break
		}
	}
	if nil == metadata {
		w.log.Error("slot listing is missing the superblock slot")
		return fault.ErrNoSuperblock
	}

	if metadata.IsEmpty() {
		w.log.Info("superblock slot is empty, starting fresh")
		w.superblock = superblock.New()
		return nil
	}

	_, err = w.verifyMetadata(metadata)
	if nil != err {
		return err
	}

	data, err := w.replicaClient.GetLatestChunks([]uint32{chunk.SuperblockSlot})
	if nil != err {
		w.log.Errorf("get superblock chunk error: %s", err)
		return err
	}
	if 1 != len(data) || nil == data[0] {
		return fault.ErrNoSuperblock
	}
	if chunk.HashData(data[0]) != metadata.DataHash {
		return fault.ErrChunkDataHashMismatch
	}

	sb, err := superblock.Unpack(data[0])
	if nil != err {
		w.log.Errorf("superblock decode error: %s", err)
		return err
	}
	w.superblock = sb
	return nil
}

// uploadSuperblock - sign and store the cached allocation table
//
// the write starts one past the advertised version; a stale-version
// reject carries the authoritative metadata and the write is retried
// at that version plus one
func (w *Wrbpod) uploadSuperblock() error {
	listing, err := w.replicaClient.ListChunks()
	if nil != err {
		w.log.Errorf("list chunks from: %s  error: %s", w.replicaClient.Host(), err)
		return err
	}

	version := uint32(1)
	for i := 0; i < len(listing); i += 1 {
		if chunk.SuperblockSlot == listing[i].SlotID {
			version = listing[i].SlotVersion + 1
			break
		}
	}

	return w.putChunk(chunk.SuperblockSlot, version, w.superblock.Pack())
}
