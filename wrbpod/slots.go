// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 Wrb Works
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wrbpod

import (
	"math"

	"github.com/wrb-works/wrbpod/chunk"
	"github.com/wrb-works/wrbpod/fault"
	"github.com/wrb-works/wrbpod/signer"
	"github.com/wrb-works/wrbpod/slicerecord"
	"github.com/wrb-works/wrbpod/superblock"
)

// AllocateSlots - grow an app's slot mapping by count slots
//
// downloads the latest superblock first so concurrent owners see a
// consistent table, then writes the grown table back.  false means
// the service has no free slots left; the table is unchanged
func (w *Wrbpod) AllocateSlots(appName string, codeHash superblock.CodeHash, count uint64) (bool, error) {
	if count > math.MaxUint32 {
		return false, fault.ErrAllocationTooLarge
	}
	if err := w.downloadSuperblock(); nil != err {
		return false, err
	}
	if !w.superblock.Allocate(appName, codeHash, uint32(count)) {
		return false, nil
	}
	if err := w.uploadSuperblock(); nil != err {
		return false, err
	}
	return true, nil
}

// DeleteApp - drop an app's slot mapping and store the table
//
// the slot contents are not erased, only unmapped
func (w *Wrbpod) DeleteApp(appName string) error {
	if err := w.downloadSuperblock(); nil != err {
		return err
	}
	w.superblock.DeleteApp(appName)
	return w.uploadSuperblock()
}

// NumSlots - how many slots an app currently owns
func (w *Wrbpod) NumSlots(appName string) uint32 {
	return w.superblock.SlotCount(appName)
}

// chunkSlot - translate an app-relative slot to a service slot
func (w *Wrbpod) chunkSlot(appName string, appSlot uint64) (uint32, error) {
	if appSlot > math.MaxUint32 {
		return 0, fault.ErrSlotOutOfRange
	}
	slotID, ok := w.superblock.AppSlotToChunkSlot(appName, uint32(appSlot))
	if !ok {
		return 0, fault.ErrSlotNotMapped
	}
	return slotID, nil
}

// FetchChunk - download, verify and cache one app slot
//
// returns the slot version plus the roster signer whose signature
// verified; an empty slot is cached as a fresh slice collection and
// reported as version 0 with a nil signer
func (w *Wrbpod) FetchChunk(appName string, appSlot uint64) (uint32, *signer.Signer, error) {
	slotID, err := w.chunkSlot(appName, appSlot)
	if nil != err {
		return 0, nil, err
	}

	listing, err := w.replicaClient.ListChunks()
	if nil != err {
		return 0, nil, err
	}
	var metadata *chunk.SlotMetadata
	for i := 0; i < len(listing); i += 1 {
		if slotID == listing[i].SlotID {
			metadata = &listing[i]
			break
		}
	}
	if nil == metadata {
		return 0, nil, fault.ErrChunkNotFound
	}

	if metadata.IsEmpty() {
		w.chunks[slotID] = slicerecord.New()
		return 0, nil, nil
	}

	slotSigner, err := w.verifyMetadata(metadata)
	if nil != err {
		return 0, nil, err
	}

	data, err := w.RawChunk(slotID, metadata.DataHash)
	if nil != err {
		return 0, nil, err
	}

	slices, err := slicerecord.Unpack(data)
	if nil != err {
		w.log.Errorf("slot: %d  slice decode error: %s", slotID, err)
		return 0, nil, err
	}
	w.chunks[slotID] = slices
	return metadata.SlotVersion, slotSigner, nil
}

// GetSlice - read one slice from a fetched slot
func (w *Wrbpod) GetSlice(appName string, appSlot uint64, sliceID slicerecord.ID) ([]byte, error) {
	slotID, err := w.chunkSlot(appName, appSlot)
	if nil != err {
		return nil, err
	}
	slices, ok := w.chunks[slotID]
	if !ok {
		return nil, fault.ErrSlotNotFetched
	}
	slice, ok := slices.Get(sliceID)
	if !ok {
		return nil, fault.ErrChunkNotFound
	}
	return slice, nil
}

// PutSlice - stage one slice into the cached slot
//
// a slot that was never fetched starts from an empty collection.
// false means nothing was staged: either the encoded collection
// would exceed the chunk size, or the app/slot is unmapped (the
// accompanying error separates the two cases)
func (w *Wrbpod) PutSlice(appName string, appSlot uint64, sliceID slicerecord.ID, slice []byte) (bool, error) {
	slotID, err := w.chunkSlot(appName, appSlot)
	if nil != err {
		return false, err
	}
	slices, ok := w.chunks[slotID]
	if !ok {
		slices = slicerecord.New()
		w.chunks[slotID] = slices
	}
	return slices.Put(sliceID, slice), nil
}

// CanFitSlice - check a slice against the remaining slot capacity
func (w *Wrbpod) CanFitSlice(appName string, appSlot uint64, sliceID slicerecord.ID, sliceLength int) (bool, error) {
	slotID, err := w.chunkSlot(appName, appSlot)
	if nil != err {
		return false, err
	}
	slices, ok := w.chunks[slotID]
	if !ok {
		slices = slicerecord.New()
	}
	return slices.CanFit(sliceID, sliceLength), nil
}

// SyncSlot - store a slot's staged slices on the chunk service
//
// always uploads, so a repeated sync of unchanged content still bumps
// the stored version.  the write starts one past the advertised
// version and follows the stale-version retry of putChunk; the cached
// collection is marked clean only after acceptance
func (w *Wrbpod) SyncSlot(appName string, appSlot uint64) error {
	slotID, err := w.chunkSlot(appName, appSlot)
	if nil != err {
		return err
	}
	slices, ok := w.chunks[slotID]
	if !ok {
		return fault.ErrSlotNotFetched
	}
	return w.syncChunkSlot(slotID, slices)
}

// Sync - store every dirty cached slot
func (w *Wrbpod) Sync() error {
	for slotID, slices := range w.chunks {
		if !slices.IsDirty() {
			continue
		}
		if err := w.syncChunkSlot(slotID, slices); nil != err {
			return err
		}
	}
	return nil
}

func (w *Wrbpod) syncChunkSlot(slotID uint32, slices *slicerecord.Slices) error {
	listing, err := w.replicaClient.ListChunks()
	if nil != err {
		return err
	}
	version := uint32(1)
	for i := 0; i < len(listing); i += 1 {
		if slotID == listing[i].SlotID {
			version = listing[i].SlotVersion + 1
			break
		}
	}

	if err := w.putChunk(slotID, version, slices.Pack()); nil != err {
		return err
	}
	slices.SetDirty(false)
	return nil
}
