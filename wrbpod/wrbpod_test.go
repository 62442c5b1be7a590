// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 Wrb Works
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wrbpod_test

import (
	"math"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/logger"

	"github.com/wrb-works/wrbpod/chunk"
	"github.com/wrb-works/wrbpod/fault"
	"github.com/wrb-works/wrbpod/signer"
	"github.com/wrb-works/wrbpod/slicerecord"
	"github.com/wrb-works/wrbpod/superblock"
	"github.com/wrb-works/wrbpod/wrbpod"
)

const (
	testingDirName = "testing"
	mockSlotCount  = 16
)

func TestMain(m *testing.M) {
	_ = os.RemoveAll(testingDirName)
	_ = os.Mkdir(testingDirName, 0700)

	logging := logger.Configuration{
		Directory: testingDirName,
		File:      "testing.log",
		Size:      1048576,
		Count:     10,
		Console:   false,
		Levels: map[string]string{
			logger.DefaultTag: "critical",
		},
	}

	// start logging
	_ = logger.Initialise(logging)

	rc := m.Run()

	logger.Finalise()
	_ = os.RemoveAll(testingDirName)
	os.Exit(rc)
}

func newTestKey(t *testing.T) *signer.PrivateKey {
	privateKey, err := signer.NewPrivateKey(true)
	assert.NoError(t, err, "key generation failed")
	return privateKey
}

func formatTestPod(t *testing.T) (*wrbpod.Wrbpod, *mockClient, *signer.PrivateKey) {
	privateKey := newTestKey(t)
	client := newMockClient(privateKey, mockSlotCount)
	pod, err := wrbpod.Format(client, client, privateKey)
	assert.NoError(t, err, "format failed")
	return pod, client, privateKey
}

func TestFormatAndOpen(t *testing.T) {
	pod, client, privateKey := formatTestPod(t)
	assert.Equal(t, 0, len(pod.Superblock().Names()), "fresh superblock is not empty")

	// superblock chunk was written at slot 0 version 1
	stored, ok := client.chunks[chunk.SuperblockSlot]
	assert.True(t, ok, "no superblock chunk stored")
	assert.Equal(t, uint32(1), stored.SlotVersion, "wrong superblock version")

	reopened, err := wrbpod.Open(client, client, privateKey)
	assert.NoError(t, err, "open failed")
	assert.Equal(t, 0, len(reopened.Superblock().Names()), "reopened superblock is not empty")
}

func TestOpenEmptyService(t *testing.T) {
	privateKey := newTestKey(t)
	client := newMockClient(privateKey, mockSlotCount)

	// no format first: slot 0 holds the empty sentinel
	pod, err := wrbpod.Open(client, client, privateKey)
	assert.NoError(t, err, "open failed")
	assert.Equal(t, 0, len(pod.Superblock().Names()), "superblock is not empty")
}

func TestAllocateSlots(t *testing.T) {
	pod, client, privateKey := formatTestPod(t)

	codeHash := superblock.HashCode([]byte("app code"))
	ok, err := pod.AllocateSlots("calendar", codeHash, 3)
	assert.NoError(t, err, "allocate failed")
	assert.True(t, ok, "allocate rejected")
	assert.Equal(t, uint32(3), pod.NumSlots("calendar"), "wrong slot count")

	// growth appends, never remaps
	ok, err = pod.AllocateSlots("calendar", codeHash, 2)
	assert.NoError(t, err, "second allocate failed")
	assert.True(t, ok, "second allocate rejected")
	assert.Equal(t, uint32(5), pod.NumSlots("calendar"), "wrong slot count after growth")

	// allocation survives a reopen
	reopened, err := wrbpod.Open(client, client, privateKey)
	assert.NoError(t, err, "open failed")
	assert.Equal(t, uint32(5), reopened.NumSlots("calendar"), "allocation not persisted")

	state, ok := reopened.Superblock().AppState("calendar")
	assert.True(t, ok, "missing app state")
	assert.Equal(t, codeHash, state.CodeHash, "code hash not persisted")
	for _, slotID := range state.Slots {
		assert.NotEqual(t, uint32(chunk.SuperblockSlot), slotID, "app mapped onto the superblock slot")
	}
}

func TestAllocateTooLarge(t *testing.T) {
	pod, client, _ := formatTestPod(t)

	before := client.listCalls
	_, err := pod.AllocateSlots("calendar", superblock.HashCode(nil), math.MaxUint32+1)
	assert.Equal(t, fault.ErrAllocationTooLarge, err, "wrong error")
	assert.Equal(t, before, client.listCalls, "oversized allocation reached the network")
}

func TestAllocateExhaustion(t *testing.T) {
	pod, _, _ := formatTestPod(t)

	// slot 0 is reserved, so one fewer than the maximum is allocatable
	codeHash := superblock.HashCode([]byte("big"))
	ok, err := pod.AllocateSlots("big", codeHash, chunk.MaximumSlots-1)
	assert.NoError(t, err, "allocate failed")
	assert.True(t, ok, "full allocation rejected")

	ok, err = pod.AllocateSlots("more", codeHash, 1)
	assert.NoError(t, err, "allocate errored instead of refusing")
	assert.False(t, ok, "allocation beyond capacity accepted")
	assert.Equal(t, uint32(0), pod.NumSlots("more"), "refused allocation left slots behind")
}

func TestFetchEmptySlot(t *testing.T) {
	pod, _, _ := formatTestPod(t)

	codeHash := superblock.HashCode([]byte("notes"))
	ok, err := pod.AllocateSlots("notes", codeHash, 1)
	assert.NoError(t, err, "allocate failed")
	assert.True(t, ok, "allocate rejected")

	version, slotSigner, err := pod.FetchChunk("notes", 0)
	assert.NoError(t, err, "fetch failed")
	assert.Equal(t, uint32(0), version, "empty slot has a version")
	assert.Nil(t, slotSigner, "empty slot has a signer")

	_, err = pod.GetSlice("notes", 0, slicerecord.IDFromUint64(1))
	assert.Equal(t, fault.ErrChunkNotFound, err, "missing slice not reported")
}

func TestSliceLifecycle(t *testing.T) {
	pod, client, privateKey := formatTestPod(t)

	codeHash := superblock.HashCode([]byte("notes"))
	ok, err := pod.AllocateSlots("notes", codeHash, 2)
	assert.NoError(t, err, "allocate failed")
	assert.True(t, ok, "allocate rejected")

	_, _, err = pod.FetchChunk("notes", 0)
	assert.NoError(t, err, "fetch failed")

	sliceID := slicerecord.IDFromUint64(7)
	payload := []byte("first entry")

	fits, err := pod.CanFitSlice("notes", 0, sliceID, len(payload))
	assert.NoError(t, err, "capacity check failed")
	assert.True(t, fits, "small slice reported as not fitting")

	ok, err = pod.PutSlice("notes", 0, sliceID, payload)
	assert.NoError(t, err, "put slice failed")
	assert.True(t, ok, "put slice rejected")

	back, err := pod.GetSlice("notes", 0, sliceID)
	assert.NoError(t, err, "get slice failed")
	assert.Equal(t, payload, back, "slice corrupted in cache")

	err = pod.SyncSlot("notes", 0)
	assert.NoError(t, err, "sync failed")

	// a second owner sees the stored slice
	other, err := wrbpod.Open(client, client, privateKey)
	assert.NoError(t, err, "open failed")
	version, slotSigner, err := other.FetchChunk("notes", 0)
	assert.NoError(t, err, "fetch failed")
	assert.Equal(t, uint32(1), version, "wrong stored version")
	assert.NotNil(t, slotSigner, "stored slot has no signer")
	assert.Equal(t, privateKey.Signer().String(), slotSigner.String(), "wrong signer verified")

	back, err = other.GetSlice("notes", 0, sliceID)
	assert.NoError(t, err, "get slice failed after reopen")
	assert.Equal(t, payload, back, "slice corrupted in store")
}

func TestSyncIdempotent(t *testing.T) {
	pod, client, _ := formatTestPod(t)

	ok, err := pod.AllocateSlots("notes", superblock.HashCode(nil), 1)
	assert.NoError(t, err, "allocate failed")
	assert.True(t, ok, "allocate rejected")
	_, _, err = pod.FetchChunk("notes", 0)
	assert.NoError(t, err, "fetch failed")

	ok, err = pod.PutSlice("notes", 0, slicerecord.IDFromUint64(1), []byte("a"))
	assert.NoError(t, err, "put slice failed")
	assert.True(t, ok, "put slice rejected")

	assert.NoError(t, pod.SyncSlot("notes", 0), "first sync failed")
	state, _ := pod.Superblock().AppState("notes")
	chunkSlot := state.Slots[0]
	assert.Equal(t, uint32(1), client.chunks[chunkSlot].SlotVersion, "wrong first version")

	// explicit sync of a clean slot still bumps the stored version
	assert.NoError(t, pod.SyncSlot("notes", 0), "second sync failed")
	assert.Equal(t, uint32(2), client.chunks[chunkSlot].SlotVersion, "version did not advance")

	// bulk sync skips clean slots
	puts := client.putCalls
	assert.NoError(t, pod.Sync(), "bulk sync failed")
	assert.Equal(t, puts, client.putCalls, "clean slot was resent by bulk sync")

	// dirty again: bulk sync uploads
	ok, err = pod.PutSlice("notes", 0, slicerecord.IDFromUint64(1), []byte("b"))
	assert.NoError(t, err, "put slice failed")
	assert.True(t, ok, "put slice rejected")
	assert.NoError(t, pod.Sync(), "bulk sync failed")
	assert.Equal(t, uint32(3), client.chunks[chunkSlot].SlotVersion, "version did not advance")
}

func TestSlotChecks(t *testing.T) {
	pod, client, _ := formatTestPod(t)

	ok, err := pod.AllocateSlots("notes", superblock.HashCode(nil), 1)
	assert.NoError(t, err, "allocate failed")
	assert.True(t, ok, "allocate rejected")

	_, _, err = pod.FetchChunk("notes", 1)
	assert.Equal(t, fault.ErrSlotNotMapped, err, "unmapped slot not rejected")

	_, _, err = pod.FetchChunk("ghost", 0)
	assert.Equal(t, fault.ErrSlotNotMapped, err, "unknown app not rejected")

	before := client.listCalls
	_, _, err = pod.FetchChunk("notes", uint64(math.MaxUint32)+1)
	assert.Equal(t, fault.ErrSlotOutOfRange, err, "oversized slot index not rejected")
	assert.Equal(t, before, client.listCalls, "oversized slot index reached the network")

	ok, err = pod.PutSlice("ghost", 0, slicerecord.IDFromUint64(1), []byte("a"))
	assert.False(t, ok, "write to unknown app staged")
	assert.Equal(t, fault.ErrSlotNotMapped, err, "write to unknown app not rejected")

	_, err = pod.GetSlice("notes", 0, slicerecord.IDFromUint64(1))
	assert.Equal(t, fault.ErrSlotNotFetched, err, "read before fetch not rejected")

	err = pod.SyncSlot("notes", 0)
	assert.Equal(t, fault.ErrSlotNotFetched, err, "sync before fetch not rejected")
}

func TestStaleVersionRetry(t *testing.T) {
	pod, client, privateKey := formatTestPod(t)

	ok, err := pod.AllocateSlots("notes", superblock.HashCode(nil), 1)
	assert.NoError(t, err, "allocate failed")
	assert.True(t, ok, "allocate rejected")
	_, _, err = pod.FetchChunk("notes", 0)
	assert.NoError(t, err, "fetch failed")

	// another owner writes the slot in between
	other, err := wrbpod.Open(client, client, privateKey)
	assert.NoError(t, err, "open failed")
	_, _, err = other.FetchChunk("notes", 0)
	assert.NoError(t, err, "fetch failed")
	ok, err = other.PutSlice("notes", 0, slicerecord.IDFromUint64(9), []byte("raced"))
	assert.NoError(t, err, "put slice failed")
	assert.True(t, ok, "put slice rejected")
	assert.NoError(t, other.SyncSlot("notes", 0), "racing sync failed")

	ok, err = pod.PutSlice("notes", 0, slicerecord.IDFromUint64(1), []byte("late"))
	assert.NoError(t, err, "put slice failed")
	assert.True(t, ok, "put slice rejected")

	// stale first submission, then retry at the echoed version plus one
	client.staleOnce = true
	puts := client.putCalls
	assert.NoError(t, pod.SyncSlot("notes", 0), "late sync failed")
	assert.Equal(t, puts+2, client.putCalls, "stale submission was not retried")

	state, _ := pod.Superblock().AppState("notes")
	stored := client.chunks[state.Slots[0]]
	assert.Equal(t, uint32(3), stored.SlotVersion, "retry did not advance past the race")
}

func TestRetryExhausted(t *testing.T) {
	pod, client, _ := formatTestPod(t)

	ok, err := pod.AllocateSlots("notes", superblock.HashCode(nil), 1)
	assert.NoError(t, err, "allocate failed")
	assert.True(t, ok, "allocate rejected")
	_, _, err = pod.FetchChunk("notes", 0)
	assert.NoError(t, err, "fetch failed")
	ok, err = pod.PutSlice("notes", 0, slicerecord.IDFromUint64(1), []byte("a"))
	assert.NoError(t, err, "put slice failed")
	assert.True(t, ok, "put slice rejected")

	pod.SetRetryPolicy(wrbpod.RetryPolicy{Attempts: 3})
	client.alwaysStale = true

	err = pod.SyncSlot("notes", 0)
	assert.Equal(t, fault.ErrRetriesExceeded, err, "unbounded retry under a bounded policy")
}

func TestRejectWithoutMetadata(t *testing.T) {
	pod, _, _ := formatTestPod(t)

	// slot beyond the mock service capacity: permanent reject
	err := pod.PutChunk(mockSlotCount+4, 1, []byte("payload"))
	assert.Equal(t, fault.ErrChunkRejected, err, "permanent reject was retried")
}

func TestTamperedSignature(t *testing.T) {
	pod, client, privateKey := formatTestPod(t)

	ok, err := pod.AllocateSlots("notes", superblock.HashCode(nil), 1)
	assert.NoError(t, err, "allocate failed")
	assert.True(t, ok, "allocate rejected")
	_, _, err = pod.FetchChunk("notes", 0)
	assert.NoError(t, err, "fetch failed")
	ok, err = pod.PutSlice("notes", 0, slicerecord.IDFromUint64(1), []byte("a"))
	assert.NoError(t, err, "put slice failed")
	assert.True(t, ok, "put slice rejected")
	assert.NoError(t, pod.SyncSlot("notes", 0), "sync failed")

	state, _ := pod.Superblock().AppState("notes")
	stored := client.chunks[state.Slots[0]]
	stored.Signature[0] ^= 0x01

	other, err := wrbpod.Open(client, client, privateKey)
	assert.NoError(t, err, "open failed")
	_, _, err = other.FetchChunk("notes", 0)
	assert.Equal(t, fault.ErrInvalidChunkSignature, err, "tampered chunk accepted")

	// the superblock slot reports its own error
	client.chunks[chunk.SuperblockSlot].Signature[0] ^= 0x01
	_, err = wrbpod.Open(client, client, privateKey)
	assert.Equal(t, fault.ErrInvalidSuperblockSignature, err, "tampered superblock accepted")
}

func TestDeleteApp(t *testing.T) {
	pod, client, privateKey := formatTestPod(t)

	ok, err := pod.AllocateSlots("notes", superblock.HashCode(nil), 2)
	assert.NoError(t, err, "allocate failed")
	assert.True(t, ok, "allocate rejected")

	assert.NoError(t, pod.DeleteApp("notes"), "delete failed")
	assert.Equal(t, uint32(0), pod.NumSlots("notes"), "slots survive deletion")

	reopened, err := wrbpod.Open(client, client, privateKey)
	assert.NoError(t, err, "open failed")
	_, ok = reopened.Superblock().AppState("notes")
	assert.False(t, ok, "deletion not persisted")
}

func TestCanFitSliceLimit(t *testing.T) {
	pod, _, _ := formatTestPod(t)

	ok, err := pod.AllocateSlots("notes", superblock.HashCode(nil), 1)
	assert.NoError(t, err, "allocate failed")
	assert.True(t, ok, "allocate rejected")

	fits, err := pod.CanFitSlice("notes", 0, slicerecord.IDFromUint64(1), chunk.MaximumSize)
	assert.NoError(t, err, "capacity check failed")
	assert.False(t, fits, "oversized slice reported as fitting")

	ok, err = pod.PutSlice("notes", 0, slicerecord.IDFromUint64(1), make([]byte, chunk.MaximumSize))
	assert.NoError(t, err, "put slice errored instead of refusing")
	assert.False(t, ok, "oversized slice staged")
}

func TestSplitClients(t *testing.T) {
	privateKey := newTestKey(t)
	home := newMockClient(privateKey, mockSlotCount)
	home.host = "home.service:2135"
	replica := newMockClient(privateKey, mockSlotCount)

	// every chunk read and write goes to the replica; the home
	// service is only asked for the signer roster
	pod, err := wrbpod.Format(home, replica, privateKey)
	assert.NoError(t, err, "format failed")
	assert.Equal(t, 0, home.putCalls, "superblock written to the home service")
	assert.Equal(t, 1, replica.putCalls, "superblock not written to the replica")
	_, ok := replica.chunks[chunk.SuperblockSlot]
	assert.True(t, ok, "replica holds no superblock")

	ok, err = pod.AllocateSlots("notes", superblock.HashCode(nil), 1)
	assert.NoError(t, err, "allocate failed")
	assert.True(t, ok, "allocate rejected")
	_, _, err = pod.FetchChunk("notes", 0)
	assert.NoError(t, err, "fetch failed")
	ok, err = pod.PutSlice("notes", 0, slicerecord.IDFromUint64(1), []byte("a"))
	assert.NoError(t, err, "put slice failed")
	assert.True(t, ok, "put slice rejected")
	assert.NoError(t, pod.SyncSlot("notes", 0), "sync failed")

	assert.Equal(t, 0, home.putCalls, "chunk written to the home service")
	assert.Equal(t, 0, home.listCalls, "slot listing requested from the home service")
	assert.NotEqual(t, 0, home.signerCalls, "signer roster not requested from the home service")

	// a second session reading only the replica sees everything
	other, err := wrbpod.Open(home, replica, privateKey)
	assert.NoError(t, err, "open failed")
	_, _, err = other.FetchChunk("notes", 0)
	assert.NoError(t, err, "replica fetch failed")
	slice, err := other.GetSlice("notes", 0, slicerecord.IDFromUint64(1))
	assert.NoError(t, err, "replica read failed")
	assert.Equal(t, []byte("a"), slice, "wrong slice content")
}

func TestTamperedContent(t *testing.T) {
	pod, client, privateKey := formatTestPod(t)

	ok, err := pod.AllocateSlots("notes", superblock.HashCode(nil), 1)
	assert.NoError(t, err, "allocate failed")
	assert.True(t, ok, "allocate rejected")
	_, _, err = pod.FetchChunk("notes", 0)
	assert.NoError(t, err, "fetch failed")
	ok, err = pod.PutSlice("notes", 0, slicerecord.IDFromUint64(1), []byte("genuine"))
	assert.NoError(t, err, "put slice failed")
	assert.True(t, ok, "put slice rejected")
	assert.NoError(t, pod.SyncSlot("notes", 0), "sync failed")

	// flip one content byte; the declared hash and its signature
	// still describe the genuine bytes
	state, _ := pod.Superblock().AppState("notes")
	client.chunks[state.Slots[0]].Data[9] ^= 0x01

	other, err := wrbpod.Open(client, client, privateKey)
	assert.NoError(t, err, "open failed")
	_, _, err = other.FetchChunk("notes", 0)
	assert.Equal(t, fault.ErrChunkDataHashMismatch, err, "corrupted content accepted")

	// same for the superblock chunk
	client.chunks[chunk.SuperblockSlot].Data[0] ^= 0x01
	_, err = wrbpod.Open(client, client, privateKey)
	assert.Equal(t, fault.ErrChunkDataHashMismatch, err, "corrupted superblock accepted")
}
