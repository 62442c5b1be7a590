// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 Wrb Works
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package slicerecord_test

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wrb-works/wrbpod/chunk"
	"github.com/wrb-works/wrbpod/fault"
	"github.com/wrb-works/wrbpod/slicerecord"
)

// three slices with ids 10, 11, 12 stored in id order
const packedThreeSlices = "00" +
	"0000000000000003" +
	"0000000000000000000000000000000a" + "0000000000000000" +
	"0000000000000000000000000000000b" + "0000000000000001" +
	"0000000000000000000000000000000c" + "0000000000000002" +
	"0000000d" + "68656c6c6f20736c6963652030" + // "hello slice 0"
	"0000000d" + "68656c6c6f20736c6963652031" + // "hello slice 1"
	"0000000d" + "68656c6c6f20736c6963652032" // "hello slice 2"

func TestPackWireLayout(t *testing.T) {
	s := slicerecord.New()
	for i := 0; i < 3; i += 1 {
		ok := s.Put(slicerecord.IDFromUint64(uint64(10+i)), []byte{
			'h', 'e', 'l', 'l', 'o', ' ', 's', 'l', 'i', 'c', 'e', ' ', byte('0' + i),
		})
		assert.True(t, ok, "put rejected")
	}

	expected, err := hex.DecodeString(packedThreeSlices)
	assert.NoError(t, err, "bad fixture")

	packed := s.Pack()
	assert.Equal(t, expected, packed, "wrong wire layout")
	assert.Equal(t, uint64(len(packed)), s.EncodedSize(), "encoded size out of step")
}

func TestUnpackRoundTrip(t *testing.T) {
	packed, err := hex.DecodeString(packedThreeSlices)
	assert.NoError(t, err, "bad fixture")

	s, err := slicerecord.Unpack(packed)
	assert.NoError(t, err, "unpack failed")
	assert.Equal(t, 3, s.Count(), "wrong slice count")
	assert.False(t, s.IsDirty(), "unpacked collection is dirty")
	assert.Equal(t, uint64(len(packed)), s.EncodedSize(), "wrong encoded size")

	slice, ok := s.Get(slicerecord.IDFromUint64(11))
	assert.True(t, ok, "slice missing")
	assert.Equal(t, []byte("hello slice 1"), slice, "wrong slice bytes")

	_, ok = s.Get(slicerecord.IDFromUint64(13))
	assert.False(t, ok, "phantom slice found")

	assert.Equal(t, packed, s.Pack(), "repack differs")
}

func TestReplaceAccounting(t *testing.T) {
	s := slicerecord.New()
	id := slicerecord.IDFromUint64(42)

	assert.True(t, s.Put(id, make([]byte, 100)), "put rejected")
	sizeAfterFirst := s.EncodedSize()

	// replacing must swap the byte cost, not accumulate it
	assert.True(t, s.Put(id, make([]byte, 10)), "replace rejected")
	assert.Equal(t, sizeAfterFirst-90, s.EncodedSize(), "replace cost not swapped")
	assert.Equal(t, 1, s.Count(), "replace duplicated the entry")

	assert.Equal(t, uint64(len(s.Pack())), s.EncodedSize(), "encoded size out of step")
}

func TestCapacityRejection(t *testing.T) {
	s := slicerecord.New()
	assert.True(t, s.Put(slicerecord.IDFromUint64(1), []byte("keep")), "put rejected")
	s.SetDirty(false)
	before := s.Pack()

	huge := slicerecord.IDFromUint64(2)
	assert.False(t, s.CanFit(huge, chunk.MaximumSize), "oversized slice reported as fitting")
	assert.False(t, s.Put(huge, make([]byte, chunk.MaximumSize)), "oversized slice stored")

	// a refused put must not leave any trace
	assert.False(t, s.IsDirty(), "refused put dirtied the collection")
	assert.True(t, bytes.Equal(before, s.Pack()), "refused put changed the encoding")
}

func TestFitAtBoundary(t *testing.T) {
	s := slicerecord.New()
	id := slicerecord.IDFromUint64(1)

	// largest slice that exactly fills the chunk
	exact := chunk.MaximumSize - (1 + 8) - (16 + 8) - 4
	assert.True(t, s.CanFit(id, exact), "boundary slice refused")
	assert.False(t, s.CanFit(id, exact+1), "overflow slice accepted")

	assert.True(t, s.Put(id, make([]byte, exact)), "boundary put refused")
	assert.Equal(t, uint64(chunk.MaximumSize), s.EncodedSize(), "boundary size wrong")

	// replacing with the same length still fits
	assert.True(t, s.CanFit(id, exact), "boundary replace refused")
}

func TestUnpackErrors(t *testing.T) {
	packed, err := hex.DecodeString(packedThreeSlices)
	assert.NoError(t, err, "bad fixture")

	// bad version
	bad := append([]byte{}, packed...)
	bad[0] = 9
	_, err = slicerecord.Unpack(bad)
	assert.Equal(t, fault.ErrInvalidVersion, err, "bad version accepted")

	// truncation at every interesting boundary
	for _, cut := range []int{0, 5, 30, len(packed) - 1} {
		_, err = slicerecord.Unpack(packed[:cut])
		assert.Equal(t, fault.ErrTruncatedChunk, err, "truncated buffer accepted")
	}

	// storage index out of range
	bad = append([]byte{}, packed...)
	bad[9+16+7] = 7 // first entry position
	_, err = slicerecord.Unpack(bad)
	assert.Equal(t, fault.ErrInvalidSliceIndex, err, "wild index accepted")

	// duplicate id
	bad = append([]byte{}, packed...)
	copy(bad[9+24:9+24+16], bad[9:9+16]) // second entry id = first entry id
	_, err = slicerecord.Unpack(bad)
	assert.Equal(t, fault.ErrDuplicateSliceID, err, "duplicate id accepted")

	// absurd entry count cannot allocate
	bad = append([]byte{}, packed...)
	for i := 1; i <= 8; i += 1 {
		bad[i] = 0xff
	}
	_, err = slicerecord.Unpack(bad)
	assert.Equal(t, fault.ErrTruncatedChunk, err, "absurd count accepted")
}

func TestToChunk(t *testing.T) {
	s := slicerecord.New()
	assert.True(t, s.Put(slicerecord.IDFromUint64(1), []byte("payload")), "put rejected")

	data := s.ToChunk(5, 3)
	assert.Equal(t, uint32(5), data.SlotID, "wrong slot")
	assert.Equal(t, uint32(3), data.SlotVersion, "wrong version")
	assert.Equal(t, s.Pack(), data.Data, "wrong chunk bytes")
}
