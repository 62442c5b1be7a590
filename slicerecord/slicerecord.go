// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 Wrb Works
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package slicerecord - packed slices sharing one chunk
//
// A slice is a small blob identified by a caller-chosen 128 bit id.
// Many slices pack into a single chunk-sized record so that a wrbpod
// can keep lots of tiny values without burning a slot per value.
//
// Wire layout (all integers big-endian):
//
//	version        1 byte
//	entry count    8 bytes
//	index          per entry: slice id (16 bytes) ∥ storage index (8 bytes)
//	slices         per slice in storage order: length (4 bytes) ∥ bytes
//
// The index is written in ascending slice id order.  A running encoded
// size is maintained so that a put which would exceed the chunk size
// limit is rejected without mutating anything.
package slicerecord

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"sort"

	"github.com/wrb-works/wrbpod/chunk"
	"github.com/wrb-works/wrbpod/fault"
)

// Version - current format tag
const Version byte = 0

// fixed encoding overheads
const (
	baseOverhead  = 1 + 8  // version + entry count
	entryOverhead = 16 + 8 // slice id + storage index
	countOverhead = 4      // per-slice length prefix
)

// IDLength - bytes in a slice id
const IDLength = 16

// ID - a 128 bit slice identifier, big-endian
type ID [IDLength]byte

// IDFromUint64 - an id with only the low 64 bits set
func IDFromUint64(value uint64) ID {
	id := ID{}
	binary.BigEndian.PutUint64(id[8:], value)
	return id
}

// String - hex form for use by the fmt package (for %s)
func (id ID) String() string {
	return hex.EncodeToString(id[:])
}

// Slices - an ordered collection of slices bound for one slot
type Slices struct {
	version     byte
	slices      [][]byte
	index       map[ID]int
	dirty       bool
	encodedSize uint64
	maxSize     uint64
}

// New - an empty collection sized to the service chunk limit
func New() *Slices {
	return &Slices{
		version:     Version,
		slices:      [][]byte{},
		index:       map[ID]int{},
		dirty:       false,
		encodedSize: baseOverhead,
		maxSize:     chunk.MaximumSize,
	}
}

// encoded cost of one slice, including index state for a new entry
func sliceEncodedSize(sliceLength int, present bool) uint64 {
	size := uint64(countOverhead) + uint64(sliceLength)
	if present {
		return size
	}
	return size + entryOverhead
}

// CanFit - whether a put of the given length would succeed
func (s *Slices) CanFit(id ID, sliceLength int) bool {
	existing, present := s.index[id]
	newSize := s.encodedSize + sliceEncodedSize(sliceLength, present)
	if present {
		newSize -= uint64(countOverhead) + uint64(len(s.slices[existing]))
	}
	return newSize <= s.maxSize
}

// Put - add or replace a slice
//
// returns false and leaves the collection untouched if the result
// would exceed the chunk size limit
func (s *Slices) Put(id ID, slice []byte) bool {
	if !s.CanFit(id, len(slice)) {
		return false
	}
	if existing, present := s.index[id]; present {
		s.encodedSize -= uint64(countOverhead) + uint64(len(s.slices[existing]))
		s.encodedSize += sliceEncodedSize(len(slice), true)
		s.slices[existing] = slice
	} else {
		s.encodedSize += sliceEncodedSize(len(slice), false)
		s.index[id] = len(s.slices)
		s.slices = append(s.slices, slice)
	}
	s.dirty = true
	return true
}

// Get - fetch a slice by id; read-only
func (s *Slices) Get(id ID) ([]byte, bool) {
	existing, present := s.index[id]
	if !present {
		return nil, false
	}
	return s.slices[existing], true
}

// Count - number of slices stored
func (s *Slices) Count() int {
	return len(s.slices)
}

// EncodedSize - exact serialized size of the collection
func (s *Slices) EncodedSize() uint64 {
	return s.encodedSize
}

// IsDirty - whether local content differs from last synced state
func (s *Slices) IsDirty() bool {
	return s.dirty
}

// SetDirty - override the dirty flag
//
// a freshly unpacked collection starts clean; callers that know
// better mark it themselves
func (s *Slices) SetDirty(dirty bool) {
	s.dirty = dirty
}

// Pack - serialize to the wire layout
func (s *Slices) Pack() []byte {
	buffer := make([]byte, 0, s.encodedSize)
	buffer = append(buffer, s.version)

	count := make([]byte, 8)
	binary.BigEndian.PutUint64(count, uint64(len(s.index)))
	buffer = append(buffer, count...)

	// index in ascending id order
	ids := make([]ID, 0, len(s.index))
	for id := range s.index {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return bytes.Compare(ids[i][:], ids[j][:]) < 0
	})
	for _, id := range ids {
		buffer = append(buffer, id[:]...)
		position := make([]byte, 8)
		binary.BigEndian.PutUint64(position, uint64(s.index[id]))
		buffer = append(buffer, position...)
	}

	// slices in storage order
	for _, slice := range s.slices {
		length := make([]byte, 4)
		binary.BigEndian.PutUint32(length, uint32(len(slice)))
		buffer = append(buffer, length...)
		buffer = append(buffer, slice...)
	}
	return buffer
}

// ToChunk - pack and wrap for a target slot and version, unsigned
func (s *Slices) ToChunk(slotID uint32, slotVersion uint32) *chunk.Data {
	return chunk.NewData(slotID, slotVersion, s.Pack())
}

// Unpack - parse the wire layout back into a collection
//
// the result starts clean; fails on a truncated buffer, an index
// entry out of range or a duplicate id
func Unpack(buffer []byte) (*Slices, error) {
	if len(buffer) < baseOverhead {
		return nil, fault.ErrTruncatedChunk
	}
	version := buffer[0]
	if Version != version {
		return nil, fault.ErrInvalidVersion
	}
	entryCount := binary.BigEndian.Uint64(buffer[1:9])
	n := uint64(baseOverhead)
	encodedSize := uint64(baseOverhead)

	if entryCount > uint64(len(buffer))/entryOverhead {
		return nil, fault.ErrTruncatedChunk
	}

	index := make(map[ID]int, entryCount)
	for i := uint64(0); i < entryCount; i += 1 {
		if uint64(len(buffer)) < n+entryOverhead {
			return nil, fault.ErrTruncatedChunk
		}
		id := ID{}
		copy(id[:], buffer[n:n+IDLength])
		n += IDLength
		position := binary.BigEndian.Uint64(buffer[n : n+8])
		n += 8
		encodedSize += entryOverhead

		if position >= entryCount {
			return nil, fault.ErrInvalidSliceIndex
		}
		if _, ok := index[id]; ok {
			return nil, fault.ErrDuplicateSliceID
		}
		index[id] = int(position)
	}

	slices := make([][]byte, 0, entryCount)
	for i := uint64(0); i < entryCount; i += 1 {
		if uint64(len(buffer)) < n+countOverhead {
			return nil, fault.ErrTruncatedChunk
		}
		length := uint64(binary.BigEndian.Uint32(buffer[n : n+countOverhead]))
		n += countOverhead
		if uint64(len(buffer)) < n+length {
			return nil, fault.ErrTruncatedChunk
		}
		slice := make([]byte, length)
		copy(slice, buffer[n:n+length])
		n += length
		encodedSize += countOverhead + length
		slices = append(slices, slice)
	}

	return &Slices{
		version:     version,
		slices:      slices,
		index:       index,
		dirty:       false,
		encodedSize: encodedSize,
		maxSize:     chunk.MaximumSize,
	}, nil
}
