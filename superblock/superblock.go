// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 Wrb Works
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package superblock - the wrbpod allocation table
//
// The superblock maps application names to the chunk-service slots
// they own.  It is itself stored, signed, at slot 0.  Slot 0 is never
// handed out and two applications never share a slot; both rules are
// enforced at allocation time against the current in-memory table.
//
// Wire layout (all integers big-endian):
//
//	version     1 byte
//	name count  4 bytes
//	names       per name: length (4 bytes) ∥ UTF-8 bytes (ASCII only)
//	app states  one per name, in the same order
//
// App state layout:
//
//	version     1 byte
//	code hash   20 bytes
//	slot count  4 bytes
//	slots       4 bytes each
package superblock

import (
	"encoding/binary"
	"sort"
	"unicode/utf8"

	"github.com/wrb-works/wrbpod/chunk"
	"github.com/wrb-works/wrbpod/fault"
)

// format tags
const (
	Version         byte = 0
	AppStateVersion byte = 0
)

// AppState - control state for one application
type AppState struct {
	Version  byte
	CodeHash CodeHash
	Slots    []uint32
}

// Superblock - the allocation table written to slot 0
type Superblock struct {
	version byte
	apps    map[string]*AppState
}

// New - an empty superblock
func New() *Superblock {
	return &Superblock{
		version: Version,
		apps:    map[string]*AppState{},
	}
}

// FindFreeSlot - first slot owned by nobody
//
// slot 0 is the superblock and never free; the exclusion list covers
// slots picked earlier in a multi-slot allocation that has not been
// committed yet
func (s *Superblock) FindFreeSlot(excluding []uint32) (uint32, bool) {
	occupied := make(map[uint32]struct{})
	for _, appState := range s.apps {
		for _, slot := range appState.Slots {
			occupied[slot] = struct{}{}
		}
	}
	for _, slot := range excluding {
		occupied[slot] = struct{}{}
	}

	for slot := uint32(1); slot < chunk.MaximumSlots; slot += 1 {
		if _, ok := occupied[slot]; !ok {
			return slot, true
		}
	}
	return 0, false
}

// Allocate - give an application more slots
//
// all-or-nothing: either count distinct free slots are found and
// committed, or the superblock is left untouched and false returned.
// A new application gets fresh state with the supplied code hash; an
// existing one keeps its code hash and has the slots appended.
func (s *Superblock) Allocate(appName string, codeHash CodeHash, count uint32) bool {
	slots := make([]uint32, 0, count)
	for i := uint32(0); i < count; i += 1 {
		slot, ok := s.FindFreeSlot(slots)
		if !ok {
			return false
		}
		slots = append(slots, slot)
	}

	appState, ok := s.apps[appName]
	if !ok {
		s.apps[appName] = &AppState{
			Version:  AppStateVersion,
			CodeHash: codeHash,
			Slots:    slots,
		}
		return true
	}

	appState.Slots = append(appState.Slots, slots...)
	return true
}

// DeleteApp - drop an application entirely, freeing its slots
func (s *Superblock) DeleteApp(appName string) {
	delete(s.apps, appName)
}

// AppState - look up an application's state
func (s *Superblock) AppState(appName string) (*AppState, bool) {
	appState, ok := s.apps[appName]
	return appState, ok
}

// SlotCount - number of slots owned; 0 for an unknown application
func (s *Superblock) SlotCount(appName string) uint32 {
	appState, ok := s.apps[appName]
	if !ok {
		return 0
	}
	return uint32(len(appState.Slots))
}

// AppSlotToChunkSlot - translate an application-local slot index to
// the chunk-service slot id
func (s *Superblock) AppSlotToChunkSlot(appName string, appSlot uint32) (uint32, bool) {
	appState, ok := s.apps[appName]
	if !ok {
		return 0, false
	}
	if appSlot >= uint32(len(appState.Slots)) {
		return 0, false
	}
	return appState.Slots[appSlot], true
}

// Names - all application names in serialization order
func (s *Superblock) Names() []string {
	names := make([]string, 0, len(s.apps))
	for name := range s.apps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Pack - serialize to the wire layout
func (s *Superblock) Pack() []byte {
	names := s.Names()

	buffer := []byte{s.version}
	buffer = appendUint32(buffer, uint32(len(names)))
	for _, name := range names {
		buffer = appendUint32(buffer, uint32(len(name)))
		buffer = append(buffer, name...)
	}
	for _, name := range names {
		buffer = s.apps[name].appendTo(buffer)
	}
	return buffer
}

// Unpack - parse the wire layout back into a superblock
func Unpack(buffer []byte) (*Superblock, error) {
	if len(buffer) < 5 {
		return nil, fault.ErrTruncatedChunk
	}
	version := buffer[0]
	if Version != version {
		return nil, fault.ErrInvalidVersion
	}
	nameCount := binary.BigEndian.Uint32(buffer[1:5])
	n := uint64(5)

	// an app needs at least a name length and an app state
	if nameCount > uint32(len(buffer)/4) {
		return nil, fault.ErrTruncatedChunk
	}

	names := make([]string, 0, nameCount)
	for i := uint32(0); i < nameCount; i += 1 {
		if uint64(len(buffer)) < n+4 {
			return nil, fault.ErrTruncatedChunk
		}
		nameLength := uint64(binary.BigEndian.Uint32(buffer[n : n+4]))
		n += 4
		if uint64(len(buffer)) < n+nameLength {
			return nil, fault.ErrTruncatedChunk
		}
		name := string(buffer[n : n+nameLength])
		n += nameLength
		if !utf8.ValidString(name) || !isASCII(name) {
			return nil, fault.ErrInvalidAppName
		}
		names = append(names, name)
	}

	apps := make(map[string]*AppState, nameCount)
	for _, name := range names {
		appState, length, err := unpackAppState(buffer[n:])
		if nil != err {
			return nil, err
		}
		n += length
		apps[name] = appState
	}

	return &Superblock{
		version: version,
		apps:    apps,
	}, nil
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i += 1 {
		if s[i] > 0x7f {
			return false
		}
	}
	return true
}

func appendUint32(buffer []byte, value uint32) []byte {
	scratch := make([]byte, 4)
	binary.BigEndian.PutUint32(scratch, value)
	return append(buffer, scratch...)
}
