// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 Wrb Works
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package superblock

import (
	"encoding/binary"
	"encoding/hex"

	"golang.org/x/crypto/sha3"

	"github.com/wrb-works/wrbpod/chunk"
	"github.com/wrb-works/wrbpod/fault"
)

// CodeHashLength - bytes in an application code hash
const CodeHashLength = 20

// CodeHash - content hash of an application's code
//
// used to notice that an application changed between sessions; the
// superblock stores it but never interprets it
type CodeHash [CodeHashLength]byte

// HashCode - hash application code: sha3-256 truncated to 20 bytes
func HashCode(code []byte) CodeHash {
	digest := sha3.Sum256(code)
	codeHash := CodeHash{}
	copy(codeHash[:], digest[:CodeHashLength])
	return codeHash
}

// String - hex form for use by the fmt package (for %s)
func (codeHash CodeHash) String() string {
	return hex.EncodeToString(codeHash[:])
}

// MarshalText - convert code hash to hex text
func (codeHash CodeHash) MarshalText() ([]byte, error) {
	size := hex.EncodedLen(len(codeHash))
	buffer := make([]byte, size)
	hex.Encode(buffer, codeHash[:])
	return buffer, nil
}

// UnmarshalText - convert hex text back to a code hash
func (codeHash *CodeHash) UnmarshalText(s []byte) error {
	if hex.EncodedLen(CodeHashLength) != len(s) {
		return fault.ErrInvalidCount
	}
	var buffer [CodeHashLength]byte
	_, err := hex.Decode(buffer[:], s)
	if nil != err {
		return err
	}
	*codeHash = buffer
	return nil
}

// Pack - serialize one app state
func (appState *AppState) Pack() []byte {
	return appState.appendTo([]byte{})
}

func (appState *AppState) appendTo(buffer []byte) []byte {
	buffer = append(buffer, appState.Version)
	buffer = append(buffer, appState.CodeHash[:]...)
	buffer = appendUint32(buffer, uint32(len(appState.Slots)))
	for _, slot := range appState.Slots {
		buffer = appendUint32(buffer, slot)
	}
	return buffer
}

// parse one app state, returning the bytes consumed
func unpackAppState(buffer []byte) (*AppState, uint64, error) {
	const header = 1 + CodeHashLength + 4
	if len(buffer) < header {
		return nil, 0, fault.ErrTruncatedChunk
	}
	version := buffer[0]
	if AppStateVersion != version {
		return nil, 0, fault.ErrInvalidVersion
	}
	codeHash := CodeHash{}
	copy(codeHash[:], buffer[1:1+CodeHashLength])

	slotCount := binary.BigEndian.Uint32(buffer[1+CodeHashLength : header])
	if slotCount > chunk.MaximumSlots {
		return nil, 0, fault.ErrSlotOutOfRange
	}
	n := uint64(header)
	if uint64(len(buffer)) < n+4*uint64(slotCount) {
		return nil, 0, fault.ErrTruncatedChunk
	}

	slots := make([]uint32, 0, slotCount)
	for i := uint32(0); i < slotCount; i += 1 {
		slots = append(slots, binary.BigEndian.Uint32(buffer[n:n+4]))
		n += 4
	}

	return &AppState{
		Version:  version,
		CodeHash: codeHash,
		Slots:    slots,
	}, n, nil
}
