// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 Wrb Works
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chunk

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"

	"github.com/wrb-works/wrbpod/fault"
)

// HashLength - number of bytes in a content hash
const HashLength = 32

// Hash - sha3-256 content hash of a chunk
//
// the all-zero value is the empty sentinel: a slot that has never
// been written carries version 0 and a zero hash
type Hash [HashLength]byte

// HashData - hash a chunk's content
func HashData(data []byte) Hash {
	return Hash(sha3.Sum256(data))
}

// IsEmpty - true for the all-zero sentinel
func (hash Hash) IsEmpty() bool {
	return hash == Hash{}
}

// String - hex form for use by the fmt package (for %s)
func (hash Hash) String() string {
	return hex.EncodeToString(hash[:])
}

// MarshalText - convert hash to hex text
func (hash Hash) MarshalText() ([]byte, error) {
	size := hex.EncodedLen(len(hash))
	buffer := make([]byte, size)
	hex.Encode(buffer, hash[:])
	return buffer, nil
}

// UnmarshalText - convert hex text back to a hash
func (hash *Hash) UnmarshalText(s []byte) error {
	if hex.EncodedLen(HashLength) != len(s) {
		return fault.ErrInvalidCount
	}
	var buffer [HashLength]byte
	_, err := hex.Decode(buffer[:], s)
	if nil != err {
		return err
	}
	*hash = buffer
	return nil
}
