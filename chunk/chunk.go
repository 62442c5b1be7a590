// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 Wrb Works
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chunk

import (
	"encoding/binary"

	"golang.org/x/crypto/sha3"

	"github.com/wrb-works/wrbpod/signer"
)

// service-wide constants
const (
	// MaximumSlots - slots per chunk service
	MaximumSlots = 4096

	// MaximumSize - hard upper bound on one chunk's content
	MaximumSize = 1048576 // 1 MiB

	// SuperblockSlot - slot 0 always holds the wrbpod superblock
	SuperblockSlot = 0
)

// Data - one chunk as submitted to or returned by the service
type Data struct {
	SlotID      uint32           `json:"slot_id"`
	SlotVersion uint32           `json:"slot_version"`
	Data        []byte           `json:"data"`
	Signature   signer.Signature `json:"signature"`
}

// NewData - wrap content for a target slot and version, unsigned
func NewData(slotID uint32, slotVersion uint32, data []byte) *Data {
	return &Data{
		SlotID:      slotID,
		SlotVersion: slotVersion,
		Data:        data,
	}
}

// AuthDigest - the digest that a slot signature covers
//
// sha3-256 over: slot id (4 bytes BE) ∥ slot version (4 bytes BE) ∥
// content hash.  Binding the metadata into the digest prevents a
// hostile replica from replaying content under a different slot or
// version.
func AuthDigest(slotID uint32, slotVersion uint32, dataHash Hash) []byte {
	buffer := make([]byte, 8, 8+HashLength)
	binary.BigEndian.PutUint32(buffer[0:4], slotID)
	binary.BigEndian.PutUint32(buffer[4:8], slotVersion)
	buffer = append(buffer, dataHash[:]...)
	digest := sha3.Sum256(buffer)
	return digest[:]
}

// Hash - content hash of this chunk
func (data *Data) Hash() Hash {
	return HashData(data.Data)
}

// Sign - sign the auth digest with the supplied key
func (data *Data) Sign(privateKey *signer.PrivateKey) {
	data.Signature = privateKey.Sign(AuthDigest(data.SlotID, data.SlotVersion, data.Hash()))
}

// Metadata - the slot metadata record for this chunk
func (data *Data) Metadata() SlotMetadata {
	return SlotMetadata{
		SlotID:      data.SlotID,
		SlotVersion: data.SlotVersion,
		DataHash:    data.Hash(),
		Signature:   data.Signature,
	}
}

// Ack - outcome of a put
//
// a rejection for a stale version carries the service's current
// metadata so the caller can retry with a higher version; a rejection
// with nil metadata is not retryable
type Ack struct {
	Accepted bool          `json:"accepted"`
	Reason   string        `json:"reason,omitempty"`
	Code     int           `json:"code,omitempty"`
	Metadata *SlotMetadata `json:"metadata,omitempty"`
}
