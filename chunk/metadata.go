// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 Wrb Works
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chunk

import (
	"github.com/wrb-works/wrbpod/signer"
)

// SlotMetadata - current state of one slot as reported by list
type SlotMetadata struct {
	SlotID      uint32           `json:"slot_id"`
	SlotVersion uint32           `json:"slot_version"`
	DataHash    Hash             `json:"data_hash"`
	Signature   signer.Signature `json:"signature"`
}

// NewUnsignedMetadata - metadata for a slot that has never been written
func NewUnsignedMetadata(slotID uint32) SlotMetadata {
	return SlotMetadata{
		SlotID:      slotID,
		SlotVersion: 0,
		DataHash:    Hash{},
	}
}

// IsEmpty - true when the slot has never been written
func (metadata *SlotMetadata) IsEmpty() bool {
	return 0 == metadata.SlotVersion && metadata.DataHash.IsEmpty()
}

// Verify - check the metadata signature against an expected signer
func (metadata *SlotMetadata) Verify(expected *signer.Signer) error {
	digest := AuthDigest(metadata.SlotID, metadata.SlotVersion, metadata.DataHash)
	return expected.CheckSignature(digest, metadata.Signature)
}
