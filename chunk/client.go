// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 Wrb Works
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chunk

import (
	"github.com/wrb-works/wrbpod/signer"
)

// SlotVersion - one get request: a slot and the exact version wanted
type SlotVersion struct {
	SlotID      uint32 `json:"slot_id"`
	SlotVersion uint32 `json:"slot_version"`
}

// Client - the chunk service as seen by a wrbpod session
//
// implementations: a CurveZMQ network client (netclient) and a
// LevelDB-backed local store (localstore)
type Client interface {

	// Host - address of the node this client talks to
	Host() string

	// ListChunks - metadata for every slot, ordered by slot id
	ListChunks() ([]SlotMetadata, error)

	// GetChunks - content for exact (slot, version) pairs
	//
	// the i'th result corresponds to the i'th request; nil marks a
	// slot that does not hold that exact version
	GetChunks(slotsAndVersions []SlotVersion) ([][]byte, error)

	// GetLatestChunks - content for slots at whatever version is stored
	//
	// the i'th result corresponds to the i'th request; nil marks a
	// slot with no content
	GetLatestChunks(slotIDs []uint32) ([][]byte, error)

	// PutChunk - submit a signed chunk
	//
	// the ack reports acceptance, or rejection with an optional echo
	// of the current slot metadata for retry
	PutChunk(data *Data) (*Ack, error)

	// GetSigners - ordered signer roster, index-aligned with slot ids
	GetSigners() ([]*signer.Signer, error)

	// FindReplicas - addresses of nodes hosting replicas
	FindReplicas() ([]string, error)
}
