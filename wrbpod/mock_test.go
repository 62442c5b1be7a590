// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 Wrb Works
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wrbpod_test

import (
	"fmt"

	"github.com/wrb-works/wrbpod/chunk"
	"github.com/wrb-works/wrbpod/signer"
)

// in-memory chunk service with the same acceptance rules as the
// real one: unknown slot, stale version with metadata echo, bad
// signature
type mockClient struct {
	host        string
	key         *signer.PrivateKey
	slots       uint32
	chunks      map[uint32]*chunk.Data
	metadata    map[uint32]chunk.SlotMetadata
	listCalls   int
	putCalls    int
	signerCalls int
	putFailure  error
	alwaysStale bool
	staleOnce   bool
}

func newMockClient(key *signer.PrivateKey, slots uint32) *mockClient {
	return &mockClient{
		host:     "mock.service:2135",
		key:      key,
		slots:    slots,
		chunks:   map[uint32]*chunk.Data{},
		metadata: map[uint32]chunk.SlotMetadata{},
	}
}

func (m *mockClient) Host() string {
	return m.host
}

func (m *mockClient) ListChunks() ([]chunk.SlotMetadata, error) {
	m.listCalls += 1
	listing := make([]chunk.SlotMetadata, m.slots)
	for slotID := uint32(0); slotID < m.slots; slotID += 1 {
		// metadata as recorded at accept time, not derived from
		// the stored bytes, so corruption is reported not hidden
		if stored, ok := m.metadata[slotID]; ok {
			listing[slotID] = stored
		} else {
			listing[slotID] = chunk.NewUnsignedMetadata(slotID)
		}
	}
	return listing, nil
}

func (m *mockClient) GetChunks(requests []chunk.SlotVersion) ([][]byte, error) {
	result := make([][]byte, len(requests))
	for i, request := range requests {
		if stored, ok := m.chunks[request.SlotID]; ok && stored.SlotVersion == request.SlotVersion {
			result[i] = stored.Data
		}
	}
	return result, nil
}

func (m *mockClient) GetLatestChunks(slotIDs []uint32) ([][]byte, error) {
	result := make([][]byte, len(slotIDs))
	for i, slotID := range slotIDs {
		if stored, ok := m.chunks[slotID]; ok {
			result[i] = stored.Data
		}
	}
	return result, nil
}

func (m *mockClient) PutChunk(data *chunk.Data) (*chunk.Ack, error) {
	m.putCalls += 1
	if nil != m.putFailure {
		return nil, m.putFailure
	}
	if data.SlotID >= m.slots {
		return &chunk.Ack{
			Accepted: false,
			Reason:   fmt.Sprintf("no such slot: %d", data.SlotID),
			Code:     1,
		}, nil
	}

	current := chunk.NewUnsignedMetadata(data.SlotID)
	if stored, ok := m.metadata[data.SlotID]; ok {
		current = stored
	}
	if m.staleOnce {
		// pretend a racing writer claimed this exact version
		m.staleOnce = false
		raced := current
		raced.SlotVersion = data.SlotVersion
		return &chunk.Ack{
			Accepted: false,
			Reason:   "stale version",
			Code:     0,
			Metadata: &raced,
		}, nil
	}
	if m.alwaysStale || data.SlotVersion <= current.SlotVersion {
		return &chunk.Ack{
			Accepted: false,
			Reason:   "stale version",
			Code:     0,
			Metadata: &current,
		}, nil
	}

	digest := chunk.AuthDigest(data.SlotID, data.SlotVersion, data.Hash())
	if err := m.key.Signer().CheckSignature(digest, data.Signature); nil != err {
		return &chunk.Ack{
			Accepted: false,
			Reason:   "bad signature",
			Code:     2,
		}, nil
	}

	m.chunks[data.SlotID] = data
	m.metadata[data.SlotID] = data.Metadata()
	return &chunk.Ack{Accepted: true}, nil
}

func (m *mockClient) GetSigners() ([]*signer.Signer, error) {
	m.signerCalls += 1
	roster := make([]*signer.Signer, m.slots)
	for i := uint32(0); i < m.slots; i += 1 {
		roster[i] = m.key.Signer()
	}
	return roster, nil
}

func (m *mockClient) FindReplicas() ([]string, error) {
	return []string{m.host}, nil
}
