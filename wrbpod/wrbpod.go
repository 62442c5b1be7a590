// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 Wrb Works
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wrbpod

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/bitmark-inc/logger"

	"github.com/wrb-works/wrbpod/chunk"
	"github.com/wrb-works/wrbpod/signer"
	"github.com/wrb-works/wrbpod/slicerecord"
	"github.com/wrb-works/wrbpod/superblock"
)

// signer roster cache lifetime; a stale roster is also refreshed once
// when a signature fails to verify
const signerRefreshInterval = 60 * time.Second

const rosterKey = "signers"

// Wrbpod - one open session
type Wrbpod struct {
	log           *logger.L
	superblock    *superblock.Superblock
	homeClient    chunk.Client
	replicaClient chunk.Client
	privateKey    *signer.PrivateKey
	roster        *gocache.Cache
	chunks        map[uint32]*slicerecord.Slices
	retry         RetryPolicy
}

func newWrbpod(homeClient chunk.Client, replicaClient chunk.Client, privateKey *signer.PrivateKey) *Wrbpod {
	return &Wrbpod{
		log:           logger.New("wrbpod"),
		superblock:    superblock.New(),
		homeClient:    homeClient,
		replicaClient: replicaClient,
		privateKey:    privateKey,
		roster:        gocache.New(signerRefreshInterval, 2*signerRefreshInterval),
		chunks:        map[uint32]*slicerecord.Slices{},
		retry:         RetryPolicy{},
	}
}

// Open - attach to an existing wrbpod
//
// downloads and verifies the superblock before returning
func Open(homeClient chunk.Client, replicaClient chunk.Client, privateKey *signer.PrivateKey) (*Wrbpod, error) {
	w := newWrbpod(homeClient, replicaClient, privateKey)
	if err := w.refreshSigners(); nil != err {
		return nil, err
	}
	if err := w.downloadSuperblock(); nil != err {
		return nil, err
	}
	return w, nil
}

// Format - create a wrbpod with an empty superblock
//
// destroys any prior allocation state stored at slot 0
func Format(homeClient chunk.Client, replicaClient chunk.Client, privateKey *signer.PrivateKey) (*Wrbpod, error) {
	w := newWrbpod(homeClient, replicaClient, privateKey)
	if err := w.refreshSigners(); nil != err {
		return nil, err
	}
	if err := w.uploadSuperblock(); nil != err {
		return nil, err
	}
	return w, nil
}

// Superblock - the cached allocation table
func (w *Wrbpod) Superblock() *superblock.Superblock {
	return w.superblock
}

// SetRetryPolicy - bound or pace the write retry loop
//
// the default policy retries for ever with no pacing, matching the
// behaviour callers of sync historically relied on
func (w *Wrbpod) SetRetryPolicy(retry RetryPolicy) {
	w.retry = retry
}
