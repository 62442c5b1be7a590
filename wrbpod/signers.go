// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 Wrb Works
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wrbpod

import (
	"github.com/wrb-works/wrbpod/chunk"
	"github.com/wrb-works/wrbpod/fault"
	"github.com/wrb-works/wrbpod/signer"
)

// refreshSigners - download the roster from the home service
func (w *Wrbpod) refreshSigners() error {
	roster, err := w.homeClient.GetSigners()
	if nil != err {
		w.log.Errorf("get signers from: %s  error: %s", w.homeClient.Host(), err)
		return err
	}
	w.log.Debugf("signer roster: %d entries", len(roster))
	w.roster.SetDefault(rosterKey, roster)
	return nil
}

// signers - the cached roster, refreshing after expiry
func (w *Wrbpod) signers() ([]*signer.Signer, bool, error) {
	if cached, ok := w.roster.Get(rosterKey); ok {
		return cached.([]*signer.Signer), false, nil
	}
	if err := w.refreshSigners(); nil != err {
		return nil, true, err
	}
	cached, _ := w.roster.Get(rosterKey)
	return cached.([]*signer.Signer), true, nil
}

// signerForSlot - the roster entry responsible for a slot
func (w *Wrbpod) signerForSlot(roster []*signer.Signer, slotID uint32) (*signer.Signer, error) {
	if 0 == len(roster) || slotID >= uint32(len(roster)) {
		return nil, fault.ErrNoSignerForSlot
	}
	return roster[slotID], nil
}

// verifyMetadata - check a slot signature against the roster
//
// a failed verification forces one roster refresh before the failure
// is reported, so a rotated signing key is picked up without waiting
// for the cache to expire
func (w *Wrbpod) verifyMetadata(metadata *chunk.SlotMetadata) (*signer.Signer, error) {
	roster, refreshed, err := w.signers()
	if nil != err {
		return nil, err
	}

	for {
		slotSigner, err := w.signerForSlot(roster, metadata.SlotID)
		if nil == err {
			err = metadata.Verify(slotSigner)
			if nil == err {
				return slotSigner, nil
			}
		}
		if refreshed {
			w.log.Warnf("slot: %d  signature verify failed: %s", metadata.SlotID, err)
			if chunk.SuperblockSlot == metadata.SlotID {
				return nil, fault.ErrInvalidSuperblockSignature
			}
			return nil, fault.ErrInvalidChunkSignature
		}
		if err := w.refreshSigners(); nil != err {
			return nil, err
		}
		roster, _, err = w.signers()
		if nil != err {
			return nil, err
		}
		refreshed = true
	}
}
