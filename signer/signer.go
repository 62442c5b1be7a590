// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 Wrb Works
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package signer - identities of chunk-service signers
//
// A signer is the public half of an ed25519 key pair.  Its text form
// is a key-variant byte followed by the public key and a sha3-256
// checksum, all Base58 encoded.  The roster returned by a chunk
// service is an ordered list of these, one per slot.
package signer

import (
	"bytes"

	"golang.org/x/crypto/ed25519"
	"golang.org/x/crypto/sha3"

	"github.com/wrb-works/wrbpod/fault"
	"github.com/wrb-works/wrbpod/util"
)

// enumeration of supported key algorithms
const (
	ED25519 = iota + 1
	// end of list (one greater than last item)
	algorithmLimit = iota + 1
)

// miscellaneous constants
const (
	checksumLength = 4

	// bits in key code starting from LSB
	publicKeyCode = 0x01
	testKeyCode   = 0x02

	algorithmShift = 4 // shift 4 bits to get algorithm
)

// Signer - the verifying identity for one or more slots
type Signer struct {
	Test      bool
	PublicKey []byte
}

// SignerFromBase58 - convert a Base58 encoded string to a signer
func SignerFromBase58(signerBase58Encoded string) (*Signer, error) {
	decoded := util.FromBase58(signerBase58Encoded)
	if 0 == len(decoded) {
		return nil, fault.ErrCannotDecodeSigner
	}

	// checksum covers the key variant and the key
	checksumStart := len(decoded) - checksumLength
	if checksumStart <= 0 {
		return nil, fault.ErrInvalidKeyLength
	}
	checksum := sha3.Sum256(decoded[:checksumStart])
	if !bytes.Equal(checksum[:checksumLength], decoded[checksumStart:]) {
		return nil, fault.ErrChecksumMismatch
	}

	return SignerFromBytes(decoded[:checksumStart])
}

// SignerFromBytes - convert a binary encoded buffer to a signer
func SignerFromBytes(signerBytes []byte) (*Signer, error) {
	keyVariant, keyVariantLength := util.FromVarint64(signerBytes)
	if 0 == keyVariantLength || keyVariant&publicKeyCode != publicKeyCode {
		return nil, fault.ErrNotPublicKey
	}

	keyAlgorithm := keyVariant >> algorithmShift
	if keyAlgorithm != ED25519 {
		return nil, fault.ErrInvalidKeyType
	}

	isTest := 0 != keyVariant&testKeyCode

	publicKey := signerBytes[keyVariantLength:]
	if ed25519.PublicKeySize != len(publicKey) {
		return nil, fault.ErrInvalidKeyLength
	}

	return &Signer{
		Test:      isTest,
		PublicKey: publicKey,
	}, nil
}

// CheckSignature - verify an ed25519 signature over a message
func (signer *Signer) CheckSignature(message []byte, signature Signature) error {
	if ed25519.SignatureSize != len(signature) {
		return fault.ErrInvalidSignature
	}
	if !ed25519.Verify(signer.PublicKey, message, signature) {
		return fault.ErrInvalidSignature
	}
	return nil
}

// Bytes - binary encoding: key variant followed by the public key
func (signer *Signer) Bytes() []byte {
	keyVariant := byte(ED25519<<algorithmShift) | publicKeyCode
	if signer.Test {
		keyVariant |= testKeyCode
	}
	return append([]byte{keyVariant}, signer.PublicKey...)
}

// String - Base58 encoding of the checksummed binary form
func (signer *Signer) String() string {
	buffer := signer.Bytes()
	checksum := sha3.Sum256(buffer)
	buffer = append(buffer, checksum[:checksumLength]...)
	return util.ToBase58(buffer)
}

// IsTesting - whether the signer belongs to the test network
func (signer *Signer) IsTesting() bool {
	return signer.Test
}

// MarshalText - convert a signer to its Base58 JSON form
func (signer Signer) MarshalText() ([]byte, error) {
	return []byte(signer.String()), nil
}

// UnmarshalText - convert the Base58 JSON form back to a signer
func (signer *Signer) UnmarshalText(s []byte) error {
	a, err := SignerFromBase58(string(s))
	if nil != err {
		return err
	}
	signer.Test = a.Test
	signer.PublicKey = a.PublicKey
	return nil
}
