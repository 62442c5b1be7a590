// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 Wrb Works
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package signer

import (
	"bytes"
	"crypto/rand"

	"golang.org/x/crypto/ed25519"
	"golang.org/x/crypto/sha3"

	"github.com/wrb-works/wrbpod/fault"
	"github.com/wrb-works/wrbpod/util"
)

// PrivateKey - an ed25519 signing key
type PrivateKey struct {
	Test       bool
	PrivateKey []byte
}

// NewPrivateKey - generate a random signing key
func NewPrivateKey(test bool) (*PrivateKey, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if nil != err {
		return nil, err
	}
	return &PrivateKey{
		Test:       test,
		PrivateKey: priv,
	}, nil
}

// PrivateKeyFromSeed - derive a signing key from 32 seed bytes
//
// the same seed always yields the same key
func PrivateKeyFromSeed(test bool, seed []byte) (*PrivateKey, error) {
	if ed25519.SeedSize != len(seed) {
		return nil, fault.ErrInvalidKeyLength
	}
	_, priv, err := ed25519.GenerateKey(bytes.NewReader(seed))
	if nil != err {
		return nil, err
	}
	return &PrivateKey{
		Test:       test,
		PrivateKey: priv,
	}, nil
}

// PrivateKeyFromBase58 - convert a Base58 encoded string to a private key
func PrivateKeyFromBase58(privateKeyBase58Encoded string) (*PrivateKey, error) {
	decoded := util.FromBase58(privateKeyBase58Encoded)
	if 0 == len(decoded) {
		return nil, fault.ErrCannotDecodePrivateKey
	}

	checksumStart := len(decoded) - checksumLength
	if checksumStart <= 0 {
		return nil, fault.ErrInvalidKeyLength
	}
	checksum := sha3.Sum256(decoded[:checksumStart])
	if !bytes.Equal(checksum[:checksumLength], decoded[checksumStart:]) {
		return nil, fault.ErrChecksumMismatch
	}

	keyVariant, keyVariantLength := util.FromVarint64(decoded)
	if 0 == keyVariantLength || keyVariant&publicKeyCode == publicKeyCode {
		return nil, fault.ErrNotPrivateKey
	}

	keyAlgorithm := keyVariant >> algorithmShift
	if keyAlgorithm != ED25519 {
		return nil, fault.ErrInvalidKeyType
	}

	isTest := 0 != keyVariant&testKeyCode

	priv := decoded[keyVariantLength:checksumStart]
	if ed25519.PrivateKeySize != len(priv) {
		return nil, fault.ErrInvalidKeyLength
	}

	return &PrivateKey{
		Test:       isTest,
		PrivateKey: priv,
	}, nil
}

// Sign - produce an ed25519 signature over a message
func (privateKey *PrivateKey) Sign(message []byte) Signature {
	return Signature(ed25519.Sign(privateKey.PrivateKey, message))
}

// Signer - the public identity corresponding to this key
func (privateKey *PrivateKey) Signer() *Signer {
	publicKey := ed25519.PrivateKey(privateKey.PrivateKey).Public().(ed25519.PublicKey)
	return &Signer{
		Test:      privateKey.Test,
		PublicKey: publicKey,
	}
}

// Bytes - binary encoding: key variant followed by the private key
func (privateKey *PrivateKey) Bytes() []byte {
	keyVariant := byte(ED25519 << algorithmShift)
	if privateKey.Test {
		keyVariant |= testKeyCode
	}
	return append([]byte{keyVariant}, privateKey.PrivateKey...)
}

// String - Base58 encoding of the checksummed binary form
func (privateKey *PrivateKey) String() string {
	buffer := privateKey.Bytes()
	checksum := sha3.Sum256(buffer)
	buffer = append(buffer, checksum[:checksumLength]...)
	return util.ToBase58(buffer)
}

// IsTesting - whether the key belongs to the test network
func (privateKey *PrivateKey) IsTesting() bool {
	return privateKey.Test
}

// MarshalText - convert a private key to its Base58 JSON form
func (privateKey PrivateKey) MarshalText() ([]byte, error) {
	return []byte(privateKey.String()), nil
}

// UnmarshalText - convert the Base58 JSON form back to a private key
func (privateKey *PrivateKey) UnmarshalText(s []byte) error {
	k, err := PrivateKeyFromBase58(string(s))
	if nil != err {
		return err
	}
	privateKey.Test = k.Test
	privateKey.PrivateKey = k.PrivateKey
	return nil
}
