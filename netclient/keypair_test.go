// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 Wrb Works
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package netclient_test

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wrb-works/wrbpod/fault"
	"github.com/wrb-works/wrbpod/netclient"
)

const (
	publicHex  = "1a2b3c4d5e6f708192a3b4c5d6e7f8091a2b3c4d5e6f708192a3b4c5d6e7f809"
	privateHex = "f9e8d7c6b5a4938271f9e8d7c6b5a4938271f9e8d7c6b5a4938271f9e8d7c6b5"
)

func TestParseKey(t *testing.T) {
	key, private, err := netclient.ParseKey("PUBLIC:" + publicHex + "\n")
	assert.NoError(t, err, "public key parse failed")
	assert.False(t, private, "public key parsed as private")
	assert.Equal(t, publicHex, hex.EncodeToString(key), "public key corrupted")

	key, private, err = netclient.ParseKey("  PRIVATE:" + privateHex + "  ")
	assert.NoError(t, err, "private key parse failed")
	assert.True(t, private, "private key parsed as public")
	assert.Equal(t, privateHex, hex.EncodeToString(key), "private key corrupted")

	_, _, err = netclient.ParseKey("SECRET:" + privateHex)
	assert.Equal(t, fault.ErrInvalidKeyType, err, "untagged key accepted")

	_, _, err = netclient.ParseKey("PUBLIC:" + publicHex[:16])
	assert.Equal(t, fault.ErrInvalidPublicKeyFile, err, "short public key accepted")

	_, _, err = netclient.ParseKey("PRIVATE:" + strings.Repeat("zz", 32))
	assert.Error(t, err, "non-hex private key accepted")
}

func TestReadKeyTags(t *testing.T) {
	_, err := netclient.ReadPublicKey("PRIVATE:" + privateHex)
	assert.Equal(t, fault.ErrInvalidPublicKeyFile, err, "private key accepted as public")

	_, err = netclient.ReadPrivateKey("PUBLIC:" + publicHex)
	assert.Equal(t, fault.ErrInvalidPrivateKeyFile, err, "public key accepted as private")
}
