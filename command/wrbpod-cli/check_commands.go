// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 Wrb Works
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"strings"

	"github.com/wrb-works/wrbpod/netclient"
	"github.com/wrb-works/wrbpod/signer"
	"github.com/wrb-works/wrbpod/superblock"
	"github.com/wrb-works/wrbpod/util"
)

// identity is required, but not empty
func checkName(name string) (string, error) {
	if "" == name {
		return "", fmt.Errorf("identity cannot be blank")
	}
	return name, nil
}

// connect is required as host:port
func checkConnect(connect string) (string, error) {
	connect = strings.TrimSpace(connect)
	if "" == connect {
		return "", fmt.Errorf("connect cannot be blank")
	}
	if !strings.Contains(connect, ":") {
		return "", fmt.Errorf("connect: %q must be host:port", connect)
	}
	return connect, nil
}

// description is required, but not empty
func checkDescription(description string) (string, error) {
	if "" == description {
		return "", fmt.Errorf("description cannot be blank")
	}
	return description, nil
}

// server key is either a tagged hex string or a file holding one
func checkServerPublicKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if "" == key {
		return "", fmt.Errorf("server-key cannot be blank")
	}
	if util.EnsureFileExists(key) {
		raw, err := netclient.ReadPublicKeyFile(key)
		if nil != err {
			return "", err
		}
		return "PUBLIC:" + fmt.Sprintf("%x", raw), nil
	}
	if _, err := netclient.ReadPublicKey(key); nil != err {
		return "", err
	}
	return key, nil
}

// private key is optional, generate a new one when absent
func checkPrivateKey(privateKeyBase58 string, testnet bool) (*signer.PrivateKey, error) {
	if "" == privateKeyBase58 {
		return signer.NewPrivateKey(testnet)
	}
	privateKey, err := signer.PrivateKeyFromBase58(privateKeyBase58)
	if nil != err {
		return nil, err
	}
	if privateKey.IsTesting() != testnet {
		return nil, fmt.Errorf("private key is for the wrong network")
	}
	return privateKey, nil
}

// app name is required, but not empty
func checkAppName(appName string) (string, error) {
	if "" == appName {
		return "", fmt.Errorf("app cannot be blank")
	}
	return appName, nil
}

// code hash is a 40 character hex string
func checkCodeHash(codeHashHex string) (superblock.CodeHash, error) {
	codeHash := superblock.CodeHash{}
	if "" == codeHashHex {
		return codeHash, fmt.Errorf("code-hash cannot be blank")
	}
	err := codeHash.UnmarshalText([]byte(codeHashHex))
	return codeHash, err
}
