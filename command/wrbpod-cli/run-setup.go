// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 Wrb Works
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path"

	"github.com/urfave/cli"

	"github.com/wrb-works/wrbpod/command/wrbpod-cli/configuration"
	"github.com/wrb-works/wrbpod/netclient"
	"github.com/wrb-works/wrbpod/signer"
)

func runSetup(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)
	testnet := m.testnet

	name, err := checkName(c.GlobalString("identity"))
	if err != nil {
		return err
	}

	connect, err := checkConnect(c.String("connect"))
	if err != nil {
		return err
	}

	description, err := checkDescription(c.String("description"))
	if err != nil {
		return err
	}

	serverPublicKey, err := checkServerPublicKey(c.String("server-key"))
	if err != nil {
		return err
	}

	privateKey, err := checkPrivateKey(c.String("privateKey"), testnet)
	if err != nil {
		return err
	}

	if m.verbose {
		fmt.Fprintf(m.e, "config: %s\n", m.file)
		fmt.Fprintf(m.e, "testnet: %t\n", testnet)
		fmt.Fprintf(m.e, "connect: %s\n", connect)
		fmt.Fprintf(m.e, "identity: %s\n", name)
		fmt.Fprintf(m.e, "description: %s\n", description)
	}

	// create the folder hierarchy for configuration if not existing
	configDir := path.Dir(m.file)
	if fileInfo, err := os.Stat(configDir); nil != err {
		if err := os.MkdirAll(configDir, 0o750); err != nil {
			return err
		}
	} else if !fileInfo.IsDir() {
		return fmt.Errorf("path: %q is not a directory", configDir)
	}

	// the connection identity is separate from the signing identity
	clientPublicKey, clientPrivateKey, err := netclient.NewKeypair()
	if err != nil {
		return err
	}

	config := &configuration.Configuration{
		DefaultIdentity: name,
		TestNet:         testnet,
		Connect:         connect,
		ReplicaConnect:  c.String("replica"),
		ServerPublicKey: serverPublicKey,
		ClientPublic:    clientPublicKey,
		ClientPrivate:   clientPrivateKey,
		Identities:      make(map[string]configuration.Identity),
	}

	password := c.GlobalString("password")
	if password == "" {
		password, err = promptNewPassword()
		if err != nil {
			return err
		}
	}

	err = config.AddIdentity(name, description, privateKey, password)
	if err != nil {
		return err
	}

	m.config = config
	m.save = true
	return nil
}

func runAdd(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	name, err := checkName(c.GlobalString("identity"))
	if err != nil {
		return err
	}

	description, err := checkDescription(c.String("description"))
	if err != nil {
		return err
	}

	privateKey, err := checkPrivateKey(c.String("privateKey"), m.testnet)
	if err != nil {
		return err
	}

	password := c.GlobalString("password")
	if password == "" {
		password, err = promptNewPassword()
		if err != nil {
			return err
		}
	}

	err = m.config.AddIdentity(name, description, privateKey, password)
	if err != nil {
		return err
	}

	if m.config.DefaultIdentity == "" {
		m.config.DefaultIdentity = name
	}

	m.save = true
	return nil
}

func runGenerate(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	privateKey, err := signer.NewPrivateKey(m.testnet)
	if err != nil {
		return err
	}

	printJson(m.w, "", map[string]string{
		"signer":     privateKey.Signer().String(),
		"privateKey": privateKey.String(),
	})
	return nil
}
