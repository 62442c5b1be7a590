// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 Wrb Works
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/urfave/cli"

	"github.com/bitmark-inc/logger"

	"github.com/wrb-works/wrbpod/chunk"
	"github.com/wrb-works/wrbpod/command/wrbpod-cli/configuration"
	"github.com/wrb-works/wrbpod/netclient"
	"github.com/wrb-works/wrbpod/signer"
	"github.com/wrb-works/wrbpod/wrbpod"
)

// request timeout on the chunk service connections
const connectionTimeout = 30 * time.Second

type metadata struct {
	file    string
	config  *configuration.Configuration
	save    bool
	testnet bool
	verbose bool
	e       io.Writer
	w       io.Writer
}

// the session packages log through the logger channels so a minimal
// configuration is required before any connection is opened
var loggerStarted = false

func startLogger() error {
	if loggerStarted {
		return nil
	}
	err := logger.Initialise(logger.Configuration{
		Directory: os.TempDir(),
		File:      "wrbpod-cli.log",
		Size:      1048576,
		Count:     2,
		Console:   false,
		Levels: map[string]string{
			logger.DefaultTag: "critical",
		},
	})
	if nil != err {
		return err
	}
	loggerStarted = true
	return nil
}

// identityPrivateKey - decrypt the identity selected by the global flags
func identityPrivateKey(c *cli.Context, m *metadata) (*signer.PrivateKey, error) {
	name := c.GlobalString("identity")
	if "" == name {
		name = m.config.DefaultIdentity
	}

	password := c.GlobalString("password")
	if "" == password {
		var err error
		password, err = promptPassword()
		if nil != err {
			return nil, err
		}
	}

	private, err := m.config.Private(password, name)
	if nil != err {
		return nil, err
	}
	return private.PrivateKey, nil
}

// connect both service connections forming a session
func connectClients(m *metadata) (*netclient.Client, *netclient.Client, error) {
	serverPublicKey, err := netclient.ReadPublicKey(m.config.ServerPublicKey)
	if nil != err {
		return nil, nil, err
	}
	clientPublicKey, err := netclient.ReadPublicKey(m.config.ClientPublic)
	if nil != err {
		return nil, nil, err
	}
	clientPrivateKey, err := netclient.ReadPrivateKey(m.config.ClientPrivate)
	if nil != err {
		return nil, nil, err
	}

	home, err := netclient.New(m.config.Connect, serverPublicKey, clientPublicKey, clientPrivateKey, connectionTimeout)
	if nil != err {
		return nil, nil, err
	}

	replicaConnect := m.config.ReplicaConnect
	if "" == replicaConnect || replicaConnect == m.config.Connect {
		return home, home, nil
	}

	replica, err := netclient.New(replicaConnect, serverPublicKey, clientPublicKey, clientPrivateKey, connectionTimeout)
	if nil != err {
		home.Close()
		return nil, nil, err
	}
	return home, replica, nil
}

// openSession - connect and attach to the wrbpod
func openSession(c *cli.Context, m *metadata) (*wrbpod.Wrbpod, func(), error) {
	return attachSession(c, m, wrbpod.Open)
}

// formatSession - connect and create a fresh wrbpod
func formatSession(c *cli.Context, m *metadata) (*wrbpod.Wrbpod, func(), error) {
	return attachSession(c, m, wrbpod.Format)
}

func attachSession(c *cli.Context, m *metadata, attach func(chunk.Client, chunk.Client, *signer.PrivateKey) (*wrbpod.Wrbpod, error)) (*wrbpod.Wrbpod, func(), error) {
	if err := startLogger(); nil != err {
		return nil, nil, err
	}

	privateKey, err := identityPrivateKey(c, m)
	if nil != err {
		return nil, nil, err
	}

	home, replica, err := connectClients(m)
	if nil != err {
		return nil, nil, err
	}
	closer := func() {
		if replica != home {
			replica.Close()
		}
		home.Close()
	}

	pod, err := attach(home, replica, privateKey)
	if nil != err {
		closer()
		return nil, nil, err
	}
	return pod, closer, nil
}

// printJson - output an indented JSON block
func printJson(handle io.Writer, title string, message interface{}) {
	b, err := json.MarshalIndent(message, "", "  ")
	if nil != err {
		fmt.Fprintf(handle, "json error: %s\n", err)
		return
	}

	if "" == title {
		fmt.Fprintf(handle, "%s\n", b)
	} else {
		fmt.Fprintf(handle, "%s:\n%s\n", title, b)
	}
}
