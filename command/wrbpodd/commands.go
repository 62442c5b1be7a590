// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 Wrb Works
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/bitmark-inc/exitwithstatus"

	"github.com/wrb-works/wrbpod/netclient"
)

// setup commands that run before the configuration is loaded
func processSetupCommand(program string, arguments []string) bool {

	command := arguments[0]

	switch command {

	case "gen-identity":
		publicKeyFileName := defaultPublicKeyFile
		privateKeyFileName := defaultPrivateKeyFile
		if len(arguments) >= 3 {
			publicKeyFileName = arguments[1]
			privateKeyFileName = arguments[2]
		}
		err := netclient.MakeKeyPair(publicKeyFileName, privateKeyFileName)
		if nil != err {
			exitwithstatus.Message("%s: cannot generate keypair: %q and: %q  error: %s", program, publicKeyFileName, privateKeyFileName, err)
		}
		fmt.Printf("generated public:  %s\n", publicKeyFileName)
		fmt.Printf("generated private: %s\n", privateKeyFileName)

	case "version":
		fmt.Println(version)

	case "help", "h", "-h", "--help":
		fmt.Printf("usage: %s [--help] [--verbose] [--quiet] --config-file=FILE [[command|help] arguments...]\n", program)
		fmt.Printf("supported commands:\n\n")
		fmt.Printf("  help                               (h)       - display this message\n\n")
		fmt.Printf("  version                            (v)       - display version\n\n")
		fmt.Printf("  gen-identity [PUBLIC PRIVATE]                - create a new CURVE identity\n")
		fmt.Printf("                                                 default files: %q and %q\n\n", defaultPublicKeyFile, defaultPrivateKeyFile)
		fmt.Printf("  start                                        - run the chunk service (default)\n\n")

	default:
		// not a setup command: continue to normal startup
		return false
	}

	// indicate processed a setup command
	return true
}
