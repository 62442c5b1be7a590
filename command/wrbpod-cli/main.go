// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 Wrb Works
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli"

	"github.com/wrb-works/wrbpod/command/wrbpod-cli/configuration"
)

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

func main() {

	app := cli.NewApp()
	app.Name = "wrbpod-cli"
	app.Usage = "manage a wrbpod on a chunk service"
	app.Version = version
	app.HideVersion = true

	app.Writer = os.Stdout
	app.ErrWriter = os.Stderr

	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "verbose, v",
			Usage: " verbose result",
		},
		cli.BoolFlag{
			Name:  "testnet, t",
			Usage: " use test network signing keys",
		},
		cli.StringFlag{
			Name:  "config, f",
			Value: "",
			Usage: " configuration `FILE` [default: ~/.config/wrbpod-cli/wrbpod-cli.json]",
		},
		cli.StringFlag{
			Name:  "identity, i",
			Value: "",
			Usage: " identity `NAME` [default identity]",
		},
		cli.StringFlag{
			Name:  "password, p",
			Value: "",
			Usage: " identity `PASSWORD`",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:      "setup",
			Usage:     "initialise wrbpod-cli configuration",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "connect, c",
					Value: "",
					Usage: "*chunk service host and port, `HOST:PORT`",
				},
				cli.StringFlag{
					Name:  "replica, r",
					Value: "",
					Usage: " replica service `HOST:PORT` [default: same as connect]",
				},
				cli.StringFlag{
					Name:  "server-key, s",
					Value: "",
					Usage: "*service CURVE public key, tagged hex or `FILE`",
				},
				cli.StringFlag{
					Name:  "description, d",
					Value: "",
					Usage: "*identity description `STRING`",
				},
				cli.StringFlag{
					Name:  "privateKey, k",
					Value: "",
					Usage: " using existing signing `KEY`",
				},
			},
			Action: runSetup,
		},
		{
			Name:      "add",
			Usage:     "add a new identity to config file",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "description, d",
					Value: "",
					Usage: "*identity description `STRING`",
				},
				cli.StringFlag{
					Name:  "privateKey, k",
					Value: "",
					Usage: " using existing signing `KEY`",
				},
			},
			Action: runAdd,
		},
		{
			Name:   "generate",
			Usage:  "generate a signing key pair, will not store in config file",
			Action: runGenerate,
		},
		{
			Name:   "format",
			Usage:  "create an empty wrbpod, destroying any allocation table",
			Action: runFormat,
		},
		{
			Name:      "allocate",
			Usage:     "grow an app's slot allocation",
			ArgsUsage: "\n   (* = required, + = select one)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "app, a",
					Value: "",
					Usage: "*app `NAME`",
				},
				cli.Uint64Flag{
					Name:  "slots, n",
					Value: 1,
					Usage: " number of slots to add `COUNT`",
				},
				cli.StringFlag{
					Name:  "code-file, c",
					Value: "",
					Usage: "+app code `FILE` to hash",
				},
				cli.StringFlag{
					Name:  "code-hash, x",
					Value: "",
					Usage: "+app code hash, 40 character `HEX`",
				},
			},
			Action: runAllocate,
		},
		{
			Name:      "free",
			Usage:     "drop an app's slot allocation",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "app, a",
					Value: "",
					Usage: "*app `NAME`",
				},
			},
			Action: runFree,
		},
		{
			Name:   "info",
			Usage:  "display the superblock allocation table",
			Action: runInfo,
		},
		{
			Name:      "get-slice",
			Usage:     "fetch one slice from an app slot",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "app, a",
					Value: "",
					Usage: "*app `NAME`",
				},
				cli.Uint64Flag{
					Name:  "slot, s",
					Value: 0,
					Usage: " app relative slot `NUMBER`",
				},
				cli.Uint64Flag{
					Name:  "slice, n",
					Value: 0,
					Usage: " slice `ID`",
				},
				cli.StringFlag{
					Name:  "file, o",
					Value: "",
					Usage: " write slice bytes to `FILE` instead of JSON",
				},
			},
			Action: runGetSlice,
		},
		{
			Name:      "put-slice",
			Usage:     "store one slice into an app slot",
			ArgsUsage: "\n   (* = required, + = select one; stdin when neither)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "app, a",
					Value: "",
					Usage: "*app `NAME`",
				},
				cli.Uint64Flag{
					Name:  "slot, s",
					Value: 0,
					Usage: " app relative slot `NUMBER`",
				},
				cli.Uint64Flag{
					Name:  "slice, n",
					Value: 0,
					Usage: " slice `ID`",
				},
				cli.StringFlag{
					Name:  "file, o",
					Value: "",
					Usage: "+read slice bytes from `FILE`",
				},
				cli.StringFlag{
					Name:  "data, d",
					Value: "",
					Usage: "+slice bytes as a `STRING`",
				},
			},
			Action: runPutSlice,
		},
		{
			Name:      "sync",
			Usage:     "store dirty slots on the chunk service",
			ArgsUsage: "\n   (all apps when no flags given)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "app, a",
					Value: "",
					Usage: " app `NAME`",
				},
				cli.Uint64Flag{
					Name:  "slot, s",
					Value: 0,
					Usage: " app relative slot `NUMBER`",
				},
			},
			Action: runSync,
		},
		{
			Name:  "version",
			Usage: "display wrbpod-cli version",
			Action: func(c *cli.Context) error {
				fmt.Fprintf(c.App.Writer, "%s\n", version)
				return nil
			},
		},
	}

	app.Before = func(c *cli.Context) error {

		m := &metadata{
			file:    c.GlobalString("config"),
			testnet: c.GlobalBool("testnet"),
			verbose: c.GlobalBool("verbose"),
			e:       app.ErrWriter,
			w:       app.Writer,
		}

		if "" == m.file {
			home, err := os.UserHomeDir()
			if nil != err {
				return err
			}
			m.file = filepath.Join(home, ".config", "wrbpod-cli", "wrbpod-cli.json")
		}
		app.Metadata["config"] = m

		// setup and generate run without an existing configuration
		command := c.Args().Get(0)
		if "setup" == command || "generate" == command || "version" == command || "help" == command || "" == command {
			return nil
		}

		config, err := configuration.Load(m.file)
		if nil != err {
			return err
		}
		m.config = config
		m.testnet = config.TestNet
		return nil
	}

	app.After = func(c *cli.Context) error {
		m := c.App.Metadata["config"].(*metadata)
		if m.save {
			return configuration.Save(m.file, m.config)
		}
		return nil
	}

	app.Metadata = map[string]interface{}{}

	err := app.Run(os.Args)
	if nil != err {
		fmt.Fprintf(os.Stderr, "terminated with error: %s\n", err)
		os.Exit(1)
	}
}
