// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 Wrb Works
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bitmark-inc/logger"

	"github.com/wrb-works/wrbpod/chunk"
	"github.com/wrb-works/wrbpod/configuration"
	"github.com/wrb-works/wrbpod/signer"
	"github.com/wrb-works/wrbpod/util"
)

// basic defaults (directories and files are relative to the "DataDirectory" from the configuration file)
const (
	defaultDataDirectory = "" // this will error; use "." for the same directory as the config file

	defaultPublicKeyFile  = "wrbpodd.public"
	defaultPrivateKeyFile = "wrbpodd.private"

	defaultLevelDBDirectory = "data"
	defaultDatabase         = "wrbpod.leveldb"

	defaultLogDirectory = "log"
	defaultLogFile      = "wrbpodd.log"
	defaultLogCount     = 10          //  number of log files retained
	defaultLogSize      = 1024 * 1024 // rotate when <logfile> exceeds this size
)

// to hold log levels
type LoglevelMap map[string]string

var defaultLogLevels = LoglevelMap{
	logger.DefaultTag: "critical",
}

type DatabaseType struct {
	Directory string `gluamapper:"directory" json:"directory"`
	Name      string `gluamapper:"name" json:"name"`
}

type ChunksType struct {
	Slots    uint32   `gluamapper:"slots" json:"slots"`
	Signers  []string `gluamapper:"signers" json:"signers"`
	Replicas []string `gluamapper:"replicas" json:"replicas"`
}

type Configuration struct {
	DataDirectory string `gluamapper:"data_directory" json:"data_directory"`
	PidFile       string `gluamapper:"pidfile" json:"pidfile"`

	Listen     string `gluamapper:"listen" json:"listen"`
	Announce   string `gluamapper:"announce" json:"announce"`
	PublicKey  string `gluamapper:"public_key" json:"public_key"`
	PrivateKey string `gluamapper:"private_key" json:"private_key"`

	Database DatabaseType         `gluamapper:"database" json:"database"`
	Chunks   ChunksType           `gluamapper:"chunks" json:"chunks"`
	Logging  logger.Configuration `gluamapper:"logging" json:"logging"`
}

// will read decode and verify the configuration
func getConfiguration(configurationFileName string) (*Configuration, error) {

	configurationFileName, err := filepath.Abs(filepath.Clean(configurationFileName))
	if nil != err {
		return nil, err
	}

	// absolute path to the main directory
	dataDirectory, _ := filepath.Split(configurationFileName)

	options := &Configuration{

		DataDirectory: defaultDataDirectory,
		PidFile:       "", // no PidFile by default

		Listen:     "127.0.0.1:2135",
		PublicKey:  defaultPublicKeyFile,
		PrivateKey: defaultPrivateKeyFile,

		Database: DatabaseType{
			Directory: defaultLevelDBDirectory,
			Name:      defaultDatabase,
		},

		Chunks: ChunksType{
			Slots: 64,
		},

		Logging: logger.Configuration{
			Directory: defaultLogDirectory,
			File:      defaultLogFile,
			Size:      defaultLogSize,
			Count:     defaultLogCount,
			Levels:    defaultLogLevels,
		},
	}

	if err := configuration.ParseConfigurationFile(configurationFileName, options); err != nil {
		return nil, err
	}

	// ensure absolute data directory
	if "" == options.DataDirectory || "~" == options.DataDirectory {
		return nil, fmt.Errorf("path: %q is not a valid directory", options.DataDirectory)
	} else if "." == options.DataDirectory {
		options.DataDirectory = dataDirectory // same directory as the configuration file
	} else {
		options.DataDirectory = filepath.Clean(options.DataDirectory)
	}

	// this directory must exist - i.e. must be created prior to running
	if fileInfo, err := os.Stat(options.DataDirectory); nil != err {
		return nil, err
	} else if !fileInfo.IsDir() {
		return nil, fmt.Errorf("path: %q is not a directory", options.DataDirectory)
	}

	// force all relevant items to be absolute paths
	// if not, assign them to the data directory
	mustBeAbsolute := []*string{
		&options.PublicKey,
		&options.PrivateKey,
		&options.Database.Directory,
		&options.Logging.Directory,
	}
	for _, f := range mustBeAbsolute {
		*f = util.EnsureAbsolute(options.DataDirectory, *f)
	}

	// optional absolute paths cannot be blank
	mustNotBeBlank := []*string{
		&options.Listen,
	}
	for _, f := range mustNotBeBlank {
		if "" == *f {
			return nil, fmt.Errorf("missing a mandatory configuration item")
		}
	}

	if 0 == options.Chunks.Slots || options.Chunks.Slots > chunk.MaximumSlots {
		return nil, fmt.Errorf("chunks.slots: %d is out of range", options.Chunks.Slots)
	}
	if uint32(len(options.Chunks.Signers)) < options.Chunks.Slots {
		return nil, fmt.Errorf("chunks.signers: %d entries cannot cover: %d slots", len(options.Chunks.Signers), options.Chunks.Slots)
	}

	// announce the listen address unless told otherwise
	if "" == options.Announce {
		options.Announce = options.Listen
	}

	// fail early on undecodable signers
	for i, signerBase58 := range options.Chunks.Signers {
		if _, err := signer.SignerFromBase58(signerBase58); nil != err {
			return nil, fmt.Errorf("chunks.signers[%d]: %q error: %s", i, signerBase58, err)
		}
	}

	return options, nil
}

// decode the configured roster
func rosterFromConfiguration(options *Configuration) ([]*signer.Signer, error) {
	roster := make([]*signer.Signer, len(options.Chunks.Signers))
	for i, signerBase58 := range options.Chunks.Signers {
		s, err := signer.SignerFromBase58(signerBase58)
		if nil != err {
			return nil, err
		}
		roster[i] = s
	}
	return roster, nil
}
