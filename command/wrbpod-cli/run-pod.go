// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 Wrb Works
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io/ioutil"

	"github.com/urfave/cli"

	"github.com/wrb-works/wrbpod/superblock"
)

func runFormat(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	pod, closer, err := formatSession(c, m)
	if nil != err {
		return err
	}
	defer closer()

	if m.verbose {
		fmt.Fprintf(m.e, "formatted wrbpod at: %s\n", m.config.Connect)
	}
	printJson(m.w, "", map[string]interface{}{
		"formatted": true,
		"apps":      pod.Superblock().Names(),
	})
	return nil
}

func runAllocate(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	appName, err := checkAppName(c.String("app"))
	if nil != err {
		return err
	}

	count := c.Uint64("slots")
	if 0 == count {
		return fmt.Errorf("slots cannot be zero")
	}

	// hash a code file when given, otherwise expect an explicit hash
	var codeHash superblock.CodeHash
	if codeFile := c.String("code-file"); "" != codeFile {
		code, err := ioutil.ReadFile(codeFile)
		if nil != err {
			return err
		}
		codeHash = superblock.HashCode(code)
	} else {
		codeHash, err = checkCodeHash(c.String("code-hash"))
		if nil != err {
			return err
		}
	}

	pod, closer, err := openSession(c, m)
	if nil != err {
		return err
	}
	defer closer()

	ok, err := pod.AllocateSlots(appName, codeHash, count)
	if nil != err {
		return err
	}
	if !ok {
		return fmt.Errorf("no free slots for: %q count: %d", appName, count)
	}

	printJson(m.w, "", map[string]interface{}{
		"app":      appName,
		"codeHash": codeHash.String(),
		"slots":    pod.NumSlots(appName),
	})
	return nil
}

func runFree(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	appName, err := checkAppName(c.String("app"))
	if nil != err {
		return err
	}

	pod, closer, err := openSession(c, m)
	if nil != err {
		return err
	}
	defer closer()

	if err := pod.DeleteApp(appName); nil != err {
		return err
	}

	printJson(m.w, "", map[string]interface{}{
		"app":     appName,
		"deleted": true,
	})
	return nil
}

func runInfo(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	pod, closer, err := openSession(c, m)
	if nil != err {
		return err
	}
	defer closer()

	type appInfo struct {
		CodeHash string   `json:"codeHash"`
		Slots    []uint32 `json:"slots"`
	}

	apps := make(map[string]appInfo)
	for _, name := range pod.Superblock().Names() {
		state, ok := pod.Superblock().AppState(name)
		if !ok {
			continue
		}
		apps[name] = appInfo{
			CodeHash: state.CodeHash.String(),
			Slots:    state.Slots,
		}
	}

	printJson(m.w, "", map[string]interface{}{
		"connect": m.config.Connect,
		"apps":    apps,
	})
	return nil
}
