// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 Wrb Works
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io/ioutil"
	"os"

	"github.com/urfave/cli"

	"github.com/wrb-works/wrbpod/slicerecord"
)

func runGetSlice(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	appName, err := checkAppName(c.String("app"))
	if nil != err {
		return err
	}
	appSlot := c.Uint64("slot")
	sliceID := slicerecord.IDFromUint64(c.Uint64("slice"))

	pod, closer, err := openSession(c, m)
	if nil != err {
		return err
	}
	defer closer()

	version, slotSigner, err := pod.FetchChunk(appName, appSlot)
	if nil != err {
		return err
	}

	slice, err := pod.GetSlice(appName, appSlot, sliceID)
	if nil != err {
		return err
	}

	if outputFile := c.String("file"); "" != outputFile {
		if err := ioutil.WriteFile(outputFile, slice, 0600); nil != err {
			return err
		}
		if m.verbose {
			fmt.Fprintf(m.e, "wrote: %d bytes to: %s\n", len(slice), outputFile)
		}
		return nil
	}

	result := map[string]interface{}{
		"app":     appName,
		"slot":    appSlot,
		"slice":   sliceID.String(),
		"version": version,
		"data":    slice,
	}
	if nil != slotSigner {
		result["signer"] = slotSigner.String()
	}
	printJson(m.w, "", result)
	return nil
}

func runPutSlice(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	appName, err := checkAppName(c.String("app"))
	if nil != err {
		return err
	}
	appSlot := c.Uint64("slot")
	sliceID := slicerecord.IDFromUint64(c.Uint64("slice"))

	var slice []byte
	if inputFile := c.String("file"); "" != inputFile {
		slice, err = ioutil.ReadFile(inputFile)
		if nil != err {
			return err
		}
	} else if data := c.String("data"); "" != data {
		slice = []byte(data)
	} else {
		slice, err = ioutil.ReadAll(os.Stdin)
		if nil != err {
			return err
		}
	}

	pod, closer, err := openSession(c, m)
	if nil != err {
		return err
	}
	defer closer()

	// merge with the stored slices rather than overwriting them
	if _, _, err := pod.FetchChunk(appName, appSlot); nil != err {
		return err
	}

	ok, err := pod.PutSlice(appName, appSlot, sliceID, slice)
	if nil != err {
		return err
	}
	if !ok {
		return fmt.Errorf("slice: %d bytes does not fit in slot: %d", len(slice), appSlot)
	}

	if err := pod.SyncSlot(appName, appSlot); nil != err {
		return err
	}

	printJson(m.w, "", map[string]interface{}{
		"app":    appName,
		"slot":   appSlot,
		"slice":  sliceID.String(),
		"stored": len(slice),
	})
	return nil
}

func runSync(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	appName := c.String("app")

	pod, closer, err := openSession(c, m)
	if nil != err {
		return err
	}
	defer closer()

	if "" == appName {
		if err := pod.Sync(); nil != err {
			return err
		}
	} else {
		if err := pod.SyncSlot(appName, c.Uint64("slot")); nil != err {
			return err
		}
	}

	printJson(m.w, "", map[string]interface{}{
		"synced": true,
	})
	return nil
}
