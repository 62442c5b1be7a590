// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 Wrb Works
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
wrbpod-cli

manage a wrbpod held on a remote chunk service: format the
superblock, allocate and free app slots, read and write slices and
inspect the allocation table.

signing keys are held encrypted in a JSON configuration file; each
identity is locked with its own password using argon2 key derivation
and NaCl secretbox.
*/
package main
