// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 Wrb Works
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package wrbpod - a session against one wrbpod
//
// A wrbpod packs the small records of many applications into the
// signed, versioned slots of a single replicated chunk service.  The
// session downloads and verifies the superblock at open, hands out
// slots to applications, caches fetched slot content as slice
// collections, and writes dirty state back with an optimistic
// concurrency retry loop.
//
// Two clients are held: the home client is trusted and only consulted
// for the signer roster; the replica client carries all chunk reads
// and writes.  Every network call blocks for the round trip; a
// session is owned by one caller and is not safe for concurrent use.
package wrbpod
