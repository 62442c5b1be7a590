// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 Wrb Works
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package localstore - a chunk service backed by a LevelDB database
//
// this is the storage side of the chunk protocol: a fixed array of
// versioned slots, each holding at most one signed chunk.  the store
// enforces the same acceptance rules a remote service would: writes
// to unknown slots are refused outright, writes at a stale version
// are refused with the authoritative slot metadata echoed back, and
// writes whose signature does not verify against the roster entry
// for the slot are refused permanently.
//
// the store implements chunk.Client so a daemon can serve it over
// the network and tests can drive a session against it directly.
package localstore
