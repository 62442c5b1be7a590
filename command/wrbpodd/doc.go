// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 Wrb Works
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
wrbpodd

the chunk service daemon: a fixed array of versioned slots backed by
a LevelDB database and served over an encrypted CurveZMQ socket.

clients write whole chunks tagged with a slot and version; the daemon
refuses stale versions, echoing the authoritative slot metadata so
the writer can retry, and refuses chunks whose signature does not
verify against the configured roster entry for the slot.
*/
package main
