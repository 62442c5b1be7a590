// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 Wrb Works
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chunk - data model of the replicated chunk service
//
// A chunk service stores a fixed number of slots.  Each slot holds at
// most one chunk: a size-bounded blob with a monotonically increasing
// version, a content hash and a signature binding slot id, version and
// hash together.  Slot 0 is reserved for the wrbpod superblock.
//
// This package defines the wire-level records and the Client contract;
// it knows nothing about slices or superblocks.
package chunk
