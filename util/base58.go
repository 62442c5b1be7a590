// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 Wrb Works
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util

import (
	"github.com/mr-tron/base58"
)

// ToBase58 - convert a byte slice to its Base58 text form
func ToBase58(buffer []byte) string {
	return base58.Encode(buffer)
}

// FromBase58 - convert Base58 text to a byte slice
//
// returns an empty slice if the text is not valid Base58
func FromBase58(s string) []byte {
	buffer, err := base58.Decode(s)
	if nil != err {
		return []byte{}
	}
	return buffer
}
