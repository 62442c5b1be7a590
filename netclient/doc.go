// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 Wrb Works
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package netclient - chunk service access over CurveZMQ
//
// each request is a two frame ZeroMQ message: a one letter command
// followed by a JSON payload.  replies echo the command letter and
// carry a JSON payload, or use the letter E with an error message.
//
// commands:
//
//	L  list slot metadata
//	G  get chunks at exact versions
//	A  get chunks at latest versions
//	P  put one signed chunk
//	S  get the signer roster
//	R  find replica addresses
//
// all traffic runs over an encrypted CURVE connection; the server's
// public key must be known in advance.
package netclient
