// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 Wrb Works
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

// error base
type GenericError string

// to allow for different classes of errors
type ExistsError GenericError
type InvalidError GenericError
type LengthError GenericError
type NotFoundError GenericError
type ProcessError GenericError

// common errors - keep in alphabetic order
var (
	ErrAllocationTooLarge         = LengthError("allocation too large")
	ErrAlreadyInitialised         = ExistsError("already initialised")
	ErrCannotDecodePrivateKey     = InvalidError("cannot decode private key")
	ErrCannotDecodeSigner         = InvalidError("cannot decode signer")
	ErrChecksumMismatch           = InvalidError("checksum mismatch")
	ErrChunkDataHashMismatch      = InvalidError("chunk data hash mismatch")
	ErrChunkNotFound              = NotFoundError("chunk not found")
	ErrChunkRejected              = ProcessError("chunk rejected")
	ErrChunkTooLarge              = LengthError("chunk too large")
	ErrConnectionFailed           = ProcessError("connection failed")
	ErrCryptoFailed               = ProcessError("crypto failed")
	ErrDuplicateSliceID           = InvalidError("duplicate slice id")
	ErrIdentityNameAlreadyExists  = ExistsError("identity name already exists")
	ErrIdentityNameNotFound       = NotFoundError("identity name not found")
	ErrInvalidAppName             = InvalidError("app name is not ascii")
	ErrInvalidChunkSignature      = InvalidError("invalid chunk signature")
	ErrInvalidCount               = InvalidError("invalid byte count")
	ErrInvalidKeyLength           = InvalidError("invalid key length")
	ErrInvalidKeyType             = InvalidError("invalid key type")
	ErrInvalidLoggerChannel       = InvalidError("invalid logger channel")
	ErrInvalidPrivateKeyFile      = InvalidError("invalid private key file")
	ErrInvalidPublicKeyFile       = InvalidError("invalid public key file")
	ErrInvalidReply               = InvalidError("invalid reply")
	ErrInvalidSignature           = InvalidError("invalid signature")
	ErrInvalidSliceIndex          = InvalidError("invalid slice index")
	ErrInvalidSlot                = InvalidError("invalid slot")
	ErrInvalidSuperblockSignature = InvalidError("invalid superblock signature")
	ErrInvalidVersion             = InvalidError("invalid version")
	ErrKeyFileAlreadyExists       = ExistsError("key file already exists")
	ErrNoReply                    = ProcessError("no reply")
	ErrNoSignerForSlot            = NotFoundError("no signer for slot")
	ErrNoSuperblock               = NotFoundError("superblock not found")
	ErrNotInitialised             = ProcessError("not initialised")
	ErrNotPrivateKey              = InvalidError("not private key")
	ErrNotPublicKey               = InvalidError("not public key")
	ErrPasswordLength             = InvalidError("password length is invalid")
	ErrPasswordMismatch           = InvalidError("password mismatch")
	ErrRateLimiting               = ProcessError("rate limiting")
	ErrRetriesExceeded            = ProcessError("retries exceeded")
	ErrSlotNotFetched             = NotFoundError("slot not fetched")
	ErrSlotNotMapped              = NotFoundError("slot not mapped to app")
	ErrSlotOutOfRange             = LengthError("slot out of range")
	ErrStoreAlreadyExists         = ExistsError("store already exists")
	ErrStoreNotFound              = NotFoundError("store not found")
	ErrTruncatedChunk             = InvalidError("truncated chunk")
	ErrUnmarshalTextFail          = InvalidError("unmarshal text failed")
	ErrWrongNetworkForPrivateKey  = InvalidError("wrong network for private key")
	ErrWrongPassword              = InvalidError("wrong password")
)

// the error interface base method
func (e GenericError) Error() string { return string(e) }

// the error interface methods
func (e ExistsError) Error() string   { return string(e) }
func (e InvalidError) Error() string  { return string(e) }
func (e LengthError) Error() string   { return string(e) }
func (e NotFoundError) Error() string { return string(e) }
func (e ProcessError) Error() string  { return string(e) }

// determine the class of an error
func IsErrExists(e error) bool   { _, ok := e.(ExistsError); return ok }
func IsErrInvalid(e error) bool  { _, ok := e.(InvalidError); return ok }
func IsErrLength(e error) bool   { _, ok := e.(LengthError); return ok }
func IsErrNotFound(e error) bool { _, ok := e.(NotFoundError); return ok }
func IsErrProcess(e error) bool  { _, ok := e.(ProcessError); return ok }
