// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 Wrb Works
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package localstore

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/syndtr/goleveldb/leveldb"
	ldb_opt "github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/bitmark-inc/logger"

	"github.com/wrb-works/wrbpod/chunk"
	"github.com/wrb-works/wrbpod/fault"
	"github.com/wrb-works/wrbpod/signer"
)

// for database version
var versionKey = []byte{0x00, 'V', 'E', 'R', 'S', 'I', 'O', 'N'}

// stored service parameters
var configKey = []byte{0x00, 'C', 'O', 'N', 'F', 'I', 'G'}

const currentDBVersion = 0x100

// per-slot rows are prefixed to leave room for future row kinds
const slotKeyPrefix = byte('C')

// Config - service parameters persisted alongside the slots
type Config struct {
	Host     string           `json:"host"`
	Slots    uint32           `json:"slots"`
	Signers  []*signer.Signer `json:"signers"`
	Replicas []string         `json:"replicas"`
}

// Store - one open slot database
type Store struct {
	sync.RWMutex
	log     *logger.L
	db      *leveldb.DB
	config  Config
	latency time.Duration
}

// Initialise - open or create the slot database
//
// the supplied configuration replaces any stored one, so a restart
// with a rotated roster takes effect immediately
func Initialise(directory string, config Config) (*Store, error) {
	if 0 == config.Slots || config.Slots > chunk.MaximumSlots {
		return nil, fault.ErrInvalidSlot
	}
	if uint32(len(config.Signers)) < config.Slots {
		return nil, fault.ErrNoSignerForSlot
	}

	db, err := getDB(directory)
	if nil != err {
		return nil, err
	}

	store := &Store{
		log:    logger.New("localstore"),
		db:     db,
		config: config,
	}

	packed, err := json.Marshal(config)
	if nil != err {
		db.Close()
		return nil, err
	}
	if err := db.Put(configKey, packed, nil); nil != err {
		db.Close()
		return nil, err
	}

	store.log.Infof("open: %s  slots: %d  signers: %d", directory, config.Slots, len(config.Signers))
	return store, nil
}

// open the database, tagging an empty one with the current version
// and refusing a downgrade
func getDB(directory string) (*leveldb.DB, error) {
	opt := &ldb_opt.Options{
		ErrorIfExist:   false,
		ErrorIfMissing: false,
	}

	db, err := leveldb.OpenFile(directory, opt)
	if nil != err {
		return nil, err
	}

	versionValue, err := db.Get(versionKey, nil)
	if leveldb.ErrNotFound == err {
		version := make([]byte, 4)
		binary.BigEndian.PutUint32(version, currentDBVersion)
		if err := db.Put(versionKey, version, nil); nil != err {
			db.Close()
			return nil, err
		}
		return db, nil
	} else if nil != err {
		db.Close()
		return nil, err
	}

	if 4 != len(versionValue) {
		db.Close()
		return nil, fmt.Errorf("incompatible database version length: expected: %d  actual: %d", 4, len(versionValue))
	}
	version := binary.BigEndian.Uint32(versionValue)
	if version > currentDBVersion {
		db.Close()
		return nil, fmt.Errorf("database version: %d > current version: %d", version, currentDBVersion)
	}
	return db, nil
}

// Finalise - close the database
func (store *Store) Finalise() {
	store.Lock()
	defer store.Unlock()
	if nil != store.db {
		store.db.Close()
		store.db = nil
	}
}

// SetLatency - add a fixed delay to every operation
//
// used to exercise client timeout and pacing behaviour in tests
func (store *Store) SetLatency(latency time.Duration) {
	store.Lock()
	store.latency = latency
	store.Unlock()
}

func (store *Store) delay() {
	if 0 != store.latency {
		time.Sleep(store.latency)
	}
}

func slotKey(slotID uint32) []byte {
	key := make([]byte, 5)
	key[0] = slotKeyPrefix
	binary.BigEndian.PutUint32(key[1:], slotID)
	return key
}

// read one stored chunk, nil when the slot was never written
func (store *Store) readSlot(slotID uint32) (*chunk.Data, error) {
	row, err := store.db.Get(slotKey(slotID), nil)
	if leveldb.ErrNotFound == err {
		return nil, nil
	} else if nil != err {
		return nil, err
	}
	data := &chunk.Data{}
	if err := json.Unmarshal(row, data); nil != err {
		return nil, err
	}
	return data, nil
}

// Host - the advertised service address
func (store *Store) Host() string {
	return store.config.Host
}

// ListChunks - current metadata for every slot
//
// slots never written report the empty sentinel: version zero and an
// all-zero data hash
func (store *Store) ListChunks() ([]chunk.SlotMetadata, error) {
	store.RLock()
	defer store.RUnlock()
	store.delay()

	listing := make([]chunk.SlotMetadata, store.config.Slots)
	for slotID := uint32(0); slotID < store.config.Slots; slotID += 1 {
		stored, err := store.readSlot(slotID)
		if nil != err {
			return nil, err
		}
		if nil == stored {
			listing[slotID] = chunk.NewUnsignedMetadata(slotID)
		} else {
			listing[slotID] = stored.Metadata()
		}
	}
	return listing, nil
}

// GetChunks - chunk bytes at exact versions, nil for misses
func (store *Store) GetChunks(requests []chunk.SlotVersion) ([][]byte, error) {
	store.RLock()
	defer store.RUnlock()
	store.delay()

	result := make([][]byte, len(requests))
	for i, request := range requests {
		stored, err := store.readSlot(request.SlotID)
		if nil != err {
			return nil, err
		}
		if nil != stored && stored.SlotVersion == request.SlotVersion {
			result[i] = stored.Data
		}
	}
	return result, nil
}

// GetLatestChunks - chunk bytes at whatever version is stored
func (store *Store) GetLatestChunks(slotIDs []uint32) ([][]byte, error) {
	store.RLock()
	defer store.RUnlock()
	store.delay()

	result := make([][]byte, len(slotIDs))
	for i, slotID := range slotIDs {
		stored, err := store.readSlot(slotID)
		if nil != err {
			return nil, err
		}
		if nil != stored {
			result[i] = stored.Data
		}
	}
	return result, nil
}

// PutChunk - apply the acceptance rules and store an accepted write
func (store *Store) PutChunk(data *chunk.Data) (*chunk.Ack, error) {
	store.Lock()
	defer store.Unlock()
	store.delay()

	if data.SlotID >= store.config.Slots {
		store.log.Warnf("put refused, no such slot: %d", data.SlotID)
		return &chunk.Ack{
			Accepted: false,
			Reason:   fmt.Sprintf("no such slot: %d", data.SlotID),
			Code:     1,
		}, nil
	}
	if uint64(len(data.Data)) > chunk.MaximumSize {
		return &chunk.Ack{
			Accepted: false,
			Reason:   fmt.Sprintf("chunk too large: %d", len(data.Data)),
			Code:     1,
		}, nil
	}

	current := chunk.NewUnsignedMetadata(data.SlotID)
	stored, err := store.readSlot(data.SlotID)
	if nil != err {
		return nil, err
	}
	if nil != stored {
		current = stored.Metadata()
	}
	if data.SlotVersion <= current.SlotVersion {
		store.log.Infof("put refused, slot: %d  version: %d  stored: %d", data.SlotID, data.SlotVersion, current.SlotVersion)
		return &chunk.Ack{
			Accepted: false,
			Reason:   "stale version",
			Code:     0,
			Metadata: &current,
		}, nil
	}

	digest := chunk.AuthDigest(data.SlotID, data.SlotVersion, data.Hash())
	slotSigner := store.config.Signers[data.SlotID]
	if err := slotSigner.CheckSignature(digest, data.Signature); nil != err {
		store.log.Warnf("put refused, slot: %d  bad signature: %s", data.SlotID, err)
		return &chunk.Ack{
			Accepted: false,
			Reason:   "bad signature",
			Code:     2,
		}, nil
	}

	row, err := json.Marshal(data)
	if nil != err {
		return nil, err
	}
	if err := store.db.Put(slotKey(data.SlotID), row, nil); nil != err {
		return nil, err
	}
	store.log.Debugf("put slot: %d  version: %d  bytes: %d", data.SlotID, data.SlotVersion, len(data.Data))
	return &chunk.Ack{Accepted: true}, nil
}

// GetSigners - the roster, one entry per slot
func (store *Store) GetSigners() ([]*signer.Signer, error) {
	store.RLock()
	defer store.RUnlock()
	store.delay()

	roster := make([]*signer.Signer, len(store.config.Signers))
	copy(roster, store.config.Signers)
	return roster, nil
}

// FindReplicas - addresses holding a copy of this slot array
func (store *Store) FindReplicas() ([]string, error) {
	store.RLock()
	defer store.RUnlock()
	store.delay()

	if 0 == len(store.config.Replicas) {
		return []string{store.config.Host}, nil
	}
	replicas := make([]string, len(store.config.Replicas))
	copy(replicas, store.config.Replicas)
	return replicas, nil
}
