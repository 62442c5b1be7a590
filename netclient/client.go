// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 Wrb Works
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package netclient

import (
	"encoding/json"
	"time"

	"github.com/wrb-works/wrbpod/chunk"
	"github.com/wrb-works/wrbpod/signer"
)

// Client - chunk service access over one CurveZMQ connection
type Client struct {
	conn *connection
}

// New - connect to a chunk service
//
// all keys are raw 32 byte CURVE keys, see ReadPublicKeyFile and
// ReadPrivateKeyFile for the on-disk format
func New(address string, serverPublicKey []byte, publicKey []byte, privateKey []byte, timeout time.Duration) (*Client, error) {
	conn, err := newConnection(address, serverPublicKey, publicKey, privateKey, timeout)
	if nil != err {
		return nil, err
	}
	return &Client{conn: conn}, nil
}

// Close - shut the connection down
func (client *Client) Close() {
	client.conn.close()
}

// Host - the address this client talks to
func (client *Client) Host() string {
	return client.conn.address
}

func (client *Client) call(command string, request interface{}, response interface{}) error {
	payload, err := json.Marshal(request)
	if nil != err {
		return err
	}
	reply, err := client.conn.exchange(command, payload)
	if nil != err {
		return err
	}
	return json.Unmarshal(reply, response)
}

// ListChunks - current metadata for every slot
func (client *Client) ListChunks() ([]chunk.SlotMetadata, error) {
	var listing []chunk.SlotMetadata
	if err := client.call("L", struct{}{}, &listing); nil != err {
		return nil, err
	}
	return listing, nil
}

// GetChunks - chunk bytes at exact versions, nil for misses
func (client *Client) GetChunks(requests []chunk.SlotVersion) ([][]byte, error) {
	var data [][]byte
	if err := client.call("G", requests, &data); nil != err {
		return nil, err
	}
	return data, nil
}

// GetLatestChunks - chunk bytes at whatever version is stored
func (client *Client) GetLatestChunks(slotIDs []uint32) ([][]byte, error) {
	var data [][]byte
	if err := client.call("A", slotIDs, &data); nil != err {
		return nil, err
	}
	return data, nil
}

// PutChunk - submit one signed chunk
func (client *Client) PutChunk(data *chunk.Data) (*chunk.Ack, error) {
	var ack chunk.Ack
	if err := client.call("P", data, &ack); nil != err {
		return nil, err
	}
	return &ack, nil
}

// GetSigners - the service signer roster
func (client *Client) GetSigners() ([]*signer.Signer, error) {
	var roster []*signer.Signer
	if err := client.call("S", struct{}{}, &roster); nil != err {
		return nil, err
	}
	return roster, nil
}

// FindReplicas - addresses holding a copy of the slot array
func (client *Client) FindReplicas() ([]string, error) {
	var replicas []string
	if err := client.call("R", struct{}{}, &replicas); nil != err {
		return nil, err
	}
	return replicas, nil
}
