// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 Wrb Works
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package netclient

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	zmq "github.com/pebbe/zmq4"

	"github.com/bitmark-inc/logger"

	"github.com/wrb-works/wrbpod/fault"
)

// connection state with the REQ socket
//
// REQ sockets are not safe for concurrent use so every exchange
// holds the lock for its full request/reply cycle
type connection struct {
	sync.Mutex
	log             *logger.L
	address         string
	serverPublicKey []byte
	publicKey       []byte
	privateKey      []byte
	timeout         time.Duration
	socket          *zmq.Socket
}

func newConnection(address string, serverPublicKey []byte, publicKey []byte, privateKey []byte, timeout time.Duration) (*connection, error) {
	if publicLength != len(serverPublicKey) || publicLength != len(publicKey) || privateLength != len(privateKey) {
		return nil, fault.ErrInvalidKeyLength
	}
	conn := &connection{
		log:             logger.New("netclient"),
		address:         address,
		serverPublicKey: serverPublicKey,
		publicKey:       publicKey,
		privateKey:      privateKey,
		timeout:         timeout,
	}
	if err := conn.open(); nil != err {
		return nil, err
	}
	return conn, nil
}

func (conn *connection) open() error {
	socket, err := zmq.NewSocket(zmq.REQ)
	if nil != err {
		return err
	}

	// ensure an incorrectly formatted sequence cannot wedge the
	// socket for ever
	err = socket.SetCurveServer(0)
	if nil != err {
		goto failure
	}
	err = socket.SetCurvePublickey(string(conn.publicKey))
	if nil != err {
		goto failure
	}
	err = socket.SetCurveSecretkey(string(conn.privateKey))
	if nil != err {
		goto failure
	}
	err = socket.SetCurveServerkey(string(conn.serverPublicKey))
	if nil != err {
		goto failure
	}

	err = socket.SetIdentity(randomIdentifier())
	if nil != err {
		goto failure
	}

	if conn.timeout > 0 {
		err = socket.SetSndtimeo(conn.timeout)
		if nil != err {
			goto failure
		}
		err = socket.SetRcvtimeo(conn.timeout)
		if nil != err {
			goto failure
		}
	}
	err = socket.SetLinger(0)
	if nil != err {
		goto failure
	}
	err = socket.SetReqCorrelate(1)
	if nil != err {
		goto failure
	}
	err = socket.SetReqRelaxed(1)
	if nil != err {
		goto failure
	}

	err = socket.Connect("tcp://" + conn.address)
	if nil != err {
		goto failure
	}

	conn.socket = socket
	return nil

failure:
	socket.Close()
	return err
}

func randomIdentifier() string {
	buffer := make([]byte, 16)
	_, _ = rand.Read(buffer)
	return hex.EncodeToString(buffer)
}

// exchange - one request/reply round trip
func (conn *connection) exchange(command string, payload []byte) ([]byte, error) {
	conn.Lock()
	defer conn.Unlock()

	if nil == conn.socket {
		return nil, fault.ErrConnectionFailed
	}

	if _, err := conn.socket.Send(command, zmq.SNDMORE); nil != err {
		return nil, err
	}
	if _, err := conn.socket.SendBytes(payload, 0); nil != err {
		return nil, err
	}

	reply, err := conn.socket.RecvMessageBytes(0)
	if nil != err {
		conn.log.Errorf("receive from: %s  error: %s", conn.address, err)
		return nil, fault.ErrNoReply
	}
	if 2 != len(reply) {
		return nil, fault.ErrInvalidReply
	}
	switch string(reply[0]) {
	case command:
		return reply[1], nil
	case "E":
		conn.log.Warnf("command: %q  server error: %q", command, reply[1])
		return nil, fault.ProcessError(string(reply[1]))
	default:
		return nil, fault.ErrInvalidReply
	}
}

func (conn *connection) close() {
	conn.Lock()
	defer conn.Unlock()
	if nil != conn.socket {
		conn.socket.Close()
		conn.socket = nil
	}
}
