// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 Wrb Works
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"syscall"
	"time"

	zmq "github.com/pebbe/zmq4"

	"github.com/bitmark-inc/logger"

	"github.com/wrb-works/wrbpod/chunk"
	"github.com/wrb-works/wrbpod/localstore"
)

// poll period for the shutdown flag
const receiveTimeout = 500 * time.Millisecond

// chunk service over an encrypted REP socket
type server struct {
	log    *logger.L
	socket *zmq.Socket
	store  *localstore.Store
	stop   chan struct{}
	done   chan struct{}
}

func newServer(listen string, privateKey []byte, store *localstore.Store) (*server, error) {
	socket, err := zmq.NewSocket(zmq.REP)
	if nil != err {
		return nil, err
	}

	err = socket.SetCurveServer(1)
	if nil != err {
		goto failure
	}
	err = socket.SetCurveSecretkey(string(privateKey))
	if nil != err {
		goto failure
	}
	err = socket.SetLinger(0)
	if nil != err {
		goto failure
	}
	err = socket.SetRcvtimeo(receiveTimeout)
	if nil != err {
		goto failure
	}

	err = socket.Bind("tcp://" + listen)
	if nil != err {
		goto failure
	}

	return &server{
		log:    logger.New("server"),
		socket: socket,
		store:  store,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}, nil

failure:
	socket.Close()
	return nil, err
}

// Serve - answer requests until Shutdown is called
func (srv *server) Serve() {
	defer close(srv.done)
	defer srv.socket.Close()

	for {
		select {
		case <-srv.stop:
			return
		default:
		}

		request, err := srv.socket.RecvMessageBytes(0)
		if nil != err {
			if zmq.AsErrno(err) == zmq.Errno(syscall.EAGAIN) { // receive timeout
				continue
			}
			srv.log.Errorf("receive error: %s", err)
			continue
		}
		if 2 != len(request) {
			srv.replyError("malformed request")
			continue
		}

		command := string(request[0])
		payload, err := srv.dispatch(command, request[1])
		if nil != err {
			srv.log.Warnf("command: %q  error: %s", command, err)
			srv.replyError(err.Error())
			continue
		}
		if _, err := srv.socket.Send(command, zmq.SNDMORE); nil != err {
			srv.log.Errorf("send error: %s", err)
			continue
		}
		if _, err := srv.socket.SendBytes(payload, 0); nil != err {
			srv.log.Errorf("send error: %s", err)
		}
	}
}

// Shutdown - stop the serve loop and wait for it to finish
func (srv *server) Shutdown() {
	close(srv.stop)
	<-srv.done
}

func (srv *server) replyError(message string) {
	if _, err := srv.socket.Send("E", zmq.SNDMORE); nil != err {
		srv.log.Errorf("send error: %s", err)
		return
	}
	if _, err := srv.socket.Send(message, 0); nil != err {
		srv.log.Errorf("send error: %s", err)
	}
}

func (srv *server) dispatch(command string, payload []byte) ([]byte, error) {
	switch command {

	case "L":
		listing, err := srv.store.ListChunks()
		if nil != err {
			return nil, err
		}
		return json.Marshal(listing)

	case "G":
		var requests []chunk.SlotVersion
		if err := json.Unmarshal(payload, &requests); nil != err {
			return nil, err
		}
		data, err := srv.store.GetChunks(requests)
		if nil != err {
			return nil, err
		}
		return json.Marshal(data)

	case "A":
		var slotIDs []uint32
		if err := json.Unmarshal(payload, &slotIDs); nil != err {
			return nil, err
		}
		data, err := srv.store.GetLatestChunks(slotIDs)
		if nil != err {
			return nil, err
		}
		return json.Marshal(data)

	case "P":
		data := &chunk.Data{}
		if err := json.Unmarshal(payload, data); nil != err {
			return nil, err
		}
		ack, err := srv.store.PutChunk(data)
		if nil != err {
			return nil, err
		}
		return json.Marshal(ack)

	case "S":
		roster, err := srv.store.GetSigners()
		if nil != err {
			return nil, err
		}
		return json.Marshal(roster)

	case "R":
		replicas, err := srv.store.FindReplicas()
		if nil != err {
			return nil, err
		}
		return json.Marshal(replicas)

	default:
		return nil, errUnknownCommand(command)
	}
}

type errUnknownCommand string

func (e errUnknownCommand) Error() string {
	return "unknown command: " + string(e)
}
