// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"cmp"
	"net"
	"slices"
	"sync"
	"time"

	"github.com/bureau-foundation/teller/lib/clock"
	"github.com/bureau-foundation/teller/lib/dispatch"
)

// ConnState is the lifecycle state of a server connection.
type ConnState int

const (
	// StateOpen is a connection that has not completed a request.
	StateOpen ConnState = iota
	StateAnonymous
	StateUser
	StateAdmin
	StateClosed
)

func (s ConnState) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateAnonymous:
		return "anonymous"
	case StateUser:
		return "user"
	case StateAdmin:
		return "admin"
	case StateClosed:
		return "closed"
	}
	return "invalid"
}

func stateFor(session dispatch.Session) ConnState {
	switch session.State {
	case dispatch.AuthenticatedUser:
		return StateUser
	case dispatch.AuthenticatedAdmin:
		return StateAdmin
	}
	return StateAnonymous
}

// ConnectionInfo describes one live connection.
type ConnectionInfo struct {
	ID       uint64
	Remote   string
	State    ConnState
	Account  string
	OpenedAt time.Time
	Requests int
}

type trackedConnection struct {
	info ConnectionInfo
	conn net.Conn
}

// registry records live connections. After shutdown it refuses new
// ones so a connection accepted during shutdown is closed at once.
type registry struct {
	clock clock.Clock

	mu      sync.Mutex
	nextID  uint64
	closing bool
	tracked map[uint64]*trackedConnection
}

func newRegistry(clk clock.Clock) *registry {
	return &registry{clock: clk, tracked: make(map[uint64]*trackedConnection)}
}

// open registers conn and returns its ID. ok is false once shutdown
// has begun.
func (r *registry) open(conn net.Conn) (id uint64, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closing {
		return 0, false
	}
	r.nextID++
	r.tracked[r.nextID] = &trackedConnection{
		info: ConnectionInfo{
			ID:       r.nextID,
			Remote:   remoteAddress(conn),
			State:    StateOpen,
			OpenedAt: r.clock.Now(),
		},
		conn: conn,
	}
	return r.nextID, true
}

// record notes a completed request and the session it left behind.
func (r *registry) record(id uint64, session dispatch.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry, ok := r.tracked[id]; ok {
		entry.info.State = stateFor(session)
		entry.info.Account = string(session.Account)
		entry.info.Requests++
	}
}

// close removes a connection and returns its final record.
func (r *registry) close(id uint64) ConnectionInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.tracked[id]
	if !ok {
		return ConnectionInfo{ID: id, State: StateClosed}
	}
	delete(r.tracked, id)
	entry.info.State = StateClosed
	return entry.info
}

// shutdown refuses further connections and closes every live one.
func (r *registry) shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closing = true
	for _, entry := range r.tracked {
		entry.conn.Close()
	}
}

func (r *registry) list() []ConnectionInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	infos := make([]ConnectionInfo, 0, len(r.tracked))
	for _, entry := range r.tracked {
		infos = append(infos, entry.info)
	}
	slices.SortFunc(infos, func(a, b ConnectionInfo) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return infos
}

func remoteAddress(conn net.Conn) string {
	address := conn.RemoteAddr()
	if address == nil || address.String() == "" {
		return "local"
	}
	return address.String()
}
