/*
Copyright (C) 2026  SpinelDB Contributors

	This program is free software: you can redistribute it and/or modify
	it under the terms of the GNU General Public License as published by
	the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.

	This program is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU General Public License for more details.

	You should have received a copy of the GNU General Public License
	along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/
package dispatch

import (
	"github.com/spineldb/spineldb/storage"
	"github.com/spineldb/spineldb/txn"
)

// SlotChecker is implemented by the cluster package. In single-node mode a
// no-op implementation always returns ok=true.
type SlotChecker interface {
	// CheckSlots verifies every key hashes to a slot this node currently
	// owns. It returns a redirection error (MOVED/ASK/CROSSSLOT) otherwise.
	CheckSlots(keys []string) error
}

// EventPublisher is implemented by the eventbus package; the dispatcher
// publishes one event per write command so AOF/replication/keyspace
// notifications fan out without the dispatcher importing any of them.
type EventPublisher interface {
	Publish(dbIndex int, args []string)
}

// Authorizer is implemented by the acl package.
type Authorizer interface {
	// Check returns a NOPERM/NOAUTH CommandError, or nil if allowed.
	Check(user string, cmd *Command, keys []string) error
}

// ExecContext is the per-invocation state a HandlerFunc runs with: which
// database, which registry, and the cross-cutting collaborators wired at
// server-startup time. One is constructed per connection and reused across
// that connection's commands, mirroring the teacher's per-connection session
// function closure in scm (storage/transaction.go's sessionFn convention,
// generalized here into a concrete struct instead of a Scheme closure).
type ExecContext struct {
	Conn     *ConnState
	DB       *storage.Database
	Registry *storage.Registry
	Cluster  SlotChecker
	Events   EventPublisher
	ACL      Authorizer
	Tx       *txn.Tx
}

// ConnState is the per-connection session identity threaded through every
// command on that connection: selected DB index, negotiated protocol, and
// ACL identity. MULTI/WATCH bookkeeping lives in the paired *txn.Tx instead
// of duplicated here.
type ConnState struct {
	ID      uint64
	DBIndex int
	User    string
	Resp3   bool
}

func NewConnState(id uint64) *ConnState {
	return &ConnState{ID: id}
}
