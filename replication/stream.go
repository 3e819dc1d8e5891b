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
package replication

import (
	"sync"

	"github.com/spineldb/spineldb/logx"
)

// ReplicaStream is the per-connected-replica send queue, draining
// independently of the primary's command path. Grounded on the same
// buffer-then-flush idiom as Backlog, here applied per-consumer instead of
// globally: each replica gets its own bounded channel so one slow replica
// never backs up another (spec.md §4.9).
type ReplicaStream struct {
	Addr   string
	ch     chan Command
	mu     sync.Mutex
	closed bool
}

func newReplicaStream(addr string, bufSize int) *ReplicaStream {
	return &ReplicaStream{Addr: addr, ch: make(chan Command, bufSize)}
}

func (r *ReplicaStream) Send(cmd Command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	select {
	case r.ch <- cmd:
	default:
		logx.Warn("replica stream backpressure, disconnecting replica", "addr", r.Addr)
		r.closeLocked()
	}
}

func (r *ReplicaStream) closeLocked() {
	if !r.closed {
		r.closed = true
		close(r.ch)
	}
}

func (r *ReplicaStream) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closeLocked()
}

func (r *ReplicaStream) Commands() <-chan Command { return r.ch }

// Registry tracks every currently-connected replica stream; CheckMinReplicas
// counts them for min_replicas_to_write gating.
type Registry struct {
	mu       sync.Mutex
	replicas map[string]*ReplicaStream
}

func NewRegistry() *Registry {
	return &Registry{replicas: make(map[string]*ReplicaStream)}
}

func (r *Registry) Attach(addr string, bufSize int) *ReplicaStream {
	s := newReplicaStream(addr, bufSize)
	r.mu.Lock()
	r.replicas[addr] = s
	r.mu.Unlock()
	return s
}

func (r *Registry) Detach(addr string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.replicas[addr]; ok {
		s.Close()
		delete(r.replicas, addr)
	}
}

// Count returns the number of currently attached replicas, for
// min_replicas_to_write / min_replicas_max_lag gating (spec.md §4.9).
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.replicas)
}

// Broadcast fans cmd out to every attached replica stream.
func (r *Registry) Broadcast(cmd Command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.replicas {
		s.Send(cmd)
	}
}
