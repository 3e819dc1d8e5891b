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
package eventbus

import (
	"sync"

	"github.com/spineldb/spineldb/logx"
)

// Event is one write command that has just committed, the unit propagated to
// AOF, replication, and keyspace notifications.
type Event struct {
	DBIndex int
	Args    []string // command name + arguments, ready to re-serialize
}

// Subscriber receives every Event in commit order. Implementations (AOF
// writer, replication backlog, pub/sub notifier) must not block for long —
// a slow subscriber's channel fills and the bus starts dropping for it
// rather than stalling the other subscribers or the command path, per
// spec.md §4.6's "fan-out must not let one consumer slow down another."
type Subscriber struct {
	Name     string
	ch       chan Event
	dropped  uint64
	mu       sync.Mutex
}

// Bus is a FIFO multi-producer-single-consumer-per-subscriber fan-out,
// grounded on the teacher's storage/cache.go CacheManager: there, one
// opChan feeding a single background goroutine; here, one input channel per
// publisher call fanned out to N independently-draining subscriber
// channels, since AOF/replication/notifications must not share backpressure.
type Bus struct {
	mu          sync.RWMutex
	subscribers []*Subscriber
	queue       chan Event
	closed      chan struct{}
}

// New creates a Bus with the given input queue depth (the buffer between
// Publish and the fan-out goroutine; per-subscriber buffering is set by
// Subscribe's bufferSize).
func New(queueDepth int) *Bus {
	b := &Bus{
		queue:  make(chan Event, queueDepth),
		closed: make(chan struct{}),
	}
	go b.run()
	return b
}

// Subscribe registers a new consumer with its own buffered channel and
// returns it; the caller ranges over Subscriber.Events() to consume.
func (b *Bus) Subscribe(name string, bufferSize int) *Subscriber {
	s := &Subscriber{Name: name, ch: make(chan Event, bufferSize)}
	b.mu.Lock()
	b.subscribers = append(b.subscribers, s)
	b.mu.Unlock()
	return s
}

func (b *Bus) Unsubscribe(s *Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, cand := range b.subscribers {
		if cand == s {
			b.subscribers = append(b.subscribers[:i], b.subscribers[i+1:]...)
			close(cand.ch)
			break
		}
	}
}

// Publish enqueues one committed write for propagation. Implements
// dispatch.EventPublisher.
func (b *Bus) Publish(dbIndex int, args []string) {
	cp := make([]string, len(args))
	copy(cp, args)
	select {
	case b.queue <- Event{DBIndex: dbIndex, Args: cp}:
	case <-b.closed:
	}
}

func (b *Bus) run() {
	for {
		select {
		case ev := <-b.queue:
			b.fanOut(ev)
		case <-b.closed:
			return
		}
	}
}

func (b *Bus) fanOut(ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, s := range b.subscribers {
		select {
		case s.ch <- ev:
		default:
			s.mu.Lock()
			s.dropped++
			s.mu.Unlock()
			logx.Warn("eventbus subscriber backpressure, dropping event", "subscriber", s.Name)
		}
	}
}

func (b *Bus) Close() { close(b.closed) }

func (s *Subscriber) Events() <-chan Event { return s.ch }

func (s *Subscriber) Dropped() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}
