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
package pubsub

import (
	"path"
	"sync"
)

// Message is a single published event, delivered verbatim to every matching
// subscriber.
type Message struct {
	Channel string
	Pattern string // set only for pattern-matched deliveries
	Payload []byte
}

// Subscriber is one client's mailbox, grounded on the teacher's
// storage/cache.go channel-per-consumer pattern: each subscriber owns a
// buffered channel and a slow/disconnected subscriber is dropped from
// rather than allowed to stall delivery to everyone else.
type Subscriber struct {
	id string
	ch chan Message

	mu      sync.Mutex
	dropped uint64
}

func (s *Subscriber) Messages() <-chan Message { return s.ch }
func (s *Subscriber) Dropped() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

func (s *Subscriber) deliver(m Message) {
	select {
	case s.ch <- m:
	default:
		s.mu.Lock()
		s.dropped++
		s.mu.Unlock()
	}
}

// Hub is the process-wide pub/sub registry: exact-channel subscriptions plus
// glob-pattern subscriptions, each independently FIFO per channel (insertion
// order is preserved within a channel's subscriber list since Go map
// iteration would reorder delivery — see channels' use of a slice, not a
// map, for subscriber membership per key).
type Hub struct {
	mu       sync.RWMutex
	channels map[string][]*Subscriber
	patterns map[string][]*Subscriber
}

func NewHub() *Hub {
	return &Hub{
		channels: make(map[string][]*Subscriber),
		patterns: make(map[string][]*Subscriber),
	}
}

func NewSubscriber(id string, bufferSize int) *Subscriber {
	if bufferSize < 1 {
		bufferSize = 1
	}
	return &Subscriber{id: id, ch: make(chan Message, bufferSize)}
}

func (h *Hub) Subscribe(channel string, sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.channels[channel] = appendFIFO(h.channels[channel], sub)
}

func (h *Hub) Unsubscribe(channel string, sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.channels[channel] = removeFIFO(h.channels[channel], sub)
	if len(h.channels[channel]) == 0 {
		delete(h.channels, channel)
	}
}

func (h *Hub) PSubscribe(pattern string, sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.patterns[pattern] = appendFIFO(h.patterns[pattern], sub)
}

func (h *Hub) PUnsubscribe(pattern string, sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.patterns[pattern] = removeFIFO(h.patterns[pattern], sub)
	if len(h.patterns[pattern]) == 0 {
		delete(h.patterns, pattern)
	}
}

// Publish delivers payload to every exact-channel subscriber and every
// pattern subscriber whose pattern matches channel, returning the number of
// subscribers reached.
func (h *Hub) Publish(channel string, payload []byte) int {
	h.mu.RLock()
	exact := h.channels[channel]
	var matched []struct {
		pattern string
		subs    []*Subscriber
	}
	for pattern, subs := range h.patterns {
		if ok, _ := path.Match(pattern, channel); ok {
			matched = append(matched, struct {
				pattern string
				subs    []*Subscriber
			}{pattern, subs})
		}
	}
	h.mu.RUnlock()

	count := 0
	for _, sub := range exact {
		sub.deliver(Message{Channel: channel, Payload: payload})
		count++
	}
	for _, m := range matched {
		for _, sub := range m.subs {
			sub.deliver(Message{Channel: channel, Pattern: m.pattern, Payload: payload})
			count++
		}
	}
	return count
}

func (h *Hub) ChannelCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels)
}

func (h *Hub) SubscriberCount(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels[channel])
}

func appendFIFO(subs []*Subscriber, s *Subscriber) []*Subscriber {
	for _, existing := range subs {
		if existing == s {
			return subs
		}
	}
	return append(subs, s)
}

func removeFIFO(subs []*Subscriber, s *Subscriber) []*Subscriber {
	out := subs[:0]
	for _, existing := range subs {
		if existing != s {
			out = append(out, existing)
		}
	}
	return out
}
