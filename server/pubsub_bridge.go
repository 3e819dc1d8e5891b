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
package server

import (
	"fmt"

	"github.com/spineldb/spineldb/pubsub"
	"github.com/spineldb/spineldb/resp"
)

// subscription tracks one connection's pub/sub membership and the goroutine
// pumping pubsub.Hub deliveries onto the connection's writer as RESP push
// frames, grounded on the teacher's storage/cache.go fan-out goroutine
// (one background reader draining a channel for the lifetime of its owner).
type subscription struct {
	sub      *pubsub.Subscriber
	channels map[string]struct{}
	patterns map[string]struct{}
	done     chan struct{}
}

func (s *Server) ensureSubscription(sess *session) *subscription {
	if sess.sub != nil {
		return sess.sub
	}
	sc := &subscription{
		sub:      pubsub.NewSubscriber(fmt.Sprintf("conn-%d", sess.id), 256),
		channels: make(map[string]struct{}),
		patterns: make(map[string]struct{}),
		done:     make(chan struct{}),
	}
	sess.sub = sc
	go sc.pump(sess)
	return sc
}

// pump forwards every delivered message to the connection until done fires
// (the subscription is retired or the connection closes).
func (sc *subscription) pump(sess *session) {
	for {
		select {
		case m, ok := <-sc.sub.Messages():
			if !ok {
				return
			}
			_ = sess.send(pushMessage(m))
		case <-sc.done:
			return
		}
	}
}

func pushMessage(m pubsub.Message) resp.Value {
	if m.Pattern != "" {
		return resp.Push(resp.Bulk("pmessage"), resp.Bulk(m.Pattern), resp.Bulk(m.Channel), resp.BulkFromBytes(m.Payload))
	}
	return resp.Push(resp.Bulk("message"), resp.Bulk(m.Channel), resp.BulkFromBytes(m.Payload))
}

// handlePubSub implements SUBSCRIBE/UNSUBSCRIBE/PSUBSCRIBE/PUNSUBSCRIBE.
// Each channel/pattern argument gets its own confirmation frame, per spec.md
// §4.1's "reply per channel, not per command" framing rule.
func (s *Server) handlePubSub(sess *session, name string, args []string) {
	switch name {
	case "SUBSCRIBE":
		sc := s.ensureSubscription(sess)
		for _, ch := range args {
			if _, ok := sc.channels[ch]; !ok {
				s.PubSub.Subscribe(ch, sc.sub)
				sc.channels[ch] = struct{}{}
			}
			_ = sess.send(subAck("subscribe", ch, sc.count()))
		}
	case "PSUBSCRIBE":
		sc := s.ensureSubscription(sess)
		for _, pat := range args {
			if _, ok := sc.patterns[pat]; !ok {
				s.PubSub.PSubscribe(pat, sc.sub)
				sc.patterns[pat] = struct{}{}
			}
			_ = sess.send(subAck("psubscribe", pat, sc.count()))
		}
	case "UNSUBSCRIBE":
		sc := sess.sub
		if sc == nil {
			_ = sess.send(subAck("unsubscribe", "", 0))
			return
		}
		targets := args
		if len(targets) == 0 {
			targets = keysOf(sc.channels)
		}
		for _, ch := range targets {
			s.PubSub.Unsubscribe(ch, sc.sub)
			delete(sc.channels, ch)
			_ = sess.send(subAck("unsubscribe", ch, sc.count()))
		}
		s.maybeRetireSubscription(sess)
	case "PUNSUBSCRIBE":
		sc := sess.sub
		if sc == nil {
			_ = sess.send(subAck("punsubscribe", "", 0))
			return
		}
		targets := args
		if len(targets) == 0 {
			targets = keysOf(sc.patterns)
		}
		for _, pat := range targets {
			s.PubSub.PUnsubscribe(pat, sc.sub)
			delete(sc.patterns, pat)
			_ = sess.send(subAck("punsubscribe", pat, sc.count()))
		}
		s.maybeRetireSubscription(sess)
	}
}

func (sc *subscription) count() int { return len(sc.channels) + len(sc.patterns) }

// maybeRetireSubscription stops the pump goroutine once a connection has
// left every channel and pattern, so an idle connection doesn't leak one.
func (s *Server) maybeRetireSubscription(sess *session) {
	sc := sess.sub
	if sc == nil || sc.count() > 0 {
		return
	}
	close(sc.done)
	sess.sub = nil
}

func subAck(kind, name string, count int) resp.Value {
	return resp.Push(resp.Bulk(kind), resp.Bulk(name), resp.Integer(int64(count)))
}

func keysOf(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
