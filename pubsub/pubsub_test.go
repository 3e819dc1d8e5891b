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

import "testing"

func TestPublishDeliversToExactSubscriber(t *testing.T) {
	h := NewHub()
	sub := NewSubscriber("s1", 4)
	h.Subscribe("news", sub)

	if n := h.Publish("news", []byte("hello")); n != 1 {
		t.Fatalf("expected 1 delivery, got %d", n)
	}
	msg := <-sub.Messages()
	if string(msg.Payload) != "hello" || msg.Channel != "news" {
		t.Fatalf("unexpected message: %+v", msg)
	}
}

func TestPSubscribeMatchesPattern(t *testing.T) {
	h := NewHub()
	sub := NewSubscriber("s1", 4)
	h.PSubscribe("news.*", sub)

	if n := h.Publish("news.sports", []byte("goal")); n != 1 {
		t.Fatalf("expected pattern match delivery, got %d", n)
	}
	msg := <-sub.Messages()
	if msg.Pattern != "news.*" {
		t.Fatalf("expected pattern recorded, got %+v", msg)
	}
	if n := h.Publish("weather", []byte("rain")); n != 0 {
		t.Fatalf("expected no match for non-matching channel, got %d", n)
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	h := NewHub()
	sub := NewSubscriber("s1", 4)
	h.Subscribe("news", sub)
	h.Unsubscribe("news", sub)

	if n := h.Publish("news", []byte("x")); n != 0 {
		t.Fatalf("expected no subscribers after unsubscribe, got %d", n)
	}
	if h.ChannelCount() != 0 {
		t.Fatalf("expected empty channel to be pruned")
	}
}

func TestSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	h := NewHub()
	sub := NewSubscriber("s1", 1)
	h.Subscribe("news", sub)

	h.Publish("news", []byte("1"))
	h.Publish("news", []byte("2")) // buffer full, must drop not block

	if sub.Dropped() != 1 {
		t.Fatalf("expected 1 dropped message, got %d", sub.Dropped())
	}
}

func TestFIFOSubscriberOrderPreserved(t *testing.T) {
	h := NewHub()
	a := NewSubscriber("a", 4)
	b := NewSubscriber("b", 4)
	h.Subscribe("chan", a)
	h.Subscribe("chan", b)
	h.Unsubscribe("chan", a)
	h.Subscribe("chan", a)

	if h.SubscriberCount("chan") != 2 {
		t.Fatalf("expected 2 subscribers, got %d", h.SubscriberCount("chan"))
	}
}
