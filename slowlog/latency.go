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
package slowlog

import "sync"

// Sample is one latency spike recorded for an event class (e.g.
// "command", "aof-fsync", "expire-cycle"), per the LATENCY HISTORY reply
// shape.
type Sample struct {
	TimestampMs int64
	DurationMs  int64
}

// eventHistory is a small fixed-capacity ring per event name, the same
// circular-buffer shape as slowlog.Log's Entry ring (see slowlog.go),
// keeping the 160 most recent samples per event.
type eventHistory struct {
	buf  [160]Sample
	head int
	size int
	max  int64
}

// Monitor tracks per-event-class latency spikes, grounded on the teacher's
// scm/metrics.go per-second sampling loop, generalized from one fixed set
// of global counters (CPU/RPS/connections) to an open set of named event
// histories.
type Monitor struct {
	mu     sync.Mutex
	events map[string]*eventHistory
}

func NewMonitor() *Monitor {
	return &Monitor{events: make(map[string]*eventHistory)}
}

// Record logs a latency spike for event if durationMs is at least thresholdMs.
func (m *Monitor) Record(event string, durationMs, thresholdMs, nowMs int64) {
	if durationMs < thresholdMs {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.events[event]
	if !ok {
		h = &eventHistory{}
		m.events[event] = h
	}
	idx := (h.head + h.size) % len(h.buf)
	if h.size < len(h.buf) {
		h.size++
	} else {
		h.head = (h.head + 1) % len(h.buf)
		idx = (h.head + h.size - 1) % len(h.buf)
	}
	h.buf[idx] = Sample{TimestampMs: nowMs, DurationMs: durationMs}
	if durationMs > h.max {
		h.max = durationMs
	}
}

func (m *Monitor) History(event string) []Sample {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.events[event]
	if !ok {
		return nil
	}
	out := make([]Sample, h.size)
	for i := 0; i < h.size; i++ {
		out[i] = h.buf[(h.head+i)%len(h.buf)]
	}
	return out
}

func (m *Monitor) Latest(event string) (Sample, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.events[event]
	if !ok || h.size == 0 {
		return Sample{}, false
	}
	return h.buf[(h.head+h.size-1)%len(h.buf)], true
}

func (m *Monitor) MaxMs(event string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.events[event]
	if !ok {
		return 0
	}
	return h.max
}

func (m *Monitor) Reset(event string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.events, event)
}

func (m *Monitor) Events() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.events))
	for name := range m.events {
		out = append(out, name)
	}
	return out
}
