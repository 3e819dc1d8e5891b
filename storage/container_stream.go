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
package storage

import (
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
)

// StreamID is a "ms-seq" entry id, strictly increasing per spec.md §4.2.
type StreamID struct {
	Ms  int64
	Seq int64
}

func (id StreamID) String() string { return fmt.Sprintf("%d-%d", id.Ms, id.Seq) }

func (id StreamID) Less(other StreamID) bool {
	if id.Ms != other.Ms {
		return id.Ms < other.Ms
	}
	return id.Seq < other.Seq
}

func ParseStreamID(s string) (StreamID, error) {
	parts := strings.SplitN(s, "-", 2)
	ms, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return StreamID{}, fmt.Errorf("ERR Invalid stream ID specified as stream command argument")
	}
	if len(parts) == 1 {
		return StreamID{Ms: ms}, nil
	}
	seq, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return StreamID{}, fmt.Errorf("ERR Invalid stream ID specified as stream command argument")
	}
	return StreamID{Ms: ms, Seq: seq}, nil
}

// StreamEntry is one append-only record.
type StreamEntry struct {
	ID     StreamID
	Fields []string // flattened field,value,field,value...
}

// ConsumerGroup tracks a named group's last-delivered id and pending entries,
// spec.md §1's explicit exception to the "no secondary indexing" non-goal.
type ConsumerGroup struct {
	LastDelivered StreamID
	Pending       map[StreamID]string // entry id -> consumer name
}

// StreamContainer is an append-only log of entries keyed by strictly
// increasing StreamIDs, grounded on the teacher's StorageSeq atomic last-value
// caching idiom (storage/storage-seq.go, dropped as a file but whose
// lastValue-atomic pattern is echoed here for the "never go backwards" rule).
type StreamContainer struct {
	entries []StreamEntry
	lastID  atomic.Value // StreamID
	groups  map[string]*ConsumerGroup
}

func NewStreamContainer() *StreamContainer {
	s := &StreamContainer{groups: make(map[string]*ConsumerGroup)}
	s.lastID.Store(StreamID{})
	return s
}

func (s *StreamContainer) LastID() StreamID { return s.lastID.Load().(StreamID) }

// Add appends an entry. If auto is set, requested is ignored and the ID is
// derived from nowMs, never going backwards: if nowMs <= last.Ms,
// the sequence is incremented instead, per spec.md §4.2.
func (s *StreamContainer) Add(requested StreamID, auto bool, nowMs int64, fields []string) (StreamID, error) {
	last := s.LastID()
	var id StreamID
	if auto {
		if nowMs > last.Ms {
			id = StreamID{Ms: nowMs, Seq: 0}
		} else {
			id = StreamID{Ms: last.Ms, Seq: last.Seq + 1}
		}
	} else {
		id = requested
		if !last.Less(id) {
			return StreamID{}, fmt.Errorf("ERR The ID specified in XADD is equal or smaller than the target stream top item")
		}
	}
	s.entries = append(s.entries, StreamEntry{ID: id, Fields: fields})
	s.lastID.Store(id)
	return id, nil
}

func (s *StreamContainer) Len() int { return len(s.entries) }

// Range returns entries with start <= ID <= end.
func (s *StreamContainer) Range(start, end StreamID, count int) []StreamEntry {
	var out []StreamEntry
	for _, e := range s.entries {
		if e.ID.Less(start) || end.Less(e.ID) {
			continue
		}
		out = append(out, e)
		if count > 0 && len(out) >= count {
			break
		}
	}
	return out
}

// RangeAfter returns entries strictly after after, used by XREAD.
func (s *StreamContainer) RangeAfter(after StreamID, count int) []StreamEntry {
	var out []StreamEntry
	for _, e := range s.entries {
		if !after.Less(e.ID) {
			continue
		}
		out = append(out, e)
		if count > 0 && len(out) >= count {
			break
		}
	}
	return out
}

func (s *StreamContainer) Group(name string) (*ConsumerGroup, bool) {
	g, ok := s.groups[name]
	return g, ok
}

func (s *StreamContainer) CreateGroup(name string, start StreamID) {
	s.groups[name] = &ConsumerGroup{LastDelivered: start, Pending: make(map[StreamID]string)}
}
