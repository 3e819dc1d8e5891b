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

// HashContainer is a byte-buffer -> byte-buffer mapping, insertion-ordered
// for iteration stability (spec.md §3's Hash contract), and with a stable
// HSCAN cursor order for the lifetime of one scan (spec.md §4.2).
type HashContainer struct {
	m     map[string][]byte
	order []string
}

func NewHashContainer() *HashContainer {
	return &HashContainer{m: make(map[string][]byte)}
}

func (h *HashContainer) Set(field string, val []byte) (isNew bool) {
	_, exists := h.m[field]
	h.m[field] = val
	if !exists {
		h.order = append(h.order, field)
	}
	return !exists
}

func (h *HashContainer) Get(field string) ([]byte, bool) {
	v, ok := h.m[field]
	return v, ok
}

func (h *HashContainer) Del(fields ...string) int {
	removed := 0
	for _, f := range fields {
		if _, ok := h.m[f]; ok {
			delete(h.m, f)
			removed++
		}
	}
	if removed > 0 {
		out := h.order[:0:0]
		for _, f := range h.order {
			if _, ok := h.m[f]; ok {
				out = append(out, f)
			}
		}
		h.order = out
	}
	return removed
}

func (h *HashContainer) Len() int { return len(h.m) }

// Fields returns field names in stable insertion order.
func (h *HashContainer) Fields() []string { return h.order }

func (h *HashContainer) All() []string {
	out := make([]string, 0, len(h.order)*2)
	for _, f := range h.order {
		out = append(out, f, string(h.m[f]))
	}
	return out
}

// Scan returns a page of (field,value) pairs starting at cursor, and the next
// cursor (0 once exhausted). The cursor indexes into the insertion-order
// slice, which is stable for the lifetime of a scan per spec.md §4.2.
func (h *HashContainer) Scan(cursor, count int) (fields []string, values [][]byte, next int) {
	if count <= 0 {
		count = 10
	}
	end := cursor + count
	if end > len(h.order) {
		end = len(h.order)
	}
	if cursor >= len(h.order) {
		return nil, nil, 0
	}
	for _, f := range h.order[cursor:end] {
		fields = append(fields, f)
		values = append(values, h.m[f])
	}
	if end >= len(h.order) {
		next = 0
	} else {
		next = end
	}
	return
}
