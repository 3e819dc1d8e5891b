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

// SetContainer is an unordered set of byte buffers.
type SetContainer struct {
	m     map[string]struct{}
	order []string
}

func NewSetContainer() *SetContainer {
	return &SetContainer{m: make(map[string]struct{})}
}

func (s *SetContainer) Add(members ...[]byte) int {
	added := 0
	for _, m := range members {
		k := string(m)
		if _, ok := s.m[k]; !ok {
			s.m[k] = struct{}{}
			s.order = append(s.order, k)
			added++
		}
	}
	return added
}

func (s *SetContainer) Rem(members ...[]byte) int {
	removed := 0
	for _, m := range members {
		k := string(m)
		if _, ok := s.m[k]; ok {
			delete(s.m, k)
			removed++
		}
	}
	if removed > 0 {
		out := s.order[:0:0]
		for _, k := range s.order {
			if _, ok := s.m[k]; ok {
				out = append(out, k)
			}
		}
		s.order = out
	}
	return removed
}

func (s *SetContainer) IsMember(m []byte) bool {
	_, ok := s.m[string(m)]
	return ok
}

func (s *SetContainer) Len() int { return len(s.m) }

func (s *SetContainer) Members() []string { return s.order }

func (s *SetContainer) Scan(cursor, count int) (members []string, next int) {
	if count <= 0 {
		count = 10
	}
	if cursor >= len(s.order) {
		return nil, 0
	}
	end := cursor + count
	if end > len(s.order) {
		end = len(s.order)
	}
	members = append(members, s.order[cursor:end]...)
	if end >= len(s.order) {
		next = 0
	} else {
		next = end
	}
	return
}

// Inter/Union/Diff take plain string sets for use across multiple keys under
// the dispatcher's already-acquired shard locks.
func Inter(sets ...*SetContainer) []string {
	if len(sets) == 0 {
		return nil
	}
	smallest := sets[0]
	for _, s := range sets[1:] {
		if s.Len() < smallest.Len() {
			smallest = s
		}
	}
	var out []string
	for _, m := range smallest.order {
		in := true
		for _, s := range sets {
			if s == smallest {
				continue
			}
			if !s.IsMember([]byte(m)) {
				in = false
				break
			}
		}
		if in {
			out = append(out, m)
		}
	}
	return out
}

func Union(sets ...*SetContainer) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, s := range sets {
		for _, m := range s.order {
			if _, ok := seen[m]; !ok {
				seen[m] = struct{}{}
				out = append(out, m)
			}
		}
	}
	return out
}

func Diff(first *SetContainer, rest ...*SetContainer) []string {
	var out []string
	for _, m := range first.order {
		excluded := false
		for _, s := range rest {
			if s.IsMember([]byte(m)) {
				excluded = true
				break
			}
		}
		if !excluded {
			out = append(out, m)
		}
	}
	return out
}
