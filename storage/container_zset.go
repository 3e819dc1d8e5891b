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
	"errors"
	"math"
	"sort"

	"github.com/google/btree"
)

// ErrNaNScore is spec.md §4.2's "NaN scores fail with a domain error".
var ErrNaNScore = errors.New("ERR resulting score is not a number (NaN)")

type zEntry struct {
	member string
	score  float64
}

func zLess(a, b zEntry) bool {
	if a.score != b.score {
		return a.score < b.score
	}
	return a.member < b.member
}

// ZSetContainer orders members strictly by (score ascending, member
// lexicographic ascending) per spec.md §4.2, backed by google/btree (the
// teacher's own ordered-index dependency, see storage/index.go) instead of a
// hand-rolled skiplist.
type ZSetContainer struct {
	tree   *btree.BTreeG[zEntry]
	scores map[string]float64
}

func NewZSetContainer() *ZSetContainer {
	return &ZSetContainer{
		tree:   btree.NewG[zEntry](32, zLess),
		scores: make(map[string]float64),
	}
}

// Add inserts or updates a member's score. Returns (added, error) where added
// counts only genuinely new members. NaN is rejected outright.
func (z *ZSetContainer) Add(member string, score float64) (bool, error) {
	if math.IsNaN(score) {
		return false, ErrNaNScore
	}
	if old, ok := z.scores[member]; ok {
		if old != score {
			z.tree.Delete(zEntry{member, old})
			z.tree.ReplaceOrInsert(zEntry{member, score})
			z.scores[member] = score
		}
		return false, nil
	}
	z.tree.ReplaceOrInsert(zEntry{member, score})
	z.scores[member] = score
	return true, nil
}

func (z *ZSetContainer) IncrBy(member string, delta float64) (float64, error) {
	cur := z.scores[member]
	next := cur + delta
	if math.IsNaN(next) {
		return 0, ErrNaNScore
	}
	z.Add(member, next)
	return next, nil
}

func (z *ZSetContainer) Score(member string) (float64, bool) {
	s, ok := z.scores[member]
	return s, ok
}

func (z *ZSetContainer) Len() int { return len(z.scores) }

func (z *ZSetContainer) Rem(members ...string) int {
	removed := 0
	for _, m := range members {
		if s, ok := z.scores[m]; ok {
			z.tree.Delete(zEntry{m, s})
			delete(z.scores, m)
			removed++
		}
	}
	return removed
}

// Rank returns the zero-based rank of member in ascending order.
func (z *ZSetContainer) Rank(member string) (int, bool) {
	s, ok := z.scores[member]
	if !ok {
		return 0, false
	}
	rank := 0
	z.tree.Ascend(func(e zEntry) bool {
		if e.member == member && e.score == s {
			return false
		}
		rank++
		return true
	})
	return rank, true
}

// RangeByRank returns members (with scores) whose 0-based rank falls in
// [start,stop], negative indices counting from the tail, Redis-style.
func (z *ZSetContainer) RangeByRank(start, stop int, reverse bool) []zEntry {
	n := z.Len()
	start = clampIndex(start, n)
	stop = clampIndex(stop, n)
	if stop >= n {
		stop = n - 1
	}
	if start > stop || n == 0 {
		return nil
	}
	all := make([]zEntry, 0, n)
	z.tree.Ascend(func(e zEntry) bool {
		all = append(all, e)
		return true
	})
	if reverse {
		for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
			all[i], all[j] = all[j], all[i]
		}
	}
	return append([]zEntry(nil), all[start:stop+1]...)
}

// ScoreRange is an inclusive/exclusive bound pair, +/-Inf for unbounded.
type ScoreRange struct {
	Min, Max               float64
	MinExclusive, MaxExclusive bool
}

// RangeByScore implements spec.md §4.2's "exclusive bounds via ( prefix".
func (z *ZSetContainer) RangeByScore(r ScoreRange) []zEntry {
	var out []zEntry
	z.tree.AscendRange(zEntry{member: "", score: r.Min}, zEntry{member: "￿￿￿￿", score: r.Max}, func(e zEntry) bool {
		if e.score < r.Min || (e.score == r.Min && r.MinExclusive) {
			return true
		}
		if e.score > r.Max || (e.score == r.Max && r.MaxExclusive) {
			return false
		}
		out = append(out, e)
		return true
	})
	return out
}

// LexRange sentinels per spec.md §4.2: '[', '(', '-', '+'.
type LexRange struct {
	Min, Max           string // the raw member text, sentinel/bracket already stripped
	MinKind, MaxKind   byte   // '[', '(', '-', '+'
}

// RangeByLex assumes all members share the same score, per Redis's own
// ZRANGEBYLEX contract.
func (z *ZSetContainer) RangeByLex(r LexRange) []string {
	members := make([]string, 0, len(z.scores))
	for m := range z.scores {
		members = append(members, m)
	}
	sort.Strings(members)
	var out []string
	for _, m := range members {
		if r.MinKind != '-' {
			if r.MinKind == '[' && m < r.Min {
				continue
			}
			if r.MinKind == '(' && m <= r.Min {
				continue
			}
		}
		if r.MaxKind != '+' {
			if r.MaxKind == '[' && m > r.Max {
				continue
			}
			if r.MaxKind == '(' && m >= r.Max {
				continue
			}
		}
		out = append(out, m)
	}
	return out
}

// Member/Score accessor pairs for callers building reply frames.
func (e zEntry) Member() string   { return e.member }
func (e zEntry) ScoreOf() float64 { return e.score }
