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

// CacheMeta holds the cache-specific metadata a KeyEntry carries when its
// Value is being used as a cache entry (spec.md §3's "optional per-key
// metadata"). The cache package owns the semantics; storage only carries the
// pointer so eviction/expiration can see cache entries without an import
// cycle.
type CacheMeta struct {
	Opaque any // *cache.Entry, type-asserted by the cache package
}

// KeyEntry is one shard's record for a key: the value, optional expiration,
// an optimistic-concurrency version counter, and optional cache metadata.
// Grounded on spec.md §3's "Key entry" and the teacher's per-row bookkeeping
// style in storage/shard.go (there: column-oriented; here: one struct per
// key since SpinelDB is row/KV-oriented, not columnar).
type KeyEntry struct {
	Key        []byte
	Value      *Value
	ExpireAtMs int64 // 0 = no expiration
	Version    uint64
	Cache      *CacheMeta

	// access bookkeeping for eviction policies (spec.md §4.3)
	lastAccessMs int64
	freq         uint32
}

func (e *KeyEntry) HasExpiration() bool { return e.ExpireAtMs != 0 }

func (e *KeyEntry) IsExpiredAt(nowMs int64) bool {
	return e.ExpireAtMs != 0 && e.ExpireAtMs <= nowMs
}

func (e *KeyEntry) touch(nowMs int64) {
	e.lastAccessMs = nowMs
	e.freq++
}
