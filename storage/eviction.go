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

import "math/rand"

// Policy is a maxmemory-policy value, per spec.md §4.3.
type Policy string

const (
	PolicyNoEviction     Policy = "noeviction"
	PolicyAllKeysLRU     Policy = "allkeys-lru"
	PolicyAllKeysLFU     Policy = "allkeys-lfu"
	PolicyAllKeysRandom  Policy = "allkeys-random"
	PolicyVolatileLRU    Policy = "volatile-lru"
	PolicyVolatileLFU    Policy = "volatile-lfu"
	PolicyVolatileRandom Policy = "volatile-random"
	PolicyVolatileTTL    Policy = "volatile-ttl"
)

// candidatePoolSize is the number of keys sampled per eviction decision, the
// same approximate-LRU sampling width Redis uses instead of a true global
// LRU list (no pack library offers priority-queue or LRU-cache primitives,
// so this sampling loop is hand-rolled; see DESIGN.md).
const candidatePoolSize = 5

// PickVictim samples candidatePoolSize keys from shard's entries and returns
// the one Policy says to evict first, or "" if the shard has no eligible key
// (e.g. a volatile-* policy against a shard with no TTLs set).
func PickVictim(shard *Shard, policy Policy) string {
	if policy == PolicyNoEviction {
		return ""
	}
	all := shard.Snapshot()
	var pool []*KeyEntry
	volatileOnly := policy == PolicyVolatileLRU || policy == PolicyVolatileLFU ||
		policy == PolicyVolatileRandom || policy == PolicyVolatileTTL
	for _, e := range all {
		if volatileOnly && !e.HasExpiration() {
			continue
		}
		pool = append(pool, e)
	}
	if len(pool) == 0 {
		return ""
	}
	if len(pool) > candidatePoolSize {
		rand.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
		pool = pool[:candidatePoolSize]
	}

	best := pool[0]
	for _, e := range pool[1:] {
		if worseThan(e, best, policy) {
			best = e
		}
	}
	return string(best.Key)
}

// worseThan reports whether candidate is a better eviction target than cur
// under policy (lower recency/frequency/TTL "loses" and gets evicted first).
func worseThan(candidate, cur *KeyEntry, policy Policy) bool {
	switch policy {
	case PolicyAllKeysLRU, PolicyVolatileLRU:
		return candidate.lastAccessMs < cur.lastAccessMs
	case PolicyAllKeysLFU, PolicyVolatileLFU:
		return candidate.freq < cur.freq
	case PolicyVolatileTTL:
		return candidate.ExpireAtMs < cur.ExpireAtMs
	case PolicyAllKeysRandom, PolicyVolatileRandom:
		return false
	default:
		return false
	}
}
