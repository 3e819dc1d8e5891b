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

import "github.com/google/btree"

// expireKey orders (expireAtMs, key) pairs ascending so the earliest
// expiration is always the btree's first item. Grounded on the same
// google/btree generic tree the teacher's storage package has no equivalent
// for (it has no TTL concept at all); the ordering idiom is carried over
// from container_zset.go's zEntry/zLess pairing.
type expireKey struct {
	expireAtMs int64
	key        string
}

func expireLess(a, b expireKey) bool {
	if a.expireAtMs != b.expireAtMs {
		return a.expireAtMs < b.expireAtMs
	}
	return a.key < b.key
}

// ExpireIndex is a per-shard ordered index of keys carrying a TTL, letting
// the active sweeper pop the soonest-to-expire keys without scanning the
// whole shard.
type ExpireIndex struct {
	tree *btree.BTreeG[expireKey]
}

func NewExpireIndex() *ExpireIndex {
	return &ExpireIndex{tree: btree.NewG[expireKey](32, expireLess)}
}

func (x *ExpireIndex) Insert(expireAtMs int64, key string) {
	x.tree.ReplaceOrInsert(expireKey{expireAtMs: expireAtMs, key: key})
}

func (x *ExpireIndex) Remove(expireAtMs int64, key string) {
	x.tree.Delete(expireKey{expireAtMs: expireAtMs, key: key})
}

// DueBefore returns up to limit keys with expireAtMs <= nowMs, in ascending
// expiration order, removing them from the index as it collects them.
func (x *ExpireIndex) DueBefore(nowMs int64, limit int) []string {
	var due []string
	var toDelete []expireKey
	x.tree.Ascend(func(item expireKey) bool {
		if item.expireAtMs > nowMs {
			return false
		}
		due = append(due, item.key)
		toDelete = append(toDelete, item)
		return limit <= 0 || len(due) < limit
	})
	for _, item := range toDelete {
		x.tree.Delete(item)
	}
	return due
}

func (x *ExpireIndex) Len() int { return x.tree.Len() }
