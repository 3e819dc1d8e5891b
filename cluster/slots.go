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
package cluster

import "strings"

const SlotCount = 16384

// Phase is a slot's migration state, per spec.md §2/§4.
type Phase int

const (
	Stable Phase = iota
	Migrating
	Importing
)

// SlotEntry is one row of the 16384-slot table: which node owns the slot,
// and which other node it is mid-migration with, if any.
type SlotEntry struct {
	Slot   int
	Owner  string
	Phase  Phase
	Peer   string // migration target (Migrating) or source (Importing)
}

// SlotTable is the full 16384-entry assignment, protected by the owning
// Cluster's NonLockingReadMap-backed node table conventions: it is itself a
// plain fixed-size array (no map needed, since slot indices are dense
// 0..16383) guarded by the Cluster's single coarse lock in migration.go.
type SlotTable struct {
	entries [SlotCount]SlotEntry
}

func NewSlotTable() *SlotTable {
	t := &SlotTable{}
	for i := range t.entries {
		t.entries[i] = SlotEntry{Slot: i}
	}
	return t
}

func (t *SlotTable) Get(slot int) SlotEntry {
	return t.entries[slot]
}

func (t *SlotTable) SetOwner(slot int, nodeID string) {
	t.entries[slot].Owner = nodeID
	t.entries[slot].Phase = Stable
	t.entries[slot].Peer = ""
}

func (t *SlotTable) SetMigrating(slot int, targetNodeID string) {
	t.entries[slot].Phase = Migrating
	t.entries[slot].Peer = targetNodeID
}

func (t *SlotTable) SetImporting(slot int, sourceNodeID string) {
	t.entries[slot].Phase = Importing
	t.entries[slot].Peer = sourceNodeID
}

// HashSlot computes the slot for a key: CRC16 over the hash-tag substring
// between the first `{` and the next `}` if one exists and is non-empty,
// else over the whole key, per spec.md §2 and the `foo{x}bar`/`baz{x}qux`
// co-location invariant (spec.md §8.9).
func HashSlot(key string) int {
	tagged := key
	if start := strings.IndexByte(key, '{'); start >= 0 {
		if end := strings.IndexByte(key[start+1:], '}'); end >= 0 && end > 0 {
			tagged = key[start+1 : start+1+end]
		}
	}
	return int(crc16([]byte(tagged)) % SlotCount)
}

// KeysSlot returns the common slot for a set of keys, or ok=false if they
// span more than one slot (the CROSSSLOT condition, spec.md §8's
// invariant 9 / §9's CROSSSLOT rule).
func KeysSlot(keys []string) (slot int, ok bool) {
	if len(keys) == 0 {
		return 0, true
	}
	slot = HashSlot(keys[0])
	for _, k := range keys[1:] {
		if HashSlot(k) != slot {
			return 0, false
		}
	}
	return slot, true
}
