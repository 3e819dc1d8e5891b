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

import "testing"

func TestHashTagCoLocation(t *testing.T) {
	a := HashSlot("foo{x}bar")
	b := HashSlot("baz{x}qux")
	if a != b {
		t.Fatalf("expected matching hash tags to co-locate, got %d vs %d", a, b)
	}
}

func TestHashSlotRange(t *testing.T) {
	for _, key := range []string{"a", "hello", "{tag}rest", "nobrace}here", "{unclosed"} {
		s := HashSlot(key)
		if s < 0 || s >= SlotCount {
			t.Fatalf("slot %d for key %q out of range", s, key)
		}
	}
}

func TestEmptyHashTagFallsBackToWholeKey(t *testing.T) {
	// "{}" has no content between braces, so the whole key is hashed.
	withEmpty := HashSlot("{}foo")
	plain := int(crc16([]byte("{}foo")) % SlotCount)
	if withEmpty != plain {
		t.Fatalf("expected empty-tag key to hash over the whole key, got %d want %d", withEmpty, plain)
	}
}

func TestKeysSlotCrossSlot(t *testing.T) {
	// Hash tags "1" and "2" land in different slots (CRC16 0x2672 vs 0x1611).
	if _, ok := KeysSlot([]string{"foo{1}", "bar{2}"}); ok {
		t.Fatalf("expected keys with different hash tags to be cross-slot")
	}
	slot, ok := KeysSlot([]string{"foo{x}1", "foo{x}2"})
	if !ok {
		t.Fatalf("expected shared hash tag to share a slot")
	}
	if slot != HashSlot("foo{x}1") {
		t.Fatalf("slot mismatch")
	}
}

func TestSlotTableDefaultsUnowned(t *testing.T) {
	tbl := NewSlotTable()
	e := tbl.Get(42)
	if e.Owner != "" || e.Phase != Stable {
		t.Fatalf("expected fresh slot table entry to be unowned/stable, got %+v", e)
	}
	tbl.SetOwner(42, "node-a")
	tbl.SetMigrating(42, "node-b")
	e = tbl.Get(42)
	if e.Phase != Migrating || e.Peer != "node-b" {
		t.Fatalf("expected migrating phase with peer node-b, got %+v", e)
	}
}
