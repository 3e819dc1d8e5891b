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

import (
	"testing"
	"time"
)

func TestDecideMovedWhenSlotOwnedElsewhere(t *testing.T) {
	c := NewCluster("node-a")
	c.Enabled = true
	slot := HashSlot("foo")
	c.Slots.SetOwner(slot, "node-b")
	c.Nodes.Upsert(Node{ID: "node-b", Addr: "10.0.0.2:7000", LastSeenAt: time.UnixMilli(0)})

	d := c.Decide([]string{"foo"}, false, nil)
	if d.Verdict != VerdictMoved || d.Addr != "10.0.0.2:7000" {
		t.Fatalf("expected MOVED to 10.0.0.2:7000, got %+v", d)
	}
}

func TestDecideCrossSlot(t *testing.T) {
	c := NewCluster("node-a")
	c.Enabled = true
	d := c.Decide([]string{"foo{1}", "bar{2}"}, false, nil)
	if d.Verdict != VerdictCrossSlot {
		t.Fatalf("expected CROSSSLOT, got %+v", d)
	}
}

func TestDecideAskDuringMigrationForAbsentKey(t *testing.T) {
	c := NewCluster("node-a")
	c.Enabled = true
	slot := HashSlot("foo")
	c.Slots.SetOwner(slot, "node-a")
	c.Slots.SetMigrating(slot, "node-b")
	c.Nodes.Upsert(Node{ID: "node-b", Addr: "10.0.0.2:7000"})

	absent := func(string) bool { return false }
	d := c.Decide([]string{"foo"}, false, absent)
	if d.Verdict != VerdictAsk || d.Addr != "10.0.0.2:7000" {
		t.Fatalf("expected ASK to 10.0.0.2:7000, got %+v", d)
	}
}

func TestDecideLocalDuringMigrationForPresentKey(t *testing.T) {
	c := NewCluster("node-a")
	c.Enabled = true
	slot := HashSlot("foo")
	c.Slots.SetOwner(slot, "node-a")
	c.Slots.SetMigrating(slot, "node-b")

	present := func(string) bool { return true }
	d := c.Decide([]string{"foo"}, false, present)
	if d.Verdict != VerdictLocal {
		t.Fatalf("expected local serve for present key mid-migration, got %+v", d)
	}
}

func TestDecideImportingRejectsWithoutAsking(t *testing.T) {
	c := NewCluster("node-a")
	c.Enabled = true
	slot := HashSlot("foo")
	c.Slots.SetOwner(slot, "node-a")
	c.Slots.SetImporting(slot, "node-b")

	absent := func(string) bool { return false }
	d := c.Decide([]string{"foo"}, false, absent)
	if d.Verdict != VerdictCrossSlot {
		t.Fatalf("expected rejection for non-ASKING importing access, got %+v", d)
	}
	d = c.Decide([]string{"foo"}, true, absent)
	if d.Verdict != VerdictLocal {
		t.Fatalf("expected ASKING client to be served locally, got %+v", d)
	}
}

func TestCompleteMigrationReassignsOwner(t *testing.T) {
	c := NewCluster("node-a")
	slot := HashSlot("foo")
	c.BeginMigration(slot, "node-b")
	if c.Slots.Get(slot).Phase != Migrating {
		t.Fatalf("expected migrating phase")
	}
	c.CompleteMigration(slot, "node-b")
	e := c.Slots.Get(slot)
	if e.Owner != "node-b" || e.Phase != Stable {
		t.Fatalf("expected stable ownership by node-b, got %+v", e)
	}
}
