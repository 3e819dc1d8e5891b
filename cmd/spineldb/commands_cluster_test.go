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
package main

import (
	"testing"

	"github.com/spineldb/spineldb/cluster"
)

func TestClusterMyIDAndKeyslot(t *testing.T) {
	ctx := newTestCtx()
	clu := cluster.NewCluster("node-1")
	v, err := cmdCluster(ctx, clu, []string{"MYID"})
	if err != nil || v.Str != "node-1" {
		t.Fatalf("cluster myid: v=%+v err=%v", v, err)
	}
	v, err = cmdCluster(ctx, clu, []string{"KEYSLOT", "foo"})
	if err != nil || v.Int != int64(cluster.HashSlot("foo")) {
		t.Fatalf("cluster keyslot: v=%+v err=%v", v, err)
	}
}

func TestClusterDisabledRespondsWithoutPanicking(t *testing.T) {
	ctx := newTestCtx()
	v, err := cmdCluster(ctx, nil, []string{"MYID"})
	if err != nil || v.Str != "" {
		t.Fatalf("cluster myid on disabled cluster: v=%+v err=%v", v, err)
	}
	if _, err := cmdCluster(ctx, nil, []string{"ADDSLOTS", "0"}); err == nil {
		t.Fatalf("expected ADDSLOTS to error when cluster support is disabled")
	}
}

func TestClusterAddSlotsAssignsOwnership(t *testing.T) {
	ctx := newTestCtx()
	clu := cluster.NewCluster("node-1")
	if _, err := cmdCluster(ctx, clu, []string{"ADDSLOTS", "0", "1", "2"}); err != nil {
		t.Fatalf("cluster addslots: %v", err)
	}
	if clu.Slots.Get(1).Owner != "node-1" {
		t.Fatalf("expected slot 1 to be owned by node-1, got %q", clu.Slots.Get(1).Owner)
	}
}

func TestClusterSetSlotMigrationHandshake(t *testing.T) {
	ctx := newTestCtx()
	clu := cluster.NewCluster("node-1")
	clu.Slots.SetOwner(5, "node-1")
	startEpoch := clu.Epoch
	if _, err := cmdCluster(ctx, clu, []string{"SETSLOT", "5", "MIGRATING", "node-2"}); err != nil {
		t.Fatalf("cluster setslot migrating: %v", err)
	}
	if clu.Epoch <= startEpoch {
		t.Fatalf("expected BeginMigration to bump the cluster epoch")
	}
	if _, err := cmdCluster(ctx, clu, []string{"SETSLOT", "5", "NODE", "node-2"}); err != nil {
		t.Fatalf("cluster setslot node: %v", err)
	}
	if clu.Slots.Get(5).Owner != "node-2" {
		t.Fatalf("expected slot 5 ownership to move to node-2, got %q", clu.Slots.Get(5).Owner)
	}
}
