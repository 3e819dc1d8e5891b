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

func TestFencedWhenMinorityReachable(t *testing.T) {
	c := NewCluster("node-a")
	c.Enabled = true
	now := time.UnixMilli(10000)
	c.Nodes.Upsert(Node{ID: "node-a", Role: RolePrimary, LastSeenAt: now})
	c.Nodes.Upsert(Node{ID: "node-b", Role: RolePrimary, LastSeenAt: time.UnixMilli(0)})
	c.Nodes.Upsert(Node{ID: "node-c", Role: RolePrimary, LastSeenAt: time.UnixMilli(0)})

	if !c.Fenced(1000, 10000) {
		t.Fatalf("expected node-a to be fenced, seeing only itself out of 3 primaries")
	}
	if err := c.CheckWritable(1000, 10000); err == nil {
		t.Fatalf("expected CLUSTERDOWN while fenced")
	}
}

func TestNotFencedWithQuorum(t *testing.T) {
	c := NewCluster("node-a")
	c.Enabled = true
	now := time.UnixMilli(10000)
	c.Nodes.Upsert(Node{ID: "node-a", Role: RolePrimary, LastSeenAt: now})
	c.Nodes.Upsert(Node{ID: "node-b", Role: RolePrimary, LastSeenAt: now})
	c.Nodes.Upsert(Node{ID: "node-c", Role: RolePrimary, LastSeenAt: time.UnixMilli(0)})

	if c.Fenced(1000, 10000) {
		t.Fatalf("expected quorum (2/3) to avoid fencing")
	}
	if err := c.CheckWritable(1000, 10000); err != nil {
		t.Fatalf("expected writable with quorum, got %v", err)
	}
}

func TestFencedDisabledWhenClusterOff(t *testing.T) {
	c := NewCluster("node-a")
	if c.Fenced(1000, 10000) {
		t.Fatalf("cluster mode disabled should never self-fence")
	}
}
