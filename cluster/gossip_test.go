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

func TestGossipRoundTrip(t *testing.T) {
	secret := []byte("shared-secret")
	nodes := []GossipNode{{ID: "node-a", Addr: "10.0.0.1:7000", LastSeen: 1000}}

	wire, err := SignGossip(nodes, secret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	got, err := VerifyGossip(wire, secret)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if len(got) != 1 || got[0].ID != "node-a" {
		t.Fatalf("unexpected nodes: %+v", got)
	}
}

func TestGossipRejectsBadSecret(t *testing.T) {
	nodes := []GossipNode{{ID: "node-a", Addr: "10.0.0.1:7000"}}
	wire, err := SignGossip(nodes, []byte("correct"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := VerifyGossip(wire, []byte("wrong")); err != ErrBadGossipMAC {
		t.Fatalf("expected ErrBadGossipMAC, got %v", err)
	}
}

func TestGossipRejectsTamperedMessage(t *testing.T) {
	nodes := []GossipNode{{ID: "node-a", Addr: "10.0.0.1:7000"}}
	secret := []byte("shared-secret")
	wire, _ := SignGossip(nodes, secret)
	wire = append(wire[:len(wire)-2], 'x', 'x')
	if _, err := VerifyGossip(wire, secret); err == nil {
		t.Fatalf("expected tampered gossip message to fail verification")
	}
}

func TestMergeLastWriteWins(t *testing.T) {
	tbl := NewNodeTable()
	tbl.Merge([]GossipNode{{ID: "node-a", Addr: "old:1", LastSeen: 100}}, 5000, 100)
	tbl.Merge([]GossipNode{{ID: "node-a", Addr: "stale:1", LastSeen: 50}}, 5000, 100)

	n, ok := tbl.Get("node-a")
	if !ok || n.Addr != "old:1" {
		t.Fatalf("expected older gossip update to be ignored, got %+v", n)
	}

	tbl.Merge([]GossipNode{{ID: "node-a", Addr: "new:1", LastSeen: 200}}, 5000, 200)
	n, _ = tbl.Get("node-a")
	if n.Addr != "new:1" {
		t.Fatalf("expected newer gossip update to win, got %+v", n)
	}
}
