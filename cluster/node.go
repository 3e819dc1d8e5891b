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
	"time"

	"github.com/launix-de/NonLockingReadMap"
)

// Role is a node's replication role within the cluster.
type Role int

const (
	RolePrimary Role = iota
	RoleReplica
)

// Node is one membership record, per spec.md §2's "membership set of node
// records (id, address, role, replication offset, last-seen, flags)".
//
// Nodes are modeled as an arena keyed by node id rather than pointer-linked
// (spec.md §9's "owning-pointer cycles ... model nodes in an arena keyed by
// node-id; cross-references are node-ids, not pointers"): peers reference
// each other by ID string, never by *Node, so the membership table can be
// swapped out wholesale on a gossip update without invalidating references
// held elsewhere.
type Node struct {
	ID         string
	Addr       string
	Role       Role
	Offset     int64
	LastSeenAt time.Time
	Flags      []string
}

func (n Node) GetKey() string { return n.ID }

// ComputeSize satisfies NonLockingReadMap.Sizable; node records are small
// and fixed-shape so an approximate constant is adequate for capacity
// accounting (the same approximation the teacher's own ComputeSize
// implementations use for fixed-size struct fields).
func (n Node) ComputeSize() uint {
	return 64 + uint(len(n.ID)+len(n.Addr))
}

// NodeTable is the process-wide node registry, grounded on the teacher's
// storage/database.go `databases map[string]*database` arena-by-name
// pattern, generalized to arena-by-node-id and swapped from a
// mutex-guarded plain map to NonLockingReadMap since node membership is
// read on every cluster-aware command dispatch but written only on gossip
// updates (spec.md §3: "process-wide, eventually consistent").
type NodeTable struct {
	m NonLockingReadMap.NonLockingReadMap[Node, string]
}

func NewNodeTable() *NodeTable {
	return &NodeTable{m: NonLockingReadMap.New[Node, string]()}
}

func (t *NodeTable) Upsert(n Node) {
	t.m.Set(&n)
}

func (t *NodeTable) Get(id string) (Node, bool) {
	n := t.m.Get(id)
	if n == nil {
		return Node{}, false
	}
	return *n, true
}

func (t *NodeTable) Remove(id string) {
	t.m.Remove(id)
}

func (t *NodeTable) All() []Node {
	ptrs := t.m.GetAll()
	out := make([]Node, len(ptrs))
	for i, p := range ptrs {
		out[i] = *p
	}
	return out
}
