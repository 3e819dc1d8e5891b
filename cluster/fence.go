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

import "github.com/spineldb/spineldb/dispatch"

// Fenced reports whether the local node should refuse writes because it can
// no longer see a quorum of the cluster, per spec.md §11's "quorum-driven
// read-only fencing": a node that has lost contact with more than half of
// the other known primaries demotes itself to read-only until contact is
// restored, preventing a split-brain minority from accepting writes.
func (c *Cluster) Fenced(nodeTimeoutMs int64, nowMs int64) bool {
	if !c.Enabled {
		return false
	}
	var primaries, reachable int
	for _, n := range c.Nodes.All() {
		if n.Role != RolePrimary {
			continue
		}
		primaries++
		if n.ID == c.LocalID || nowMs-n.LastSeenAt.UnixMilli() <= nodeTimeoutMs {
			reachable++
		}
	}
	if primaries == 0 {
		return false
	}
	return reachable*2 <= primaries
}

// CheckWritable implements the write-gating half of dispatch.SlotChecker's
// contract: callers invoke this before CheckSlots on write commands so a
// fenced node rejects writes with CLUSTERDOWN regardless of slot ownership.
func (c *Cluster) CheckWritable(nodeTimeoutMs int64, nowMs int64) error {
	if c.Fenced(nodeTimeoutMs, nowMs) {
		return dispatch.ErrClusterDown
	}
	return nil
}
