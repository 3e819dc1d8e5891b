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
	"strconv"
	"strings"

	"github.com/spineldb/spineldb/cluster"
	"github.com/spineldb/spineldb/dispatch"
	"github.com/spineldb/spineldb/resp"
)

// registerClusterCommands wires spec.md §4.11's cluster fabric (slot table,
// node table, migration handshake) to the CLUSTER subcommand family. clu is
// nil when the server was started without cluster mode; ADDSLOTS and SETSLOT
// then answer with a cluster-support-disabled error, and the remaining
// subcommands report their standalone equivalent.
func registerClusterCommands(r *dispatch.Registry, clu *cluster.Cluster) {
	r.Register(&dispatch.Command{Name: "CLUSTER", Arity: -2, Flags: dispatch.FlagAdmin,
		Handler: func(ctx *dispatch.ExecContext, args []string) (resp.Value, error) { return cmdCluster(ctx, clu, args) }})
}

func cmdCluster(ctx *dispatch.ExecContext, clu *cluster.Cluster, args []string) (resp.Value, error) {
	sub := strings.ToUpper(args[0])
	switch sub {
	case "MYID":
		if clu == nil {
			return resp.Bulk(""), nil
		}
		return resp.Bulk(clu.LocalID), nil
	case "INFO":
		return clusterInfo(clu), nil
	case "NODES":
		return clusterNodes(clu), nil
	case "SLOTS":
		return clusterSlots(clu), nil
	case "KEYSLOT":
		if len(args) != 2 {
			return resp.Value{}, dispatch.NewError(dispatch.KindErr, "wrong number of arguments for 'cluster|keyslot' command")
		}
		return resp.Integer(int64(cluster.HashSlot(args[1]))), nil
	case "ADDSLOTS":
		return clusterAddSlots(clu, args[1:])
	case "SETSLOT":
		return clusterSetSlot(clu, args[1:])
	}
	return resp.Value{}, dispatch.NewError(dispatch.KindErr, "Unknown CLUSTER subcommand or wrong number of arguments for '%s'", args[0])
}

func clusterInfo(clu *cluster.Cluster) resp.Value {
	enabled := clu != nil && clu.Enabled
	state := "ok"
	var epoch uint64
	assigned := 0
	if clu != nil {
		epoch = clu.Epoch
		for i := 0; i < cluster.SlotCount; i++ {
			if clu.Slots.Get(i).Owner != "" {
				assigned++
			}
		}
		if enabled && assigned < cluster.SlotCount {
			state = "fail"
		}
	}
	enabledFlag := 0
	if enabled {
		enabledFlag = 1
	}
	info := "cluster_enabled:" + strconv.Itoa(enabledFlag) + "\r\n" +
		"cluster_state:" + state + "\r\n" +
		"cluster_slots_assigned:" + strconv.Itoa(assigned) + "\r\n" +
		"cluster_current_epoch:" + strconv.FormatUint(epoch, 10) + "\r\n"
	return resp.Bulk(info)
}

func clusterNodes(clu *cluster.Cluster) resp.Value {
	if clu == nil {
		return resp.Bulk("")
	}
	var b strings.Builder
	for _, n := range clu.Nodes.All() {
		role := "master"
		if n.Role == cluster.RoleReplica {
			role = "slave"
		}
		b.WriteString(n.ID)
		b.WriteByte(' ')
		b.WriteString(n.Addr)
		b.WriteByte(' ')
		b.WriteString(role)
		b.WriteByte(' ')
		b.WriteString(strconv.FormatInt(n.Offset, 10))
		b.WriteByte('\n')
	}
	return resp.Bulk(b.String())
}

func clusterSlots(clu *cluster.Cluster) resp.Value {
	if clu == nil {
		return resp.ArraySlice(nil)
	}
	var ranges []resp.Value
	start := -1
	var owner string
	flush := func(end int) {
		if start < 0 {
			return
		}
		node, _ := clu.Nodes.Get(owner)
		ranges = append(ranges, resp.Array(
			resp.Integer(int64(start)), resp.Integer(int64(end)),
			resp.Array(resp.Bulk(node.Addr), resp.Bulk(owner)),
		))
	}
	for i := 0; i < cluster.SlotCount; i++ {
		o := clu.Slots.Get(i).Owner
		if o != owner {
			flush(i - 1)
			start, owner = -1, o
			if o != "" {
				start = i
			}
		}
	}
	flush(cluster.SlotCount - 1)
	return resp.ArraySlice(ranges)
}

func clusterAddSlots(clu *cluster.Cluster, args []string) (resp.Value, error) {
	if clu == nil {
		return resp.Value{}, dispatch.NewError(dispatch.KindErr, "This instance has cluster support disabled")
	}
	for _, a := range args {
		slot, err := strconv.Atoi(a)
		if err != nil || slot < 0 || slot >= cluster.SlotCount {
			return resp.Value{}, dispatch.NewError(dispatch.KindErr, "Invalid slot")
		}
		clu.Slots.SetOwner(slot, clu.LocalID)
	}
	return resp.OK(), nil
}

// clusterSetSlot implements the MIGRATING/IMPORTING/NODE/STABLE forms used
// by spec.md §4's migration handshake (BeginMigration/MarkImporting/
// CompleteMigration).
func clusterSetSlot(clu *cluster.Cluster, args []string) (resp.Value, error) {
	if clu == nil {
		return resp.Value{}, dispatch.NewError(dispatch.KindErr, "This instance has cluster support disabled")
	}
	if len(args) < 2 {
		return resp.Value{}, dispatch.NewError(dispatch.KindErr, "syntax error")
	}
	slot, err := strconv.Atoi(args[0])
	if err != nil || slot < 0 || slot >= cluster.SlotCount {
		return resp.Value{}, dispatch.NewError(dispatch.KindErr, "Invalid slot")
	}
	switch strings.ToUpper(args[1]) {
	case "MIGRATING":
		if len(args) != 3 {
			return resp.Value{}, dispatch.NewError(dispatch.KindErr, "syntax error")
		}
		clu.BeginMigration(slot, args[2])
	case "IMPORTING":
		if len(args) != 3 {
			return resp.Value{}, dispatch.NewError(dispatch.KindErr, "syntax error")
		}
		clu.MarkImporting(slot, args[2])
	case "NODE":
		if len(args) != 3 {
			return resp.Value{}, dispatch.NewError(dispatch.KindErr, "syntax error")
		}
		clu.CompleteMigration(slot, args[2])
	case "STABLE":
		clu.Slots.SetOwner(slot, clu.Slots.Get(slot).Owner)
	default:
		return resp.Value{}, dispatch.NewError(dispatch.KindErr, "syntax error")
	}
	return resp.OK(), nil
}
