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

	"github.com/spineldb/spineldb/config"
	"github.com/spineldb/spineldb/dispatch"
	"github.com/spineldb/spineldb/replication"
	"github.com/spineldb/spineldb/resp"
)

// registerReplicationCommands wires spec.md §4.9's primary/replica
// handshake (REPLCONF/PSYNC/REPLICAOF) to replication.Backlog/Registry.
// PSYNC's reply here carries the handshake decision (full vs. partial
// resync, and the backlogged commands for a partial one) as a single RESP
// reply rather than switching the connection into a raw streaming mode --
// the continuous fan-out after the handshake rides Registry.Attach's
// channel, which the connection loop drains the same way it would any other
// push notification, not something this synchronous command handler itself
// blocks on.
func registerReplicationCommands(r *dispatch.Registry, repl *replication.Registry, backlog *replication.Backlog, cfg *config.Config) {
	r.Register(&dispatch.Command{Name: "REPLCONF", Arity: -1, Flags: dispatch.FlagAdmin, Handler: cmdReplConf})
	r.Register(&dispatch.Command{Name: "PSYNC", Arity: 3, Flags: dispatch.FlagAdmin,
		Handler: func(ctx *dispatch.ExecContext, args []string) (resp.Value, error) { return cmdPsync(ctx, repl, backlog, args) }})
	r.Register(&dispatch.Command{Name: "REPLICAOF", Arity: 3, Flags: dispatch.FlagAdmin,
		Handler: func(ctx *dispatch.ExecContext, args []string) (resp.Value, error) { return cmdReplicaOf(ctx, cfg, args) }})
	r.Register(&dispatch.Command{Name: "SLAVEOF", Arity: 3, Flags: dispatch.FlagAdmin,
		Handler: func(ctx *dispatch.ExecContext, args []string) (resp.Value, error) { return cmdReplicaOf(ctx, cfg, args) }})
}

// cmdReplConf accepts the capability/listening-port handshake fields a
// replica announces before PSYNC; none of them change server behavior, so
// those subcommands just acknowledge, and GETACK answers REPLCONF ACK 0.
func cmdReplConf(ctx *dispatch.ExecContext, args []string) (resp.Value, error) {
	if len(args) == 0 {
		return resp.Value{}, dispatch.NewError(dispatch.KindErr, "wrong number of arguments for 'replconf' command")
	}
	if strings.EqualFold(args[0], "GETACK") {
		return resp.Array(resp.Bulk("REPLCONF"), resp.Bulk("ACK"), resp.Bulk("0")), nil
	}
	return resp.OK(), nil
}

// connReplicaAddr derives a stable per-connection identity for the replica
// registry from the connection ID dispatch.ConnState carries, since
// ExecContext has no direct access to the underlying net.Conn's remote
// address.
func connReplicaAddr(ctx *dispatch.ExecContext) string {
	return "conn-" + strconv.FormatUint(ctx.Conn.ID, 10)
}

func cmdPsync(ctx *dispatch.ExecContext, repl *replication.Registry, backlog *replication.Backlog, args []string) (resp.Value, error) {
	offset, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil && args[1] != "-1" {
		return resp.Value{}, dispatch.NewError(dispatch.KindErr, "value is not an integer or out of range")
	}
	reply := backlog.Psync(args[0], offset)
	repl.Attach(connReplicaAddr(ctx), 1024)

	if reply.FullResync {
		return resp.Array(
			resp.Bulk("FULLRESYNC"),
			resp.Bulk(reply.ReplID),
			resp.Integer(reply.Offset),
		), nil
	}
	out := make([]resp.Value, len(reply.Commands))
	for i, c := range reply.Commands {
		cmdArgs := make([]resp.Value, len(c.Args))
		for j, a := range c.Args {
			cmdArgs[j] = resp.Bulk(a)
		}
		out[i] = resp.Array(
			resp.Integer(c.Offset),
			resp.Integer(int64(c.DBIndex)),
			resp.ArraySlice(cmdArgs),
		)
	}
	return resp.Array(
		resp.Bulk("CONTINUE"),
		resp.Bulk(reply.ReplID),
		resp.Integer(reply.Offset),
		resp.ArraySlice(out),
	), nil
}

// cmdReplicaOf implements REPLICAOF host port / REPLICAOF NO ONE, flipping
// this instance's advertised role in cfg.Replication; actually opening
// the replica-side connection to the new primary is the connection loop's
// concern (outside a command handler's synchronous request/response shape),
// so this updates the role the rest of the server observes via cfg.
func cmdReplicaOf(ctx *dispatch.ExecContext, cfg *config.Config, args []string) (resp.Value, error) {
	if strings.EqualFold(args[0], "NO") && strings.EqualFold(args[1], "ONE") {
		cfg.Replication.Role = "master"
		cfg.Replication.PrimaryHost = ""
		cfg.Replication.PrimaryPort = 0
		return resp.OK(), nil
	}
	port, err := strconv.Atoi(args[1])
	if err != nil {
		return resp.Value{}, dispatch.NewError(dispatch.KindErr, "Invalid master port")
	}
	cfg.Replication.Role = "slave"
	cfg.Replication.PrimaryHost = args[0]
	cfg.Replication.PrimaryPort = port
	return resp.OK(), nil
}
