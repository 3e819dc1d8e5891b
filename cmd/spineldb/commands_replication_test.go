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

	"github.com/spineldb/spineldb/config"
	"github.com/spineldb/spineldb/dispatch"
	"github.com/spineldb/spineldb/replication"
)

func TestReplConfAcknowledgesByDefault(t *testing.T) {
	ctx := newTestCtx()
	v, err := cmdReplConf(ctx, []string{"listening-port", "6380"})
	if err != nil || v.Str != "OK" {
		t.Fatalf("replconf: v=%+v err=%v", v, err)
	}
}

func TestReplConfGetAckRepliesWithOffsetZero(t *testing.T) {
	ctx := newTestCtx()
	v, err := cmdReplConf(ctx, []string{"GETACK", "*"})
	if err != nil || len(v.Elems) != 3 || v.Elems[2].Str != "0" {
		t.Fatalf("replconf getack: v=%+v err=%v", v, err)
	}
}

func TestPsyncFullResyncOnUnknownReplID(t *testing.T) {
	ctx := newTestCtx()
	ctx.Conn = dispatch.NewConnState(1)
	repl := replication.NewRegistry()
	backlog := replication.NewBacklog(1024, replication.FormatReplID(1))
	v, err := cmdPsync(ctx, repl, backlog, []string{"?", "-1"})
	if err != nil || v.Elems[0].Str != "FULLRESYNC" {
		t.Fatalf("psync: v=%+v err=%v", v, err)
	}
	if repl.Count() != 1 {
		t.Fatalf("expected PSYNC to attach one replica stream, got %d", repl.Count())
	}
}

func TestReplicaOfSetsRoleAndNoOneResetsIt(t *testing.T) {
	ctx := newTestCtx()
	cfg := config.Default()
	if _, err := cmdReplicaOf(ctx, cfg, []string{"10.0.0.1", "6380"}); err != nil {
		t.Fatalf("replicaof: %v", err)
	}
	if cfg.Replication.Role != "slave" || cfg.Replication.PrimaryHost != "10.0.0.1" {
		t.Fatalf("unexpected replication state: %+v", cfg.Replication)
	}
	if _, err := cmdReplicaOf(ctx, cfg, []string{"NO", "ONE"}); err != nil {
		t.Fatalf("replicaof no one: %v", err)
	}
	if cfg.Replication.Role != "master" {
		t.Fatalf("expected REPLICAOF NO ONE to reset role to master, got %q", cfg.Replication.Role)
	}
}
