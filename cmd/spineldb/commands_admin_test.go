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
	"strings"
	"testing"
	"time"

	"github.com/spineldb/spineldb/config"
	"github.com/spineldb/spineldb/slowlog"
)

func TestSlowlogRecordsAndReportsLen(t *testing.T) {
	ctx := newTestCtx()
	slow := slowlog.New(128, 10)
	slow.Record([]string{"GET", "k"}, 50, time.Now().UnixMilli(), "", "")
	n, err := cmdSlowlog(ctx, slow, []string{"LEN"})
	if err != nil || n.Int != 1 {
		t.Fatalf("slowlog len: n=%+v err=%v", n, err)
	}
	v, err := cmdSlowlog(ctx, slow, []string{"GET", "10"})
	if err != nil || len(v.Elems) != 1 {
		t.Fatalf("slowlog get: v=%+v err=%v", v, err)
	}
}

func TestSlowlogReset(t *testing.T) {
	ctx := newTestCtx()
	slow := slowlog.New(128, 10)
	slow.Record([]string{"GET", "k"}, 50, time.Now().UnixMilli(), "", "")
	if _, err := cmdSlowlog(ctx, slow, []string{"RESET"}); err != nil {
		t.Fatalf("slowlog reset: %v", err)
	}
	n, _ := cmdSlowlog(ctx, slow, []string{"LEN"})
	if n.Int != 0 {
		t.Fatalf("expected slowlog length 0 after reset, got %d", n.Int)
	}
}

func TestLatencyHistoryAndReset(t *testing.T) {
	ctx := newTestCtx()
	latency := slowlog.NewMonitor()
	latency.Record("command", 250, 100, time.Now().UnixMilli())
	samples, err := cmdLatency(ctx, latency, []string{"HISTORY", "command"})
	if err != nil || len(samples.Elems) != 1 {
		t.Fatalf("latency history: v=%+v err=%v", samples, err)
	}
	if _, err := cmdLatency(ctx, latency, []string{"RESET"}); err != nil {
		t.Fatalf("latency reset: %v", err)
	}
}

func TestConfigGetSetMaxMemory(t *testing.T) {
	ctx := newTestCtx()
	cfg := config.Default()
	if _, err := cmdConfig(ctx, cfg, []string{"SET", "maxmemory", "100mb"}); err != nil {
		t.Fatalf("config set: %v", err)
	}
	v, err := cmdConfig(ctx, cfg, []string{"GET", "maxmemory"})
	if err != nil || len(v.Elems) != 2 || v.Elems[1].Str != "100mb" {
		t.Fatalf("config get: v=%+v err=%v", v, err)
	}
}

func TestInfoReportsKeyspace(t *testing.T) {
	ctx := newTestCtx()
	cfg := config.Default()
	cmdSet(ctx, []string{"k", "v"})
	v, err := cmdInfo(ctx, cfg, time.Now(), nil)
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	if !containsAll(v.Str, "# Server", "# Replication", "# Keyspace", "db0:keys=1") {
		t.Fatalf("unexpected INFO reply: %s", v.Str)
	}
}

func containsAll(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}
