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

	"github.com/spineldb/spineldb/dispatch"
	"github.com/spineldb/spineldb/storage"
)

func newTestCtx() *dispatch.ExecContext {
	reg := storage.NewRegistry(1, 4)
	return &dispatch.ExecContext{DB: reg.Database(0), Registry: reg}
}

func TestSetThenGet(t *testing.T) {
	ctx := newTestCtx()
	if _, err := cmdSet(ctx, []string{"k", "v"}); err != nil {
		t.Fatalf("set: %v", err)
	}
	v, err := cmdGet(ctx, []string{"k"})
	if err != nil || v.Str != "v" {
		t.Fatalf("get: v=%+v err=%v", v, err)
	}
}

func TestGetMissingReturnsNullBulk(t *testing.T) {
	ctx := newTestCtx()
	v, err := cmdGet(ctx, []string{"missing"})
	if err != nil || !v.IsNil() {
		t.Fatalf("expected nil bulk for missing key, got %+v err=%v", v, err)
	}
}

func TestSetNXRefusesExistingKey(t *testing.T) {
	ctx := newTestCtx()
	cmdSet(ctx, []string{"k", "v1"})
	v, err := cmdSet(ctx, []string{"k", "v2", "NX"})
	if err != nil || !v.IsNil() {
		t.Fatalf("expected NX to refuse, got %+v err=%v", v, err)
	}
	got, _ := cmdGet(ctx, []string{"k"})
	if got.Str != "v1" {
		t.Fatalf("expected NX to leave original value, got %q", got.Str)
	}
}

func TestExpireAndTTL(t *testing.T) {
	ctx := newTestCtx()
	cmdSet(ctx, []string{"k", "v"})
	n, err := cmdExpire(ctx, []string{"k", "100"})
	if err != nil || n.Int != 1 {
		t.Fatalf("expire: n=%+v err=%v", n, err)
	}
	ttl, err := cmdTTL(ctx, []string{"k"})
	if err != nil || ttl.Int <= 0 || ttl.Int > 100 {
		t.Fatalf("ttl out of range: %+v err=%v", ttl, err)
	}
}

func TestIncrOnMissingKeyStartsAtZero(t *testing.T) {
	ctx := newTestCtx()
	v, err := cmdIncr(ctx, []string{"counter"})
	if err != nil || v.Int != 1 {
		t.Fatalf("incr: v=%+v err=%v", v, err)
	}
	v, err = cmdIncr(ctx, []string{"counter"})
	if err != nil || v.Int != 2 {
		t.Fatalf("second incr: v=%+v err=%v", v, err)
	}
}

func TestIncrOnNonIntegerFails(t *testing.T) {
	ctx := newTestCtx()
	cmdSet(ctx, []string{"k", "not-a-number"})
	if _, err := cmdIncr(ctx, []string{"k"}); err == nil {
		t.Fatalf("expected error incrementing a non-integer string")
	}
}

func TestAppendGrowsString(t *testing.T) {
	ctx := newTestCtx()
	cmdSet(ctx, []string{"k", "hello"})
	n, err := cmdAppend(ctx, []string{"k", " world"})
	if err != nil || n.Int != 11 {
		t.Fatalf("append: n=%+v err=%v", n, err)
	}
	v, _ := cmdGet(ctx, []string{"k"})
	if v.Str != "hello world" {
		t.Fatalf("expected concatenated value, got %q", v.Str)
	}
}

func TestDelRemovesKeys(t *testing.T) {
	ctx := newTestCtx()
	cmdSet(ctx, []string{"a", "1"})
	cmdSet(ctx, []string{"b", "2"})
	n, err := cmdDel(ctx, []string{"a", "b", "missing"})
	if err != nil || n.Int != 2 {
		t.Fatalf("del: n=%+v err=%v", n, err)
	}
}

func TestGetWrongTypeErrors(t *testing.T) {
	ctx := newTestCtx()
	ctx.DB.SetLocked(&storage.KeyEntry{Key: []byte("k"), Value: &storage.Value{Kind: storage.KindList}})
	if _, err := cmdGet(ctx, []string{"k"}); err == nil {
		t.Fatalf("expected WRONGTYPE error reading a list key as a string")
	}
}

func TestExpiredKeyIsLazilyRemoved(t *testing.T) {
	ctx := newTestCtx()
	ctx.DB.SetLocked(&storage.KeyEntry{Key: []byte("k"), Value: &storage.Value{Kind: storage.KindString, Str: []byte("v")}, ExpireAtMs: 1})
	v, err := cmdGet(ctx, []string{"k"})
	if err != nil || !v.IsNil() {
		t.Fatalf("expected expired key to read as missing, got %+v err=%v", v, err)
	}
	if ctx.DB.GetLocked("k") != nil {
		t.Fatalf("expected expired key to be removed from the shard on access")
	}
}
