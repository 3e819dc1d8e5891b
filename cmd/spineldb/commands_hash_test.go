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

import "testing"

func TestHSetHGet(t *testing.T) {
	ctx := newTestCtx()
	n, err := cmdHSet(ctx, []string{"h", "f1", "v1", "f2", "v2"})
	if err != nil || n.Int != 2 {
		t.Fatalf("hset: n=%+v err=%v", n, err)
	}
	v, err := cmdHGet(ctx, []string{"h", "f1"})
	if err != nil || v.Str != "v1" {
		t.Fatalf("hget: v=%+v err=%v", v, err)
	}
}

func TestHSetOverwriteDoesNotCountAsAdded(t *testing.T) {
	ctx := newTestCtx()
	cmdHSet(ctx, []string{"h", "f", "v1"})
	n, err := cmdHSet(ctx, []string{"h", "f", "v2"})
	if err != nil || n.Int != 0 {
		t.Fatalf("expected 0 new fields on overwrite, got n=%+v err=%v", n, err)
	}
}

func TestHDelRemovesKeyWhenEmpty(t *testing.T) {
	ctx := newTestCtx()
	cmdHSet(ctx, []string{"h", "f", "v"})
	n, err := cmdHDel(ctx, []string{"h", "f"})
	if err != nil || n.Int != 1 {
		t.Fatalf("hdel: n=%+v err=%v", n, err)
	}
	if ctx.DB.GetLocked("h") != nil {
		t.Fatalf("expected key to be removed once the hash is empty")
	}
}

func TestHGetAllReturnsFlatPairs(t *testing.T) {
	ctx := newTestCtx()
	cmdHSet(ctx, []string{"h", "f1", "v1", "f2", "v2"})
	v, err := cmdHGetAll(ctx, []string{"h"})
	if err != nil || len(v.Elems) != 4 {
		t.Fatalf("hgetall: v=%+v err=%v", v, err)
	}
}

func TestHIncrBy(t *testing.T) {
	ctx := newTestCtx()
	cmdHSet(ctx, []string{"h", "n", "10"})
	v, err := cmdHIncrBy(ctx, []string{"h", "n", "5"})
	if err != nil || v.Int != 15 {
		t.Fatalf("hincrby: v=%+v err=%v", v, err)
	}
}

func TestHashWrongTypeAgainstString(t *testing.T) {
	ctx := newTestCtx()
	cmdSet(ctx, []string{"k", "v"})
	if _, err := cmdHSet(ctx, []string{"k", "f", "v"}); err == nil {
		t.Fatalf("expected WRONGTYPE writing a hash field onto a string key")
	}
}
