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

func TestLPushRPushLRange(t *testing.T) {
	ctx := newTestCtx()
	if _, err := cmdRPush(ctx, []string{"l", "a", "b"}); err != nil {
		t.Fatalf("rpush: %v", err)
	}
	if _, err := cmdLPush(ctx, []string{"l", "z"}); err != nil {
		t.Fatalf("lpush: %v", err)
	}
	v, err := cmdLRange(ctx, []string{"l", "0", "-1"})
	if err != nil {
		t.Fatalf("lrange: %v", err)
	}
	if len(v.Elems) != 3 || v.Elems[0].Str != "z" || v.Elems[2].Str != "b" {
		t.Fatalf("unexpected order: %+v", v.Elems)
	}
}

func TestLPopEmptiesKey(t *testing.T) {
	ctx := newTestCtx()
	cmdRPush(ctx, []string{"l", "only"})
	v, err := cmdLPop(ctx, []string{"l"})
	if err != nil || v.Str != "only" {
		t.Fatalf("lpop: v=%+v err=%v", v, err)
	}
	if ctx.DB.GetLocked("l") != nil {
		t.Fatalf("expected key to be removed once the list is empty")
	}
}

func TestLPopCountForm(t *testing.T) {
	ctx := newTestCtx()
	cmdRPush(ctx, []string{"l", "a", "b", "c"})
	v, err := cmdLPop(ctx, []string{"l", "2"})
	if err != nil || len(v.Elems) != 2 || v.Elems[0].Str != "a" || v.Elems[1].Str != "b" {
		t.Fatalf("lpop count: v=%+v err=%v", v, err)
	}
}

func TestLSetAndLIndex(t *testing.T) {
	ctx := newTestCtx()
	cmdRPush(ctx, []string{"l", "a", "b", "c"})
	if _, err := cmdLSet(ctx, []string{"l", "1", "B"}); err != nil {
		t.Fatalf("lset: %v", err)
	}
	v, err := cmdLIndex(ctx, []string{"l", "1"})
	if err != nil || v.Str != "B" {
		t.Fatalf("lindex: v=%+v err=%v", v, err)
	}
}

func TestLRemRemovesMatches(t *testing.T) {
	ctx := newTestCtx()
	cmdRPush(ctx, []string{"l", "a", "b", "a", "c", "a"})
	n, err := cmdLRem(ctx, []string{"l", "2", "a"})
	if err != nil || n.Int != 2 {
		t.Fatalf("lrem: n=%+v err=%v", n, err)
	}
	v, _ := cmdLRange(ctx, []string{"l", "0", "-1"})
	if len(v.Elems) != 3 {
		t.Fatalf("expected 3 remaining elements, got %d", len(v.Elems))
	}
}

func TestListWrongTypeAgainstString(t *testing.T) {
	ctx := newTestCtx()
	cmdSet(ctx, []string{"k", "v"})
	if _, err := cmdLPush(ctx, []string{"k", "x"}); err == nil {
		t.Fatalf("expected WRONGTYPE pushing onto a string key")
	}
}
