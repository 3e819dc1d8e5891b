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

func TestSAddSIsMemberSCard(t *testing.T) {
	ctx := newTestCtx()
	n, err := cmdSAdd(ctx, []string{"s", "a", "b", "a"})
	if err != nil || n.Int != 2 {
		t.Fatalf("sadd: n=%+v err=%v", n, err)
	}
	v, err := cmdSIsMember(ctx, []string{"s", "a"})
	if err != nil || v.Int != 1 {
		t.Fatalf("sismember: v=%+v err=%v", v, err)
	}
	c, err := cmdSCard(ctx, []string{"s"})
	if err != nil || c.Int != 2 {
		t.Fatalf("scard: c=%+v err=%v", c, err)
	}
}

func TestSRemEmptiesKey(t *testing.T) {
	ctx := newTestCtx()
	cmdSAdd(ctx, []string{"s", "only"})
	n, err := cmdSRem(ctx, []string{"s", "only"})
	if err != nil || n.Int != 1 {
		t.Fatalf("srem: n=%+v err=%v", n, err)
	}
	if ctx.DB.GetLocked("s") != nil {
		t.Fatalf("expected key to be removed once the set is empty")
	}
}

func TestSInterSUnionSDiff(t *testing.T) {
	ctx := newTestCtx()
	cmdSAdd(ctx, []string{"a", "1", "2", "3"})
	cmdSAdd(ctx, []string{"b", "2", "3", "4"})

	inter, err := cmdSInter(ctx, []string{"a", "b"})
	if err != nil || len(inter.Elems) != 2 {
		t.Fatalf("sinter: v=%+v err=%v", inter, err)
	}
	union, err := cmdSUnion(ctx, []string{"a", "b"})
	if err != nil || len(union.Elems) != 4 {
		t.Fatalf("sunion: v=%+v err=%v", union, err)
	}
	diff, err := cmdSDiff(ctx, []string{"a", "b"})
	if err != nil || len(diff.Elems) != 1 {
		t.Fatalf("sdiff: v=%+v err=%v", diff, err)
	}
}

func TestSetWrongTypeAgainstString(t *testing.T) {
	ctx := newTestCtx()
	cmdSet(ctx, []string{"k", "v"})
	if _, err := cmdSAdd(ctx, []string{"k", "m"}); err == nil {
		t.Fatalf("expected WRONGTYPE adding a set member onto a string key")
	}
}
