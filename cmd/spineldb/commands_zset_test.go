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

func TestZAddZScoreZCard(t *testing.T) {
	ctx := newTestCtx()
	n, err := cmdZAdd(ctx, []string{"z", "1", "a", "2", "b"})
	if err != nil || n.Int != 2 {
		t.Fatalf("zadd: n=%+v err=%v", n, err)
	}
	v, err := cmdZScore(ctx, []string{"z", "a"})
	if err != nil || v.Str != "1" {
		t.Fatalf("zscore: v=%+v err=%v", v, err)
	}
	c, err := cmdZCard(ctx, []string{"z"})
	if err != nil || c.Int != 2 {
		t.Fatalf("zcard: c=%+v err=%v", c, err)
	}
}

func TestZAddUpdateDoesNotCountAsAdded(t *testing.T) {
	ctx := newTestCtx()
	cmdZAdd(ctx, []string{"z", "1", "a"})
	n, err := cmdZAdd(ctx, []string{"z", "5", "a"})
	if err != nil || n.Int != 0 {
		t.Fatalf("expected 0 newly-added members on score update, got n=%+v err=%v", n, err)
	}
	v, _ := cmdZScore(ctx, []string{"z", "a"})
	if v.Str != "5" {
		t.Fatalf("expected updated score 5, got %q", v.Str)
	}
}

func TestZRangeOrdersByScore(t *testing.T) {
	ctx := newTestCtx()
	cmdZAdd(ctx, []string{"z", "3", "c", "1", "a", "2", "b"})
	v, err := cmdZRange(ctx, []string{"z", "0", "-1"})
	if err != nil || len(v.Elems) != 3 {
		t.Fatalf("zrange: v=%+v err=%v", v, err)
	}
	if v.Elems[0].Str != "a" || v.Elems[1].Str != "b" || v.Elems[2].Str != "c" {
		t.Fatalf("expected ascending score order, got %+v", v.Elems)
	}
}

func TestZRangeWithScores(t *testing.T) {
	ctx := newTestCtx()
	cmdZAdd(ctx, []string{"z", "1", "a", "2", "b"})
	v, err := cmdZRange(ctx, []string{"z", "0", "-1", "WITHSCORES"})
	if err != nil || len(v.Elems) != 4 {
		t.Fatalf("zrange withscores: v=%+v err=%v", v, err)
	}
	if v.Elems[0].Str != "a" || v.Elems[1].Str != "1" {
		t.Fatalf("expected member/score pairs, got %+v", v.Elems)
	}
}

func TestZRangeByScoreBounds(t *testing.T) {
	ctx := newTestCtx()
	cmdZAdd(ctx, []string{"z", "1", "a", "2", "b", "3", "c"})
	v, err := cmdZRangeByScore(ctx, []string{"z", "2", "+inf"})
	if err != nil || len(v.Elems) != 2 {
		t.Fatalf("zrangebyscore: v=%+v err=%v", v, err)
	}
}

func TestZRemAndZRank(t *testing.T) {
	ctx := newTestCtx()
	cmdZAdd(ctx, []string{"z", "1", "a", "2", "b", "3", "c"})
	rank, err := cmdZRank(ctx, []string{"z", "b"})
	if err != nil || rank.Int != 1 {
		t.Fatalf("zrank: rank=%+v err=%v", rank, err)
	}
	n, err := cmdZRem(ctx, []string{"z", "b"})
	if err != nil || n.Int != 1 {
		t.Fatalf("zrem: n=%+v err=%v", n, err)
	}
	v, err := cmdZScore(ctx, []string{"z", "b"})
	if err != nil || !v.IsNil() {
		t.Fatalf("expected removed member to read as missing, got v=%+v err=%v", v, err)
	}
}

func TestZIncrByCreatesMember(t *testing.T) {
	ctx := newTestCtx()
	v, err := cmdZIncrBy(ctx, []string{"z", "5", "a"})
	if err != nil || v.Str != "5" {
		t.Fatalf("zincrby: v=%+v err=%v", v, err)
	}
	v, err = cmdZIncrBy(ctx, []string{"z", "2.5", "a"})
	if err != nil || v.Str != "7.5" {
		t.Fatalf("second zincrby: v=%+v err=%v", v, err)
	}
}

func TestZSetWrongTypeAgainstString(t *testing.T) {
	ctx := newTestCtx()
	cmdSet(ctx, []string{"k", "v"})
	if _, err := cmdZAdd(ctx, []string{"k", "1", "m"}); err == nil {
		t.Fatalf("expected WRONGTYPE adding a zset member onto a string key")
	}
}
