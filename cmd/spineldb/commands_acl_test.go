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

	"github.com/spineldb/spineldb/acl"
	"github.com/spineldb/spineldb/dispatch"
)

func newACLStore(t *testing.T) *acl.Store {
	t.Helper()
	return acl.NewStore(t.TempDir() + "/users.json")
}

func TestACLWhoamiDefaultsWhenUnauthenticated(t *testing.T) {
	ctx := newTestCtx()
	ctx.Conn = dispatch.NewConnState(1)
	v, err := cmdACL(ctx, nil, []string{"WHOAMI"})
	if err != nil || v.Str != "default" {
		t.Fatalf("acl whoami: v=%+v err=%v", v, err)
	}
}

func TestACLSetUserThenGetUser(t *testing.T) {
	store := newACLStore(t)
	ctx := newTestCtx()
	ctx.Conn = dispatch.NewConnState(1)
	if _, err := cmdACL(ctx, store, []string{"SETUSER", "alice", "on", ">secret", "+get", "~foo:*"}); err != nil {
		t.Fatalf("acl setuser: %v", err)
	}
	if v := aclGetUser(store, "alice"); len(v.Elems) == 0 {
		t.Fatalf("expected a populated GETUSER reply, got %+v", v)
	}
	u, ok := store.Get("alice")
	if !ok || !u.Enabled || len(u.Commands) != 1 || u.Commands[0] != "get" {
		t.Fatalf("unexpected stored user: %+v", u)
	}
}

func TestACLDelUserRemovesEntry(t *testing.T) {
	store := newACLStore(t)
	ctx := newTestCtx()
	ctx.Conn = dispatch.NewConnState(1)
	cmdACL(ctx, store, []string{"SETUSER", "bob", "on"})
	n, err := cmdACL(ctx, store, []string{"DELUSER", "bob"})
	if err != nil || n.Int != 1 {
		t.Fatalf("acl deluser: n=%+v err=%v", n, err)
	}
	if _, ok := store.Get("bob"); ok {
		t.Fatalf("expected bob to be removed from the store")
	}
}

func TestACLSetUserWithoutStoreErrors(t *testing.T) {
	ctx := newTestCtx()
	ctx.Conn = dispatch.NewConnState(1)
	if _, err := cmdACL(ctx, nil, []string{"SETUSER", "alice", "on"}); err == nil {
		t.Fatalf("expected an error calling ACL SETUSER with ACL support disabled")
	}
}
