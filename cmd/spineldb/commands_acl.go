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
	"sort"
	"strings"

	"github.com/spineldb/spineldb/acl"
	"github.com/spineldb/spineldb/dispatch"
	"github.com/spineldb/spineldb/resp"
)

// registerACLCommands wires spec.md §6's ACL users file to the ACL command
// family. store is nil when the server was started without an ACL file, in
// which case every subcommand reports an empty/disabled ACL surface rather
// than panicking.
func registerACLCommands(r *dispatch.Registry, store *acl.Store) {
	r.Register(&dispatch.Command{Name: "ACL", Arity: -2, Flags: dispatch.FlagAdmin,
		Handler: func(ctx *dispatch.ExecContext, args []string) (resp.Value, error) { return cmdACL(ctx, store, args) }})
}

func cmdACL(ctx *dispatch.ExecContext, store *acl.Store, args []string) (resp.Value, error) {
	switch strings.ToUpper(args[0]) {
	case "WHOAMI":
		if ctx.Conn.User == "" {
			return resp.Bulk("default"), nil
		}
		return resp.Bulk(ctx.Conn.User), nil
	case "LIST":
		return aclList(store), nil
	case "CAT":
		return resp.ArraySlice([]resp.Value{
			resp.Bulk("@read"), resp.Bulk("@write"), resp.Bulk("@admin"), resp.Bulk("@other"),
		}), nil
	case "GETUSER":
		if len(args) != 2 {
			return resp.Value{}, dispatch.NewError(dispatch.KindErr, "wrong number of arguments for 'acl|getuser' command")
		}
		return aclGetUser(store, args[1]), nil
	case "SETUSER":
		if len(args) < 2 {
			return resp.Value{}, dispatch.NewError(dispatch.KindErr, "wrong number of arguments for 'acl|setuser' command")
		}
		return aclSetUser(store, args[1], args[2:])
	case "DELUSER":
		if store == nil || len(args) < 2 {
			return resp.Integer(0), nil
		}
		n := 0
		for _, name := range args[1:] {
			if _, ok := store.Get(name); ok {
				store.Delete(name)
				n++
			}
		}
		if n > 0 {
			_ = store.Save()
		}
		return resp.Integer(int64(n)), nil
	}
	return resp.Value{}, dispatch.NewError(dispatch.KindErr, "Unknown ACL subcommand or wrong number of arguments for '%s'", args[0])
}

func aclList(store *acl.Store) resp.Value {
	if store == nil {
		return resp.ArraySlice(nil)
	}
	users := store.List()
	sort.Slice(users, func(i, j int) bool { return users[i].Name < users[j].Name })
	out := make([]resp.Value, len(users))
	for i, u := range users {
		out[i] = resp.Bulk(describeUser(u))
	}
	return resp.ArraySlice(out)
}

func describeUser(u *acl.User) string {
	var b strings.Builder
	b.WriteString("user ")
	b.WriteString(u.Name)
	if u.Enabled {
		b.WriteString(" on")
	} else {
		b.WriteString(" off")
	}
	if u.AllowAll {
		b.WriteString(" allcommands")
	} else {
		b.WriteString(" commands=" + strings.Join(u.Commands, ","))
	}
	if len(u.KeyPatterns) == 0 {
		b.WriteString(" allkeys")
	} else {
		b.WriteString(" keys=" + strings.Join(u.KeyPatterns, " "))
	}
	return b.String()
}

func aclGetUser(store *acl.Store, name string) resp.Value {
	if store == nil {
		return resp.NullArray()
	}
	u, ok := store.Get(name)
	if !ok {
		return resp.NullArray()
	}
	commands := u.Commands
	if u.AllowAll {
		commands = []string{"@all"}
	}
	cmdsResp := make([]resp.Value, len(commands))
	for i, c := range commands {
		cmdsResp[i] = resp.Bulk(c)
	}
	keyPatterns := make([]resp.Value, len(u.KeyPatterns))
	for i, k := range u.KeyPatterns {
		keyPatterns[i] = resp.Bulk(k)
	}
	return resp.Map(
		resp.Bulk("flags"), resp.ArraySlice([]resp.Value{resp.Bulk(enabledFlag(u.Enabled))}),
		resp.Bulk("commands"), resp.ArraySlice(cmdsResp),
		resp.Bulk("keys"), resp.ArraySlice(keyPatterns),
	)
}

func enabledFlag(enabled bool) string {
	if enabled {
		return "on"
	}
	return "off"
}

// aclSetUser implements a subset of Redis's rule grammar: on/off, nopass
// (handled implicitly by omission), >password, allcommands/nocommands,
// +name/-name, allkeys/resetkeys, ~pattern.
func aclSetUser(store *acl.Store, name string, rules []string) (resp.Value, error) {
	if store == nil {
		return resp.Value{}, dispatch.NewError(dispatch.KindErr, "ACL support is not enabled on this instance")
	}
	u, existing := store.Get(name)
	if !existing {
		u = &acl.User{Name: name}
	}
	for _, rule := range rules {
		switch {
		case rule == "on":
			u.Enabled = true
		case rule == "off":
			u.Enabled = false
		case rule == "allcommands":
			u.AllowAll = true
		case rule == "nocommands":
			u.AllowAll = false
			u.Commands = nil
		case rule == "allkeys":
			u.KeyPatterns = nil
		case rule == "resetkeys":
			u.KeyPatterns = []string{}
		case strings.HasPrefix(rule, "+"):
			u.Commands = append(u.Commands, strings.ToLower(rule[1:]))
		case strings.HasPrefix(rule, "-"):
			drop := strings.ToLower(rule[1:])
			kept := u.Commands[:0]
			for _, c := range u.Commands {
				if c != drop {
					kept = append(kept, c)
				}
			}
			u.Commands = kept
		case strings.HasPrefix(rule, "~"):
			u.KeyPatterns = append(u.KeyPatterns, rule[1:])
		case strings.HasPrefix(rule, ">"):
			hash, err := acl.HashPassword(rule[1:])
			if err != nil {
				return resp.Value{}, dispatch.NewError(dispatch.KindErr, "%s", err.Error())
			}
			u.PasswordHash = hash
		default:
			return resp.Value{}, dispatch.NewError(dispatch.KindErr, "Error in ACL SETUSER modifier '%s'", rule)
		}
	}
	store.Upsert(u)
	if err := store.Save(); err != nil {
		return resp.Value{}, dispatch.NewError(dispatch.KindErr, "%s", err.Error())
	}
	return resp.OK(), nil
}
