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
package acl

import (
	"path"
	"strings"

	"github.com/spineldb/spineldb/dispatch"
)

// Check implements dispatch.Authorizer: a user with AllowAll passes every
// command; otherwise the command name (or its flag-derived category, see
// categoryOf) must appear in Commands, and every key touched must match at
// least one of KeyPatterns (glob matching via the stdlib path.Match, no
// ecosystem glob library is pulled in anywhere else in the pack for this
// exact purpose).
func (s *Store) Check(user string, cmd *dispatch.Command, keys []string) error {
	u, ok := s.Get(user)
	if !ok || !u.Enabled {
		return dispatch.ErrNoAuth
	}
	if u.AllowAll {
		return nil
	}
	if !commandAllowed(u, cmd) {
		return dispatch.NewError(dispatch.KindNoPerm,
			"this user has no permissions to run the '%s' command", cmd.Name)
	}
	if len(u.KeyPatterns) == 0 {
		return nil
	}
	for _, k := range keys {
		if !keyAllowed(u, k) {
			return dispatch.NewError(dispatch.KindNoPerm,
				"no permissions to access a key used as a parameter: '%s'", k)
		}
	}
	return nil
}

func commandAllowed(u *User, cmd *dispatch.Command) bool {
	name := strings.ToLower(cmd.Name)
	for _, allowed := range u.Commands {
		allowed = strings.ToLower(allowed)
		if allowed == name || allowed == "@all" {
			return true
		}
		if strings.HasPrefix(allowed, "@") && allowed == categoryOf(cmd) {
			return true
		}
	}
	return false
}

// categoryOf maps a command's dispatch flags to a coarse ACL category, the
// same granularity Redis ACL's @read/@write/@admin/@fast category names use.
func categoryOf(cmd *dispatch.Command) string {
	switch {
	case cmd.Flags&dispatch.FlagAdmin != 0:
		return "@admin"
	case cmd.Flags&dispatch.FlagWrite != 0:
		return "@write"
	case cmd.Flags&dispatch.FlagReadOnly != 0:
		return "@read"
	default:
		return "@other"
	}
}

func keyAllowed(u *User, key string) bool {
	for _, pattern := range u.KeyPatterns {
		if ok, err := path.Match(pattern, key); err == nil && ok {
			return true
		}
	}
	return false
}
