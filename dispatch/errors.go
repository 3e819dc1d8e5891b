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
package dispatch

import "fmt"

// Kind names the error-class prefix a CommandError carries, per spec.md §5's
// protocol-error taxonomy (WRONGTYPE/ERR/NOSCRIPT/NOPERM/MOVED/ASK/
// CROSSSLOT/READONLY/LOADING/BUSY/NOAUTH/OOM/CLUSTERDOWN).
type Kind string

const (
	KindWrongType   Kind = "WRONGTYPE"
	KindErr         Kind = "ERR"
	KindNoScript    Kind = "NOSCRIPT"
	KindNoPerm      Kind = "NOPERM"
	KindMoved       Kind = "MOVED"
	KindAsk         Kind = "ASK"
	KindCrossSlot   Kind = "CROSSSLOT"
	KindReadOnly    Kind = "READONLY"
	KindLoading     Kind = "LOADING"
	KindBusy        Kind = "BUSY"
	KindNoAuth      Kind = "NOAUTH"
	KindOOM         Kind = "OOM"
	KindClusterDown Kind = "CLUSTERDOWN"
)

// CommandError is a RESP error reply, tagged by Kind so callers (tests,
// replication, ACL) can switch on the class without parsing the message.
type CommandError struct {
	Kind Kind
	Msg  string
}

func (e *CommandError) Error() string {
	if e.Msg == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s %s", e.Kind, e.Msg)
}

func NewError(kind Kind, format string, args ...any) *CommandError {
	return &CommandError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Moved builds the redirection error a cluster node returns when a slot is
// owned by another node, per spec.md §4.4's cluster redirection contract.
func Moved(slot int, addr string) *CommandError {
	return &CommandError{Kind: KindMoved, Msg: fmt.Sprintf("%d %s", slot, addr)}
}

// Ask builds the one-shot redirection used mid-migration.
func Ask(slot int, addr string) *CommandError {
	return &CommandError{Kind: KindAsk, Msg: fmt.Sprintf("%d %s", slot, addr)}
}

var ErrCrossSlot = &CommandError{Kind: KindCrossSlot, Msg: "Keys in request don't hash to the same slot"}
var ErrReadOnly = &CommandError{Kind: KindReadOnly, Msg: "You can't write against a read only replica."}
var ErrLoading = &CommandError{Kind: KindLoading, Msg: "SpinelDB is loading the dataset in memory"}
var ErrNoAuth = &CommandError{Kind: KindNoAuth, Msg: "Authentication required."}
var ErrOOM = &CommandError{Kind: KindOOM, Msg: "command not allowed when used memory > 'maxmemory'."}
var ErrClusterDown = &CommandError{Kind: KindClusterDown, Msg: "The cluster is down"}

func WrongType() *CommandError {
	return &CommandError{Kind: KindWrongType, Msg: "Operation against a key holding the wrong kind of value"}
}
