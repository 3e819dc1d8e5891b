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

// Package replication implements SpinelDB's primary/replica propagation:
// a bounded backlog ring buffer for partial resync, and PSYNC full/partial
// handshake logic. Grounded on the teacher's scm/mysql.go ComQuery result
// buffering (storage/result.Rows filled to cap() then flushed), generalized
// from "flush a bounded row buffer to one client" to "retain a bounded
// command history so a reconnecting replica can resume instead of
// re-streaming the whole dataset."
package replication

import (
	"fmt"
	"sync"
)

// Command is one propagated write, tagged with its offset in the replication
// stream (spec.md §4.9's "monotonic replication offset").
type Command struct {
	Offset int64
	DBIndex int
	Args    []string
}

// Backlog is a bounded ring buffer of recent Commands, letting a
// disconnected replica resume with PSYNC <replid> <offset> instead of a
// full resync, as long as it reconnects before its last-seen offset falls
// out of the ring. Grounded on the teacher's result.Rows buffer-then-flush
// idiom (scm/mysql.go), replacing "flush at capacity" with "overwrite the
// oldest entry at capacity" since this buffer must retain history, not
// drain it.
type Backlog struct {
	mu       sync.Mutex
	buf      []Command
	head     int // index of the oldest retained command
	size     int // number of valid commands currently in buf
	nextOff  int64
	ReplID   string
}

func NewBacklog(capacity int, replID string) *Backlog {
	return &Backlog{buf: make([]Command, capacity), nextOff: 1, ReplID: replID}
}

// Append adds a propagated command, assigning it the next offset.
func (b *Backlog) Append(dbIndex int, args []string) Command {
	b.mu.Lock()
	defer b.mu.Unlock()
	cmd := Command{Offset: b.nextOff, DBIndex: dbIndex, Args: args}
	b.nextOff++
	idx := (b.head + b.size) % len(b.buf)
	b.buf[idx] = cmd
	if b.size < len(b.buf) {
		b.size++
	} else {
		b.head = (b.head + 1) % len(b.buf)
	}
	return cmd
}

// Offset returns the offset assigned to the most recently appended command,
// i.e. the current stream position.
func (b *Backlog) Offset() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.nextOff - 1
}

// Since returns every retained command with Offset > since, along with
// whether that range is still fully present in the ring (false means the
// requested offset has already been evicted and a full resync is required).
func (b *Backlog) Since(since int64) ([]Command, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.size == 0 {
		return nil, since == b.nextOff-1
	}
	oldest := b.buf[b.head].Offset
	if since < oldest-1 {
		return nil, false
	}
	var out []Command
	for i := 0; i < b.size; i++ {
		cmd := b.buf[(b.head+i)%len(b.buf)]
		if cmd.Offset > since {
			out = append(out, cmd)
		}
	}
	return out, true
}

// PsyncReply is what the primary sends in response to PSYNC.
type PsyncReply struct {
	FullResync bool
	ReplID     string
	Offset     int64
	Commands   []Command // only set when FullResync is false
}

// Psync handles a replica's PSYNC <replid> <offset> request: if replID
// matches and offset is still in the backlog, it replies with a partial
// resync stream; otherwise the caller must perform a full SPLDB transfer.
func (b *Backlog) Psync(replID string, offset int64) PsyncReply {
	b.mu.Lock()
	curReplID := b.ReplID
	b.mu.Unlock()
	if replID != curReplID {
		return PsyncReply{FullResync: true, ReplID: curReplID, Offset: b.Offset()}
	}
	cmds, ok := b.Since(offset)
	if !ok {
		return PsyncReply{FullResync: true, ReplID: curReplID, Offset: b.Offset()}
	}
	return PsyncReply{FullResync: false, ReplID: curReplID, Offset: b.Offset(), Commands: cmds}
}

func FormatReplID(n uint64) string { return fmt.Sprintf("%040x", n) }
