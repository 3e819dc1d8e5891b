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
package server

import (
	"bufio"
	"net"
	"testing"
	"time"

	"github.com/spineldb/spineldb/config"
	"github.com/spineldb/spineldb/dispatch"
	"github.com/spineldb/spineldb/eventbus"
	"github.com/spineldb/spineldb/replication"
	"github.com/spineldb/spineldb/resp"
	"github.com/spineldb/spineldb/storage"
)

func newTestServer(t *testing.T) (*Server, net.Conn) {
	t.Helper()
	reg := storage.NewRegistry(2, 4)
	cmds := dispatch.NewRegistry()
	cmds.Register(&dispatch.Command{
		Name: "ECHO", Arity: 2, Flags: dispatch.FlagReadOnly,
		Handler: func(ctx *dispatch.ExecContext, args []string) (resp.Value, error) {
			return resp.Bulk(args[0]), nil
		},
	})
	events := eventbus.New(16)
	t.Cleanup(events.Close)

	s := New(config.Default(), reg, cmds, events, nil, nil,
		replication.NewRegistry(), replication.NewBacklog(16, "test"), nil, nil)
	if err := s.Listen("127.0.0.1:0"); err != nil {
		t.Fatalf("listen: %v", err)
	}
	go s.Serve()
	t.Cleanup(func() { s.Close() })

	conn, err := net.DialTimeout("tcp", s.Addr(), time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return s, conn
}

func TestPingPong(t *testing.T) {
	_, conn := newTestServer(t)
	w := resp.NewWriter(bufio.NewWriter(conn))
	w.WriteValue(resp.Array(resp.Bulk("PING")))
	w.Flush()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	br := bufio.NewReader(conn)
	line, err := br.ReadString('\n')
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if line != "+PONG\r\n" {
		t.Fatalf("expected +PONG, got %q", line)
	}
}

func TestEchoRoundTrip(t *testing.T) {
	_, conn := newTestServer(t)
	w := resp.NewWriter(bufio.NewWriter(conn))
	w.WriteValue(resp.Array(resp.Bulk("ECHO"), resp.Bulk("hello")))
	w.Flush()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	br := bufio.NewReader(conn)
	line, err := br.ReadString('\n')
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if line != "$5\r\n" {
		t.Fatalf("expected bulk length header for 'hello', got %q", line)
	}
	body, _ := br.ReadString('\n')
	if body != "hello\r\n" {
		t.Fatalf("expected echoed body, got %q", body)
	}
}

func TestMultiExecQueuesAndRuns(t *testing.T) {
	_, conn := newTestServer(t)
	w := resp.NewWriter(bufio.NewWriter(conn))
	br := bufio.NewReader(conn)

	send := func(args ...string) {
		elems := make([]resp.Value, len(args))
		for i, a := range args {
			elems[i] = resp.Bulk(a)
		}
		w.WriteValue(resp.ArraySlice(elems))
		w.Flush()
	}
	readLine := func() string {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		l, err := br.ReadString('\n')
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		return l
	}

	send("MULTI")
	if got := readLine(); got != "+OK\r\n" {
		t.Fatalf("expected +OK after MULTI, got %q", got)
	}
	send("ECHO", "queued-one")
	if got := readLine(); got != "+QUEUED\r\n" {
		t.Fatalf("expected +QUEUED, got %q", got)
	}
	send("EXEC")
	if got := readLine(); got != "*1\r\n" {
		t.Fatalf("expected a one-element array reply, got %q", got)
	}
}
