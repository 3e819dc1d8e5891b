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
	"io"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spineldb/spineldb/dispatch"
	"github.com/spineldb/spineldb/logx"
	"github.com/spineldb/spineldb/resp"
	"github.com/spineldb/spineldb/txn"
)

// session is the live state of one accepted connection: its RESP codec, its
// negotiated protocol, and its MULTI/WATCH transaction. Grounded on the
// teacher's mysqlsessions map (scm/mysql.go), which keys a fresh *Session
// per accepted connection by session ID; here the session is owned directly
// by the connection's goroutine instead of a package-level sync.Map, since
// RESP (unlike the MySQL wire protocol) has no separate auth callback phase
// invoked by a library-owned listener.
type session struct {
	conn    net.Conn
	id      uint64
	r       *resp.Reader
	writeMu sync.Mutex // guards w: pub/sub push messages and command replies share one writer
	w       *resp.Writer
	state   *dispatch.ConnState
	tx      *txn.Tx
	sub     *subscription // non-nil once SUBSCRIBE/PSUBSCRIBE has been used
}

// send writes and flushes one frame, serialized against concurrent
// asynchronous pub/sub pushes from (*subscription).pump.
func (s *session) send(v resp.Value) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.w.WriteValue(v); err != nil {
		return err
	}
	return s.w.Flush()
}

func (s *Server) handleConn(id uint64, conn net.Conn) {
	defer conn.Close()
	logx.Debug("connection accepted", "id", id, "addr", conn.RemoteAddr())

	br := bufio.NewReader(conn)
	bw := bufio.NewWriter(conn)
	sess := &session{
		conn:  conn,
		id:    id,
		r:     resp.NewReader(br, resp.DefaultLimits()),
		w:     resp.NewWriter(bw),
		state: dispatch.NewConnState(id),
		tx:    txn.New(),
	}
	defer func() {
		if sess.sub != nil {
			close(sess.sub.done)
		}
	}()

	for {
		args, err := sess.r.ReadCommand()
		if err != nil {
			if err != io.EOF {
				logx.Debug("connection read error", "id", id, "err", err)
			}
			return
		}
		if len(args) == 0 {
			continue
		}

		if s.dispatchOne(sess, args) {
			return
		}
	}
}

// dispatchOne executes one already-parsed command line, intercepting the
// connection-scoped meta-commands (HELLO/AUTH/SELECT/PING/QUIT/MULTI/EXEC/
// DISCARD/WATCH/UNWATCH/SUBSCRIBE family) before falling through to the
// keyspace dispatcher, the same split the teacher draws between session
// setup (MySQLWrapper.ComInitDB/AuthCheck, handled by the listener) and
// query execution (handled by the querycallback). Returns true if the
// connection should be closed after this command (QUIT).
func (s *Server) dispatchOne(sess *session, args []string) bool {
	name := strings.ToUpper(args[0])
	start := time.Now()
	defer func() {
		s.Slow.Record(args, time.Since(start).Microseconds(), time.Now().UnixMilli(), sess.conn.RemoteAddr().String(), sess.state.User)
	}()

	switch name {
	case "QUIT":
		sess.send(resp.OK())
		return true
	case "PING":
		if len(args) > 1 {
			sess.send(resp.Bulk(args[1]))
		} else {
			sess.send(resp.SimpleString("PONG"))
		}
		return false
	case "HELLO":
		s.handleHello(sess, args[1:])
		return false
	case "AUTH":
		s.handleAuth(sess, args[1:])
		return false
	case "SELECT":
		s.handleSelect(sess, args[1:])
		return false
	case "MULTI":
		sess.tx.Begin()
		sess.send(resp.OK())
		return false
	case "DISCARD":
		if !sess.tx.InMulti() {
			sess.send(resp.ErrorReply("ERR DISCARD without MULTI"))
			return false
		}
		sess.tx.Discard()
		sess.send(resp.OK())
		return false
	case "WATCH":
		s.handleWatch(sess, args[1:])
		return false
	case "UNWATCH":
		sess.tx.Unwatch()
		sess.send(resp.OK())
		return false
	case "EXEC":
		s.handleExec(sess)
		return false
	case "SUBSCRIBE", "UNSUBSCRIBE", "PSUBSCRIBE", "PUNSUBSCRIBE":
		s.handlePubSub(sess, name, args[1:])
		return false
	}

	if sess.tx.InMulti() {
		if !sess.tx.Queue(args) {
			sess.tx.MarkDirty()
		}
		sess.send(resp.SimpleString("QUEUED"))
		return false
	}

	v, err := s.execute(sess, args)
	if err != nil {
		sess.send(resp.ErrorReply(err.Error()))
		return false
	}
	sess.send(v)
	return false
}

// execute runs one command through the shared dispatcher, building a fresh
// ExecContext bound to this session's selected database.
func (s *Server) execute(sess *session, args []string) (resp.Value, error) {
	ctx := &dispatch.ExecContext{
		Conn:     sess.state,
		DB:       s.Registry.Database(sess.state.DBIndex),
		Registry: s.Registry,
		Cluster:  s.slotChecker(),
		Events:   s.Events,
		ACL:      s.authorizer(),
		Tx:       sess.tx,
	}
	return s.Dispatcher.Execute(ctx, args)
}

func (s *Server) handleHello(sess *session, args []string) {
	proto := sess.w.Proto
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || (n != 2 && n != 3) {
			sess.send(resp.ErrorReply("NOPROTO unsupported protocol version"))
			return
		}
		proto = resp.Protocol(n)
	}
	sess.w.Proto = proto
	sess.state.Resp3 = proto == resp.Proto3
	sess.send(resp.Map(
		resp.Bulk("server"), resp.Bulk("spineldb"),
		resp.Bulk("proto"), resp.Integer(int64(proto)),
		resp.Bulk("id"), resp.Integer(int64(sess.id)),
		resp.Bulk("mode"), helloMode(s),
		resp.Bulk("role"), resp.Bulk(s.Config.Replication.Role),
	))
}

func helloMode(s *Server) resp.Value {
	if s.Cluster != nil && s.Cluster.Enabled {
		return resp.Bulk("cluster")
	}
	return resp.Bulk("standalone")
}

func (s *Server) handleAuth(sess *session, args []string) {
	if s.ACL == nil || len(args) == 0 {
		sess.send(resp.ErrorReply("ERR AUTH not supported"))
		return
	}
	var user, pass string
	if len(args) == 1 {
		user, pass = "default", args[0]
	} else {
		user, pass = args[0], args[1]
	}
	if _, err := s.ACL.Authenticate(user, pass); err != nil {
		sess.send(resp.ErrorReply("WRONGPASS invalid username-password pair"))
		return
	}
	sess.state.User = user
	sess.send(resp.OK())
}

func (s *Server) handleSelect(sess *session, args []string) {
	if len(args) != 1 {
		sess.send(resp.ErrorReply("ERR wrong number of arguments for 'select' command"))
		return
	}
	idx, err := strconv.Atoi(args[0])
	if err != nil || idx < 0 || idx >= s.Registry.Count() {
		sess.send(resp.ErrorReply("ERR DB index is out of range"))
		return
	}
	sess.state.DBIndex = idx
	sess.send(resp.OK())
}

func (s *Server) handleWatch(sess *session, keys []string) {
	if sess.tx.InMulti() {
		sess.send(resp.ErrorReply("ERR WATCH inside MULTI is not allowed"))
		return
	}
	db := s.Registry.Database(sess.state.DBIndex)
	for _, k := range keys {
		var version uint64
		if e := db.Get(k); e != nil {
			version = e.Version
		}
		sess.tx.Watch(k, version)
	}
	sess.send(resp.OK())
}

func (s *Server) handleExec(sess *session) {
	db := s.Registry.Database(sess.state.DBIndex)
	queued, ok := sess.tx.PrepareExec(func(key string) uint64 {
		if e := db.Get(key); e != nil {
			return e.Version
		}
		return 0
	})
	if !ok {
		sess.send(resp.NullArray())
		return
	}
	results := make([]resp.Value, 0, len(queued))
	for _, cmdArgs := range queued {
		v, err := s.execute(sess, cmdArgs)
		if err != nil {
			results = append(results, resp.ErrorReply(err.Error()))
			continue
		}
		results = append(results, v)
	}
	sess.send(resp.ArraySlice(results))
}
