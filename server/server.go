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

// Package server wires every subsystem package into one running process:
// the RESP listener, the per-connection session loop, and the background
// goroutines that drain the event bus into AOF and replication. Grounded on
// the teacher's main.go ("define user specific functions, storage.Init,
// scm.Repl()" — one function wiring every package together) and
// scm/mysql.go's MySQLWrapper (a session-keyed net.Listener accept loop
// bridging wire protocol to the query engine), generalized from the MySQL
// wire protocol to RESP.
package server

import (
	"errors"
	"net"
	"sync"
	"sync/atomic"

	"github.com/spineldb/spineldb/acl"
	"github.com/spineldb/spineldb/aof"
	"github.com/spineldb/spineldb/cache"
	"github.com/spineldb/spineldb/cluster"
	"github.com/spineldb/spineldb/config"
	"github.com/spineldb/spineldb/dispatch"
	"github.com/spineldb/spineldb/eventbus"
	"github.com/spineldb/spineldb/logx"
	"github.com/spineldb/spineldb/pubsub"
	"github.com/spineldb/spineldb/replication"
	"github.com/spineldb/spineldb/script"
	"github.com/spineldb/spineldb/slowlog"
	"github.com/spineldb/spineldb/storage"
)

// Server owns every long-lived collaborator a connection needs and the
// listener accepting new ones. One Server per process (tests construct
// their own, same as the teacher keeps package-level state behind a single
// entry point rather than true global singletons).
var errNotListening = errors.New("server: Serve called before Listen")

type Server struct {
	Config   *config.Config
	Registry *storage.Registry

	Commands   *dispatch.Registry
	Dispatcher *dispatch.Dispatcher

	Events *eventbus.Bus
	ACL    *acl.Store
	Cluster *cluster.Cluster

	Repl    *replication.Registry
	Backlog *replication.Backlog
	AOF     *aof.Writer // nil when AOF is disabled

	Scripts *script.Cache
	PubSub  *pubsub.Hub
	Slow    *slowlog.Log
	Latency *slowlog.Monitor
	Cache   *cache.Manager

	nextConnID atomic.Uint64

	mu       sync.Mutex
	listener net.Listener
	wg       sync.WaitGroup
	closing  chan struct{}
}

// New assembles a Server from its already-constructed collaborators. Command
// registration (populating cmds with real handlers) happens separately, the
// same separation the teacher draws between MySQLServe's wire handler and
// storage.Init's builtin registration.
func New(cfg *config.Config, reg *storage.Registry, cmds *dispatch.Registry, events *eventbus.Bus, aclStore *acl.Store, clu *cluster.Cluster, repl *replication.Registry, backlog *replication.Backlog, aofWriter *aof.Writer, scripts *script.Cache, cacheMgr *cache.Manager) *Server {
	return &Server{
		Config:     cfg,
		Registry:   reg,
		Commands:   cmds,
		Dispatcher: dispatch.NewDispatcher(cmds),
		Events:     events,
		ACL:        aclStore,
		Cluster:    clu,
		Repl:       repl,
		Backlog:    backlog,
		AOF:        aofWriter,
		Scripts:    scripts,
		PubSub:     pubsub.NewHub(),
		Slow:       slowlog.New(128, 10000),
		Latency:    slowlog.NewMonitor(),
		Cache:      cacheMgr,
		closing:    make(chan struct{}),
	}
}

// Listen binds addr without yet accepting connections, so callers (notably
// tests) can bind an ephemeral port (":0") and read the resolved address
// back via Addr before starting Serve.
func (s *Server) Listen(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()
	return nil
}

// Addr returns the bound listener's address; empty until Listen succeeds.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Serve accepts connections until Close is called, spawning one goroutine
// per connection exactly as the teacher's MySQL listener does via
// driver.NewListener(...).Accept(). Listen must have already succeeded.
func (s *Server) Serve() error {
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()
	if ln == nil {
		return errNotListening
	}

	logx.Info("listening", "addr", ln.Addr().String())
	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-s.closing:
				return nil
			default:
				logx.Warn("accept failed", "err", err)
				continue
			}
		}
		id := s.nextConnID.Add(1)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConn(id, conn)
		}()
	}
}

// ListenAndServe is the common case: bind addr, then accept until Close.
func (s *Server) ListenAndServe(addr string) error {
	if err := s.Listen(addr); err != nil {
		return err
	}
	return s.Serve()
}

// slotChecker and authorizer return s.Cluster/s.ACL as their dispatch
// interfaces, but only when non-nil: assigning a nil *cluster.Cluster or
// *acl.Store directly into an interface field produces a non-nil interface
// wrapping a nil pointer, and Dispatcher.Execute's "if ctx.Cluster != nil"
// guard would then call through to a nil receiver instead of skipping the
// check, per the standard Go nil-interface pitfall.
func (s *Server) slotChecker() dispatch.SlotChecker {
	if s.Cluster == nil {
		return nil
	}
	return s.Cluster
}

func (s *Server) authorizer() dispatch.Authorizer {
	if s.ACL == nil {
		return nil
	}
	return s.ACL
}

// Close stops accepting new connections and waits for in-flight ones to
// finish, the role onexit.Register(...) plays for the teacher's trace file:
// a single hook run once at shutdown, registered by the caller (cmd/spineldb)
// via github.com/dc0d/onexit so it fires on SIGINT/SIGTERM too.
func (s *Server) Close() error {
	close(s.closing)
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()
	var err error
	if ln != nil {
		err = ln.Close()
	}
	s.wg.Wait()
	if s.AOF != nil {
		if cerr := s.AOF.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
