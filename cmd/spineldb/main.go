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

// Command spineldb is the server entrypoint: flag parsing, subsystem
// wiring, and graceful shutdown. Grounded on the teacher's main.go (define
// builtins, storage.Init, scm.Repl) — same "wire everything, then hand off
// to a loop" shape, generalized from a fixed sequence of package-level
// initializers to an explicit dependency graph built in one function.
package main

import (
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/dc0d/onexit"

	"github.com/spineldb/spineldb/acl"
	"github.com/spineldb/spineldb/aof"
	"github.com/spineldb/spineldb/cache"
	"github.com/spineldb/spineldb/cluster"
	"github.com/spineldb/spineldb/config"
	"github.com/spineldb/spineldb/console"
	"github.com/spineldb/spineldb/dispatch"
	"github.com/spineldb/spineldb/eventbus"
	"github.com/spineldb/spineldb/logx"
	"github.com/spineldb/spineldb/replication"
	"github.com/spineldb/spineldb/resp"
	"github.com/spineldb/spineldb/script"
	"github.com/spineldb/spineldb/server"
	"github.com/spineldb/spineldb/storage"
)

func main() {
	fmt.Print(`SpinelDB Copyright (C) 2026  SpinelDB Contributors
    This program comes with ABSOLUTELY NO WARRANTY;
    This is free software, and you are welcome to redistribute it
    under certain conditions;
`)

	configPath := flag.String("config", "", "path to a spineldb.toml configuration file")
	bindAddr := flag.String("bind", "", "override the configured host")
	port := flag.Int("port", 0, "override the configured port")
	console_ := flag.Bool("console", false, "run the local admin REPL instead of serving connections")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			logx.Error("failed to load config", "path", *configPath, "err", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *bindAddr != "" {
		cfg.Host = *bindAddr
	}
	if *port != 0 {
		cfg.Port = *port
	}

	reg := storage.NewRegistry(cfg.Databases, 16)
	cmds := dispatch.NewRegistry()
	registerBuiltins(cmds)
	registerListCommands(cmds)
	registerHashCommands(cmds)
	registerSetCommands(cmds)
	registerZSetCommands(cmds)
	registerStreamCommands(cmds)
	registerJSONCommands(cmds)
	registerBloomCommands(cmds)
	registerHLLCommands(cmds)

	events := eventbus.New(1024)
	defer events.Close()

	var aclStore *acl.Store
	if cfg.ACL.Enabled && cfg.ACLFile != "" {
		loaded, err := acl.Load(cfg.ACLFile)
		if err != nil {
			logx.Error("failed to load ACL file", "path", cfg.ACLFile, "err", err)
			os.Exit(1)
		}
		aclStore = loaded
		stop, err := config.WatchACLFile(cfg.ACLFile, func() error {
			reloaded, err := acl.Load(cfg.ACLFile)
			if err != nil {
				return err
			}
			for _, u := range reloaded.List() {
				aclStore.Upsert(u)
			}
			return nil
		})
		if err != nil {
			logx.Warn("ACL file watch disabled", "err", err)
		} else {
			onexit.Register(func() { stop() })
		}
	}

	var clu *cluster.Cluster
	if cfg.Cluster.Enabled {
		clu = cluster.NewCluster(localNodeID(cfg))
		clu.Enabled = true
	}
	registerClusterCommands(cmds, clu)
	registerACLCommands(cmds, aclStore)

	replRegistry := replication.NewRegistry()
	replID := replication.FormatReplID(uint64(time.Now().UnixNano()))
	backlog := replication.NewBacklog(1<<20, replID)
	registerReplicationCommands(cmds, replRegistry, backlog, cfg)

	var aofWriter *aof.Writer
	if cfg.AOFEnabled {
		w, err := aof.Open(cfg.AOFPath, aof.FsyncPolicy(cfg.AppendFsync))
		if err != nil {
			logx.Error("failed to open AOF", "path", cfg.AOFPath, "err", err)
			os.Exit(1)
		}
		aofWriter = w
	}

	scripts := script.NewCache(func(ctx *dispatch.ExecContext, body string, keys, args []string) (resp.Value, error) {
		return resp.Value{}, fmt.Errorf("ERR EVAL is not available: no script sandbox is wired in this build")
	})
	registerScriptCommands(cmds, scripts)

	cacheMgr := buildCacheManager(cfg)
	registerCacheCommands(cmds, cacheMgr)

	srv := server.New(cfg, reg, cmds, events, aclStore, clu, replRegistry, backlog, aofWriter, scripts, cacheMgr)
	registerAdminCommands(cmds, srv.Slow, srv.Latency, cfg, time.Now())

	aofSub := events.Subscribe("aof", 4096)
	replSub := events.Subscribe("replication", 4096)
	go fanToAOF(aofWriter, aofSub)
	go fanToReplication(backlog, replRegistry, replSub)

	onexit.Register(func() {
		logx.Info("shutting down")
		if err := srv.Close(); err != nil {
			logx.Warn("error during shutdown", "err", err)
		}
	})

	if *console_ {
		runConsole(srv)
		return
	}

	addr := net.JoinHostPort(cfg.Host, fmt.Sprintf("%d", cfg.Port))
	if err := srv.ListenAndServe(addr); err != nil {
		logx.Error("server exited", "err", err)
		os.Exit(1)
	}
}

// buildCacheManager assembles the cache.Manager from cfg.Cache's policy
// list, binding each config.CachePolicy to a cache.Rule matched and fetched
// by its URLTemplate; KeyPattern is currently unused (see DESIGN.md) since
// cache.Rule has a single URLTemplate field serving both roles.
func buildCacheManager(cfg *config.Config) *cache.Manager {
	table := cache.NewPolicyTable()
	for _, p := range cfg.Cache.Policies {
		table.Add(cache.Rule{
			Name:        p.Name,
			URLTemplate: p.URLTemplate,
			Policy: cache.Policy{
				Name:        p.Name,
				TTL:         p.TTLDuration(),
				SWR:         p.SWRDuration(),
				Grace:       p.GraceDuration(),
				VaryHeaders: p.VaryOn,
				Tags:        p.Tags,
			},
		})
	}
	var store cache.BodyStore
	if cfg.Cache.OnDiskPath != "" {
		store = cache.NewDiskBodyStore(cfg.Cache.OnDiskPath)
	}
	return cache.NewManager(table, cache.DefaultFetcher(&http.Client{}), store)
}

// fanToAOF drains the AOF subscriber and appends each event, the same
// single-consumer-goroutine shape as the teacher's CacheManager background
// writer (storage/cache.go).
func fanToAOF(w *aof.Writer, sub *eventbus.Subscriber) {
	if w == nil {
		return
	}
	for ev := range sub.Events() {
		if err := w.Append(aof.Entry{DBIndex: ev.DBIndex, Args: ev.Args}); err != nil {
			logx.Warn("AOF append failed", "err", err)
		}
	}
}

func fanToReplication(backlog *replication.Backlog, reg *replication.Registry, sub *eventbus.Subscriber) {
	for ev := range sub.Events() {
		cmd := backlog.Append(ev.DBIndex, ev.Args)
		reg.Broadcast(cmd)
	}
}

func localNodeID(cfg *config.Config) string {
	if cfg.Cluster.ConfigFile != "" {
		return cfg.Cluster.ConfigFile
	}
	host, _ := os.Hostname()
	return fmt.Sprintf("%s:%d", host, cfg.Port)
}

// runConsole drives the local admin REPL (console.Run) against an in-process
// ExecContext selecting database 0, grounded on the teacher's main.go
// handing off to scm.Repl() as the last step of startup.
func runConsole(srv *server.Server) {
	var clu dispatch.SlotChecker
	if srv.Cluster != nil {
		clu = srv.Cluster
	}
	var aclAuth dispatch.Authorizer
	if srv.ACL != nil {
		aclAuth = srv.ACL
	}
	ctx := &dispatch.ExecContext{
		Conn:     dispatch.NewConnState(0),
		DB:       srv.Registry.Database(0),
		Registry: srv.Registry,
		Cluster:  clu,
		Events:   srv.Events,
		ACL:      aclAuth,
	}
	if err := console.Run(srv.Dispatcher, ctx); err != nil {
		logx.Error("console exited", "err", err)
	}
}
