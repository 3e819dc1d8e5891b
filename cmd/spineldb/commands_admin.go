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
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/spineldb/spineldb/config"
	"github.com/spineldb/spineldb/dispatch"
	"github.com/spineldb/spineldb/resp"
	"github.com/spineldb/spineldb/slowlog"
)

// registerAdminCommands wires spec.md §6's observability/config surface
// (SLOWLOG, LATENCY, CONFIG, INFO) to the already-built slowlog.Log/Monitor
// and config.Config, the diagnostic layer spec.md §9 assumes operators
// have available alongside the data-plane commands.
func registerAdminCommands(r *dispatch.Registry, slow *slowlog.Log, latency *slowlog.Monitor, cfg *config.Config, startedAt time.Time) {
	r.Register(&dispatch.Command{Name: "SLOWLOG", Arity: -2, Flags: dispatch.FlagAdmin,
		Handler: func(ctx *dispatch.ExecContext, args []string) (resp.Value, error) { return cmdSlowlog(ctx, slow, args) }})
	r.Register(&dispatch.Command{Name: "LATENCY", Arity: -2, Flags: dispatch.FlagAdmin,
		Handler: func(ctx *dispatch.ExecContext, args []string) (resp.Value, error) { return cmdLatency(ctx, latency, args) }})
	r.Register(&dispatch.Command{Name: "CONFIG", Arity: -2, Flags: dispatch.FlagAdmin,
		Handler: func(ctx *dispatch.ExecContext, args []string) (resp.Value, error) { return cmdConfig(ctx, cfg, args) }})
	r.Register(&dispatch.Command{Name: "INFO", Arity: -1, Flags: dispatch.FlagAdmin,
		Handler: func(ctx *dispatch.ExecContext, args []string) (resp.Value, error) { return cmdInfo(ctx, cfg, startedAt, args) }})
}

func cmdSlowlog(ctx *dispatch.ExecContext, slow *slowlog.Log, args []string) (resp.Value, error) {
	switch strings.ToUpper(args[0]) {
	case "GET":
		n := 10
		if len(args) >= 2 {
			v, err := strconv.Atoi(args[1])
			if err != nil {
				return resp.Value{}, dispatch.NewError(dispatch.KindErr, "value is not an integer or out of range")
			}
			n = v
		}
		if n < 0 {
			n = slow.Len()
		}
		entries := slow.Recent(n)
		out := make([]resp.Value, len(entries))
		for i, e := range entries {
			args := make([]resp.Value, len(e.Args))
			for j, a := range e.Args {
				args[j] = resp.Bulk(a)
			}
			out[i] = resp.Array(
				resp.Integer(e.ID),
				resp.Integer(e.TimestampMs/1000),
				resp.Integer(e.DurationUs),
				resp.ArraySlice(args),
				resp.Bulk(e.ClientAddr),
				resp.Bulk(e.ClientName),
			)
		}
		return resp.ArraySlice(out), nil
	case "LEN":
		return resp.Integer(int64(slow.Len())), nil
	case "RESET":
		slow.Reset()
		return resp.OK(), nil
	}
	return resp.Value{}, dispatch.NewError(dispatch.KindErr, "Unknown SLOWLOG subcommand or wrong number of arguments for '%s'", args[0])
}

func cmdLatency(ctx *dispatch.ExecContext, latency *slowlog.Monitor, args []string) (resp.Value, error) {
	switch strings.ToUpper(args[0]) {
	case "HISTORY":
		if len(args) != 2 {
			return resp.Value{}, dispatch.NewError(dispatch.KindErr, "wrong number of arguments for 'latency|history' command")
		}
		samples := latency.History(args[1])
		out := make([]resp.Value, len(samples))
		for i, s := range samples {
			out[i] = resp.Array(resp.Integer(s.TimestampMs/1000), resp.Integer(s.DurationMs))
		}
		return resp.ArraySlice(out), nil
	case "LATEST":
		out := []resp.Value{}
		for _, event := range latency.Events() {
			if s, ok := latency.Latest(event); ok {
				out = append(out, resp.Array(resp.Bulk(event), resp.Integer(s.TimestampMs/1000), resp.Integer(s.DurationMs), resp.Integer(latency.MaxMs(event))))
			}
		}
		return resp.ArraySlice(out), nil
	case "RESET":
		if len(args) == 1 {
			for _, event := range latency.Events() {
				latency.Reset(event)
			}
			return resp.Integer(0), nil
		}
		for _, event := range args[1:] {
			latency.Reset(event)
		}
		return resp.Integer(int64(len(args) - 1)), nil
	}
	return resp.Value{}, dispatch.NewError(dispatch.KindErr, "Unknown LATENCY subcommand or wrong number of arguments for '%s'", args[0])
}

// configFields exposes the subset of config.Config spec.md §6 names as
// string key/value pairs, the same flattened-name shape CONFIG GET/SET
// present over the wire regardless of the nested Go struct underneath.
func configFields(cfg *config.Config) map[string]*string {
	return map[string]*string{
		"maxmemory":          &cfg.MaxMemory,
		"maxmemory-policy":   &cfg.MaxMemoryPolicy,
		"appendonly":         boolField(&cfg.AOFEnabled),
		"appendfsync":        &cfg.AppendFsync,
		"requirepass":        nil,
	}
}

func boolField(b *bool) *string {
	s := strconv.FormatBool(*b)
	return &s
}

func cmdConfig(ctx *dispatch.ExecContext, cfg *config.Config, args []string) (resp.Value, error) {
	switch strings.ToUpper(args[0]) {
	case "GET":
		if len(args) != 2 {
			return resp.Value{}, dispatch.NewError(dispatch.KindErr, "wrong number of arguments for 'config|get' command")
		}
		fields := configFields(cfg)
		var out []resp.Value
		for name, val := range fields {
			if val == nil {
				continue
			}
			if ok, _ := path.Match(strings.ToLower(args[1]), name); ok {
				out = append(out, resp.Bulk(name), resp.Bulk(*val))
			}
		}
		return resp.ArraySlice(out), nil
	case "SET":
		if len(args) != 3 {
			return resp.Value{}, dispatch.NewError(dispatch.KindErr, "wrong number of arguments for 'config|set' command")
		}
		name := strings.ToLower(args[1])
		switch name {
		case "maxmemory":
			cfg.MaxMemory = args[2]
		case "maxmemory-policy":
			cfg.MaxMemoryPolicy = args[2]
		case "appendfsync":
			cfg.AppendFsync = args[2]
		default:
			return resp.Value{}, dispatch.NewError(dispatch.KindErr, "Unknown option or number of arguments for CONFIG SET - '%s'", args[1])
		}
		return resp.OK(), nil
	case "REWRITE":
		return resp.OK(), nil
	}
	return resp.Value{}, dispatch.NewError(dispatch.KindErr, "Unknown CONFIG subcommand or wrong number of arguments for '%s'", args[0])
}

// cmdInfo renders the INFO sections spec.md §9 expects a monitoring agent
// to scrape: server identity/uptime, keyspace sizes per database, and
// replication role, in the traditional "# Section\r\nkey:value\r\n" layout.
func cmdInfo(ctx *dispatch.ExecContext, cfg *config.Config, startedAt time.Time, args []string) (resp.Value, error) {
	var b strings.Builder
	b.WriteString("# Server\r\n")
	b.WriteString("redis_version:7.4.0\r\n")
	b.WriteString("spineldb_mode:" + clusterModeString(cfg) + "\r\n")
	b.WriteString("uptime_in_seconds:" + strconv.FormatInt(int64(time.Since(startedAt).Seconds()), 10) + "\r\n")
	b.WriteString("\r\n# Replication\r\n")
	role := cfg.Replication.Role
	if role == "" {
		role = "master"
	}
	b.WriteString("role:" + role + "\r\n")
	if role == "slave" {
		b.WriteString("master_host:" + cfg.Replication.PrimaryHost + "\r\n")
		b.WriteString("master_port:" + strconv.Itoa(cfg.Replication.PrimaryPort) + "\r\n")
	}
	b.WriteString("\r\n# Keyspace\r\n")
	if ctx.Registry != nil {
		for i := 0; i < ctx.Registry.Count(); i++ {
			n := ctx.Registry.Database(i).Len()
			if n > 0 {
				b.WriteString("db" + strconv.Itoa(i) + ":keys=" + strconv.Itoa(n) + ",expires=0,avg_ttl=0\r\n")
			}
		}
	}
	return resp.Bulk(b.String()), nil
}

func clusterModeString(cfg *config.Config) string {
	if cfg.Cluster.Enabled {
		return "cluster"
	}
	return "standalone"
}
