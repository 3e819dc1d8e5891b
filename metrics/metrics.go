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

// Package metrics exposes plain counters and gauges for the out-of-scope
// Prometheus exporter to read. The core never imports a metrics client
// library itself; it only increments numbers behind a Registry, the same
// hand-rolled-counter shape as the teacher's scm/metrics.go.
package metrics

import "sync/atomic"

type Counter struct {
	v atomic.Int64
}

func (c *Counter) Inc()           { c.v.Add(1) }
func (c *Counter) Add(n int64)    { c.v.Add(n) }
func (c *Counter) Value() int64   { return c.v.Load() }

type Gauge struct {
	v atomic.Int64
}

func (g *Gauge) Set(n int64)    { g.v.Store(n) }
func (g *Gauge) Add(n int64)    { g.v.Add(n) }
func (g *Gauge) Value() int64   { return g.v.Load() }

// Registry is the process-wide set of named counters/gauges the exporter reads.
type Registry struct {
	Commands         Counter // total commands dispatched
	Writes           Counter // total write commands
	Errors           Counter // total command errors
	KeyspaceHits     Counter
	KeyspaceMisses   Counter
	EvictedKeys      Counter
	ExpiredKeys      Counter
	CacheHits        Counter
	CacheMisses      Counter
	CacheStale       Counter
	CacheFetches     Counter // origin fetches actually issued
	CacheCoalesced   Counter // requests that rode an in-flight fetch instead
	AOFWrites        Counter
	AOFFsyncFailures Counter
	ReplicaCount     Gauge
	ConnectedClients Gauge
	UsedMemory       Gauge
}

// Default is the process-wide registry; Dispatcher.Execute increments its
// counters directly.
var Default = &Registry{}
