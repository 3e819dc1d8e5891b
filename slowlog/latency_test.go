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
package slowlog

import "testing"

func TestMonitorRecordsAboveThresholdOnly(t *testing.T) {
	m := NewMonitor()
	m.Record("aof-fsync", 5, 50, 1000)
	m.Record("aof-fsync", 100, 50, 2000)
	hist := m.History("aof-fsync")
	if len(hist) != 1 || hist[0].DurationMs != 100 {
		t.Fatalf("expected only the above-threshold sample, got %+v", hist)
	}
}

func TestMonitorTracksMax(t *testing.T) {
	m := NewMonitor()
	m.Record("expire-cycle", 10, 0, 1)
	m.Record("expire-cycle", 40, 0, 2)
	m.Record("expire-cycle", 20, 0, 3)
	if m.MaxMs("expire-cycle") != 40 {
		t.Fatalf("expected max 40, got %d", m.MaxMs("expire-cycle"))
	}
}

func TestMonitorResetRemovesEvent(t *testing.T) {
	m := NewMonitor()
	m.Record("command", 10, 0, 1)
	m.Reset("command")
	if _, ok := m.Latest("command"); ok {
		t.Fatalf("expected reset to remove event history")
	}
}

func TestMonitorLatest(t *testing.T) {
	m := NewMonitor()
	m.Record("command", 5, 0, 100)
	m.Record("command", 9, 0, 200)
	s, ok := m.Latest("command")
	if !ok || s.TimestampMs != 200 {
		t.Fatalf("expected latest sample at ts=200, got %+v ok=%v", s, ok)
	}
}
