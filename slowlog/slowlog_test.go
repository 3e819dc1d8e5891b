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

func TestRecordBelowThresholdIsIgnored(t *testing.T) {
	l := New(10, 1000)
	l.Record([]string{"GET", "x"}, 500, 1, "addr", "name")
	if l.Len() != 0 {
		t.Fatalf("expected sub-threshold command to be skipped")
	}
}

func TestRecordWrapsAtCapacity(t *testing.T) {
	l := New(3, 0)
	l.SetThreshold(100)
	for i := 0; i < 5; i++ {
		l.Record([]string{"GET"}, 200, int64(i), "a", "b")
	}
	if l.Len() != 3 {
		t.Fatalf("expected ring to cap at 3, got %d", l.Len())
	}
	recent := l.Recent(3)
	if recent[0].TimestampMs != 4 {
		t.Fatalf("expected most recent entry first, got %+v", recent[0])
	}
}

func TestDisabledThresholdRecordsNothing(t *testing.T) {
	l := New(10, 0)
	l.Record([]string{"GET"}, 1_000_000, 0, "a", "b")
	if l.Len() != 0 {
		t.Fatalf("expected threshold<=0 to disable logging")
	}
}

func TestResetClearsLog(t *testing.T) {
	l := New(10, 0)
	l.SetThreshold(1)
	l.Record([]string{"GET"}, 5, 0, "a", "b")
	l.Reset()
	if l.Len() != 0 {
		t.Fatalf("expected reset to clear entries")
	}
}
