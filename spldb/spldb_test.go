package spldb

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dump.spldb")

	records := []Record{
		{DBIndex: 0, Key: "a", Payload: []byte("1")},
		{DBIndex: 0, Key: "b", Payload: []byte("2")},
		{DBIndex: 1, Key: "c", Payload: []byte("3")},
	}
	i := 0
	err := Save(path, func() (Record, bool) {
		if i >= len(records) {
			return Record{}, false
		}
		r := records[i]
		i++
		return r, true
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	var loaded []Record
	err = Load(path, func(r Record) error {
		loaded = append(loaded, r)
		return nil
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != len(records) {
		t.Fatalf("expected %d records, got %d", len(records), len(loaded))
	}
	for i, r := range records {
		if loaded[i].Key != r.Key || loaded[i].DBIndex != r.DBIndex {
			t.Fatalf("record %d mismatch: got %+v want %+v", i, loaded[i], r)
		}
	}
}

func TestLoadDetectsTruncation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dump.spldb")

	i := 0
	err := Save(path, func() (Record, bool) {
		if i > 0 {
			return Record{}, false
		}
		i++
		return Record{DBIndex: 0, Key: "a", Payload: []byte("1")}, true
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	data, rerr := os.ReadFile(path)
	if rerr != nil {
		t.Fatalf("read: %v", rerr)
	}
	truncated := data[:len(data)-2]
	truncPath := filepath.Join(dir, "truncated.spldb")
	if err := os.WriteFile(truncPath, truncated, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	err = Load(truncPath, func(Record) error { return nil })
	if err == nil {
		t.Fatal("expected checksum/format error on truncated file")
	}
}
