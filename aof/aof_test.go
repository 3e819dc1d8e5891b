package aof

import (
	"path/filepath"
	"testing"
)

func TestAppendAndReplayRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "spineldb.aof")

	w, err := Open(path, FsyncAlways)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	entries := []Entry{
		{DBIndex: 0, Args: []string{"SET", "a", "1"}},
		{DBIndex: 0, Args: []string{"SET", "b", "2"}},
		{DBIndex: 1, Args: []string{"DEL", "a"}},
	}
	for _, e := range entries {
		if err := w.Append(e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	var replayed []Entry
	err = Replay(path, func(e Entry) error {
		replayed = append(replayed, e)
		return nil
	})
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if len(replayed) != len(entries) {
		t.Fatalf("expected %d entries, got %d", len(entries), len(replayed))
	}
	for i, e := range entries {
		if replayed[i].DBIndex != e.DBIndex || len(replayed[i].Args) != len(e.Args) {
			t.Fatalf("entry %d mismatch: got %+v want %+v", i, replayed[i], e)
		}
	}
}

func TestReplayMissingFileIsNotError(t *testing.T) {
	dir := t.TempDir()
	err := Replay(filepath.Join(dir, "nope.aof"), func(Entry) error { return nil })
	if err != nil {
		t.Fatalf("expected nil error for missing file, got %v", err)
	}
}

func TestRewriteProducesReplayableLog(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "spineldb.aof")

	err := Rewrite(path, false, func(emit func(int, []string) error) error {
		if err := emit(0, []string{"SET", "k", "v"}); err != nil {
			return err
		}
		return emit(0, []string{"SET", "k2", "v2"})
	})
	if err != nil {
		t.Fatalf("rewrite: %v", err)
	}

	var count int
	err = Replay(path, func(Entry) error {
		count++
		return nil
	})
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 entries after rewrite, got %d", count)
	}
}
