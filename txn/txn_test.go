package txn

import "testing"

func TestQueueRequiresMulti(t *testing.T) {
	tx := New()
	if tx.Queue([]string{"SET", "a", "1"}) {
		t.Fatal("expected Queue to fail outside MULTI")
	}
}

func TestExecSucceedsWhenWatchUnchanged(t *testing.T) {
	tx := New()
	tx.Watch("k", 1)
	tx.Begin()
	tx.Queue([]string{"SET", "k", "2"})
	queued, ok := tx.PrepareExec(func(string) uint64 { return 1 })
	if !ok {
		t.Fatal("expected EXEC to proceed")
	}
	if len(queued) != 1 {
		t.Fatalf("expected 1 queued command, got %d", len(queued))
	}
	if tx.InMulti() {
		t.Fatal("expected state reset to Normal after EXEC")
	}
}

func TestExecAbortsWhenWatchedKeyChanged(t *testing.T) {
	tx := New()
	tx.Watch("k", 1)
	tx.Begin()
	tx.Queue([]string{"SET", "k", "2"})
	_, ok := tx.PrepareExec(func(string) uint64 { return 2 })
	if ok {
		t.Fatal("expected EXEC to abort on watched-key mismatch")
	}
}

func TestDirtyQueueAbortsExec(t *testing.T) {
	tx := New()
	tx.Begin()
	tx.MarkDirty()
	_, ok := tx.PrepareExec(func(string) uint64 { return 0 })
	if ok {
		t.Fatal("expected dirty transaction to abort EXEC")
	}
}

func TestDiscardClearsQueue(t *testing.T) {
	tx := New()
	tx.Begin()
	tx.Queue([]string{"PING"})
	tx.Discard()
	if tx.InMulti() {
		t.Fatal("expected Normal state after DISCARD")
	}
}
