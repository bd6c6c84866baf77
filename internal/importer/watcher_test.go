package importer

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func TestWatch_ImportsDroppedPDF(t *testing.T) {
	svc, db := testService(t, nil, ModeStructural, []string{"1. Intro\nsome text"})
	inbox := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go Watch(ctx, svc, inbox, testLogger())
	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(inbox, "dropped.pdf"), []byte("fake pdf bytes"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		packets, _ := db.ListPackets(true)
		return len(packets) == 1
	}, "dropped pdf not imported by watcher")
}

func TestWatch_ImportsExistingAtStartup(t *testing.T) {
	svc, db := testService(t, nil, ModeStructural, []string{"1. Intro\nsome text"})
	inbox := t.TempDir()
	_ = os.WriteFile(filepath.Join(inbox, "waiting.pdf"), []byte("fake pdf bytes"), 0o644)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go Watch(ctx, svc, inbox, testLogger())

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		packets, _ := db.ListPackets(true)
		return len(packets) == 1
	}, "pre-existing pdf not imported at startup")
}

func TestWatch_IgnoresNonPDF(t *testing.T) {
	svc, db := testService(t, nil, ModeStructural, []string{"some text"})
	inbox := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go Watch(ctx, svc, inbox, testLogger())
	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(inbox, "notes.txt"), []byte("ignored"), 0o644)
	time.Sleep(settleDelay + 300*time.Millisecond)

	packets, err := db.ListPackets(true)
	if err != nil {
		t.Fatal(err)
	}
	if len(packets) != 0 {
		t.Errorf("packets = %d, want 0", len(packets))
	}
}
