package library

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func testLibrary(t *testing.T) *Library {
	t.Helper()
	l, err := New(filepath.Join(t.TempDir(), "library"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return l
}

func TestStoreDocument_CopiesIntoPacketDir(t *testing.T) {
	l := testLibrary(t)
	packetID := uuid.New()

	src := filepath.Join(t.TempDir(), "lecture.pdf")
	if err := os.WriteFile(src, []byte("%PDF-1.4 fake"), 0o644); err != nil {
		t.Fatal(err)
	}

	rel, err := l.StoreDocument(src, packetID)
	if err != nil {
		t.Fatalf("StoreDocument: %v", err)
	}
	if rel != filepath.Join("documents", packetID.String(), "lecture.pdf") {
		t.Errorf("rel = %q", rel)
	}

	data, err := l.Read(rel)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(data) != "%PDF-1.4 fake" {
		t.Errorf("content = %q", data)
	}
}

func TestStoreAsset_StripsDirectories(t *testing.T) {
	l := testLibrary(t)
	packetID := uuid.New()

	rel, err := l.StoreAsset(packetID, "../../../evil.png", strings.NewReader("img"))
	if err != nil {
		t.Fatalf("StoreAsset: %v", err)
	}
	if rel != filepath.Join("assets", packetID.String(), "evil.png") {
		t.Errorf("rel = %q, want base name only", rel)
	}
}

func TestSafePath_RejectsTraversal(t *testing.T) {
	l := testLibrary(t)

	if _, err := l.Read("../outside.txt"); err == nil {
		t.Error("expected traversal rejection")
	}
	if _, err := l.Read("/etc/passwd"); err == nil {
		t.Error("expected absolute path rejection")
	}
}

func TestRemovePacket(t *testing.T) {
	l := testLibrary(t)
	packetID := uuid.New()

	src := filepath.Join(t.TempDir(), "doc.pdf")
	if err := os.WriteFile(src, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	rel, err := l.StoreDocument(src, packetID)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := l.StoreAsset(packetID, "clip.png", strings.NewReader("img")); err != nil {
		t.Fatal(err)
	}

	if err := l.RemovePacket(packetID); err != nil {
		t.Fatalf("RemovePacket: %v", err)
	}
	if _, err := l.Read(rel); err == nil {
		t.Error("document still readable after RemovePacket")
	}
	// Removing again is a no-op.
	if err := l.RemovePacket(packetID); err != nil {
		t.Errorf("second RemovePacket: %v", err)
	}
}
