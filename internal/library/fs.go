// Package library manages the on-disk library: imported source documents and
// capture assets, laid out per packet under the library root.
package library

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Library is a file store rooted at the library directory. Imported documents
// live under documents/<packetID>/, capture assets under assets/<packetID>/.
type Library struct {
	root string // absolute path to library directory
}

// New creates a Library rooted at the given directory, creating it if needed.
func New(root string) (*Library, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("library: resolve root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("library: create root: %w", err)
	}
	return &Library{root: abs}, nil
}

// Root returns the absolute library root.
func (l *Library) Root() string { return l.root }

// safePath resolves a relative path against the library root and rejects
// any result that escapes it (directory traversal).
func (l *Library) safePath(rel string) (string, error) {
	if rel == "" {
		return l.root, nil
	}
	cleaned := filepath.Clean(rel)
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("library: absolute paths not allowed: %s", rel)
	}
	joined := filepath.Join(l.root, cleaned)
	abs, err := filepath.Abs(joined)
	if err != nil {
		return "", fmt.Errorf("library: resolve path: %w", err)
	}
	// Ensure the resolved path is still under root.
	if !strings.HasPrefix(abs, l.root+string(os.PathSeparator)) && abs != l.root {
		return "", fmt.Errorf("library: path escapes library root: %s", rel)
	}
	return abs, nil
}

// StoreDocument copies the source file into the packet's document directory
// and returns the library-relative path.
func (l *Library) StoreDocument(srcPath string, packetID uuid.UUID) (string, error) {
	src, err := os.Open(srcPath)
	if err != nil {
		return "", fmt.Errorf("library: open source: %w", err)
	}
	defer src.Close()

	rel := filepath.Join("documents", packetID.String(), filepath.Base(srcPath))
	if err := l.writeAtomic(rel, src); err != nil {
		return "", err
	}
	return rel, nil
}

// StoreAsset writes a capture asset under the packet's asset directory and
// returns the library-relative path.
func (l *Library) StoreAsset(packetID uuid.UUID, filename string, content io.Reader) (string, error) {
	base := filepath.Base(filename)
	if base == "." || base == string(os.PathSeparator) {
		return "", fmt.Errorf("library: invalid asset filename: %s", filename)
	}
	rel := filepath.Join("assets", packetID.String(), base)
	if err := l.writeAtomic(rel, content); err != nil {
		return "", err
	}
	return rel, nil
}

// writeAtomic streams content into rel: tmp file → fsync → rename.
func (l *Library) writeAtomic(rel string, content io.Reader) error {
	abs, err := l.safePath(rel)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("library: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".ansuz-tmp-*")
	if err != nil {
		return fmt.Errorf("library: create temp: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := io.Copy(tmp, content); err != nil {
		return fmt.Errorf("library: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("library: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("library: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("library: rename: %w", err)
	}
	success = true
	return nil
}

// Read returns the raw bytes of a library file.
func (l *Library) Read(rel string) ([]byte, error) {
	abs, err := l.safePath(rel)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("library: read %s: %w", rel, err)
	}
	return data, nil
}

// RemovePacket deletes everything stored for a packet. Missing directories
// are not an error.
func (l *Library) RemovePacket(packetID uuid.UUID) error {
	for _, prefix := range []string{"documents", "assets"} {
		abs, err := l.safePath(filepath.Join(prefix, packetID.String()))
		if err != nil {
			return err
		}
		if err := os.RemoveAll(abs); err != nil {
			return fmt.Errorf("library: remove %s: %w", prefix, err)
		}
	}
	return nil
}
