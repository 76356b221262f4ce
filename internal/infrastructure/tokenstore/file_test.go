package tokenstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	store := NewFile(path, zerolog.Nop())

	if _, ok := store.Token(); ok {
		t.Fatalf("expected no token in fresh store")
	}

	store.Set("abc123")
	if tok, ok := store.Token(); !ok || tok != "abc123" {
		t.Fatalf("expected abc123, got %q (ok=%v)", tok, ok)
	}

	// A new store over the same path sees the persisted token.
	reloaded := NewFile(path, zerolog.Nop())
	if tok, ok := reloaded.Token(); !ok || tok != "abc123" {
		t.Fatalf("expected persisted token after reload, got %q (ok=%v)", tok, ok)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat token file: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("expected 0600 permissions, got %o", perm)
	}
}

func TestFileStore_Clear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	store := NewFile(path, zerolog.Nop())
	store.Set("abc123")
	store.Clear()

	if _, ok := store.Token(); ok {
		t.Fatalf("expected no token after clear")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected token file removed, got %v", err)
	}

	// Clearing an already-clear store is a no-op.
	store.Clear()
}

func TestFileStore_CorruptOrMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	if err := os.WriteFile(path, []byte("  \n\t"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	store := NewFile(path, zerolog.Nop())
	if _, ok := store.Token(); ok {
		t.Fatalf("whitespace-only file should read as no token")
	}
}

func TestMemoryStore(t *testing.T) {
	store := NewMemory()
	if _, ok := store.Token(); ok {
		t.Fatalf("expected no token")
	}
	store.Set("tok")
	if tok, ok := store.Token(); !ok || tok != "tok" {
		t.Fatalf("expected tok, got %q", tok)
	}
	store.Clear()
	if _, ok := store.Token(); ok {
		t.Fatalf("expected cleared token")
	}
}
