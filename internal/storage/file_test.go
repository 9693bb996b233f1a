package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	s, err := NewFile(path)
	if err != nil {
		t.Fatalf("NewFile() error: %v", err)
	}

	if err := s.Set(KeyAccessToken, "token-1"); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if err := s.Set(KeyUser, `{"email":"user@mall.dev"}`); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	// A fresh instance sees what the first one wrote.
	reloaded, err := NewFile(path)
	if err != nil {
		t.Fatalf("NewFile() reload error: %v", err)
	}
	if v, ok := reloaded.Get(KeyAccessToken); !ok || v != "token-1" {
		t.Errorf("Get(%s) = %q, %v after reload", KeyAccessToken, v, ok)
	}

	if err := reloaded.Delete(KeyAccessToken); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, ok := reloaded.Get(KeyAccessToken); ok {
		t.Error("key present after Delete()")
	}

	if err := reloaded.Clear(); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	if _, ok := reloaded.Get(KeyUser); ok {
		t.Error("key present after Clear()")
	}
}

func TestFileStoreCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "state.json")

	s, err := NewFile(path)
	if err != nil {
		t.Fatalf("NewFile() error: %v", err)
	}
	if err := s.Set("k", "v"); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("state file not created: %v", err)
	}
}

func TestFileStoreRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{broken"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := NewFile(path); err == nil {
		t.Fatal("NewFile() accepted a corrupt state file")
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemory()

	if _, ok := s.Get("missing"); ok {
		t.Error("Get() found a missing key")
	}

	s.Set("a", "1")
	s.Set("b", "2")
	if v, _ := s.Get("a"); v != "1" {
		t.Errorf("Get(a) = %q, want 1", v)
	}

	s.Delete("a")
	if _, ok := s.Get("a"); ok {
		t.Error("key present after Delete()")
	}

	s.Clear()
	if _, ok := s.Get("b"); ok {
		t.Error("key present after Clear()")
	}
}
