package localstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/juju/errors"
)

func testStorage(t *testing.T, s Storage) {
	t.Helper()

	if _, ok, err := s.Get(KeyCart); err != nil || ok {
		t.Fatalf("Get on empty storage: ok=%v err=%v", ok, err)
	}

	if err := s.Set(KeyCart, []byte(`[1]`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set(KeyCart, []byte(`[2]`)); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	v, ok, err := s.Get(KeyCart)
	if err != nil || !ok || string(v) != `[2]` {
		t.Fatalf("Get = %q ok=%v err=%v, want [2]", v, ok, err)
	}

	if err := s.Remove(KeyCart); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := s.Remove(KeyCart); err != nil {
		t.Fatalf("second Remove: %v", err)
	}
	if _, ok, _ := s.Get(KeyCart); ok {
		t.Error("value still present after Remove")
	}
}

func TestMemory(t *testing.T) {
	testStorage(t, NewMemory())
}

func TestMemoryCopiesValues(t *testing.T) {
	m := NewMemory()
	buf := []byte("abc")
	m.Set("k", buf)
	buf[0] = 'x'
	v, _, _ := m.Get("k")
	if string(v) != "abc" {
		t.Errorf("stored value aliased caller buffer: %q", v)
	}
}

func TestDir(t *testing.T) {
	d, err := OpenDir(filepath.Join(t.TempDir(), "state"))
	if err != nil {
		t.Fatalf("OpenDir: %v", err)
	}
	testStorage(t, d)
}

func TestDirPersistsAcrossOpens(t *testing.T) {
	path := t.TempDir()
	d1, err := OpenDir(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := d1.Set(KeyRestaurantUser, []byte(`{"id":"r1"}`)); err != nil {
		t.Fatal(err)
	}

	d2, err := OpenDir(path)
	if err != nil {
		t.Fatal(err)
	}
	v, ok, err := d2.Get(KeyRestaurantUser)
	if err != nil || !ok || string(v) != `{"id":"r1"}` {
		t.Errorf("Get after reopen = %q ok=%v err=%v", v, ok, err)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the value file, found %d entries", len(entries))
	}
}

func TestDirRejectsBadKeys(t *testing.T) {
	d, err := OpenDir(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"", "../escape", "a/b"} {
		if err := d.Set(key, []byte("x")); !errors.Is(err, errors.NotValid) {
			t.Errorf("Set(%q) err = %v, want NotValid", key, err)
		}
	}
}
