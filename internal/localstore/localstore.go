// Package localstore is durable key/value storage for client-side state such
// as the shopping cart and the logged-in restaurant profile.
package localstore

import (
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/juju/errors"
)

// Fixed keys used by the client.
const (
	KeyCart           = "cart"
	KeyRestaurantUser = "restaurantUser"
)

// Storage holds opaque values under fixed names.
type Storage interface {
	// Get returns the value for key; ok is false when nothing is stored.
	Get(key string) (value []byte, ok bool, err error)
	Set(key string, value []byte) error
	// Remove deletes key. Removing a missing key is not an error.
	Remove(key string) error
}

var validKey = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

func checkKey(key string) error {
	if !validKey.MatchString(key) {
		return errors.NotValidf("storage key %q", key)
	}
	return nil
}

// Dir stores one file per key in a directory.
type Dir struct {
	path string
}

// OpenDir creates path if needed and returns a Dir rooted there.
func OpenDir(path string) (*Dir, error) {
	if err := os.MkdirAll(path, 0o700); err != nil {
		return nil, errors.Annotatef(err, "create state dir %s", path)
	}
	return &Dir{path: path}, nil
}

func (d *Dir) Path() string {
	return d.path
}

func (d *Dir) file(key string) string {
	return filepath.Join(d.path, key+".json")
}

func (d *Dir) Get(key string) ([]byte, bool, error) {
	if err := checkKey(key); err != nil {
		return nil, false, err
	}
	b, err := os.ReadFile(d.file(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Annotatef(err, "read %s", key)
	}
	return b, true, nil
}

// Set replaces the value atomically: readers see either the old or the new
// contents, never a partial write.
func (d *Dir) Set(key string, value []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(d.path, "."+key+"-*")
	if err != nil {
		return errors.Annotatef(err, "write %s", key)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		return errors.Annotatef(err, "write %s", key)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Annotatef(err, "sync %s", key)
	}
	if err := tmp.Close(); err != nil {
		return errors.Annotatef(err, "write %s", key)
	}
	if err := os.Rename(tmpName, d.file(key)); err != nil {
		return errors.Annotatef(err, "replace %s", key)
	}
	return nil
}

func (d *Dir) Remove(key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if err := os.Remove(d.file(key)); err != nil && !os.IsNotExist(err) {
		return errors.Annotatef(err, "remove %s", key)
	}
	return nil
}

// Memory is an in-process Storage.
type Memory struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Get(key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *Memory) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *Memory) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
