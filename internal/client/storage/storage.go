// Package storage persists small client-side values (the signed-in user)
// in a JSON file of key → raw JSON value.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
)

// DefaultFile is the local storage file used when no path is configured.
const DefaultFile = "storage.json"

// LocalStorage is a key/value store backed by a single JSON file.
// Every Set and Delete is written through to disk.
type LocalStorage struct {
	path  string
	mu    sync.Mutex
	items map[string]json.RawMessage
}

// New returns a store for path. Call Load to read existing content.
func New(path string) *LocalStorage {
	if path == "" {
		path = DefaultFile
	}
	return &LocalStorage{path: path, items: make(map[string]json.RawMessage)}
}

// Load reads the file. A missing file is an empty store.
func (ls *LocalStorage) Load() error {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	f, err := os.Open(ls.path)
	if err != nil {
		if os.IsNotExist(err) {
			ls.items = make(map[string]json.RawMessage)
			return nil
		}
		return err
	}
	defer f.Close()

	items := make(map[string]json.RawMessage)
	if err := json.NewDecoder(f).Decode(&items); err != nil {
		return fmt.Errorf("decode %s: %w", ls.path, err)
	}
	ls.items = items
	return nil
}

// Save writes the whole store to disk.
func (ls *LocalStorage) Save() error {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return ls.save()
}

func (ls *LocalStorage) save() error {
	f, err := os.Create(ls.path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(ls.items)
}

// ErrNotFound is returned by Get for an absent key.
var ErrNotFound = errors.New("key not found")

// Get decodes the value stored under key into v.
func (ls *LocalStorage) Get(key string, v any) error {
	ls.mu.Lock()
	raw, ok := ls.items[key]
	ls.mu.Unlock()

	if !ok {
		return ErrNotFound
	}
	return json.Unmarshal(raw, v)
}

// Set stores v under key and persists the store.
func (ls *LocalStorage) Set(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()
	if ls.items == nil {
		ls.items = make(map[string]json.RawMessage)
	}
	ls.items[key] = raw
	return ls.save()
}

// Delete removes key and persists the store. It reports whether the key existed.
func (ls *LocalStorage) Delete(key string) (bool, error) {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	if _, ok := ls.items[key]; !ok {
		return false, nil
	}
	delete(ls.items, key)
	return true, ls.save()
}
