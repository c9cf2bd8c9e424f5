// Package testing provides an in-memory credential store for tests.
package testing

import (
	"sync"

	"github.com/rileyhilliard/issho/internal/credentials"
)

// FakeStore is an in-memory credentials.Store.
type FakeStore struct {
	mu      sync.Mutex
	secrets map[string]string
	GetErr  error // returned by every Get when set
	Gets    int   // number of Get calls
}

// NewFakeStore creates an empty store.
func NewFakeStore() *FakeStore {
	return &FakeStore{secrets: make(map[string]string)}
}

func storeKey(key, account string) string {
	return key + "\x00" + account
}

// Get implements credentials.Store.
func (f *FakeStore) Get(key, account string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Gets++
	if f.GetErr != nil {
		return "", f.GetErr
	}
	s, ok := f.secrets[storeKey(key, account)]
	if !ok {
		return "", credentials.ErrNotFound
	}
	return s, nil
}

// Set implements credentials.Store.
func (f *FakeStore) Set(key, account, secret string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.secrets[storeKey(key, account)] = secret
	return nil
}
