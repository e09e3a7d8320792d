// Package auth owns the process-wide bearer token. Nothing else touches
// the keychain entry directly.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/zalando/go-keyring"
)

// KeyringService groups the app's secrets in the OS keychain.
const KeyringService = "lead-finder"

var ErrEmptyToken = errors.New("token is empty")

// Store holds the bearer token for the current process. A token set with
// remember is also written to the keychain so the next process picks it up
// in Init; otherwise it lives only in memory.
type Store struct {
	mu       sync.RWMutex
	account  string
	token    string
	remember bool
}

func NewStore(account string) *Store {
	if strings.TrimSpace(account) == "" {
		account = "default"
	}
	return &Store{account: account}
}

// Init loads a remembered token. Call it once at process start.
func (s *Store) Init() error {
	tok, err := keyring.Get(KeyringService, s.account)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading token from keychain: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = tok
	s.remember = true
	return nil
}

func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Store) Remember() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.remember
}

// SetToken replaces the in-memory token. With remember it is also written
// to the keychain; without it the keychain entry is left as it is, and
// only Clear removes it.
func (s *Store) SetToken(token string, remember bool) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrEmptyToken
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if remember {
		if err := keyring.Set(KeyringService, s.account, token); err != nil {
			return fmt.Errorf("writing token to keychain: %w", err)
		}
	}
	s.token = token
	s.remember = remember
	return nil
}

// Clear forgets the token in memory and in the keychain. Call it at logout.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.remember = false
	return deleteEntry(s.account)
}

func deleteEntry(account string) error {
	err := keyring.Delete(KeyringService, account)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("removing token from keychain: %w", err)
	}
	return nil
}
