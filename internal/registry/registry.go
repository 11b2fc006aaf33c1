// Package registry stores enrolled users and their face samples on disk.
// The user collection is a single JSON document replaced atomically on
// every write; face samples live as one blob per user next to it, joined
// by user_id.
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/renameio"
)

// ErrNotFound is returned when a user_id has no record.
var ErrNotFound = errors.New("user not found")

// UserRecord is a registered identity. While Confirmed is false the user
// has stored a face but not yet committed a display name.
type UserRecord struct {
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	Confirmed bool      `json:"confirmed"`
}

// document is the persisted shape of the user collection. Users are kept
// as an ordered array because match tie-breaking depends on enrollment
// order.
type document struct {
	Users []UserRecord `json:"users"`
}

// Registry is the durable user store. Reads always observe a complete
// document; writes replace the whole document atomically.
type Registry struct {
	usersPath string
	facesDir  string
	mu        sync.Mutex // serializes load-modify-save sequences
}

// Open prepares a registry rooted at dataDir, creating the directory
// layout if needed.
func Open(dataDir string) (*Registry, error) {
	facesDir := filepath.Join(dataDir, "faces")
	if err := os.MkdirAll(facesDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &Registry{
		usersPath: filepath.Join(dataDir, "users.json"),
		facesDir:  facesDir,
	}, nil
}

// Load returns all user records in enrollment order. A missing or corrupt
// document is treated as an empty registry, never an error - a fresh
// deployment starts with no file at all.
func (r *Registry) Load() ([]UserRecord, error) {
	data, err := os.ReadFile(r.usersPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read user registry: %w", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil
	}
	return doc.Users, nil
}

// save replaces the persisted document. The write goes to a temporary
// file first and is published with an atomic rename, so a concurrent
// reader never observes a partial document.
func (r *Registry) save(users []UserRecord) error {
	data, err := json.MarshalIndent(document{Users: users}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal user registry: %w", err)
	}
	if err := renameio.WriteFile(r.usersPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write user registry: %w", err)
	}
	return nil
}

// Get looks up a single record by user_id.
func (r *Registry) Get(userID string) (UserRecord, error) {
	users, err := r.Load()
	if err != nil {
		return UserRecord{}, err
	}
	for _, u := range users {
		if u.UserID == userID {
			return u, nil
		}
	}
	return UserRecord{}, ErrNotFound
}

// Insert appends a new record to the collection.
func (r *Registry) Insert(rec UserRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.Load()
	if err != nil {
		return err
	}
	users = append(users, rec)
	return r.save(users)
}

// Update applies fn to the record with the given user_id and persists the
// result. Returns ErrNotFound when the user does not exist.
func (r *Registry) Update(userID string, fn func(*UserRecord)) (UserRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.Load()
	if err != nil {
		return UserRecord{}, err
	}
	for i := range users {
		if users[i].UserID == userID {
			fn(&users[i])
			if err := r.save(users); err != nil {
				return UserRecord{}, err
			}
			return users[i], nil
		}
	}
	return UserRecord{}, ErrNotFound
}
