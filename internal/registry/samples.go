package registry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/renameio"
)

// samplePath returns the blob path for a user's enrolled face sample.
func (r *Registry) samplePath(userID string) string {
	return filepath.Join(r.facesDir, userID+".png")
}

// SaveSample persists the enrolled face region for a user.
func (r *Registry) SaveSample(userID string, data []byte) error {
	if err := renameio.WriteFile(r.samplePath(userID), data, 0o644); err != nil {
		return fmt.Errorf("failed to write face sample: %w", err)
	}
	return nil
}

// LoadSample retrieves the enrolled face region for a user. The second
// return value reports whether a sample exists.
func (r *Registry) LoadSample(userID string) ([]byte, bool, error) {
	data, err := os.ReadFile(r.samplePath(userID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read face sample: %w", err)
	}
	return data, true, nil
}

// RemoveSample deletes a user's face sample. Removing a sample that does
// not exist is not an error.
func (r *Registry) RemoveSample(userID string) error {
	if err := os.Remove(r.samplePath(userID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove face sample: %w", err)
	}
	return nil
}
