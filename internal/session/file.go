package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Load restores a previously saved identity into the store. A missing file
// leaves the store signed out.
func (s *Store) Load(path string) error {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read session %s: %w", path, err)
	}

	var identity Identity
	if err := yaml.Unmarshal(raw, &identity); err != nil {
		return fmt.Errorf("parse session %s: %w", path, err)
	}
	if identity.Token == "" {
		return nil
	}
	s.SignIn(identity)
	return nil
}

// Save writes the current identity to path, or removes the file when signed out.
func (s *Store) Save(path string) error {
	identity, ok := s.CurrentUser()
	if !ok {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove session %s: %w", path, err)
		}
		return nil
	}

	raw, err := yaml.Marshal(identity)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	return os.WriteFile(path, raw, 0o600)
}
