package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Store persists a single Settings value.
type Store interface {
	// Load returns the stored settings, or Defaults if nothing was stored
	// yet. Keys missing from storage keep their default value.
	Load(ctx context.Context) (Settings, error)
	// Save validates and stores s.
	Save(ctx context.Context, s Settings) error
}

// FileStore keeps settings as an indented JSON file.
type FileStore struct {
	Path string
}

// DefaultPath is config.json in the user's celesun config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to find config directory: %w", err)
	}
	return filepath.Join(dir, "celesun", "config.json"), nil
}

func (f FileStore) Load(ctx context.Context) (Settings, error) {
	s := Defaults()
	buf, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	} else if err != nil {
		return s, fmt.Errorf("failed to read settings: %w", err)
	}

	if err := json.Unmarshal(buf, &s); err != nil {
		return Defaults(), fmt.Errorf("failed to decode %s: %w", f.Path, err)
	}
	s = s.Normalize()
	if err := s.Validate(); err != nil {
		return Defaults(), fmt.Errorf("%s: %w", f.Path, err)
	}
	return s, nil
}

func (f FileStore) Save(ctx context.Context, s Settings) error {
	s = s.Normalize()
	if err := s.Validate(); err != nil {
		return err
	}
	buf, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(f.Path), 0o755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.Path), ".config-*.json")
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(append(buf, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to save settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.Path); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}
