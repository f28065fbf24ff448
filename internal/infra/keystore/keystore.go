// Package keystore persists an API key on the user's machine for the CLI.
// The file lives under the XDG config directory and is only readable by its owner.
// The HTTP server never consults it.
package keystore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matiasleandrokruk/arcana/internal/infra/llm"
)

const (
	dirName  = "arcana"
	fileName = "credentials.toml"

	// SourceName identifies keys resolved from the store.
	SourceName = "keystore"

	fileMode = 0o600
	dirMode  = 0o700
)

// ErrEmptyKey is returned by Save for a blank key.
var ErrEmptyKey = errors.New("api key is empty")

// Credentials is the on-disk document.
type Credentials struct {
	OpenAIAPIKey string `toml:"openai_api_key"`
}

// Store reads and writes one credentials file.
type Store struct {
	path string
}

// ConfigHome returns XDG_CONFIG_HOME or ~/.config.
func ConfigHome() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return xdgConfig
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".config")
}

// DefaultPath returns $XDG_CONFIG_HOME/arcana/credentials.toml.
func DefaultPath() string {
	return filepath.Join(ConfigHome(), dirName, fileName)
}

// New creates a Store at path. An empty path means DefaultPath.
func New(path string) *Store {
	if path == "" {
		path = DefaultPath()
	}
	return &Store{path: path}
}

// Path returns the file the store uses.
func (s *Store) Path() string {
	return s.path
}

// Load reads the stored credentials. A missing file yields empty credentials.
func (s *Store) Load() (Credentials, error) {
	var creds Credentials
	_, err := toml.DecodeFile(s.path, &creds)
	if errors.Is(err, fs.ErrNotExist) {
		return Credentials{}, nil
	}
	if err != nil {
		return Credentials{}, fmt.Errorf("keystore: decode %s: %w", s.path, err)
	}
	return creds, nil
}

// Save stores key, replacing any previous one. The file is written with mode 0600
// through a temp file so a crash never leaves a truncated document.
func (s *Store) Save(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrEmptyKey
	}

	if err := os.MkdirAll(filepath.Dir(s.path), dirMode); err != nil {
		return fmt.Errorf("keystore: create directory: %w", err)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(Credentials{OpenAIAPIKey: key}); err != nil {
		return fmt.Errorf("keystore: encode: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), "."+fileName+".*")
	if err != nil {
		return fmt.Errorf("keystore: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if err := tmp.Chmod(fileMode); err != nil {
		tmp.Close() //nolint:errcheck
		return fmt.Errorf("keystore: chmod: %w", err)
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close() //nolint:errcheck
		return fmt.Errorf("keystore: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("keystore: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("keystore: replace %s: %w", s.path, err)
	}
	return nil
}

// Clear deletes the stored key. Clearing an empty store is not an error.
func (s *Store) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("keystore: remove %s: %w", s.path, err)
	}
	return nil
}

// Source exposes the stored key as the lowest-priority credential source.
// Read failures count as "no key" so a corrupt file falls through to the credential error.
func (s *Store) Source() llm.CredentialSource {
	return llm.CredentialSource{
		Name:     SourceName,
		Provider: llm.ProviderOpenAI,
		Local:    true,
		Lookup: func(context.Context) string {
			creds, err := s.Load()
			if err != nil {
				return ""
			}
			return creds.OpenAIAPIKey
		},
	}
}
