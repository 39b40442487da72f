// Package settings stores polyloc user settings, currently provider
// API keys.
//
// Keys live in the XDG data directory:
//
//	$XDG_DATA_HOME/polyloc/auth.json  (default: ~/.local/share/polyloc/)
//
// with 0600 permissions. Resolution order for an API key:
//
//  1. --api-key flag (highest priority)
//  2. POLYLOC_API_KEY environment variable
//  3. .env file in the project root (loaded via godotenv)
//  4. this credential store
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

const (
	dataDirName = "polyloc"
	fileName    = "auth.json"

	// EnvAPIKey is the environment variable checked before the store.
	EnvAPIKey = "POLYLOC_API_KEY"
)

// Store holds API keys keyed by provider ID.
type Store map[string]string

// dataDir returns the XDG data directory for polyloc.
func dataDir() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, dataDirName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", dataDirName), nil
}

func filePath() (string, error) {
	dir, err := dataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// FilePath returns the auth.json path for display purposes.
func FilePath() string {
	p, err := filePath()
	if err != nil {
		return ""
	}
	return p
}

// Load reads the credential store from disk. A missing or unreadable
// file yields an empty store.
func Load() Store {
	path, err := filePath()
	if err != nil {
		return make(Store)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return make(Store)
	}

	var store Store
	if err := json.Unmarshal(data, &store); err != nil {
		return make(Store)
	}
	if store == nil {
		return make(Store)
	}
	return store
}

// Save writes the credential store to disk with 0600 permissions.
func Save(store Store) error {
	path, err := filePath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(store, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling credentials: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing auth file: %w", err)
	}
	return nil
}

// SetKey stores an API key for a provider (upsert).
func SetKey(providerID, key string) error {
	store := Load()
	store[providerID] = key
	return Save(store)
}

// RemoveKey deletes the stored key for a provider.
func RemoveKey(providerID string) error {
	store := Load()
	delete(store, providerID)
	return Save(store)
}

// ResolveAPIKey resolves the API key for a provider using the documented
// lookup order. flagValue comes from --api-key; rootDir is where a .env
// file is looked for. An empty result means no key is configured, which
// is valid for self-hosted providers.
func ResolveAPIKey(flagValue, providerID, rootDir string) string {
	if flagValue != "" {
		return flagValue
	}
	if key := os.Getenv(EnvAPIKey); key != "" {
		return key
	}
	// .env is optional; a missing file is not an error.
	if env, err := godotenv.Read(filepath.Join(rootDir, ".env")); err == nil {
		if key := env[EnvAPIKey]; key != "" {
			return key
		}
	}
	return Load()[providerID]
}
