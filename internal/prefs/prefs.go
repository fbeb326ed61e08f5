// Package prefs mirrors small pieces of state as JSON files under the user
// config dir. Reads fall back to empty/default values silently: a missing
// or malformed blob must never surface as an error or crash.
package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"

	"waterline/internal/database/repository"
)

const (
	categoriesFile = "categories.json"
	balancesFile   = "balances.json"
)

func prefsPath(name string) (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	dir = filepath.Join(dir, "waterline")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

func writeJSON(name string, v interface{}) error {
	path, err := prefsPath(name)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func readJSON(name string, v interface{}) {
	path, err := prefsPath(name)
	if err != nil {
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	_ = json.Unmarshal(data, v)
}

func SaveCategories(cats []repository.Category) error {
	return writeJSON(categoriesFile, cats)
}

// LoadCategories returns the mirrored categories, or nil when the blob is
// missing or unreadable.
func LoadCategories() []repository.Category {
	var cats []repository.Category
	readJSON(categoriesFile, &cats)
	return cats
}

func SaveBalances(b repository.Balances) error {
	return writeJSON(balancesFile, b)
}

// LoadBalances returns the mirrored balances, or zero defaults when the
// blob is missing or unreadable.
func LoadBalances() repository.Balances {
	var b repository.Balances
	readJSON(balancesFile, &b)
	return b
}
