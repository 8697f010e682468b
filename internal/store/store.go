// Package store provides loading and saving of the externally-owned mapping
// tables: the account map and the category keyword map.
package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

var log = logrus.New()

// SetLogger allows setting a custom logger
func SetLogger(logger *logrus.Logger) {
	if logger != nil {
		log = logger
	}
}

// AccountRule maps a substring key to a canonical account name. Rule order
// is semantically significant: the first rule whose keyword is a substring
// of the input wins.
type AccountRule struct {
	Keyword string `yaml:"keyword"`
	Account string `yaml:"account"`
}

// CategoryConfig holds one category and its ordered keyword list.
type CategoryConfig struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

type accountsFile struct {
	Accounts []AccountRule `yaml:"accounts"`
}

type categoriesFile struct {
	Categories []CategoryConfig `yaml:"categories"`
}

// MappingStore manages the YAML-backed mapping tables.
type MappingStore struct {
	AccountsFile   string
	CategoriesFile string
}

// NewMappingStore creates a store for the given file paths.
func NewMappingStore(accountsFile, categoriesFile string) *MappingStore {
	return &MappingStore{
		AccountsFile:   accountsFile,
		CategoriesFile: categoriesFile,
	}
}

// LoadAccountRules loads the ordered account map. A missing file yields an
// empty rule list, not an error.
func (s *MappingStore) LoadAccountRules() ([]AccountRule, error) {
	filename := s.AccountsFile
	if filename == "" {
		filename = "accounts.yaml"
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warnf("Account map file not found: %s", filename)
			return []AccountRule{}, nil
		}
		return nil, fmt.Errorf("error reading account map: %w", err)
	}

	var parsed accountsFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("error parsing account map: %w", err)
	}

	log.Debugf("Loaded %d account rules from %s", len(parsed.Accounts), filename)
	return parsed.Accounts, nil
}

// LoadCategories loads the ordered category map. A missing file yields an
// empty category list, not an error.
func (s *MappingStore) LoadCategories() ([]CategoryConfig, error) {
	filename := s.CategoriesFile
	if filename == "" {
		filename = "categories.yaml"
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warnf("Category map file not found: %s", filename)
			return []CategoryConfig{}, nil
		}
		return nil, fmt.Errorf("error reading category map: %w", err)
	}

	var parsed categoriesFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("error parsing category map: %w", err)
	}

	log.Debugf("Loaded %d categories from %s", len(parsed.Categories), filename)
	return parsed.Categories, nil
}

// SaveCategories writes the category map back to disk, preserving order.
// The category map is the only table mutable through the management surface.
func (s *MappingStore) SaveCategories(categories []CategoryConfig) error {
	filename := s.CategoriesFile
	if filename == "" {
		filename = "categories.yaml"
	}

	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("error creating directory: %w", err)
		}
	}

	data, err := yaml.Marshal(categoriesFile{Categories: categories})
	if err != nil {
		return fmt.Errorf("error marshaling category map: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("error writing category map: %w", err)
	}

	log.Debugf("Saved %d categories to %s", len(categories), filename)
	return nil
}
