package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/archlint/archlint/internal/domain"
)

const fileName = ".archlint.yaml"

// YAMLLoader implements domain.ConfigLoader by reading .archlint.yaml.
type YAMLLoader struct{}

// New creates a YAMLLoader.
func New() *YAMLLoader { return &YAMLLoader{} }

// Load reads .archlint.yaml from the project root. A missing file is not an
// error; validation runs with defaults then.
func (l *YAMLLoader) Load(projectPath string) (domain.ProjectConfig, error) {
	data, err := os.ReadFile(filepath.Join(projectPath, fileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.DefaultConfig(), nil
		}
		return domain.ProjectConfig{}, err
	}
	return parse(data, fileName)
}

// LoadFile reads an explicitly named config file. Unlike Load, a missing
// file here is a configuration error.
func (l *YAMLLoader) LoadFile(path string) (domain.ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.ProjectConfig{}, fmt.Errorf("reading config: %w", err)
	}
	return parse(data, path)
}

func parse(data []byte, name string) (domain.ProjectConfig, error) {
	var cfg domain.ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.ProjectConfig{}, fmt.Errorf("parsing %s: %w", name, err)
	}

	// Validate the raw input before anything runs with it.
	if err := cfg.Validate(); err != nil {
		return domain.ProjectConfig{}, fmt.Errorf("invalid %s: %w", name, err)
	}
	return cfg, nil
}
