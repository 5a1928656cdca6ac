package main

import (
	"os"

	"gopkg.in/yaml.v2"
)

// columnConfig names a column and the Go type its field scanner should
// parse into.
type columnConfig struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"` // "string" (default), "int", or "float"
}

// fileConfig is the top-level shape of a --config YAML file: a list of
// columns in the same left-to-right order as the input's fields.
type fileConfig struct {
	Columns []columnConfig `yaml:"columns"`
}

// loadColumnConfig reads and parses path, or returns a zero-value
// fileConfig (every column defaults to string, named by the input
// header) if path is empty.
func loadColumnConfig(path string) (fileConfig, error) {
	if path == "" {
		return fileConfig{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fileConfig{}, err
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fileConfig{}, err
	}
	return cfg, nil
}

// typeFor returns the configured type for column i, defaulting to
// "string" when the config has no entry for it.
func (c fileConfig) typeFor(i int) string {
	if i < 0 || i >= len(c.Columns) || c.Columns[i].Type == "" {
		return "string"
	}
	return c.Columns[i].Type
}

// nameFor returns the configured name for column i, or "" when the
// config has no entry for it (the caller falls back to the header).
func (c fileConfig) nameFor(i int) string {
	if i < 0 || i >= len(c.Columns) {
		return ""
	}
	return c.Columns[i].Name
}
