//-------------------------------------------------------------------------
//
// pgEdge Model Discovery
//
// Copyright (c) 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type catalogFile struct {
	Models []Model `yaml:"models"`
}

// LoadFile reads a YAML (or JSON) catalog of the form
// {models: [{id, name, provider, metrics}]}.
func LoadFile(path string) (*Memory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}

	seen := make(map[string]bool, len(f.Models))
	for i, m := range f.Models {
		if m.ID == "" {
			return nil, fmt.Errorf("catalog %s: model %d has no id", path, i)
		}
		if seen[m.ID] {
			return nil, fmt.Errorf("catalog %s: duplicate model id %q", path, m.ID)
		}
		seen[m.ID] = true
	}
	return NewMemory(f.Models...), nil
}
