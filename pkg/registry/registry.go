// pkg/registry/registry.go

// Package registry loads the notification template catalog.
package registry

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadRegistry reads and decodes a template registry file.
func LoadRegistry(path string) (*TemplateRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg TemplateRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse template registry: %w", err)
	}
	return &reg, nil
}

// ByType indexes the registry's templates by notification type. A duplicate
// type is an error so a misordered registry cannot silently shadow copy.
func (r *TemplateRegistry) ByType() (map[string]Template, error) {
	out := make(map[string]Template, len(r.Templates))
	for _, t := range r.Templates {
		if _, exists := out[t.Type]; exists {
			return nil, fmt.Errorf("duplicate template type %q", t.Type)
		}
		out[t.Type] = t
	}
	return out, nil
}
