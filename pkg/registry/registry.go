// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

func LoadRegistry(path string) (*SchoolRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseRegistry(data)
}

func ParseRegistry(data []byte) (*SchoolRegistry, error) {
	var reg SchoolRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("decode school registry: %w", err)
	}
	return &reg, nil
}

// SaveRegistry writes reg as indented JSON, creating parent directories.
func SaveRegistry(reg *SchoolRegistry, path string) error {
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}

func LoadInstitutionTiers(path string) (*InstitutionTiers, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseInstitutionTiers(data)
}

func ParseInstitutionTiers(data []byte) (*InstitutionTiers, error) {
	var tiers InstitutionTiers
	if err := json.Unmarshal(data, &tiers); err != nil {
		return nil, fmt.Errorf("decode institution tiers: %w", err)
	}
	return &tiers, nil
}

// Validate checks structural integrity: every entry has an id and a name and
// ids are unique. Numeric sanity is enforced when the data is loaded.
func (r *SchoolRegistry) Validate() error {
	if len(r.Schools) == 0 {
		return fmt.Errorf("registry contains no schools")
	}

	ids := make(map[string]bool, len(r.Schools))
	for i, school := range r.Schools {
		if school.ID == "" {
			return fmt.Errorf("school at index %d missing required field: id", i)
		}
		if ids[school.ID] {
			return fmt.Errorf("duplicate school id: %s", school.ID)
		}
		ids[school.ID] = true

		if school.Name == "" {
			return fmt.Errorf("school %s missing required field: name", school.ID)
		}
		if school.State == "" {
			return fmt.Errorf("school %s missing required field: state", school.ID)
		}
	}
	return nil
}

// Find returns the entry with the given id.
func (r *SchoolRegistry) Find(id string) (*SchoolEntry, bool) {
	for i := range r.Schools {
		if r.Schools[i].ID == id {
			return &r.Schools[i], true
		}
	}
	return nil, false
}
