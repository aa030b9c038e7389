package ruleset

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadArchetypes reads all .yaml files in dir and parses each as one
// Archetype.
//
// Precondition: dir must be a readable directory path.
// Postcondition: Returns validated archetypes with defaults applied, or an
// error on the first parse or validation failure.
func LoadArchetypes(dir string) ([]*Archetype, error) {
	files, err := yamlPaths(dir)
	if err != nil {
		return nil, err
	}
	archetypes := make([]*Archetype, 0, len(files))
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		var a Archetype
		if err := yaml.Unmarshal(data, &a); err != nil {
			return nil, fmt.Errorf("parsing archetype file %s: %w", path, err)
		}
		a.applyDefaults()
		if err := a.Validate(); err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
		archetypes = append(archetypes, &a)
	}
	return archetypes, nil
}

// LoadVariants reads all .yaml files in dir and parses each as one
// AttackVariant.
//
// Precondition: dir must be a readable directory path.
// Postcondition: Returns validated variants with defaults applied, or an
// error on the first parse or validation failure.
func LoadVariants(dir string) ([]*AttackVariant, error) {
	files, err := yamlPaths(dir)
	if err != nil {
		return nil, err
	}
	variants := make([]*AttackVariant, 0, len(files))
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		var v AttackVariant
		if err := yaml.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("parsing attack file %s: %w", path, err)
		}
		v.applyDefaults()
		if err := v.Validate(); err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
		variants = append(variants, &v)
	}
	return variants, nil
}

// LoadDir loads a full content root: root/archetypes and root/attacks.
//
// Precondition: root must contain archetypes/ and attacks/ subdirectories.
// Postcondition: Returns a cross-checked registry or a non-nil error.
func LoadDir(root string) (*Registry, error) {
	archetypes, err := LoadArchetypes(filepath.Join(root, "archetypes"))
	if err != nil {
		return nil, fmt.Errorf("loading archetypes: %w", err)
	}
	variants, err := LoadVariants(filepath.Join(root, "attacks"))
	if err != nil {
		return nil, fmt.Errorf("loading attacks: %w", err)
	}
	return BuildRegistry(archetypes, variants)
}

func yamlPaths(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
			paths = append(paths, filepath.Join(dir, name))
		}
	}
	return paths, nil
}
