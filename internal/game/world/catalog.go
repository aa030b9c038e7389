package world

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Catalog provides thread-safe access to the loaded levels, indexed by
// level ID. Reload replaces the whole set in one swap so a running
// harness can pick up content changes between encounters.
type Catalog struct {
	mu     sync.RWMutex
	levels map[string]*Level
	// order preserves load order; the first entry is the default level.
	order []string
}

// NewCatalog builds a catalog from already-loaded levels.
//
// Postcondition: Returns a Catalog with all levels indexed by ID, or an
// error on duplicate level IDs.
func NewCatalog(levels []*Level) (*Catalog, error) {
	c := &Catalog{
		levels: make(map[string]*Level, len(levels)),
		order:  make([]string, 0, len(levels)),
	}
	for _, level := range levels {
		if _, exists := c.levels[level.ID]; exists {
			return nil, fmt.Errorf("duplicate level ID: %q", level.ID)
		}
		c.levels[level.ID] = level
		c.order = append(c.order, level.ID)
	}
	return c, nil
}

// LoadCatalog reads every level file in dir, in filename order.
//
// Precondition: dir must exist and contain at least one level file.
// Postcondition: Returns a fully validated Catalog or a non-nil error.
func LoadCatalog(dir string) (*Catalog, error) {
	levels, err := loadLevelsFromDir(dir)
	if err != nil {
		return nil, err
	}
	return NewCatalog(levels)
}

// Level returns the level with the given ID.
//
// Postcondition: Returns (level, true) if found, or (nil, false) otherwise.
func (c *Catalog) Level(id string) (*Level, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	l, ok := c.levels[id]
	return l, ok
}

// DefaultLevel returns the first loaded level.
//
// Postcondition: Returns the default level or nil if the catalog is empty.
func (c *Catalog) DefaultLevel() *Level {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.order) == 0 {
		return nil
	}
	return c.levels[c.order[0]]
}

// IDs returns the level IDs in load order.
//
// Postcondition: Returns a non-nil slice; may be empty.
func (c *Catalog) IDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]string, len(c.order))
	copy(ids, c.order)
	return ids
}

// Count returns the number of loaded levels.
func (c *Catalog) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.levels)
}

// Reload reads dir again and replaces the catalog contents in one swap.
//
// Postcondition: On error the previous contents are kept unchanged.
func (c *Catalog) Reload(dir string) error {
	levels, err := loadLevelsFromDir(dir)
	if err != nil {
		return err
	}
	fresh, err := NewCatalog(levels)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.levels = fresh.levels
	c.order = fresh.order
	c.mu.Unlock()
	return nil
}

// ValidateSpawns checks that every spawn in every level names a known
// archetype. Call this after loading to catch drift between level files
// and the ruleset content.
//
// Postcondition: Returns nil if all spawns resolve, or an error naming
// the first unknown archetype.
func (c *Catalog) ValidateSpawns(known func(archetype string) bool) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, id := range c.order {
		for _, sp := range c.levels[id].Spawns {
			if !known(sp.Archetype) {
				return fmt.Errorf("level %q: spawn at (%g, %g) references unknown archetype %q",
					id, sp.Position.X, sp.Position.Y, sp.Archetype)
			}
		}
	}
	return nil
}

// loadLevelsFromDir loads every .yaml/.yml file in dir in filename order.
func loadLevelsFromDir(dir string) ([]*Level, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading level directory %s: %w", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if ext := filepath.Ext(e.Name()); ext != ".yaml" && ext != ".yml" {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	levels := make([]*Level, 0, len(names))
	for _, name := range names {
		level, err := LoadLevelFromFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		levels = append(levels, level)
	}
	if len(levels) == 0 {
		return nil, fmt.Errorf("no level files in %s", dir)
	}
	return levels, nil
}
