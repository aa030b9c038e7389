package world

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cinderpeak/ironwatch/internal/game/geom"
)

// yamlLevelFile is the top-level YAML structure for level files.
type yamlLevelFile struct {
	Level yamlLevel `yaml:"level"`
}

// yamlLevel is the YAML representation of a level.
type yamlLevel struct {
	ID          string      `yaml:"id"`
	Name        string      `yaml:"name"`
	TileSize    float64     `yaml:"tile_size"`
	Rows        []string    `yaml:"rows"`
	PlayerStart yamlPoint   `yaml:"player_start"`
	Checkpoints []yamlPoint `yaml:"checkpoints"`
	Spawns      []yamlSpawn `yaml:"spawns"`
}

type yamlPoint struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

type yamlSpawn struct {
	Archetype string  `yaml:"archetype"`
	X         float64 `yaml:"x"`
	Y         float64 `yaml:"y"`
	PatrolMin float64 `yaml:"patrol_min"`
	PatrolMax float64 `yaml:"patrol_max"`
}

// LoadLevelFromFile reads and validates a single level YAML file.
//
// Precondition: path must point to a valid YAML level file.
// Postcondition: Returns a validated Level or a non-nil error.
func LoadLevelFromFile(path string) (*Level, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading level file %s: %w", path, err)
	}
	return LoadLevelFromBytes(data)
}

// LoadLevelFromBytes parses and validates a level from YAML bytes. In the
// row strings '#' marks a solid tile, '^' spikes and '~' a pit; every other
// rune is open space. Row width is counted in runes, so rows may mix ASCII
// and wider glyphs as long as every row has the same rune count.
//
// Precondition: data must be valid YAML conforming to the level schema.
// Postcondition: Returns a validated Level or a non-nil error.
func LoadLevelFromBytes(data []byte) (*Level, error) {
	var file yamlLevelFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing level YAML: %w", err)
	}

	level, err := convertYAMLLevel(file.Level)
	if err != nil {
		return nil, err
	}
	if err := level.Validate(); err != nil {
		return nil, fmt.Errorf("validating level: %w", err)
	}

	return level, nil
}

// convertYAMLLevel converts the parsed YAML structures into the domain type.
func convertYAMLLevel(yl yamlLevel) (*Level, error) {
	if len(yl.Rows) == 0 {
		return nil, fmt.Errorf("level %q: rows must not be empty", yl.ID)
	}

	width := len([]rune(yl.Rows[0]))
	solid := make([][]bool, len(yl.Rows))
	hazards := make([][]Hazard, len(yl.Rows))
	for y, rowStr := range yl.Rows {
		row := []rune(rowStr)
		if len(row) != width {
			return nil, fmt.Errorf("level %q: row %d width %d does not match row 0 width %d", yl.ID, y, len(row), width)
		}
		solid[y] = make([]bool, width)
		hazards[y] = make([]Hazard, width)
		for x, r := range row {
			switch r {
			case '#':
				solid[y][x] = true
			case '^':
				hazards[y][x] = HazardSpikes
			case '~':
				hazards[y][x] = HazardPit
			}
		}
	}

	tileSize := yl.TileSize
	if tileSize == 0 {
		tileSize = 1.0
	}

	level := &Level{
		ID:          yl.ID,
		Name:        strings.TrimSpace(yl.Name),
		TileSize:    tileSize,
		Width:       width,
		Height:      len(yl.Rows),
		PlayerStart: geom.Vec2{X: yl.PlayerStart.X, Y: yl.PlayerStart.Y},
		solid:       solid,
		hazards:     hazards,
	}
	for _, cp := range yl.Checkpoints {
		level.Checkpoints = append(level.Checkpoints, geom.Vec2{X: cp.X, Y: cp.Y})
	}
	for _, s := range yl.Spawns {
		level.Spawns = append(level.Spawns, SpawnPoint{
			Archetype: s.Archetype,
			Position:  geom.Vec2{X: s.X, Y: s.Y},
			PatrolMin: s.PatrolMin,
			PatrolMax: s.PatrolMax,
		})
	}

	return level, nil
}
