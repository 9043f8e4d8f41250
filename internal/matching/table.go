package matching

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed compatibility.yaml
var compatibilityYAML []byte

// CompatibilityTable maps a pair of personality types to a ranking bonus
// through a qualitative tier. It is loaded once at startup and never
// mutated, so reads need no synchronization.
type CompatibilityTable struct {
	tiers map[string]int
	grid  map[string]map[string]string
}

type tableFile struct {
	Tiers map[string]int               `yaml:"tiers"`
	Grid  map[string]map[string]string `yaml:"grid"`
}

// LoadCompatibilityTable parses the embedded personality grid.
func LoadCompatibilityTable() (*CompatibilityTable, error) {
	return ParseCompatibilityTable(compatibilityYAML)
}

// ParseCompatibilityTable builds a table from YAML config, rejecting
// unknown tiers, ragged rows, and asymmetric grids.
func ParseCompatibilityTable(data []byte) (*CompatibilityTable, error) {
	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse compatibility table: %w", err)
	}
	if len(f.Tiers) == 0 {
		return nil, fmt.Errorf("compatibility table has no tiers")
	}
	if len(f.Grid) == 0 {
		return nil, fmt.Errorf("compatibility table has no grid")
	}
	for a, row := range f.Grid {
		if len(row) != len(f.Grid) {
			return nil, fmt.Errorf("compatibility row %s has %d entries, want %d", a, len(row), len(f.Grid))
		}
		for b, tier := range row {
			if _, ok := f.Tiers[tier]; !ok {
				return nil, fmt.Errorf("compatibility grid %s/%s uses unknown tier %q", a, b, tier)
			}
			back, ok := f.Grid[b]
			if !ok {
				return nil, fmt.Errorf("compatibility row %s references unknown type %s", a, b)
			}
			if back[a] != tier {
				return nil, fmt.Errorf("compatibility grid is asymmetric: %s/%s=%s but %s/%s=%s", a, b, tier, b, a, back[a])
			}
		}
	}
	return &CompatibilityTable{tiers: f.Tiers, grid: f.Grid}, nil
}

// Score returns the symmetric bonus for two personality types. ok is false
// when either side has no recorded type (or an unknown one); an absent
// score never blocks a match, it only forfeits the ranking bonus.
func (t *CompatibilityTable) Score(a, b string) (int, bool) {
	if a == "" || b == "" {
		return 0, false
	}
	row, ok := t.grid[a]
	if !ok {
		return 0, false
	}
	tier, ok := row[b]
	if !ok {
		return 0, false
	}
	return t.tiers[tier], true
}

// Types returns the number of personality types in the grid.
func (t *CompatibilityTable) Types() int {
	return len(t.grid)
}
