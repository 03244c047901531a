// Package catalog holds the static flag collection the level builder draws from.
package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Difficulty bounds for a flag.
const (
	MinDifficulty = 1.0
	MaxDifficulty = 10.0
)

// Flag is a single flag entity. Flags are immutable once loaded.
type Flag struct {
	Code       string   `yaml:"code"`
	Name       string   `yaml:"name"`
	Difficulty float64  `yaml:"difficulty"`
	Region     string   `yaml:"region,omitempty"`
	Colors     []string `yaml:"colors,omitempty"`
	Image      string   `yaml:"image,omitempty"`
}

// SharedColors returns how many colors the two flags have in common.
func (f Flag) SharedColors(other Flag) int {
	if len(f.Colors) == 0 || len(other.Colors) == 0 {
		return 0
	}
	seen := make(map[string]bool, len(f.Colors))
	for _, c := range f.Colors {
		seen[c] = true
	}
	shared := 0
	for _, c := range other.Colors {
		if seen[c] {
			shared++
			seen[c] = false // count each color once
		}
	}
	return shared
}

// SameRegion reports whether both flags carry the same non-empty region.
func (f Flag) SameRegion(other Flag) bool {
	return f.Region != "" && f.Region == other.Region
}

// Catalog is an ordered, code-indexed collection of flags.
type Catalog struct {
	flags  []Flag
	byCode map[string]int
}

// New validates and normalizes the given flags into a catalog.
// Codes are lowercased and trimmed; duplicate codes and out-of-range
// difficulties are rejected.
func New(flags []Flag) (*Catalog, error) {
	c := &Catalog{
		flags:  make([]Flag, 0, len(flags)),
		byCode: make(map[string]int, len(flags)),
	}

	for i, f := range flags {
		f.Code = strings.ToLower(strings.TrimSpace(f.Code))
		f.Name = strings.TrimSpace(f.Name)
		f.Region = strings.ToLower(strings.TrimSpace(f.Region))

		if f.Code == "" {
			return nil, fmt.Errorf("catalog: flag #%d has no code", i)
		}
		if f.Name == "" {
			return nil, fmt.Errorf("catalog: flag %q has no name", f.Code)
		}
		if _, dup := c.byCode[f.Code]; dup {
			return nil, fmt.Errorf("catalog: duplicate flag code %q", f.Code)
		}
		if f.Difficulty < MinDifficulty || f.Difficulty > MaxDifficulty {
			return nil, fmt.Errorf("catalog: flag %q difficulty %.2f out of range [%.0f, %.0f]",
				f.Code, f.Difficulty, MinDifficulty, MaxDifficulty)
		}

		f.Colors = normalizeColors(f.Colors)
		if f.Image == "" {
			f.Image = "flags/" + f.Code + ".svg"
		}

		c.byCode[f.Code] = len(c.flags)
		c.flags = append(c.flags, f)
	}

	if len(c.flags) == 0 {
		return nil, errors.New("catalog: no flags")
	}

	return c, nil
}

// Len returns the number of flags in the catalog.
func (c *Catalog) Len() int {
	return len(c.flags)
}

// Flags returns a copy of all flags in load order.
func (c *Catalog) Flags() []Flag {
	out := make([]Flag, len(c.flags))
	copy(out, c.flags)
	return out
}

// ByCode looks up a flag by its canonical code.
func (c *Catalog) ByCode(code string) (Flag, bool) {
	i, ok := c.byCode[strings.ToLower(strings.TrimSpace(code))]
	if !ok {
		return Flag{}, false
	}
	return c.flags[i], true
}

// Regions returns the distinct regions with their flag counts.
func (c *Catalog) Regions() map[string]int {
	out := make(map[string]int)
	for _, f := range c.flags {
		region := f.Region
		if region == "" {
			region = "unknown"
		}
		out[region]++
	}
	return out
}

// SortedByDifficulty returns the flags ordered from easiest to hardest.
func (c *Catalog) SortedByDifficulty() []Flag {
	out := c.Flags()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Difficulty < out[j].Difficulty
	})
	return out
}

func normalizeColors(colors []string) []string {
	if len(colors) == 0 {
		return nil
	}
	out := make([]string, 0, len(colors))
	seen := make(map[string]bool, len(colors))
	for _, c := range colors {
		c = strings.ToLower(strings.TrimSpace(c))
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}
