package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultCatalogLoads(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default() failed: %v", err)
	}
	if c.Len() < 100 {
		t.Errorf("expected at least 100 flags, got %d", c.Len())
	}

	fr, ok := c.ByCode("FR")
	if !ok {
		t.Fatal("expected lookup by code to be case-insensitive")
	}
	if fr.Name != "France" {
		t.Errorf("expected France, got %q", fr.Name)
	}
	if fr.Image != "flags/fr.svg" {
		t.Errorf("expected default image reference, got %q", fr.Image)
	}

	no, ok := c.ByCode("no")
	if !ok || no.Name != "Norway" {
		t.Errorf("expected Norway for code \"no\", got %+v", no)
	}
}

func TestNewRejectsInvalidFlags(t *testing.T) {
	tests := []struct {
		name  string
		flags []Flag
	}{
		{"empty", nil},
		{"missing code", []Flag{{Name: "X", Difficulty: 2}}},
		{"missing name", []Flag{{Code: "xx", Difficulty: 2}}},
		{"duplicate code", []Flag{
			{Code: "xx", Name: "X", Difficulty: 2},
			{Code: "XX", Name: "X2", Difficulty: 3},
		}},
		{"difficulty too low", []Flag{{Code: "xx", Name: "X", Difficulty: 0.5}}},
		{"difficulty too high", []Flag{{Code: "xx", Name: "X", Difficulty: 10.5}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.flags); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestSharedColorsAndRegion(t *testing.T) {
	a := Flag{Code: "a", Region: "europe", Colors: []string{"red", "white", "blue"}}
	b := Flag{Code: "b", Region: "europe", Colors: []string{"blue", "white", "green"}}
	c := Flag{Code: "c", Colors: []string{"green"}}

	if got := a.SharedColors(b); got != 2 {
		t.Errorf("expected 2 shared colors, got %d", got)
	}
	if got := a.SharedColors(c); got != 0 {
		t.Errorf("expected 0 shared colors, got %d", got)
	}
	if !a.SameRegion(b) {
		t.Error("expected same region")
	}
	if c.SameRegion(Flag{}) {
		t.Error("empty regions must not match")
	}
}

func TestNormalizeColors(t *testing.T) {
	c, err := New([]Flag{{Code: " XX ", Name: "X", Difficulty: 2, Colors: []string{"Red", "red", " ", "Blue"}}})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	f, _ := c.ByCode("xx")
	if len(f.Colors) != 2 || f.Colors[0] != "red" || f.Colors[1] != "blue" {
		t.Errorf("unexpected colors: %v", f.Colors)
	}
}

func TestLoadCustomPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flags.yaml")
	data := []byte(`flags:
  - {code: aa, name: Alpha, difficulty: 1.5, region: europe, colors: [red]}
  - {code: bb, name: Beta, difficulty: 9.5}
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if c.Len() != 2 {
		t.Errorf("expected 2 flags, got %d", c.Len())
	}
	if got := c.Regions()["unknown"]; got != 1 {
		t.Errorf("expected one flag without region, got %d", got)
	}

	sorted := c.SortedByDifficulty()
	if sorted[0].Code != "aa" {
		t.Errorf("expected easiest flag first, got %s", sorted[0].Code)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing custom path")
	}
}
