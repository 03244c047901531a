package levels

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/vovakirdan/flagquest/internal/catalog"
)

// syntheticFlags returns n flags with difficulty spread evenly over 1..10.
func syntheticFlags(n int) []catalog.Flag {
	flags := make([]catalog.Flag, n)
	for i := range flags {
		d := 1 + 9*float64(i)/float64(n-1)
		flags[i] = catalog.Flag{
			Code:       fmt.Sprintf("f%03d", i),
			Name:       fmt.Sprintf("Flag %d", i),
			Difficulty: d,
		}
	}
	return flags
}

func TestTargetDifficultyCurve(t *testing.T) {
	if got := TargetDifficulty(1, 30); got != 1 {
		t.Errorf("level 1 target: expected 1, got %f", got)
	}
	if got := TargetDifficulty(30, 30); got != 9.5 {
		t.Errorf("level 30 target: expected 9.5, got %f", got)
	}

	prev := 0.0
	for id := 1; id <= 30; id++ {
		got := TargetDifficulty(id, 30)
		if got < prev {
			t.Fatalf("target must be non-decreasing: level %d = %f < %f", id, got, prev)
		}
		prev = got
	}

	// Eased: the first third of the sequence stays near the bottom
	if got := TargetDifficulty(10, 30); got > 1.5 {
		t.Errorf("expected slow early ramp, level 10 target = %f", got)
	}
}

func TestDifficultyBands(t *testing.T) {
	tests := []struct {
		id      int
		floor   float64
		ceiling float64
	}{
		{1, 1, 2.5},
		{5, 1, 2.5},
		{6, 2, 4},
		{15, 3, 5.5},
		{20, 4, 7},
		{25, 5, 8.5},
		{30, 6, 9.5},
	}
	for _, tt := range tests {
		if got := MinDifficulty(tt.id); got != tt.floor {
			t.Errorf("MinDifficulty(%d) = %f, want %f", tt.id, got, tt.floor)
		}
		if got := DifficultyCap(tt.id); got != tt.ceiling {
			t.Errorf("DifficultyCap(%d) = %f, want %f", tt.id, got, tt.ceiling)
		}
	}
}

func TestBuildProducesFullSequence(t *testing.T) {
	flags := syntheticFlags(300)
	set := Build(flags, DefaultParams(), rand.New(rand.NewSource(7)))

	if len(set) != 30 {
		t.Fatalf("expected 30 levels, got %d", len(set))
	}

	for i, def := range set {
		if def.ID != i+1 {
			t.Errorf("level at index %d has id %d", i, def.ID)
		}
		if len(def.Pool) == 0 {
			t.Errorf("level %d has an empty pool", def.ID)
		}
		if len(def.Pool) > DefaultPoolSize {
			t.Errorf("level %d pool too large: %d", def.ID, len(def.Pool))
		}
		if def.QuestionCount != DefaultQuestionCount {
			t.Errorf("level %d question count = %d", def.ID, def.QuestionCount)
		}

		seen := make(map[string]bool)
		for _, f := range def.Pool {
			if seen[f.Code] {
				t.Errorf("level %d has duplicate flag %s", def.ID, f.Code)
			}
			seen[f.Code] = true
		}
	}

	first, last := set[0].MeanDifficulty(), set[29].MeanDifficulty()
	if first >= last {
		t.Errorf("expected level 1 mean difficulty (%f) < level 30 (%f)", first, last)
	}
}

func TestBuildRespectsBands(t *testing.T) {
	flags := syntheticFlags(300)
	set := Build(flags, DefaultParams(), rand.New(rand.NewSource(11)))

	for _, def := range set {
		lo, hi := MinDifficulty(def.ID), DifficultyCap(def.ID)
		for _, f := range def.Pool {
			if f.Difficulty < lo || f.Difficulty > hi {
				t.Errorf("level %d: flag %s difficulty %f outside [%f, %f]",
					def.ID, f.Code, f.Difficulty, lo, hi)
			}
		}
	}
}

func TestBuildDeterministicWithSeed(t *testing.T) {
	flags := syntheticFlags(300)
	a := Build(flags, DefaultParams(), rand.New(rand.NewSource(42)))
	b := Build(flags, DefaultParams(), rand.New(rand.NewSource(42)))

	for i := range a {
		if len(a[i].Pool) != len(b[i].Pool) {
			t.Fatalf("level %d pool sizes differ", a[i].ID)
		}
		for j := range a[i].Pool {
			if a[i].Pool[j].Code != b[i].Pool[j].Code {
				t.Fatalf("level %d pool differs at %d: %s vs %s",
					a[i].ID, j, a[i].Pool[j].Code, b[i].Pool[j].Code)
			}
		}
	}
}

func TestBuildSmallCatalogFallsBack(t *testing.T) {
	// Far fewer flags than the band minimum: every level uses the whole catalog
	flags := syntheticFlags(6)
	set := Build(flags, DefaultParams(), rand.New(rand.NewSource(1)))

	if len(set) != 30 {
		t.Fatalf("expected 30 levels, got %d", len(set))
	}
	for _, def := range set {
		if len(def.Pool) != 6 {
			t.Errorf("level %d: expected all 6 flags, got %d", def.ID, len(def.Pool))
		}
	}
}

func TestBuildEmptyCatalog(t *testing.T) {
	set := Build(nil, DefaultParams(), rand.New(rand.NewSource(1)))
	if len(set) != 30 {
		t.Fatalf("expected 30 levels even without flags, got %d", len(set))
	}
	if len(set[0].Pool) != 0 {
		t.Errorf("expected empty pool, got %d", len(set[0].Pool))
	}
}

func TestSetByID(t *testing.T) {
	set := Build(syntheticFlags(100), Params{TotalLevels: 10}, rand.New(rand.NewSource(3)))
	if len(set) != 10 {
		t.Fatalf("expected 10 levels, got %d", len(set))
	}

	def, ok := set.ByID(4)
	if !ok || def.ID != 4 {
		t.Errorf("ByID(4) = %d, %v", def.ID, ok)
	}
	if _, ok := set.ByID(0); ok {
		t.Error("ByID(0) should fail")
	}
	if _, ok := set.ByID(11); ok {
		t.Error("ByID(11) should fail")
	}
}
