package usecase

import (
	"strings"
	"testing"

	"github.com/partmatch/backend/internal/domain"
)

func TestScore(t *testing.T) {
	scorer := NewScoringService(nil, 0.8, nil)

	t.Run("exact item scores 1.0 with category in matched set", func(t *testing.T) {
		mention := &domain.ProductMention{
			ProductName: "Hex Bolt",
			Category:    "Fasteners",
			Properties: []domain.Property{
				{Name: "grade", Value: "gr8", Confidence: 0.9},
				{Name: "size", Value: "1/2-13", Confidence: 0.9},
			},
		}
		candidate := &domain.InventoryItem{
			ItemNumber:  "FB-001",
			ProductName: "hex bolt",
			Category:    "Fasteners",
			Properties:  map[string]string{"grade": "8", "size": "1/2-13"},
		}

		score, matched, missing, reasoning := scorer.Score(mention, candidate)
		if !almostEqual(score, 1.0) {
			t.Errorf("score = %v, want 1.0", score)
		}
		if !containsAll(matched, "category", "grade", "size") {
			t.Errorf("matched = %v, want category, grade and size", matched)
		}
		if len(missing) != 0 {
			t.Errorf("missing = %v, want empty", missing)
		}
		if reasoning == "" {
			t.Error("reasoning is empty")
		}
	})

	t.Run("missing property contributes zero and is reported", func(t *testing.T) {
		mention := &domain.ProductMention{
			ProductName: "hex bolt",
			Category:    "Fasteners",
			Properties: []domain.Property{
				{Name: "grade", Value: "8", Confidence: 0.9},
				{Name: "finish", Value: "galvanized", Confidence: 0.7},
			},
		}
		candidate := &domain.InventoryItem{
			ItemNumber:  "FB-002",
			ProductName: "hex bolt",
			Category:    "Fasteners",
			Properties:  map[string]string{"grade": "8"},
		}

		score, matched, missing, _ := scorer.Score(mention, candidate)
		// 0.4*1.0 + 0.2*1.0 + 0.4*(1.0+0.0)/2 = 0.8
		if !almostEqual(score, 0.8) {
			t.Errorf("score = %v, want 0.8", score)
		}
		if !containsAll(matched, "category", "grade") {
			t.Errorf("matched = %v, want category and grade", matched)
		}
		if len(missing) != 1 || missing[0] != "finish" {
			t.Errorf("missing = %v, want [finish]", missing)
		}
	})

	t.Run("zero-property mention scores property component vacuously", func(t *testing.T) {
		mention := &domain.ProductMention{
			ProductName: "hex bolt",
			Category:    "Fasteners",
		}
		candidate := &domain.InventoryItem{
			ItemNumber:  "FB-003",
			ProductName: "hex bolt",
			Category:    "Fasteners",
		}

		score, _, missing, _ := scorer.Score(mention, candidate)
		if !almostEqual(score, 1.0) {
			t.Errorf("score = %v, want 1.0 (vacuous property match)", score)
		}
		if len(missing) != 0 {
			t.Errorf("missing = %v, want empty", missing)
		}
	})

	t.Run("category mismatch drops the category component", func(t *testing.T) {
		mention := &domain.ProductMention{
			ProductName: "hex bolt",
			Category:    "Fasteners",
		}
		candidate := &domain.InventoryItem{
			ItemNumber:  "BR-001",
			ProductName: "hex bolt",
			Category:    "Bearings",
		}

		score, matched, _, _ := scorer.Score(mention, candidate)
		// 0.4*1.0 + 0.2*0.0 + 0.4*1.0 = 0.8
		if !almostEqual(score, 0.8) {
			t.Errorf("score = %v, want 0.8", score)
		}
		if containsAll(matched, "category") {
			t.Errorf("matched = %v, must not contain category", matched)
		}
	})

	t.Run("property below fuzzy threshold is not matched but still averages", func(t *testing.T) {
		mention := &domain.ProductMention{
			ProductName: "hex bolt",
			Category:    "Fasteners",
			Properties:  []domain.Property{{Name: "size", Value: "1/2-13", Confidence: 0.9}},
		}
		candidate := &domain.InventoryItem{
			ItemNumber:  "FB-004",
			ProductName: "hex bolt",
			Category:    "Fasteners",
			Properties:  map[string]string{"size": "3/4-10"},
		}

		_, matched, missing, _ := scorer.Score(mention, candidate)
		if containsAll(matched, "size") {
			t.Errorf("matched = %v, size should be below threshold", matched)
		}
		if len(missing) != 0 {
			t.Errorf("missing = %v, want empty (property present but dissimilar)", missing)
		}
	})

	t.Run("reasoning names the dominant component", func(t *testing.T) {
		mention := &domain.ProductMention{
			ProductName: "hex bolt",
			Category:    "Fasteners",
			Properties:  []domain.Property{{Name: "grade", Value: "8", Confidence: 0.9}},
		}
		candidate := &domain.InventoryItem{
			ItemNumber:  "FB-005",
			ProductName: "hex bolt",
			Category:    "Fasteners",
			Properties:  map[string]string{"grade": "8"},
		}

		_, _, _, reasoning := scorer.Score(mention, candidate)
		if !strings.Contains(reasoning, "strongest signal") {
			t.Errorf("reasoning %q does not name the dominant component", reasoning)
		}
	})
}

func TestScoreBounds(t *testing.T) {
	scorer := NewScoringService(nil, 0.8, nil)

	mentions := []*domain.ProductMention{
		{ProductName: "hex bolt", Category: "Fasteners"},
		{ProductName: "x", Category: "", Properties: []domain.Property{{Name: "a", Value: "b", Confidence: 1}}},
		{ProductName: "socket head cap screw", Category: "Fasteners", Properties: []domain.Property{
			{Name: "grade", Value: "gr8", Confidence: 0.5},
			{Name: "finish", Value: "galv", Confidence: 0.5},
		}},
	}
	candidates := []*domain.InventoryItem{
		{ItemNumber: "1", ProductName: "totally unrelated", Category: "Gaskets"},
		{ItemNumber: "2", ProductName: "hex bolt", Category: "Fasteners", Properties: map[string]string{"grade": "8"}},
		{ItemNumber: "3"},
	}

	for _, m := range mentions {
		for _, c := range candidates {
			score, _, _, _ := scorer.Score(m, c)
			if score < 0.0 || score > 1.0 {
				t.Errorf("score %v out of bounds for mention %q candidate %q", score, m.ProductName, c.ItemNumber)
			}
		}
	}
}

func containsAll(haystack []string, needles ...string) bool {
	set := make(map[string]bool, len(haystack))
	for _, s := range haystack {
		set[s] = true
	}
	for _, n := range needles {
		if !set[n] {
			return false
		}
	}
	return true
}
