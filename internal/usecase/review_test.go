package usecase

import (
	"testing"

	"github.com/partmatch/backend/internal/domain"
)

func flagTypes(flags []domain.ReviewFlag) []domain.IssueType {
	types := make([]domain.IssueType, 0, len(flags))
	for _, f := range flags {
		types = append(types, f.IssueType)
	}
	return types
}

func hasFlag(flags []domain.ReviewFlag, issue domain.IssueType) bool {
	for _, f := range flags {
		if f.IssueType == issue {
			return true
		}
	}
	return false
}

func TestEvaluate(t *testing.T) {
	reviewer := NewReviewService(0)
	mention := &domain.ProductMention{ProductName: "hex bolt", Category: "Fasteners"}

	t.Run("no matches yields exactly NO_MATCHES", func(t *testing.T) {
		flags := reviewer.Evaluate(mention, nil)
		if len(flags) != 1 || flags[0].IssueType != domain.IssueNoMatches {
			t.Fatalf("flags = %v, want exactly NO_MATCHES", flagTypes(flags))
		}
		if flags[0].MatchCount != 0 {
			t.Errorf("MatchCount = %d, want 0", flags[0].MatchCount)
		}
	})

	t.Run("confident single match yields no flags", func(t *testing.T) {
		flags := reviewer.Evaluate(mention, []domain.InventoryMatch{
			{ItemNumber: "FB-001", Score: 0.95, Rank: 1},
		})
		if len(flags) != 0 {
			t.Errorf("flags = %v, want none", flagTypes(flags))
		}
	})

	t.Run("top score below threshold yields LOW_CONFIDENCE with the score", func(t *testing.T) {
		flags := reviewer.Evaluate(mention, []domain.InventoryMatch{
			{ItemNumber: "FB-001", Score: 0.65, Rank: 1},
		})
		if !hasFlag(flags, domain.IssueLowConfidence) {
			t.Fatalf("flags = %v, want LOW_CONFIDENCE", flagTypes(flags))
		}
		for _, f := range flags {
			if f.IssueType != domain.IssueLowConfidence {
				continue
			}
			if f.TopConfidence == nil || *f.TopConfidence != 0.65 {
				t.Errorf("TopConfidence = %v, want 0.65", f.TopConfidence)
			}
		}
	})

	t.Run("top score exactly at threshold is not flagged", func(t *testing.T) {
		flags := reviewer.Evaluate(mention, []domain.InventoryMatch{
			{ItemNumber: "FB-001", Score: 0.7, Rank: 1},
		})
		if hasFlag(flags, domain.IssueLowConfidence) {
			t.Errorf("flags = %v, score at the threshold must not be flagged", flagTypes(flags))
		}
	})

	t.Run("near-tied top two yield AMBIGUOUS_MATCH", func(t *testing.T) {
		flags := reviewer.Evaluate(mention, []domain.InventoryMatch{
			{ItemNumber: "FB-001", Score: 0.81, Rank: 1},
			{ItemNumber: "FB-002", Score: 0.79, Rank: 2},
		})
		if len(flags) != 1 || flags[0].IssueType != domain.IssueAmbiguousMatch {
			t.Fatalf("flags = %v, want exactly AMBIGUOUS_MATCH", flagTypes(flags))
		}
		if flags[0].MatchCount != 2 {
			t.Errorf("MatchCount = %d, want 2", flags[0].MatchCount)
		}
	})

	t.Run("gap exactly at the limit is not ambiguous", func(t *testing.T) {
		flags := reviewer.Evaluate(mention, []domain.InventoryMatch{
			{ItemNumber: "FB-001", Score: 0.9, Rank: 1},
			{ItemNumber: "FB-002", Score: 0.8, Rank: 2},
		})
		if hasFlag(flags, domain.IssueAmbiguousMatch) {
			t.Errorf("flags = %v, gap of exactly 0.1 must not be flagged", flagTypes(flags))
		}
	})

	t.Run("two or more missing properties yield MISSING_PROPERTIES", func(t *testing.T) {
		flags := reviewer.Evaluate(mention, []domain.InventoryMatch{
			{ItemNumber: "FB-001", Score: 0.9, Rank: 1, MissingProperties: []string{"finish", "length"}},
		})
		if len(flags) != 1 || flags[0].IssueType != domain.IssueMissingProperties {
			t.Fatalf("flags = %v, want exactly MISSING_PROPERTIES", flagTypes(flags))
		}
	})

	t.Run("a single missing property is tolerated", func(t *testing.T) {
		flags := reviewer.Evaluate(mention, []domain.InventoryMatch{
			{ItemNumber: "FB-001", Score: 0.9, Rank: 1, MissingProperties: []string{"finish"}},
		})
		if hasFlag(flags, domain.IssueMissingProperties) {
			t.Errorf("flags = %v, one missing property must not be flagged", flagTypes(flags))
		}
	})

	t.Run("independent rules stack", func(t *testing.T) {
		flags := reviewer.Evaluate(mention, []domain.InventoryMatch{
			{ItemNumber: "FB-001", Score: 0.6, Rank: 1, MissingProperties: []string{"finish", "length"}},
			{ItemNumber: "FB-002", Score: 0.55, Rank: 2},
		})
		if !hasFlag(flags, domain.IssueLowConfidence) ||
			!hasFlag(flags, domain.IssueAmbiguousMatch) ||
			!hasFlag(flags, domain.IssueMissingProperties) {
			t.Errorf("flags = %v, want all three quality flags", flagTypes(flags))
		}
	})

	t.Run("custom threshold overrides the default", func(t *testing.T) {
		strict := NewReviewService(0.9)
		flags := strict.Evaluate(mention, []domain.InventoryMatch{
			{ItemNumber: "FB-001", Score: 0.85, Rank: 1},
		})
		if !hasFlag(flags, domain.IssueLowConfidence) {
			t.Errorf("flags = %v, want LOW_CONFIDENCE under a 0.9 threshold", flagTypes(flags))
		}
	})
}
