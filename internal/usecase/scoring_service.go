package usecase

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/partmatch/backend/internal/domain"
)

// Score component weights. Name and property agreement dominate; the
// category is a coarse signal the filter has usually already enforced.
const (
	nameWeight     = 0.4
	categoryWeight = 0.2
	propertyWeight = 0.4
)

// ScoringService computes a weighted similarity score between a product
// mention and a single candidate item.
type ScoringService struct {
	similarity     SimilarityFunc
	fuzzyThreshold float64
	logger         *zap.Logger
}

// NewScoringService creates a scoring service. A nil similarity function
// falls back to LevenshteinRatio; a non-positive threshold falls back to the
// filter default so matched-property classification agrees with filtering.
func NewScoringService(similarity SimilarityFunc, fuzzyThreshold float64, logger *zap.Logger) *ScoringService {
	if similarity == nil {
		similarity = LevenshteinRatio
	}
	if fuzzyThreshold <= 0 {
		fuzzyThreshold = defaultFuzzyThreshold
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScoringService{
		similarity:     similarity,
		fuzzyThreshold: fuzzyThreshold,
		logger:         logger,
	}
}

// Score returns the candidate's similarity score in [0.0, 1.0], the matched
// property names (including the pseudo-property "category" when categories
// agree), the mention property names the candidate lacks, and a short
// human-readable explanation.
//
// score = 0.4*nameSimilarity + 0.2*categoryMatch + 0.4*averagePropertyMatch
func (s *ScoringService) Score(
	mention *domain.ProductMention,
	candidate *domain.InventoryItem,
) (float64, []string, []string, string) {
	nameSimilarity := s.similarity(Normalize(mention.ProductName), Normalize(candidate.ProductName))

	var matched []string
	categoryMatch := 0.0
	if mention.Category != "" && Normalize(mention.Category) == Normalize(candidate.Category) {
		categoryMatch = 1.0
		matched = append(matched, "category")
	}

	var missing []string
	averagePropertyMatch := 1.0 // vacuously true: no evidence against a match
	if len(mention.Properties) > 0 {
		var sum float64
		for _, prop := range mention.Properties {
			value, ok := candidate.PropertyValue(prop.Name)
			if !ok {
				// Absent property contributes 0 to the average.
				missing = append(missing, prop.Name)
				continue
			}
			similarity := s.similarity(Normalize(prop.Value), Normalize(value))
			sum += similarity
			if similarity >= s.fuzzyThreshold {
				matched = append(matched, prop.Name)
			}
		}
		averagePropertyMatch = sum / float64(len(mention.Properties))
	}

	score := nameWeight*nameSimilarity + categoryWeight*categoryMatch + propertyWeight*averagePropertyMatch
	if score > 1.0 {
		score = 1.0
	}
	if score < 0.0 {
		score = 0.0
	}

	reasoning := buildReasoning(nameSimilarity, categoryMatch, averagePropertyMatch, matched, missing)

	s.logger.Debug("scored candidate",
		zap.String("itemNumber", candidate.ItemNumber),
		zap.Float64("score", score),
		zap.Float64("nameSimilarity", nameSimilarity),
		zap.Float64("averagePropertyMatch", averagePropertyMatch))

	return score, matched, missing, reasoning
}

// buildReasoning produces a short templated explanation naming the matched
// and missing sets and the dominant score component.
func buildReasoning(nameSimilarity, categoryMatch, averagePropertyMatch float64, matched, missing []string) string {
	dominant := "name similarity"
	best := nameWeight * nameSimilarity
	if contribution := categoryWeight * categoryMatch; contribution > best {
		dominant = "category match"
		best = contribution
	}
	if contribution := propertyWeight * averagePropertyMatch; contribution > best {
		dominant = "property agreement"
	}

	var b strings.Builder
	if len(matched) > 0 {
		fmt.Fprintf(&b, "matched %s", strings.Join(matched, ", "))
	} else {
		b.WriteString("no properties matched")
	}
	if len(missing) > 0 {
		fmt.Fprintf(&b, "; candidate lacks %s", strings.Join(missing, ", "))
	}
	fmt.Fprintf(&b, "; strongest signal: %s (name %.2f, category %.1f, properties %.2f)",
		dominant, nameSimilarity, categoryMatch, averagePropertyMatch)

	return b.String()
}
