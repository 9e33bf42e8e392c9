package usecase

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/partmatch/backend/internal/domain"
)

// Filter defaults
const (
	defaultContinueThreshold = 10
	defaultFuzzyThreshold    = 0.8
)

// FilterConfig holds configuration for the progressive filter
type FilterConfig struct {
	// ContinueThreshold is the minimum candidate count a stage must leave
	// behind for its narrowing to be committed.
	ContinueThreshold int
	// FuzzyThreshold is the minimum normalized similarity for a property
	// predicate to keep a candidate.
	FuzzyThreshold float64
	// InclusiveThreshold controls the degradation boundary: when false
	// (default) a stage is discarded if it would leave strictly fewer than
	// ContinueThreshold candidates; when true a stage landing exactly on the
	// threshold is discarded as well.
	InclusiveThreshold bool
}

// ProgressiveFilter narrows the catalog down to a scoreable candidate set,
// stage by stage: exact category first, then each hierarchy property the
// mention provides, in order of discriminating power. A stage that would
// over-prune the set is discarded and filtering stops (graceful
// degradation), so the filter never returns too few candidates to score
// meaningfully.
type ProgressiveFilter struct {
	catalog            domain.CatalogRepository
	hierarchy          *HierarchyProvider
	logger             *zap.Logger
	continueThreshold  int
	fuzzyThreshold     float64
	inclusiveThreshold bool
}

// NewProgressiveFilter creates a progressive filter with the given
// dependencies and configuration.
func NewProgressiveFilter(
	catalog domain.CatalogRepository,
	hierarchy *HierarchyProvider,
	logger *zap.Logger,
	config FilterConfig,
) *ProgressiveFilter {
	threshold := config.ContinueThreshold
	if threshold <= 0 {
		threshold = defaultContinueThreshold
	}

	fuzzy := config.FuzzyThreshold
	if fuzzy <= 0 {
		fuzzy = defaultFuzzyThreshold
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &ProgressiveFilter{
		catalog:            catalog,
		hierarchy:          hierarchy,
		logger:             logger,
		continueThreshold:  threshold,
		fuzzyThreshold:     fuzzy,
		inclusiveThreshold: config.InclusiveThreshold,
	}
}

// Filter returns the surviving candidates and the number of property stages
// actually applied. A mention with zero usable properties yields exactly the
// category filter at depth 0. Stage query failures wrap domain.ErrFilter;
// hierarchy loading failures wrap domain.ErrConfiguration.
func (f *ProgressiveFilter) Filter(
	ctx context.Context,
	mention *domain.ProductMention,
) ([]domain.InventoryItem, int, error) {
	category := Normalize(mention.Category)

	// Stage 0: exact category predicate.
	candidates, count, err := f.catalog.Query(ctx, category, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: category stage: %v", domain.ErrFilter, err)
	}
	if count == 0 {
		return []domain.InventoryItem{}, 0, nil
	}

	// Already at or below the usable minimum: never apply a property stage.
	if f.belowThreshold(count) {
		f.logger.Debug("category stage already at minimum, skipping property stages",
			zap.String("category", category),
			zap.Int("candidates", count))
		return candidates, 0, nil
	}

	order, err := f.hierarchy.HierarchyFor(ctx, mention.Category)
	if err != nil {
		return nil, 0, err
	}

	predicates := make([]domain.PropertyPredicate, 0, len(order))
	depth := 0

	for _, name := range order {
		raw, ok := mention.PropertyValue(name)
		if !ok || strings.TrimSpace(raw) == "" {
			// Mention has no value for this hierarchy property: skip the
			// stage without narrowing or counting it.
			continue
		}

		staged := append(predicates, domain.PropertyPredicate{
			Name:      name,
			Value:     Normalize(raw),
			Threshold: f.fuzzyThreshold,
		})

		narrowed, n, err := f.catalog.Query(ctx, category, staged)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: stage %q: %v", domain.ErrFilter, name, err)
		}

		if f.belowThreshold(n) {
			// Graceful degradation: committing this stage would over-prune,
			// so keep the previous stage's set and stop.
			f.logger.Debug("discarding over-pruning stage",
				zap.String("category", category),
				zap.String("property", name),
				zap.Int("before", count),
				zap.Int("after", n))
			break
		}

		predicates = staged
		candidates = narrowed
		count = n
		depth++
	}

	f.logger.Debug("progressive filter complete",
		zap.String("category", category),
		zap.Int("candidates", count),
		zap.Int("depth", depth))

	return candidates, depth, nil
}

// FuzzyThreshold exposes the configured predicate threshold so the scorer
// can classify matched properties consistently with the filter.
func (f *ProgressiveFilter) FuzzyThreshold() float64 {
	return f.fuzzyThreshold
}

func (f *ProgressiveFilter) belowThreshold(n int) bool {
	if f.inclusiveThreshold {
		return n <= f.continueThreshold
	}
	return n < f.continueThreshold
}
