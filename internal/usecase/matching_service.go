package usecase

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/partmatch/backend/internal/domain"
)

// Match defaults
const (
	defaultMaxMatches = 3
	defaultMinScore   = 0.5
)

// MatchOptions holds per-call matching parameters. A non-positive MaxMatches
// and a nil MinScore fall back to the service defaults; an explicit MinScore
// of 0 disables the score floor.
type MatchOptions struct {
	MaxMatches int      `json:"maxMatches"`
	MinScore   *float64 `json:"minScore"`
}

// MatchDefaults are the fallback values for omitted match options, normally
// sourced from configuration. Zero fields fall back to the package defaults.
type MatchDefaults struct {
	MaxMatches int
	MinScore   float64
}

func (d MatchDefaults) withFallbacks() MatchDefaults {
	if d.MaxMatches <= 0 {
		d.MaxMatches = defaultMaxMatches
	}
	if d.MinScore <= 0 {
		d.MinScore = defaultMinScore
	}
	return d
}

// MatchingService composes the progressive filter, the scorer, and the
// review service into the engine's single entry point. All dependencies are
// injected so tests can substitute fakes without process-wide state.
type MatchingService struct {
	filter   *ProgressiveFilter
	scorer   *ScoringService
	reviewer *ReviewService
	defaults MatchDefaults
	logger   *zap.Logger
}

// NewMatchingService creates a matching service with its collaborators.
func NewMatchingService(
	filter *ProgressiveFilter,
	scorer *ScoringService,
	reviewer *ReviewService,
	defaults MatchDefaults,
	logger *zap.Logger,
) *MatchingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MatchingService{
		filter:   filter,
		scorer:   scorer,
		reviewer: reviewer,
		defaults: defaults.withFallbacks(),
		logger:   logger,
	}
}

// EffectiveOptions resolves per-call options against the service defaults.
// Callers that key caches or logs on options should use the resolved form so
// equivalent requests agree.
func (s *MatchingService) EffectiveOptions(opts MatchOptions) MatchOptions {
	if opts.MaxMatches <= 0 {
		opts.MaxMatches = s.defaults.MaxMatches
	}
	if opts.MinScore == nil {
		minScore := s.defaults.MinScore
		opts.MinScore = &minScore
	}
	return opts
}

// Match returns up to MaxMatches ranked candidates for the mention. Zero
// candidates is a normal result, not an error; the review service surfaces
// it as NO_MATCHES. Results are deterministic: ties are broken by fewer
// missing properties, then by item number.
func (s *MatchingService) Match(
	ctx context.Context,
	mention *domain.ProductMention,
	opts MatchOptions,
) ([]domain.InventoryMatch, error) {
	if err := mention.Validate(); err != nil {
		return nil, err
	}
	opts = s.EffectiveOptions(opts)

	candidates, depth, err := s.filter.Filter(ctx, mention)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("filtering complete",
		zap.String("productName", mention.ProductName),
		zap.Int("candidates", len(candidates)),
		zap.Int("depth", depth))

	matches := make([]domain.InventoryMatch, 0, len(candidates))
	for i := range candidates {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		candidate := &candidates[i]
		score, matched, missing, reasoning := s.scorer.Score(mention, candidate)
		if score < *opts.MinScore {
			continue
		}

		matches = append(matches, domain.InventoryMatch{
			ItemNumber:        candidate.ItemNumber,
			Description:       candidate.Description,
			Score:             score,
			MatchedProperties: matched,
			MissingProperties: missing,
			Reasoning:         reasoning,
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		if len(matches[i].MissingProperties) != len(matches[j].MissingProperties) {
			return len(matches[i].MissingProperties) < len(matches[j].MissingProperties)
		}
		return matches[i].ItemNumber < matches[j].ItemNumber
	})

	if len(matches) > opts.MaxMatches {
		matches = matches[:opts.MaxMatches]
	}
	for i := range matches {
		matches[i].Rank = i + 1
	}

	return matches, nil
}

// MatchAndFlag is the caller-facing operation: ranked matches plus the
// review flags that critique them.
func (s *MatchingService) MatchAndFlag(
	ctx context.Context,
	mention *domain.ProductMention,
	opts MatchOptions,
) ([]domain.InventoryMatch, []domain.ReviewFlag, error) {
	matches, err := s.Match(ctx, mention, opts)
	if err != nil {
		return nil, nil, err
	}
	return matches, s.reviewer.Evaluate(mention, matches), nil
}

// ReloadHierarchies re-reads the hierarchy configuration, replacing the
// process-lifetime cache.
func (s *MatchingService) ReloadHierarchies(ctx context.Context) error {
	return s.filter.hierarchy.Reload(ctx)
}
