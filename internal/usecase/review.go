package usecase

import (
	"fmt"

	"github.com/partmatch/backend/internal/domain"
)

// Review defaults
const (
	defaultReviewThreshold = 0.7
	// ambiguityGap is the maximum score difference between the top two
	// matches before the result is considered ambiguous.
	ambiguityGap = 0.1
	// missingPropertyLimit is the number of missing properties on the top
	// match that triggers a review flag.
	missingPropertyLimit = 2
)

// ReviewService inspects a mention's ranked match results and emits quality
// flags for human review. Rules are evaluated independently, so a mention
// may receive multiple flags; evaluation is a pure predicate check with no
// internal state.
type ReviewService struct {
	reviewThreshold float64
}

// NewReviewService creates a review service. A non-positive threshold falls
// back to the default.
func NewReviewService(reviewThreshold float64) *ReviewService {
	if reviewThreshold <= 0 {
		reviewThreshold = defaultReviewThreshold
	}
	return &ReviewService{reviewThreshold: reviewThreshold}
}

// Evaluate returns zero or more review flags for the ranked matches of a
// mention. An empty match list yields exactly one NO_MATCHES flag.
func (r *ReviewService) Evaluate(mention *domain.ProductMention, matches []domain.InventoryMatch) []domain.ReviewFlag {
	var flags []domain.ReviewFlag

	if len(matches) == 0 {
		flags = append(flags, domain.ReviewFlag{
			IssueType:    domain.IssueNoMatches,
			MatchCount:   0,
			Reason:       fmt.Sprintf("no inventory items matched %q in category %q", mention.ProductName, mention.Category),
			ActionNeeded: "verify the category and properties, or add the item to the catalog",
		})
		return flags
	}

	top := matches[0]

	if top.Score < r.reviewThreshold {
		confidence := top.Score
		flags = append(flags, domain.ReviewFlag{
			IssueType:     domain.IssueLowConfidence,
			MatchCount:    len(matches),
			TopConfidence: &confidence,
			Reason: fmt.Sprintf("best match %s scored %.2f, below the review threshold %.2f",
				top.ItemNumber, top.Score, r.reviewThreshold),
			ActionNeeded: "confirm the top match manually before quoting",
		})
	}

	if len(matches) >= 2 && top.Score-matches[1].Score < ambiguityGap {
		flags = append(flags, domain.ReviewFlag{
			IssueType:  domain.IssueAmbiguousMatch,
			MatchCount: len(matches),
			Reason: fmt.Sprintf("top matches %s (%.2f) and %s (%.2f) score within %.2f of each other",
				top.ItemNumber, top.Score, matches[1].ItemNumber, matches[1].Score, ambiguityGap),
			ActionNeeded: "pick between the near-tied candidates manually",
		})
	}

	if len(top.MissingProperties) >= missingPropertyLimit {
		flags = append(flags, domain.ReviewFlag{
			IssueType:  domain.IssueMissingProperties,
			MatchCount: len(matches),
			Reason: fmt.Sprintf("best match %s lacks %d requested properties: %v",
				top.ItemNumber, len(top.MissingProperties), top.MissingProperties),
			ActionNeeded: "check whether the catalog entry is missing data or the item genuinely differs",
		})
	}

	return flags
}
