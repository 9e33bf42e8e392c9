package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/partmatch/backend/internal/domain"
)

const defaultBatchConcurrency = 4

// BatchItem is the outcome for one mention of a batch. A mention whose
// catalog query failed is recorded as unmatched, with the error attached and
// a NO_MATCHES flag, so batch output stays uniform.
type BatchItem struct {
	Mention domain.ProductMention   `json:"mention"`
	Matches []domain.InventoryMatch `json:"matches"`
	Flags   []domain.ReviewFlag     `json:"flags"`
	Error   string                  `json:"error,omitempty"`
}

// BatchMatcher matches many mentions concurrently. Each mention's match is
// read-only with respect to the catalog and independent of every other
// mention's result, so the pool is bounded only to avoid saturating the
// catalog's query backend.
type BatchMatcher struct {
	service     *MatchingService
	concurrency int
	limiter     *rate.Limiter
	logger      *zap.Logger
}

// NewBatchMatcher creates a batch matcher. queryRate bounds catalog queries
// per second across the batch; zero disables the limiter.
func NewBatchMatcher(service *MatchingService, concurrency int, queryRate float64, logger *zap.Logger) *BatchMatcher {
	if concurrency < 1 {
		concurrency = defaultBatchConcurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var limiter *rate.Limiter
	if queryRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(queryRate), concurrency)
	}

	return &BatchMatcher{
		service:     service,
		concurrency: concurrency,
		limiter:     limiter,
		logger:      logger,
	}
}

// MatchBatch matches every mention and returns one item per mention, in
// input order. A per-mention filter failure is logged and recorded on that
// item only. A configuration error cancels the remaining work and is
// returned, since it indicates a systemic misconfiguration.
func (b *BatchMatcher) MatchBatch(
	ctx context.Context,
	mentions []domain.ProductMention,
	opts MatchOptions,
) ([]BatchItem, error) {
	items := make([]BatchItem, len(mentions))
	if len(mentions) == 0 {
		return items, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sem := make(chan struct{}, b.concurrency)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var configErr error

	for i := range mentions {
		wg.Add(1)
		sem <- struct{}{}

		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()

			mention := mentions[idx]
			items[idx].Mention = mention

			if b.limiter != nil {
				if err := b.limiter.Wait(ctx); err != nil {
					items[idx].Error = err.Error()
					return
				}
			}

			matches, flags, err := b.service.MatchAndFlag(ctx, &mention, opts)
			if err != nil {
				items[idx] = b.failedItem(mention, err)

				if errors.Is(err, domain.ErrConfiguration) {
					mu.Lock()
					if configErr == nil {
						configErr = err
					}
					mu.Unlock()
					cancel()
					return
				}

				b.logger.Warn("mention left unmatched",
					zap.String("productName", mention.ProductName),
					zap.String("category", mention.Category),
					zap.Error(err))
				return
			}

			items[idx].Matches = matches
			items[idx].Flags = flags
		}(i)
	}

	wg.Wait()

	if configErr != nil {
		return items, configErr
	}
	return items, nil
}

// failedItem records a mention as unmatched with an implicit NO_MATCHES flag
// naming the failure.
func (b *BatchMatcher) failedItem(mention domain.ProductMention, err error) BatchItem {
	return BatchItem{
		Mention: mention,
		Matches: []domain.InventoryMatch{},
		Flags: []domain.ReviewFlag{{
			IssueType:    domain.IssueNoMatches,
			MatchCount:   0,
			Reason:       fmt.Sprintf("matching aborted for %q: %v", mention.ProductName, err),
			ActionNeeded: "retry this mention once the catalog is reachable",
		}},
		Error: err.Error(),
	}
}
