package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/partmatch/backend/internal/domain"
)

// HierarchyProvider supplies, per product category, the ordered list of
// property names that determines filter precedence (most discriminating
// first). Hierarchies are loaded lazily from the source and cached for the
// process lifetime; Reload discards the cache explicitly.
type HierarchyProvider struct {
	source      domain.HierarchySource
	mutex       sync.RWMutex
	hierarchies map[string][]string // nil until first load; keyed by normalized category
}

// NewHierarchyProvider creates a provider backed by the given source.
func NewHierarchyProvider(source domain.HierarchySource) *HierarchyProvider {
	return &HierarchyProvider{source: source}
}

// HierarchyFor returns the property order for a category. An unknown
// category is not an error: it returns an empty order, degrading the filter
// to category-only matching. Loading failures wrap domain.ErrConfiguration.
func (p *HierarchyProvider) HierarchyFor(ctx context.Context, category string) ([]string, error) {
	key := Normalize(category)

	p.mutex.RLock()
	if p.hierarchies != nil {
		order := p.hierarchies[key]
		p.mutex.RUnlock()
		return copyOrder(order), nil
	}
	p.mutex.RUnlock()

	if err := p.load(ctx); err != nil {
		return nil, err
	}

	p.mutex.RLock()
	defer p.mutex.RUnlock()
	return copyOrder(p.hierarchies[key]), nil
}

// Reload discards the cached hierarchies and reloads them from the source.
func (p *HierarchyProvider) Reload(ctx context.Context) error {
	p.mutex.Lock()
	p.hierarchies = nil
	p.mutex.Unlock()
	return p.load(ctx)
}

func (p *HierarchyProvider) load(ctx context.Context) error {
	raw, err := p.source.Load(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrConfiguration, err)
	}

	hierarchies := make(map[string][]string, len(raw))
	for category, order := range raw {
		seen := make(map[string]bool, len(order))
		for _, name := range order {
			if seen[name] {
				return fmt.Errorf("%w: duplicate property %q in hierarchy for category %q",
					domain.ErrConfiguration, name, category)
			}
			seen[name] = true
		}
		hierarchies[Normalize(category)] = order
	}

	p.mutex.Lock()
	// Keep an existing cache if a concurrent load won the race.
	if p.hierarchies == nil {
		p.hierarchies = hierarchies
	}
	p.mutex.Unlock()
	return nil
}

func copyOrder(order []string) []string {
	if len(order) == 0 {
		return nil
	}
	out := make([]string, len(order))
	copy(out, order)
	return out
}
