package domain

import (
	"context"
	"time"
)

// PropertyPredicate narrows a catalog query to items whose named property,
// once normalized, is within Threshold fuzzy similarity of Value. Value must
// already be normalized. Threshold >= 1.0 means exact equality.
type PropertyPredicate struct {
	Name      string
	Value     string
	Threshold float64
}

// CatalogRepository is the query contract the progressive filter depends on.
// Implementations must narrow by category exactly and support the property
// predicates efficiently (an index on category and on structured property
// storage). The returned count equals len(items).
type CatalogRepository interface {
	Query(ctx context.Context, category string, predicates []PropertyPredicate) ([]InventoryItem, int, error)
}

// HierarchySource yields, per category, the ordered list of property names
// that determines filter precedence, most discriminating first.
type HierarchySource interface {
	Load(ctx context.Context) (map[string][]string, error)
}

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
