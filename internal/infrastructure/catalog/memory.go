package catalog

import (
	"context"
	"sort"
	"sync"

	"github.com/partmatch/backend/internal/domain"
)

// MemoryStore is an in-memory CatalogRepository for tests and small
// catalogs. It applies the same predicate semantics as the SQLite store
// against a mutex-guarded slice.
type MemoryStore struct {
	mutex      sync.RWMutex
	items      []domain.InventoryItem
	normalize  NormalizeFunc
	similarity SimilarityFunc
}

// NewMemoryStore creates an empty in-memory catalog.
func NewMemoryStore(normalize NormalizeFunc, similarity SimilarityFunc) *MemoryStore {
	return &MemoryStore{normalize: normalize, similarity: similarity}
}

// UpsertItems inserts or replaces items by item number.
func (s *MemoryStore) UpsertItems(ctx context.Context, items []domain.InventoryItem) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, item := range items {
		replaced := false
		for i := range s.items {
			if s.items[i].ItemNumber == item.ItemNumber {
				s.items[i] = item
				replaced = true
				break
			}
		}
		if !replaced {
			s.items = append(s.items, item)
		}
	}

	sort.Slice(s.items, func(i, j int) bool {
		return s.items[i].ItemNumber < s.items[j].ItemNumber
	})
	return nil
}

// Query returns the items of a category satisfying every predicate, ordered
// by item number.
func (s *MemoryStore) Query(
	ctx context.Context,
	category string,
	predicates []domain.PropertyPredicate,
) ([]domain.InventoryItem, int, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	result := make([]domain.InventoryItem, 0)
	for _, item := range s.items {
		if s.normalize(item.Category) != category {
			continue
		}
		if !s.satisfies(&item, predicates) {
			continue
		}
		result = append(result, copyItem(item))
	}

	return result, len(result), nil
}

func (s *MemoryStore) satisfies(item *domain.InventoryItem, predicates []domain.PropertyPredicate) bool {
	for _, p := range predicates {
		value, ok := item.PropertyValue(p.Name)
		if !ok {
			return false
		}
		norm := s.normalize(value)
		if p.Threshold >= 1.0 {
			if norm != p.Value {
				return false
			}
		} else if s.similarity(p.Value, norm) < p.Threshold {
			return false
		}
	}
	return true
}

// Count returns the total number of catalog items.
func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.items), nil
}

func copyItem(item domain.InventoryItem) domain.InventoryItem {
	if item.Properties != nil {
		props := make(map[string]string, len(item.Properties))
		for k, v := range item.Properties {
			props[k] = v
		}
		item.Properties = props
	}
	return item
}
