package catalog

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/partmatch/backend/internal/domain"
)

// LoadSeedFile reads a JSON array of inventory items, the format produced by
// the catalog export job.
func LoadSeedFile(path string) ([]domain.InventoryItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}

	var items []domain.InventoryItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parsing seed file: %w", err)
	}

	seen := make(map[string]bool, len(items))
	for _, item := range items {
		if item.ItemNumber == "" {
			return nil, fmt.Errorf("seed item with empty item number")
		}
		if seen[item.ItemNumber] {
			return nil, fmt.Errorf("duplicate item number %q in seed file", item.ItemNumber)
		}
		seen[item.ItemNumber] = true
	}

	return items, nil
}
