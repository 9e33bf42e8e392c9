package domain

// InventoryItem is a catalog entry. Items are fetched as read-only
// snapshots during filtering; the matcher never writes to the catalog.
type InventoryItem struct {
	ItemNumber  string            `json:"itemNumber"`
	Description string            `json:"description"`
	ProductName string            `json:"productName"`
	Category    string            `json:"category"`
	Properties  map[string]string `json:"properties,omitempty"`
}

// PropertyValue returns the item's value for the named property and
// whether the item carries it.
func (i *InventoryItem) PropertyValue(name string) (string, bool) {
	v, ok := i.Properties[name]
	return v, ok
}
