package domain

// InventoryMatch is one ranked candidate for a product mention. Instances
// are created fresh per match call and never mutated after construction.
type InventoryMatch struct {
	ItemNumber        string   `json:"itemNumber"`
	Description       string   `json:"description"`
	Score             float64  `json:"score"` // 0.0-1.0
	Rank              int      `json:"rank"`  // 1 = best
	MatchedProperties []string `json:"matchedProperties,omitempty"`
	MissingProperties []string `json:"missingProperties,omitempty"`
	Reasoning         string   `json:"reasoning"`
}
