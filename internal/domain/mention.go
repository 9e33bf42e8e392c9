package domain

import "fmt"

// Property is a single name/value pair extracted from a product mention,
// with the extractor's confidence in the value.
type Property struct {
	Name       string  `json:"name" binding:"required"`
	Value      string  `json:"value" binding:"required"`
	Confidence float64 `json:"confidence"`
}

// ProductMention represents a structured product description extracted from
// free text (e.g., one line item of a quote request email). It is produced
// by an external extraction pipeline and is read-only during matching.
type ProductMention struct {
	ProductName string     `json:"productName" binding:"required"`
	Category    string     `json:"category" binding:"required"`
	Properties  []Property `json:"properties,omitempty"`
}

// Validate checks structural invariants: a non-empty product name and
// property names unique within the mention.
func (m *ProductMention) Validate() error {
	if m == nil || m.ProductName == "" {
		return ErrInvalidMention
	}
	seen := make(map[string]bool, len(m.Properties))
	for _, p := range m.Properties {
		if p.Name == "" {
			return fmt.Errorf("%w: property with empty name", ErrInvalidMention)
		}
		if seen[p.Name] {
			return fmt.Errorf("%w: duplicate property %q", ErrInvalidMention, p.Name)
		}
		seen[p.Name] = true
	}
	return nil
}

// PropertyValue returns the mention's value for the named property and
// whether the mention provides one.
func (m *ProductMention) PropertyValue(name string) (string, bool) {
	for _, p := range m.Properties {
		if p.Name == name {
			return p.Value, true
		}
	}
	return "", false
}
