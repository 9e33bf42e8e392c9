package hierarchy

import (
	"context"
	"fmt"

	"github.com/spf13/viper"
)

// FileSource loads property hierarchies from a YAML file of the form:
//
//	hierarchies:
//	  Fasteners: [grade, size, length, material, finish]
//	  Bearings: [bore, type, seal, material]
type FileSource struct {
	path string
}

// NewFileSource creates a source backed by the given YAML file.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Load reads the full category-to-property-order mapping. Category keys come
// back lowercased (viper is case-insensitive about keys); the hierarchy
// provider normalizes lookups the same way. Errors indicate an unreadable or
// malformed file; the hierarchy provider wraps them as configuration errors.
func (s *FileSource) Load(ctx context.Context) (map[string][]string, error) {
	v := viper.New()
	v.SetConfigFile(s.path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading hierarchy file %s: %w", s.path, err)
	}

	var hierarchies map[string][]string
	if err := v.UnmarshalKey("hierarchies", &hierarchies); err != nil {
		return nil, fmt.Errorf("decoding hierarchy file %s: %w", s.path, err)
	}
	if len(hierarchies) == 0 {
		return nil, fmt.Errorf("hierarchy file %s defines no hierarchies", s.path)
	}

	return hierarchies, nil
}
