package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/partmatch/backend/internal/domain"
)

// fakeHierarchySource is a HierarchySource backed by a map, with an
// injectable error and a load counter.
type fakeHierarchySource struct {
	hierarchies map[string][]string
	err         error
	loads       int
}

func (f *fakeHierarchySource) Load(ctx context.Context) (map[string][]string, error) {
	f.loads++
	if f.err != nil {
		return nil, f.err
	}
	return f.hierarchies, nil
}

func TestHierarchyFor(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the configured order", func(t *testing.T) {
		source := &fakeHierarchySource{hierarchies: map[string][]string{
			"Fasteners": {"grade", "size", "length"},
		}}
		provider := NewHierarchyProvider(source)

		order, err := provider.HierarchyFor(ctx, "Fasteners")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(order) != 3 || order[0] != "grade" || order[1] != "size" || order[2] != "length" {
			t.Errorf("order = %v, want [grade size length]", order)
		}
	})

	t.Run("lookup is case-insensitive via normalization", func(t *testing.T) {
		source := &fakeHierarchySource{hierarchies: map[string][]string{
			"Fasteners": {"grade"},
		}}
		provider := NewHierarchyProvider(source)

		order, err := provider.HierarchyFor(ctx, "  FASTENERS ")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(order) != 1 {
			t.Errorf("order = %v, want [grade]", order)
		}
	})

	t.Run("unknown category returns empty order without error", func(t *testing.T) {
		source := &fakeHierarchySource{hierarchies: map[string][]string{
			"Fasteners": {"grade"},
		}}
		provider := NewHierarchyProvider(source)

		order, err := provider.HierarchyFor(ctx, "Widgets")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(order) != 0 {
			t.Errorf("order = %v, want empty", order)
		}
	})

	t.Run("source is loaded once and cached", func(t *testing.T) {
		source := &fakeHierarchySource{hierarchies: map[string][]string{
			"Fasteners": {"grade"},
		}}
		provider := NewHierarchyProvider(source)

		for i := 0; i < 3; i++ {
			if _, err := provider.HierarchyFor(ctx, "Fasteners"); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}
		if source.loads != 1 {
			t.Errorf("loads = %d, want 1", source.loads)
		}
	})

	t.Run("source failure wraps ErrConfiguration", func(t *testing.T) {
		source := &fakeHierarchySource{err: fmt.Errorf("file unreadable")}
		provider := NewHierarchyProvider(source)

		_, err := provider.HierarchyFor(ctx, "Fasteners")
		if !errors.Is(err, domain.ErrConfiguration) {
			t.Errorf("error = %v, want ErrConfiguration", err)
		}
	})

	t.Run("duplicate property names wrap ErrConfiguration", func(t *testing.T) {
		source := &fakeHierarchySource{hierarchies: map[string][]string{
			"Fasteners": {"grade", "size", "grade"},
		}}
		provider := NewHierarchyProvider(source)

		_, err := provider.HierarchyFor(ctx, "Fasteners")
		if !errors.Is(err, domain.ErrConfiguration) {
			t.Errorf("error = %v, want ErrConfiguration", err)
		}
	})

	t.Run("callers cannot mutate the cached order", func(t *testing.T) {
		source := &fakeHierarchySource{hierarchies: map[string][]string{
			"Fasteners": {"grade", "size"},
		}}
		provider := NewHierarchyProvider(source)

		order, _ := provider.HierarchyFor(ctx, "Fasteners")
		order[0] = "mutated"

		again, _ := provider.HierarchyFor(ctx, "Fasteners")
		if again[0] != "grade" {
			t.Errorf("cached order was mutated: %v", again)
		}
	})
}

func TestHierarchyReload(t *testing.T) {
	ctx := context.Background()

	source := &fakeHierarchySource{hierarchies: map[string][]string{
		"Fasteners": {"grade"},
	}}
	provider := NewHierarchyProvider(source)

	if _, err := provider.HierarchyFor(ctx, "Fasteners"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	source.hierarchies = map[string][]string{
		"Fasteners": {"size", "grade"},
	}

	if err := provider.Reload(ctx); err != nil {
		t.Fatalf("unexpected reload error: %v", err)
	}

	order, err := provider.HierarchyFor(ctx, "Fasteners")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(order) != 2 || order[0] != "size" {
		t.Errorf("order after reload = %v, want [size grade]", order)
	}
	if source.loads != 2 {
		t.Errorf("loads = %d, want 2", source.loads)
	}
}
