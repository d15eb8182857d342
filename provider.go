package indices

import (
	"context"
	"fmt"
	"strings"
)

// Source fetches the raw value of an index for a month.
//
// The id identifies the series within the source, for instance "BCB-433". Implementations
// report ErrNotYetPublished when the provider confirms the value does not exist yet, and
// ErrSourceUnavailable on transient failures.
type Source interface {
	Fetch(ctx context.Context, id string, m Month) (float64, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context, id string, m Month) (float64, error)

// Fetch implements Source.
func (f SourceFunc) Fetch(ctx context.Context, id string, m Month) (float64, error) {
	return f(ctx, id, m)
}

// Sources dispatches a fetch to the source registered for the id's provider prefix:
// "BCB-433" goes to Sources["BCB"].
type Sources map[string]Source

// Provider returns the provider prefix of id.
func Provider(id string) string {
	provider, _, _ := strings.Cut(id, "-")
	return provider
}

// Fetch implements Source.
func (s Sources) Fetch(ctx context.Context, id string, m Month) (float64, error) {
	src, ok := s[Provider(id)]
	if !ok {
		return 0, fmt.Errorf("no source for %q", id)
	}
	return src.Fetch(ctx, id, m)
}
