package ports

import (
	"context"

	"github.com/aretw0/tripreel/pkg/domain"
)

// Generator performs a single request to the generation service.
//
// Implementations must not retry or cache. Failures are reported with the
// typed errors from the domain package (*domain.TransportError,
// *domain.StatusError, *domain.EmbeddedError, *domain.DecodeError) so the
// controller can derive the user-facing message.
type Generator interface {
	Generate(ctx context.Context, videoURL string) (*domain.Itinerary, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, videoURL string) (*domain.Itinerary, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, videoURL string) (*domain.Itinerary, error) {
	return f(ctx, videoURL)
}
