package weather

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/forecast-bot/internal/domain"
)

// AreaResolver implements domain.AreaResolver on top of a catalog source.
type AreaResolver struct {
	catalog CatalogSource
	logger  *slog.Logger
}

// NewAreaResolver creates a resolver reading the catalog from source.
func NewAreaResolver(source CatalogSource, logger *slog.Logger) *AreaResolver {
	return &AreaResolver{catalog: source, logger: logger}
}

// ResolveAreaCode selects the forecast area for a prefecture and city using
// domain.MatchAreaCode. Fallbacks to the prefecture's first city are logged.
func (r *AreaResolver) ResolveAreaCode(ctx context.Context, prefecture, city string) (domain.AreaCode, error) {
	catalog, err := r.catalog.Catalog(ctx)
	if err != nil {
		return "", fmt.Errorf("load area catalog: %w", err)
	}
	code, match, err := domain.MatchAreaCode(catalog, prefecture, city)
	if err != nil {
		return "", err
	}
	if match == domain.AreaMatchFallback {
		r.logger.Info("no catalog city matched, using first area of prefecture",
			"prefecture", prefecture, "city", city, "area_code", code)
	}
	return code, nil
}
