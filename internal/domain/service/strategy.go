package service

import (
	"context"

	"OptionStrat/internal/domain/models"
)

// Scanner ranks strategy templates for a ticker. It never fails: an
// unavailable quote or an internal fault yields an empty result.
type Scanner interface {
	Scan(ctx context.Context, p models.ScanParams) models.ScanResult
}

// Catalog exposes the static template catalog.
type Catalog interface {
	Templates() []models.StrategyTemplate
	Lookup(slug string) (models.StrategyTemplate, bool)
}
