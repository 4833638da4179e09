package ports

import (
	"context"

	"github.com/hexapod/packs-go/internal/domain"
)

// CatalogStore provides access to the card catalog and its draw settings.
type CatalogStore interface {
	Catalog(ctx context.Context) (domain.Catalog, error)
	Weights(ctx context.Context) (domain.WeightTable, error)
	PackSize(ctx context.Context) (int, error)
}
