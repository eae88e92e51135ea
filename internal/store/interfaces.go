package store

import (
	"context"
	"time"

	"storefront-merchandising-service/internal/domain"
)

// CatalogProvider supplies the product pool the merchandising engine curates from.
type CatalogProvider interface {
	ListProductPool(ctx context.Context, limit int) ([]domain.Product, error)
	GetProductByID(ctx context.Context, id int64) (*domain.Product, error)
}

// CampaignProvider looks up the campaign running at a given instant.
type CampaignProvider interface {
	GetActiveCampaign(ctx context.Context, now time.Time) (*domain.Campaign, error) // ErrNoActiveCampaign when none
}

// HistoryStore keeps each viewer's recently viewed products, most recent first.
type HistoryStore interface {
	Recent(ctx context.Context, viewerID string) ([]domain.Product, error)
	Record(ctx context.Context, viewerID string, product domain.Product) ([]domain.Product, error)
}
