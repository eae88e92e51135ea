package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"storefront-merchandising-service/internal/domain"
)

// Predefined errors for store operations
var (
	ErrProductNotFound  = errors.New("store: product not found")
	ErrNoActiveCampaign = errors.New("store: no active campaign")
)

// PostgresStore implements CatalogProvider and CampaignProvider on PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgresStore instance.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const productColumns = `
		p.id, p.name, p.meta_title, p.meta_description, p.category_id, c.name, s.name,
		p.base_price, p.promo_price, p.created_at, p.order_count, p.view_count`

const productJoins = `
		FROM products.products p
		LEFT JOIN products.categories c ON c.id = p.category_id
		LEFT JOIN products.stores s ON s.id = p.store_id`

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanProduct reads productColumns, in order, into p. Extra destinations follow them.
func scanProduct(row rowScanner, p *domain.Product, extra ...any) error {
	var (
		metaTitle, metaDescription sql.NullString
		categoryID                 sql.NullInt64
		categoryName, storeName    sql.NullString
	)
	dest := []any{
		&p.ID, &p.Name, &metaTitle, &metaDescription, &categoryID, &categoryName, &storeName,
		&p.BasePrice, &p.PromoPrice, &p.CreatedAt, &p.OrderCount, &p.ViewCount,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return err
	}
	p.MetaTitle = nullString(metaTitle)
	p.MetaDescription = nullString(metaDescription)
	p.CategoryName = nullString(categoryName)
	p.StoreName = nullString(storeName)
	if categoryID.Valid {
		id := categoryID.Int64
		p.CategoryID = &id
	}
	return nil
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// --- CatalogProvider Implementation ---

// ListProductPool returns up to limit active products, newest first, with their category and store names.
func (s *PostgresStore) ListProductPool(ctx context.Context, limit int) ([]domain.Product, error) {
	if limit <= 0 {
		return []domain.Product{}, nil
	}
	query := `SELECT` + productColumns + productJoins + `
		WHERE p.is_active = TRUE
		ORDER BY p.created_at DESC, p.id ASC
		LIMIT $1;`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("store: ListProductPool failed to query products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0, limit)
	for rows.Next() {
		var p domain.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, fmt.Errorf("store: ListProductPool failed to scan product row: %w", err)
		}
		products = append(products, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("store: ListProductPool iteration error: %w", err)
	}
	return products, nil
}

func (s *PostgresStore) GetProductByID(ctx context.Context, id int64) (*domain.Product, error) {
	query := `SELECT` + productColumns + productJoins + `
		WHERE p.id = $1 AND p.is_active = TRUE;`

	var product domain.Product
	if err := scanProduct(s.db.QueryRowContext(ctx, query, id), &product); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("store: GetProductByID failed to scan row: %w", err)
	}
	return &product, nil
}

// --- CampaignProvider Implementation ---

// GetActiveCampaign returns the enabled campaign whose window contains now, preferring the one ending first.
// Linked products come back ordered by position; inactive products are left out.
func (s *PostgresStore) GetActiveCampaign(ctx context.Context, now time.Time) (*domain.Campaign, error) {
	query := `
		SELECT id, title, description, starts_at, ends_at, is_enabled
		FROM products.campaigns
		WHERE is_enabled = TRUE AND starts_at <= $1 AND ends_at > $1
		ORDER BY ends_at ASC, id ASC
		LIMIT 1;
	`
	var (
		campaign    domain.Campaign
		description sql.NullString
	)
	err := s.db.QueryRowContext(ctx, query, now).Scan(
		&campaign.ID, &campaign.Title, &description, &campaign.StartsAt, &campaign.EndsAt, &campaign.IsEnabled,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoActiveCampaign
		}
		return nil, fmt.Errorf("store: GetActiveCampaign failed to scan row: %w", err)
	}
	campaign.Description = nullString(description)

	links, err := s.listCampaignProducts(ctx, campaign.ID)
	if err != nil {
		return nil, err
	}
	campaign.Products = links
	return &campaign, nil
}

func (s *PostgresStore) listCampaignProducts(ctx context.Context, campaignID int64) ([]domain.CampaignProductLink, error) {
	query := `SELECT` + productColumns + `, cp.position, cp.discount_percent, cp.override_price
		FROM products.campaign_products cp
		JOIN products.products p ON p.id = cp.product_id
		LEFT JOIN products.categories c ON c.id = p.category_id
		LEFT JOIN products.stores s ON s.id = p.store_id
		WHERE cp.campaign_id = $1 AND p.is_active = TRUE
		ORDER BY cp.position ASC, p.id ASC;`

	rows, err := s.db.QueryContext(ctx, query, campaignID)
	if err != nil {
		return nil, fmt.Errorf("store: GetActiveCampaign failed to query campaign products: %w", err)
	}
	defer rows.Close()

	links := []domain.CampaignProductLink{}
	for rows.Next() {
		var (
			link     domain.CampaignProductLink
			discount decimal.NullDecimal
			override decimal.NullDecimal
		)
		if err := scanProduct(rows, &link.Product, &link.Position, &discount, &override); err != nil {
			return nil, fmt.Errorf("store: GetActiveCampaign failed to scan campaign product row: %w", err)
		}
		link.DiscountPercent, link.OverridePrice = discount, override
		links = append(links, link)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("store: GetActiveCampaign iteration error: %w", err)
	}
	return links, nil
}

func (s *PostgresStore) Close() error {
	if s.db != nil {
		log.Println("INFO: Closing database connection pool...")
		err := s.db.Close()
		if err != nil {
			log.Printf("ERROR: Failed to close database connection pool: %v", err)
			return err
		}
		log.Println("INFO: Database connection pool closed successfully.")
		return nil
	}
	return nil
}
