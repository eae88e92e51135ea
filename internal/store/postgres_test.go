package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper function to create a mock DB and PostgresStore for testing
func newMockDBAndStore(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *PostgresStore) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err, "Failed to create sqlmock")

	store := NewPostgresStore(db)
	require.NotNil(t, store, "Store should not be nil")

	return db, mock, store
}

var productRowColumns = []string{
	"id", "name", "meta_title", "meta_description", "category_id", "category_name", "store_name",
	"base_price", "promo_price", "created_at", "order_count", "view_count",
}

func TestPostgresStore_ListProductPool(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(productRowColumns).
		AddRow(int64(1), "Jus d'orange", "Jus frais", nil, int64(20), "Épicerie", "Ferme Martin", "3.50", "2.99", created, int64(12), int64(40)).
		AddRow(int64(2), "Casserole inox", nil, nil, nil, nil, nil, "29.00", nil, created, int64(0), int64(3))

	mock.ExpectQuery(regexp.QuoteMeta("FROM products.products p") + `(?s).*` + regexp.QuoteMeta("WHERE p.is_active = TRUE")).
		WithArgs(500).
		WillReturnRows(rows)

	products, err := store.ListProductPool(context.Background(), 500)
	require.NoError(t, err)
	require.Len(t, products, 2)

	juice := products[0]
	assert.Equal(t, "Jus d'orange", juice.Name)
	assert.Equal(t, "Jus frais", juice.Title())
	assert.Nil(t, juice.MetaDescription)
	catID, ok := juice.Category()
	assert.True(t, ok)
	assert.Equal(t, int64(20), catID)
	assert.Equal(t, "Épicerie", juice.CategoryLabel())
	assert.Equal(t, "Ferme Martin", juice.Store())
	assert.True(t, decimal.RequireFromString("3.50").Equal(juice.BasePrice))
	assert.True(t, juice.HasDiscount())
	assert.Equal(t, int64(12), juice.OrderCount)
	assert.Equal(t, created, juice.CreatedAt)

	pan := products[1]
	_, ok = pan.Category()
	assert.False(t, ok)
	assert.False(t, pan.PromoPrice.Valid)
	assert.Empty(t, pan.Store())

	require.NoError(t, mock.ExpectationsWereMet(), "SQLmock expectations were not met")
}

func TestPostgresStore_ListProductPool_ZeroLimit(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	products, err := store.ListProductPool(context.Background(), 0)
	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListProductPool_QueryError(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	dbErr := errors.New("connection reset")
	mock.ExpectQuery(regexp.QuoteMeta("FROM products.products p")).WillReturnError(dbErr)

	products, err := store.ListProductPool(context.Background(), 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, dbErr)
	assert.Contains(t, err.Error(), "store: ListProductPool failed")
	assert.Nil(t, products)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetProductByID(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	query := regexp.QuoteMeta("WHERE p.id = $1 AND p.is_active = TRUE;")
	rows := sqlmock.NewRows(productRowColumns).
		AddRow(int64(7), "Robe d'été femme", nil, "Lin", int64(11), "Mode", nil, "49.00", nil, time.Now(), int64(1), int64(2))
	mock.ExpectQuery(query).WithArgs(int64(7)).WillReturnRows(rows)

	product, err := store.GetProductByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), product.ID)
	assert.Equal(t, "Lin", product.Description())

	mock.ExpectQuery(query).WithArgs(int64(8)).WillReturnError(sql.ErrNoRows)
	product, err = store.GetProductByID(context.Background(), 8)
	assert.True(t, errors.Is(err, ErrProductNotFound), "Error should be ErrProductNotFound")
	assert.Nil(t, product)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetActiveCampaign(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	now := time.Date(2024, 11, 29, 9, 0, 0, 0, time.UTC)
	starts, ends := now.Add(-time.Hour), now.Add(90*time.Second)

	mock.ExpectQuery(regexp.QuoteMeta("FROM products.campaigns")).
		WithArgs(now).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "description", "starts_at", "ends_at", "is_enabled"}).
			AddRow(int64(3), "Black Friday", "Jusqu'à -50%", starts, ends, true))

	linkColumns := append(append([]string{}, productRowColumns...), "position", "discount_percent", "override_price")
	mock.ExpectQuery(regexp.QuoteMeta("FROM products.campaign_products cp")).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(linkColumns).
			AddRow(int64(10), "Mixeur", nil, nil, int64(44), "Électroménager", nil, "100.00", nil, now, int64(0), int64(0), int64(1), "20", nil).
			AddRow(int64(11), "Poêle", nil, nil, int64(41), "Cuisson", nil, "40.00", nil, now, int64(0), int64(0), int64(2), nil, "25.00"))

	campaign, err := store.GetActiveCampaign(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(3), campaign.ID)
	assert.Equal(t, "Black Friday", campaign.Title)
	require.NotNil(t, campaign.Description)
	assert.Equal(t, ends, campaign.EndsAt)
	assert.True(t, campaign.ActiveAt(now))

	require.Len(t, campaign.Products, 2)
	assert.Equal(t, 1, campaign.Products[0].Position)
	assert.True(t, decimal.NewFromInt(80).Equal(campaign.Products[0].DealPrice()))
	assert.Equal(t, 2, campaign.Products[1].Position)
	assert.True(t, decimal.NewFromInt(25).Equal(campaign.Products[1].DealPrice()))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetActiveCampaign_None(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM products.campaigns")).
		WithArgs(now).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "description", "starts_at", "ends_at", "is_enabled"}))

	campaign, err := store.GetActiveCampaign(context.Background(), now)
	assert.True(t, errors.Is(err, ErrNoActiveCampaign), "got %v", err)
	assert.Nil(t, campaign)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetActiveCampaign_LinksError(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM products.campaigns")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "description", "starts_at", "ends_at", "is_enabled"}).
			AddRow(int64(3), "Soldes", nil, now, now.Add(time.Hour), true))
	mock.ExpectQuery(regexp.QuoteMeta("FROM products.campaign_products cp")).
		WillReturnError(errors.New("boom"))

	campaign, err := store.GetActiveCampaign(context.Background(), now)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store: GetActiveCampaign failed to query campaign products")
	assert.Nil(t, campaign)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Close(t *testing.T) {
	_, mock, store := newMockDBAndStore(t)
	mock.ExpectClose()
	require.NoError(t, store.Close())
	require.NoError(t, mock.ExpectationsWereMet())
}
