package merch

import "storefront-merchandising-service/internal/domain"

// RecentlyViewedCap is the number of products kept in a viewer's history.
const RecentlyViewedCap = 12

// InsertRecentlyViewed returns a new history with p first, any earlier entry with the same id
// removed, capped at RecentlyViewedCap. history is ordered most recent first and is not modified.
func InsertRecentlyViewed(history []domain.Product, p domain.Product) []domain.Product {
	return Truncate(Dedupe([]domain.Product{p}, history), RecentlyViewedCap)
}
