package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category represents a node of the catalog's category tree.
type Category struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	ParentCategoryID *int64 `json:"parent_category_id,omitempty"` // Pointer for nullable fields
}

// Product is one catalog item as read by the merchandising engine.
// Only the fields the engine looks at are carried; everything else stays in the catalog.
type Product struct {
	ID              int64               `json:"id"`
	Name            string              `json:"name"`
	MetaTitle       *string             `json:"meta_title,omitempty"`
	MetaDescription *string             `json:"meta_description,omitempty"`
	CategoryID      *int64              `json:"category_id,omitempty"`
	CategoryName    *string             `json:"category_name,omitempty"`
	StoreName       *string             `json:"store_name,omitempty"`
	BasePrice       decimal.Decimal     `json:"base_price"`
	PromoPrice      decimal.NullDecimal `json:"promo_price"`
	CreatedAt       time.Time           `json:"created_at"`
	OrderCount      int64               `json:"order_count"`
	ViewCount       int64               `json:"view_count"`
}

// Absent optional fields read as the empty string / false below.
// Callers should go through these accessors instead of dereferencing the pointers.

// Category returns the product's category id and whether it is set.
func (p *Product) Category() (int64, bool) {
	if p.CategoryID == nil {
		return 0, false
	}
	return *p.CategoryID, true
}

func (p *Product) Store() string { return deref(p.StoreName) }
func (p *Product) Title() string { return deref(p.MetaTitle) }
func (p *Product) Description() string { return deref(p.MetaDescription) }
func (p *Product) CategoryLabel() string { return deref(p.CategoryName) }

// HasDiscount reports whether a promo price is set and strictly below the base price.
func (p *Product) HasDiscount() bool {
	return p.PromoPrice.Valid && p.PromoPrice.Decimal.LessThan(p.BasePrice)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
