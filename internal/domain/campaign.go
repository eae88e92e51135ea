package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Campaign is a time-boxed promotion with its linked products.
// It is read-only here; campaigns are edited by the back-office.
type Campaign struct {
	ID          int64                 `json:"id"`
	Title       string                `json:"title"`
	Description *string               `json:"description,omitempty"`
	StartsAt    time.Time             `json:"starts_at"`
	EndsAt      time.Time             `json:"ends_at"`
	IsEnabled   bool                  `json:"is_enabled"`
	Products    []CampaignProductLink `json:"products"`
}

// ActiveAt reports whether the campaign is enabled and now lies within [StartsAt, EndsAt).
func (c *Campaign) ActiveAt(now time.Time) bool {
	if c == nil || !c.IsEnabled {
		return false
	}
	return !now.Before(c.StartsAt) && now.Before(c.EndsAt)
}

// CampaignProductLink ties a product to a campaign at a display position.
type CampaignProductLink struct {
	Product         Product             `json:"product"`
	Position        int                 `json:"position"`
	DiscountPercent decimal.NullDecimal `json:"discount_percent"`
	OverridePrice   decimal.NullDecimal `json:"override_price"`
}

var hundred = decimal.NewFromInt(100)

// DealPrice is the price shown for the product while the campaign runs.
// An override price wins; otherwise the discount percentage is applied to the base price;
// otherwise the product's own promo price (or base price) is used.
func (l CampaignProductLink) DealPrice() decimal.Decimal {
	switch {
	case l.OverridePrice.Valid:
		return l.OverridePrice.Decimal
	case l.DiscountPercent.Valid && l.DiscountPercent.Decimal.IsPositive():
		pct := decimal.Min(l.DiscountPercent.Decimal, hundred)
		off := l.Product.BasePrice.Mul(pct).Div(hundred)
		return l.Product.BasePrice.Sub(off).Round(2)
	case l.Product.HasDiscount():
		return l.Product.PromoPrice.Decimal
	default:
		return l.Product.BasePrice
	}
}
