package merch

import (
	"time"

	"github.com/shopspring/decimal"

	"storefront-merchandising-service/internal/domain"
)

// PtrTo returns a pointer to v (useful for optional fields in domain structs).
func PtrTo[T any](v T) *T {
	return &v
}

func product(id int64, name string, categoryID int64) domain.Product {
	return domain.Product{
		ID:         id,
		Name:       name,
		CategoryID: PtrTo(categoryID),
		BasePrice:  decimal.NewFromInt(1000),
		CreatedAt:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func ids(list []domain.Product) []int64 {
	out := make([]int64, len(list))
	for i, p := range list {
		out[i] = p.ID
	}
	return out
}

// testRules is a compact rule set with one category id per group.
func testRules(limits map[SectionName]SectionLimits) *Rules {
	r, err := NewRules(
		map[string][]int64{
			GroupFashion:      {10},
			GroupAlimentation: {20},
			GroupFood:         {21},
			GroupBeauty:       {30},
			GroupKitchen:      {40},
			GroupHome:         {50},
			GroupKids:         {60},
		},
		map[string]KeywordRuleset{
			RulesetMen:          {Include: []string{"homme"}, Exclude: []string{"femme"}},
			RulesetWomen:        {Include: []string{"femme"}, Exclude: []string{"homme"}},
			RulesetFood:         {Include: []string{"jus", "riz"}, Exclude: []string{"téléphone"}},
			RulesetBeauty:       {Include: []string{"parfum"}},
			RulesetKids:         {Include: []string{"jouet"}},
			RulesetKitchenHome:  {Include: []string{"casserole", "mug"}, Exclude: []string{"rideau"}},
			RulesetKitchenTerms: {Include: []string{"casserole"}},
		},
		limits,
	)
	if err != nil {
		panic(err)
	}
	return r
}
