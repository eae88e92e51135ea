package merch

import (
	"sort"

	"storefront-merchandising-service/internal/domain"
)

// CategoryGroup is a named allow-list of category ids forming one merchandising theme.
type CategoryGroup struct {
	Name string
	ids  map[int64]struct{}
}

// NewCategoryGroup builds a group from its category ids.
func NewCategoryGroup(name string, ids ...int64) CategoryGroup {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return CategoryGroup{Name: name, ids: set}
}

// Contains reports whether id belongs to the group.
func (g CategoryGroup) Contains(id int64) bool {
	_, ok := g.ids[id]
	return ok
}

// IDs returns the group's category ids in ascending order.
func (g CategoryGroup) IDs() []int64 {
	out := make([]int64, 0, len(g.ids))
	for id := range g.ids {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Union returns a group holding the ids of g and every other group.
func (g CategoryGroup) Union(name string, others ...CategoryGroup) CategoryGroup {
	ids := g.IDs()
	for _, o := range others {
		ids = append(ids, o.IDs()...)
	}
	return NewCategoryGroup(name, ids...)
}

// ByCategory returns the products whose category is in group, preserving input order.
// Products without a category match nothing.
func ByCategory(pool []domain.Product, group CategoryGroup) []domain.Product {
	out := make([]domain.Product, 0)
	for i := range pool {
		if id, ok := pool[i].Category(); ok && group.Contains(id) {
			out = append(out, pool[i])
		}
	}
	return out
}

// Where returns the products matching keep, preserving input order.
func Where(pool []domain.Product, keep func(p *domain.Product) bool) []domain.Product {
	out := make([]domain.Product, 0)
	for i := range pool {
		if keep(&pool[i]) {
			out = append(out, pool[i])
		}
	}
	return out
}

// Dedupe concatenates lists in argument order and keeps the first occurrence of each product id.
func Dedupe(lists ...[]domain.Product) []domain.Product {
	total := 0
	for _, l := range lists {
		total += len(l)
	}
	seen := make(map[int64]struct{}, total)
	out := make([]domain.Product, 0, total)
	for _, l := range lists {
		for _, p := range l {
			if _, dup := seen[p.ID]; dup {
				continue
			}
			seen[p.ID] = struct{}{}
			out = append(out, p)
		}
	}
	return out
}
