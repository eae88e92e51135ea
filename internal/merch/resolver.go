package merch

import (
	"sort"

	"storefront-merchandising-service/internal/domain"
)

// Strategy is one candidate-generation step of a fallback chain.
type Strategy struct {
	Name    string
	Collect func(pool []domain.Product) []domain.Product
}

// Arranger orders a section's selected candidates. It must not modify its input.
type Arranger func(list []domain.Product) []domain.Product

// Plan describes how one section is resolved.
type Plan struct {
	Section    SectionName
	Strategies []Strategy
	// MinAcceptable is the count a strategy must reach to stop the chain.
	MinAcceptable int
	// MaxOutput caps the result; zero or less means uncapped.
	MaxOutput int
	// Arrange orders the result; nil means shuffle.
	Arrange Arranger
}

// Resolution is a resolved section together with the step that produced it.
type Resolution struct {
	Products []domain.Product `json:"products"`
	Step     int              `json:"step"` // -1 when the plan has no strategies
	Strategy string           `json:"strategy"`
}

// Resolver runs fallback chains.
type Resolver struct {
	shuffler *Shuffler
}

// NewResolver returns a Resolver shuffling with s (global randomness when nil).
func NewResolver(s *Shuffler) *Resolver {
	if s == nil {
		s = NewShuffler(nil)
	}
	return &Resolver{shuffler: s}
}

// Resolve tries each strategy in order and keeps the first whose result reaches MinAcceptable.
// When none does, the last strategy's result is used whatever its size. The selected list is
// deduplicated, arranged and truncated to MaxOutput. Resolve never fails.
func (r *Resolver) Resolve(pool []domain.Product, plan Plan) Resolution {
	res := Resolution{Products: []domain.Product{}, Step: -1}
	if len(plan.Strategies) == 0 {
		return res
	}

	var selected []domain.Product
	for i, s := range plan.Strategies {
		selected = s.Collect(pool)
		res.Step, res.Strategy = i, s.Name
		if len(selected) >= plan.MinAcceptable {
			break
		}
	}

	selected = Dedupe(selected)
	if plan.Arrange != nil {
		selected = plan.Arrange(selected)
	} else {
		selected = r.shuffler.Shuffle(selected)
	}
	res.Products = Truncate(selected, plan.MaxOutput)
	return res
}

// Truncate returns at most n leading products; n <= 0 returns list unchanged.
func Truncate(list []domain.Product, n int) []domain.Product {
	if n <= 0 || len(list) <= n {
		return list
	}
	return list[:n]
}

// Keep is an Arranger that preserves order.
func Keep(list []domain.Product) []domain.Product { return list }

// SortStable returns an Arranger that stable-sorts a copy of its input with less.
func SortStable(less func(a, b *domain.Product) bool) Arranger {
	return func(list []domain.Product) []domain.Product {
		out := make([]domain.Product, len(list))
		copy(out, list)
		sort.SliceStable(out, func(i, j int) bool { return less(&out[i], &out[j]) })
		return out
	}
}

// ByScoreDesc returns an Arranger that stable-sorts by descending score; ties keep input order.
func ByScoreDesc(score func(p *domain.Product) float64) Arranger {
	return SortStable(func(a, b *domain.Product) bool { return score(a) > score(b) })
}

// ByRelevance returns an Arranger placing products whose name matches any keyword first,
// preserving relative order inside both partitions.
func ByRelevance(keywords []string) Arranger {
	folded := foldAll(keywords)
	return ByScoreDesc(func(p *domain.Product) float64 {
		if containsAny(productText(p, false), folded) {
			return 1
		}
		return 0
	})
}
