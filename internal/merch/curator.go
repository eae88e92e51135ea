package merch

import (
	"log"
	"sort"

	"storefront-merchandising-service/internal/domain"
)

// Curator partitions a product pool into the homepage sections.
// It holds no per-call state and is safe for concurrent use as long as its Source is.
type Curator struct {
	rules    *Rules
	resolver *Resolver
	logger   *log.Logger
	debug    bool
}

// Option configures a Curator.
type Option func(*Curator)

// WithSource makes shuffles draw from src. Intended for tests.
func WithSource(src Source) Option {
	return func(c *Curator) { c.resolver = NewResolver(NewShuffler(src)) }
}

// WithLogger sets the logger; debug enables per-section resolution logs.
func WithLogger(l *log.Logger, debug bool) Option {
	return func(c *Curator) {
		if l != nil {
			c.logger = l
		}
		c.debug = debug
	}
}

// NewCurator returns a Curator applying rules.
func NewCurator(rules *Rules, opts ...Option) *Curator {
	c := &Curator{
		rules:    rules,
		resolver: NewResolver(nil),
		logger:   log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CurateHomepage resolves every pool-derived section. The recently-viewed section is left empty;
// callers fill it from the viewer's history with SectionMap.WithRecentlyViewed.
// An empty pool yields an empty list for every section.
func (c *Curator) CurateHomepage(pool []domain.Product, campaign *domain.Campaign) SectionMap {
	out := newSectionMap()
	if len(pool) == 0 {
		return out
	}
	for _, plan := range c.Plans(campaign) {
		out[plan.Section] = c.resolve(pool, plan).Products
	}
	return out
}

// Section resolves a single section. ok is false for sections not derived from the pool.
func (c *Curator) Section(pool []domain.Product, campaign *domain.Campaign, name SectionName) (Resolution, bool) {
	plan, ok := c.Plan(name, campaign)
	if !ok {
		return Resolution{Products: []domain.Product{}, Step: -1}, false
	}
	if len(pool) == 0 {
		return Resolution{Products: []domain.Product{}, Step: -1}, true
	}
	return c.resolve(pool, plan), true
}

func (c *Curator) resolve(pool []domain.Product, plan Plan) Resolution {
	res := c.resolver.Resolve(pool, plan)
	if c.debug {
		c.logger.Printf("DEBUG: section %s resolved by step %d (%s) with %d products",
			plan.Section, res.Step, res.Strategy, len(res.Products))
	}
	return res
}

// Plans returns the resolution plan of every pool-derived section.
func (c *Curator) Plans(campaign *domain.Campaign) []Plan {
	plans := make([]Plan, 0, len(AllSections))
	for _, name := range AllSections {
		if p, ok := c.Plan(name, campaign); ok {
			plans = append(plans, p)
		}
	}
	return plans
}

// Plan builds the fallback chain for one section.
func (c *Curator) Plan(name SectionName, campaign *domain.Campaign) (Plan, bool) {
	limits := c.rules.Limits(name)
	plan := Plan{Section: name, MinAcceptable: limits.MinAcceptable, MaxOutput: limits.MaxOutput}

	switch name {
	case SectionMen:
		plan.Strategies = c.fashionChain(RulesetMen, RulesetWomen)
	case SectionWomen:
		plan.Strategies = c.fashionChain(RulesetWomen, RulesetMen)
	case SectionFood:
		plan.Strategies = []Strategy{c.foodStrategy()}
	case SectionBeauty:
		plan.Strategies = c.categoryThenKeywords(GroupBeauty, RulesetBeauty)
		plan.MinAcceptable = widenWhenBelow
	case SectionKids:
		plan.Strategies = c.categoryThenKeywords(GroupKids, RulesetKids)
		plan.MinAcceptable = widenWhenBelow
	case SectionKitchen:
		plan.Strategies = []Strategy{c.kitchenStrategy()}
		plan.Arrange = ByRelevance(c.rules.Ruleset(RulesetKitchenTerms).Include)
	case SectionDeals:
		plan.Strategies = dealsChain(campaign)
		plan.Arrange = Keep
	case SectionTrending:
		plan.Strategies = []Strategy{wholePool("popularity")}
		plan.Arrange = ByScoreDesc(func(p *domain.Product) float64 {
			return float64(2*p.OrderCount + p.ViewCount)
		})
	case SectionBestsellers:
		plan.Strategies = []Strategy{wholePool("orders")}
		plan.Arrange = ByScoreDesc(func(p *domain.Product) float64 { return float64(p.OrderCount) })
	case SectionNew:
		plan.Strategies = []Strategy{wholePool("newest")}
		plan.Arrange = SortStable(func(a, b *domain.Product) bool { return a.CreatedAt.After(b.CreatedAt) })
	default:
		return Plan{}, false
	}
	return plan, true
}

// fashionChain: strict keywords, then anything not claimed by the opposite theme, then the whole group.
func (c *Curator) fashionChain(own, opposite string) []Strategy {
	group := c.rules.Group(GroupFashion)
	ownRules, oppositeRules := c.rules.Ruleset(own), c.rules.Ruleset(opposite)
	return []Strategy{
		{Name: "strict", Collect: func(pool []domain.Product) []domain.Product {
			return Where(ByCategory(pool, group), func(p *domain.Product) bool { return IsMember(p, ownRules) })
		}},
		{Name: "relaxed", Collect: func(pool []domain.Product) []domain.Product {
			return Where(ByCategory(pool, group), func(p *domain.Product) bool { return !IsMember(p, oppositeRules) })
		}},
		{Name: "unfiltered", Collect: func(pool []domain.Product) []domain.Product {
			return ByCategory(pool, group)
		}},
	}
}

// foodStrategy merges the trusted food categories with keyword-checked items of the generic parent.
func (c *Curator) foodStrategy() Strategy {
	trusted, parent := c.rules.Group(GroupFood), c.rules.Group(GroupAlimentation)
	rules := c.rules.Ruleset(RulesetFood)
	return Strategy{Name: "trusted+parent", Collect: func(pool []domain.Product) []domain.Product {
		checked := Where(ByCategory(pool, parent), func(p *domain.Product) bool { return IsMember(p, rules) })
		return append(ByCategory(pool, trusted), checked...)
	}}
}

// widenWhenBelow makes beauty and kids scan the whole pool only when their category set is empty.
const widenWhenBelow = 1

// categoryThenKeywords uses the category group, and only when it is empty scans the whole pool by keyword.
func (c *Curator) categoryThenKeywords(groupName, rulesetName string) []Strategy {
	group, rules := c.rules.Group(groupName), c.rules.Ruleset(rulesetName)
	return []Strategy{
		{Name: "category", Collect: func(pool []domain.Product) []domain.Product {
			return ByCategory(pool, group)
		}},
		{Name: "keywords", Collect: func(pool []domain.Product) []domain.Product {
			return Where(pool, func(p *domain.Product) bool { return IsMember(p, rules) })
		}},
	}
}

func (c *Curator) kitchenStrategy() Strategy {
	kitchen, home := c.rules.Group(GroupKitchen), c.rules.Group(GroupHome)
	rules := c.rules.Ruleset(RulesetKitchenHome)
	return Strategy{Name: "kitchen+home", Collect: func(pool []domain.Product) []domain.Product {
		fromHome := Where(ByCategory(pool, home), func(p *domain.Product) bool { return IsMember(p, rules) })
		return append(ByCategory(pool, kitchen), fromHome...)
	}}
}

// dealsChain prefers the active campaign's products in position order, then discounted pool items.
func dealsChain(campaign *domain.Campaign) []Strategy {
	discounted := Strategy{Name: "discounted", Collect: func(pool []domain.Product) []domain.Product {
		return Where(pool, func(p *domain.Product) bool { return p.HasDiscount() })
	}}
	if campaign == nil {
		return []Strategy{discounted}
	}
	links := make([]domain.CampaignProductLink, len(campaign.Products))
	copy(links, campaign.Products)
	sort.SliceStable(links, func(i, j int) bool { return links[i].Position < links[j].Position })

	fromCampaign := Strategy{Name: "campaign", Collect: func([]domain.Product) []domain.Product {
		out := make([]domain.Product, len(links))
		for i, l := range links {
			out[i] = l.Product
		}
		return out
	}}
	return []Strategy{fromCampaign, discounted}
}

func wholePool(name string) Strategy {
	return Strategy{Name: name, Collect: func(pool []domain.Product) []domain.Product { return pool }}
}
