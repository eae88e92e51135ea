package merch

import "storefront-merchandising-service/internal/domain"

// SectionName identifies one curated homepage list.
type SectionName string

const (
	SectionMen            SectionName = "men"
	SectionWomen          SectionName = "women"
	SectionFood           SectionName = "food"
	SectionBeauty         SectionName = "beauty"
	SectionKitchen        SectionName = "kitchen"
	SectionKids           SectionName = "kids"
	SectionDeals          SectionName = "deals"
	SectionTrending       SectionName = "trending"
	SectionNew            SectionName = "new"
	SectionBestsellers    SectionName = "bestsellers"
	SectionRecentlyViewed SectionName = "recentlyViewed"
)

// AllSections lists every section in homepage order.
var AllSections = []SectionName{
	SectionMen, SectionWomen, SectionFood, SectionBeauty, SectionKitchen, SectionKids,
	SectionDeals, SectionTrending, SectionNew, SectionBestsellers, SectionRecentlyViewed,
}

// ParseSection validates a section name.
func ParseSection(s string) (SectionName, bool) {
	for _, name := range AllSections {
		if string(name) == s {
			return name, true
		}
	}
	return "", false
}

// SectionLimits bounds one section's output.
type SectionLimits struct {
	MinAcceptable int `yaml:"min_acceptable" json:"min_acceptable"`
	MaxOutput     int `yaml:"max_output" json:"max_output"`
}

// DefaultLimits apply to sections the rules file leaves out.
var DefaultLimits = map[SectionName]SectionLimits{
	SectionMen:            {MinAcceptable: 4, MaxOutput: 20},
	SectionWomen:          {MinAcceptable: 4, MaxOutput: 20},
	SectionFood:           {MinAcceptable: 0, MaxOutput: 20},
	SectionBeauty:         {MinAcceptable: 1, MaxOutput: 20},
	SectionKitchen:        {MinAcceptable: 0, MaxOutput: 20},
	SectionKids:           {MinAcceptable: 1, MaxOutput: 20},
	SectionDeals:          {MinAcceptable: 1, MaxOutput: 20},
	SectionTrending:       {MaxOutput: 20},
	SectionNew:            {MaxOutput: 20},
	SectionBestsellers:    {MaxOutput: 20},
	SectionRecentlyViewed: {MaxOutput: RecentlyViewedCap},
}

// SectionMap holds one list per section. Every section key is present, lists are never nil.
type SectionMap map[SectionName][]domain.Product

func newSectionMap() SectionMap {
	m := make(SectionMap, len(AllSections))
	for _, name := range AllSections {
		m[name] = []domain.Product{}
	}
	return m
}

// WithRecentlyViewed stores the viewer's history under the recently-viewed key,
// enforcing the history cap and id uniqueness.
func (m SectionMap) WithRecentlyViewed(history []domain.Product) SectionMap {
	m[SectionRecentlyViewed] = Truncate(Dedupe(history), RecentlyViewedCap)
	return m
}
