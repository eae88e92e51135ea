package merch

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Category group names the curator looks up.
const (
	GroupFashion      = "fashion"
	GroupFood         = "food"         // trusted food sub-categories
	GroupAlimentation = "alimentation" // generic food parent, filtered by keywords
	GroupBeauty       = "beauty"
	GroupKids         = "kids"
	GroupKitchen      = "kitchen"
	GroupHome         = "home"
)

// Keyword ruleset names the curator looks up.
const (
	RulesetMen          = "men"
	RulesetWomen        = "women"
	RulesetFood         = "food"
	RulesetBeauty       = "beauty"
	RulesetKids         = "kids"
	RulesetKitchenHome  = "kitchen_home"  // picks kitchen items out of the home category
	RulesetKitchenTerms = "kitchen_terms" // ranks kitchen items; only Include is used
)

var (
	requiredGroups   = []string{GroupFashion, GroupFood, GroupAlimentation, GroupBeauty, GroupKids, GroupKitchen, GroupHome}
	requiredRulesets = []string{RulesetMen, RulesetWomen, RulesetFood, RulesetBeauty, RulesetKids, RulesetKitchenHome, RulesetKitchenTerms}
)

// ErrInvalidRules is returned when a rules document is incomplete or malformed.
var ErrInvalidRules = errors.New("merch: invalid rules")

//go:embed default_rules.yaml
var defaultRulesYAML []byte

// Rules is the static merchandising configuration: category groups, keyword rulesets and section limits.
// It is immutable once built.
type Rules struct {
	groups   map[string]CategoryGroup
	rulesets map[string]KeywordRuleset
	limits   map[SectionName]SectionLimits
}

type rulesDocument struct {
	CategoryGroups map[string][]int64        `yaml:"category_groups" validate:"required,dive,dive,gt=0"`
	Rulesets       map[string]KeywordRuleset `yaml:"rulesets" validate:"required"`
	Sections       map[string]limitsDocument `yaml:"sections" validate:"omitempty,dive"`
}

// limitsDocument is a partial override; absent fields keep DefaultLimits.
type limitsDocument struct {
	MinAcceptable *int `yaml:"min_acceptable"`
	MaxOutput     *int `yaml:"max_output"`
}

// NewRules builds Rules from in-memory definitions. Keywords are normalised; missing
// section limits fall back to DefaultLimits. Every configured section must be capped.
func NewRules(groups map[string][]int64, rulesets map[string]KeywordRuleset, limits map[SectionName]SectionLimits) (*Rules, error) {
	r := &Rules{
		groups:   make(map[string]CategoryGroup, len(groups)),
		rulesets: make(map[string]KeywordRuleset, len(rulesets)),
		limits:   make(map[SectionName]SectionLimits, len(AllSections)),
	}
	for _, name := range requiredGroups {
		if _, ok := groups[name]; !ok {
			return nil, fmt.Errorf("%w: missing category group %q", ErrInvalidRules, name)
		}
	}
	for _, name := range requiredRulesets {
		if _, ok := rulesets[name]; !ok {
			return nil, fmt.Errorf("%w: missing keyword ruleset %q", ErrInvalidRules, name)
		}
	}
	for name, ids := range groups {
		r.groups[name] = NewCategoryGroup(name, ids...)
	}
	for name, rs := range rulesets {
		r.rulesets[name] = rs.Normalize()
	}
	for name, l := range DefaultLimits {
		r.limits[name] = l
	}
	for name, l := range limits {
		if _, ok := DefaultLimits[name]; !ok {
			return nil, fmt.Errorf("%w: unknown section %q", ErrInvalidRules, name)
		}
		if l.MinAcceptable < 0 || l.MaxOutput <= 0 {
			return nil, fmt.Errorf("%w: section %q needs min_acceptable >= 0 and max_output > 0", ErrInvalidRules, name)
		}
		if name == SectionRecentlyViewed && l.MaxOutput != RecentlyViewedCap {
			return nil, fmt.Errorf("%w: recentlyViewed max_output is fixed at %d", ErrInvalidRules, RecentlyViewedCap)
		}
		if (name == SectionBeauty || name == SectionKids) && l.MinAcceptable != widenWhenBelow {
			return nil, fmt.Errorf("%w: %s min_acceptable is fixed at %d", ErrInvalidRules, name, widenWhenBelow)
		}
		r.limits[name] = l
	}
	return r, nil
}

// ParseRules decodes and validates a YAML rules document.
func ParseRules(data []byte) (*Rules, error) {
	var doc rulesDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrInvalidRules, err)
	}
	if err := validator.New().Struct(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRules, err)
	}
	limits := make(map[SectionName]SectionLimits, len(doc.Sections))
	for name, override := range doc.Sections {
		l := DefaultLimits[SectionName(name)]
		if override.MinAcceptable != nil {
			l.MinAcceptable = *override.MinAcceptable
		}
		if override.MaxOutput != nil {
			l.MaxOutput = *override.MaxOutput
		}
		limits[SectionName(name)] = l
	}
	return NewRules(doc.CategoryGroups, doc.Rulesets, limits)
}

// LoadRules reads rules from path, or returns the embedded defaults when path is empty.
func LoadRules(path string) (*Rules, error) {
	if path == "" {
		return DefaultRules()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("merch: failed to read rules file %s: %w", path, err)
	}
	return ParseRules(data)
}

// DefaultRules returns the embedded rule set.
func DefaultRules() (*Rules, error) {
	return ParseRules(defaultRulesYAML)
}

// Group returns the named category group; unknown names yield an empty group.
func (r *Rules) Group(name string) CategoryGroup {
	if g, ok := r.groups[name]; ok {
		return g
	}
	return NewCategoryGroup(name)
}

// Ruleset returns the named keyword ruleset; unknown names yield an empty ruleset.
func (r *Rules) Ruleset(name string) KeywordRuleset {
	if rs, ok := r.rulesets[name]; ok {
		return rs
	}
	return KeywordRuleset{}.Normalize()
}

// Limits returns the limits configured for a section.
func (r *Rules) Limits(name SectionName) SectionLimits {
	return r.limits[name]
}
