package merch

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-merchandising-service/internal/domain"
)

func TestDefaultRules(t *testing.T) {
	rules, err := DefaultRules()
	require.NoError(t, err)

	assert.True(t, rules.Group(GroupFood).Contains(21))
	assert.True(t, rules.Group(GroupAlimentation).Contains(20))
	assert.False(t, rules.Group(GroupFood).Contains(20))
	assert.Equal(t, SectionLimits{MinAcceptable: 4, MaxOutput: 20}, rules.Limits(SectionMen))
	assert.Equal(t, RecentlyViewedCap, rules.Limits(SectionRecentlyViewed).MaxOutput)

	juice := domain.Product{Name: "Jus d'orange"}
	phone := domain.Product{Name: "Téléphone Samsung"}
	assert.True(t, IsMember(&juice, rules.Ruleset(RulesetFood)))
	assert.True(t, Classify(&phone, rules.Ruleset(RulesetFood)).Excluded)

	// Substring matching means "men" sits inside "women"; the men ruleset excludes it explicitly.
	dress := domain.Product{Name: "Women's summer dress"}
	assert.False(t, IsMember(&dress, rules.Ruleset(RulesetMen)))
	assert.True(t, IsMember(&dress, rules.Ruleset(RulesetWomen)))
}

func TestDefaultRules_FoodScenario(t *testing.T) {
	rules, err := DefaultRules()
	require.NoError(t, err)

	pool := []domain.Product{
		product(1, "Sardines", 21),
		product(2, "Sel fin", 21),
		product(3, "Poivre", 21),
		product(4, "Jus d'orange", 20),
		product(5, "Téléphone Samsung", 20),
	}
	food := NewCurator(rules).CurateHomepage(pool, nil)[SectionFood]
	assert.ElementsMatch(t, []int64{1, 2, 3, 4}, ids(food))
}

func TestParseRules_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"not yaml", "category_groups: [oops"},
		{"missing groups", "rulesets: {men: {include: [homme]}}"},
		{"negative category id", validYAML + "\n  extra: [-1]\n"},
		{"missing ruleset", `
category_groups: {fashion: [1], food: [2], alimentation: [3], beauty: [4], kids: [5], kitchen: [6], home: [7]}
rulesets: {men: {include: [homme]}}
`},
		{"unknown section", validYAML + "sections: {shoes: {max_output: 3}}\n"},
		{"negative limit", validYAML + "sections: {men: {max_output: -3}}\n"},
		{"uncapped section", validYAML + "sections: {trending: {max_output: 0}}\n"},
		{"recently viewed cap", validYAML + "sections: {recentlyViewed: {max_output: 30}}\n"},
		{"beauty widening threshold", validYAML + "sections: {beauty: {min_acceptable: 4}}\n"},
		{"kids widening threshold", validYAML + "sections: {kids: {min_acceptable: 0}}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRules([]byte(tt.yaml))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidRules), "got %v", err)
		})
	}
}

const validYAML = `rulesets:
  men: {include: [homme], exclude: [femme]}
  women: {include: [femme], exclude: [homme]}
  food: {include: [jus]}
  beauty: {include: [parfum]}
  kids: {include: [jouet]}
  kitchen_home: {include: [casserole]}
  kitchen_terms: {include: [casserole]}
category_groups:
  fashion: [1]
  food: [2]
  alimentation: [3]
  beauty: [4]
  kids: [5]
  kitchen: [6]
  home: [7]
`

func TestLoadRules_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := validYAML + "\nsections:\n  men: {min_acceptable: 2, max_output: 8}\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	rules, err := LoadRules(path)
	require.NoError(t, err)
	assert.Equal(t, SectionLimits{MinAcceptable: 2, MaxOutput: 8}, rules.Limits(SectionMen))
	assert.Equal(t, DefaultLimits[SectionWomen], rules.Limits(SectionWomen))
	assert.True(t, rules.Group(GroupHome).Contains(7))

	_, err = LoadRules(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadRules_EmptyPathUsesDefaults(t *testing.T) {
	rules, err := LoadRules("")
	require.NoError(t, err)
	assert.NotEmpty(t, rules.Group(GroupFashion).IDs())
}

func TestRules_UnknownNames(t *testing.T) {
	rules := testRules(nil)
	assert.Empty(t, rules.Group("garden").IDs())
	p := domain.Product{Name: "anything"}
	assert.Equal(t, Verdict{}, Classify(&p, rules.Ruleset("garden")))
}

func TestParseRules_PartialOverrideKeepsDefaults(t *testing.T) {
	rules, err := ParseRules([]byte(validYAML + "sections:\n  trending: {min_acceptable: 0}\n  men: {max_output: 6}\n"))
	require.NoError(t, err)
	assert.Equal(t, DefaultLimits[SectionTrending], rules.Limits(SectionTrending))
	assert.Equal(t, SectionLimits{MinAcceptable: 4, MaxOutput: 6}, rules.Limits(SectionMen))

	pool := make([]domain.Product, 50)
	for i := range pool {
		pool[i] = product(int64(i+1), "item", 99)
	}
	trending := NewCurator(rules).CurateHomepage(pool, nil)[SectionTrending]
	assert.Len(t, trending, DefaultLimits[SectionTrending].MaxOutput)
}

func TestNewRules_RejectsUncappedLimits(t *testing.T) {
	_, err := NewRules(nil, nil, nil)
	require.ErrorIs(t, err, ErrInvalidRules)

	base, err := DefaultRules()
	require.NoError(t, err)
	groups := map[string][]int64{}
	for _, name := range requiredGroups {
		groups[name] = base.Group(name).IDs()
	}
	rulesets := map[string]KeywordRuleset{}
	for _, name := range requiredRulesets {
		rulesets[name] = base.Ruleset(name)
	}

	_, err = NewRules(groups, rulesets, map[SectionName]SectionLimits{SectionNew: {}})
	assert.ErrorIs(t, err, ErrInvalidRules)
	_, err = NewRules(groups, rulesets, map[SectionName]SectionLimits{SectionKids: {MinAcceptable: 3, MaxOutput: 20}})
	assert.ErrorIs(t, err, ErrInvalidRules)
	_, err = NewRules(groups, rulesets, map[SectionName]SectionLimits{SectionNew: {MaxOutput: 5}})
	assert.NoError(t, err)
}
