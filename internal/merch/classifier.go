package merch

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"storefront-merchandising-service/internal/domain"
)

// KeywordRuleset holds the word lists used to decide whether a product belongs to a theme.
// Matching is case-insensitive substring containment, so short fragments ("homme")
// also match inside longer words.
type KeywordRuleset struct {
	Include      []string `yaml:"include" json:"include"`
	Exclude      []string `yaml:"exclude" json:"exclude"`
	StoreInclude []string `yaml:"store_include" json:"store_include"`
	StoreExclude []string `yaml:"store_exclude" json:"store_exclude"`
	// MatchMetadata extends the name text with meta title, meta description and category name.
	MatchMetadata bool `yaml:"match_metadata" json:"match_metadata"`

	folded bool
}

// Verdict is the outcome of classifying one product against one ruleset.
type Verdict struct {
	Member   bool
	Excluded bool
}

// Normalize returns a copy of the ruleset with every keyword case-folded and blank entries dropped.
func (rs KeywordRuleset) Normalize() KeywordRuleset {
	if rs.folded {
		return rs
	}
	return KeywordRuleset{
		Include:       foldAll(rs.Include),
		Exclude:       foldAll(rs.Exclude),
		StoreInclude:  foldAll(rs.StoreInclude),
		StoreExclude:  foldAll(rs.StoreExclude),
		MatchMetadata: rs.MatchMetadata,
		folded:        true,
	}
}

// Classify decides theme membership for p. Exclusion is checked first and always wins:
// a name matching both an inclusion and an exclusion keyword is not a member.
func Classify(p *domain.Product, rs KeywordRuleset) Verdict {
	rs = rs.Normalize()

	text := productText(p, rs.MatchMetadata)
	store := fold(p.Store())

	if containsAny(text, rs.Exclude) || containsAny(store, rs.StoreExclude) {
		return Verdict{Excluded: true}
	}
	if containsAny(text, rs.Include) || containsAny(store, rs.StoreInclude) {
		return Verdict{Member: true}
	}
	return Verdict{}
}

// IsMember is shorthand for Classify(p, rs).Member.
func IsMember(p *domain.Product, rs KeywordRuleset) bool {
	return Classify(p, rs).Member
}

// MatchesAny reports whether any keyword occurs in the product name, ignoring exclusions.
// The name is built the same way as for Classify.
func MatchesAny(p *domain.Product, keywords []string) bool {
	return containsAny(productText(p, false), foldAll(keywords))
}

// productText pads the folded text with spaces so keywords like " men " can anchor on word edges.
func productText(p *domain.Product, withMeta bool) string {
	parts := []string{p.Name}
	if withMeta {
		parts = append(parts, p.Title(), p.Description(), p.CategoryLabel())
	}
	text := strings.TrimSpace(strings.Join(parts, " "))
	if text == "" {
		return ""
	}
	return " " + fold(text) + " "
}

func containsAny(text string, keywords []string) bool {
	if text == "" {
		return false
	}
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// fold lowercases s after NFC composition so that "é" typed as e + U+0301 matches "é".
func fold(s string) string {
	if s == "" {
		return ""
	}
	return strings.ToLower(norm.NFC.String(s))
}

func foldAll(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if f := fold(w); strings.TrimSpace(f) != "" {
			out = append(out, f)
		}
	}
	return out
}
