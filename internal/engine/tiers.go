package engine

import (
	"strings"
	"unicode"
)

// InstitutionTier is the WARS prestige tier of an undergraduate institution.
type InstitutionTier string

const (
	TierHYPSM    InstitutionTier = "hypsm"
	TierElite    InstitutionTier = "elite"
	TierStandard InstitutionTier = "standard"
)

type tierSet struct {
	tier  InstitutionTier
	exact map[string]struct{}
	names []string
}

// TierClassifier maps institution names to tiers using ordered name sets.
// Sets are tried most-elite first and the first match wins.
type TierClassifier struct {
	sets []tierSet
}

// NewTierClassifier builds a classifier from the HYPSM and elite lists.
// List order is preserved for substring matching.
func NewTierClassifier(hypsm, elite []string) *TierClassifier {
	return &TierClassifier{
		sets: []tierSet{
			newTierSet(TierHYPSM, hypsm),
			newTierSet(TierElite, elite),
		},
	}
}

func newTierSet(tier InstitutionTier, names []string) tierSet {
	set := tierSet{tier: tier, exact: make(map[string]struct{}, len(names))}
	for _, n := range names {
		key := normalizeInstitution(n)
		if key == "" {
			continue
		}
		if _, dup := set.exact[key]; dup {
			continue
		}
		set.exact[key] = struct{}{}
		set.names = append(set.names, key)
	}
	return set
}

// Classify returns the tier for name. Empty or unknown names are standard.
// Names are compared after normalization, first exactly and then as a
// whole-word run inside the input. This is stricter than a plain substring
// match: "Price University" does not match "rice university" and
// "Stanfordville" does not match "stanford".
func (c *TierClassifier) Classify(name string) InstitutionTier {
	if c == nil {
		return TierStandard
	}
	key := normalizeInstitution(name)
	if key == "" {
		return TierStandard
	}

	for _, set := range c.sets {
		if _, ok := set.exact[key]; ok {
			return set.tier
		}
		for _, n := range set.names {
			if containsWord(key, n) {
				return set.tier
			}
		}
	}
	return TierStandard
}

// containsWord reports whether needle occurs in haystack on word boundaries,
// so "rice university" never matches inside "price university".
func containsWord(haystack, needle string) bool {
	return strings.Contains(" "+haystack+" ", " "+needle+" ")
}

// normalizeInstitution lower-cases, turns punctuation into spaces and
// collapses whitespace.
func normalizeInstitution(name string) string {
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, name)
	return strings.Join(strings.Fields(mapped), " ")
}
