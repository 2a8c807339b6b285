package engine

import (
	"testing"

	"medadmit-workers/internal/reference"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTierClassifier_Classify(t *testing.T) {
	c := NewTierClassifier(
		[]string{"harvard", "yale", "stanford", "Massachusetts Institute of Technology"},
		[]string{"duke university", "rice university", "yale", "johns hopkins"},
	)

	tests := []struct {
		name string
		want InstitutionTier
	}{
		{"Harvard University", TierHYPSM},
		{"  HARVARD  ", TierHYPSM},
		{"harvard", TierHYPSM},
		{"Massachusetts Institute of Technology", TierHYPSM},
		{"Yale University", TierHYPSM},
		{"Duke University", TierElite},
		{"Johns Hopkins University", TierElite},
		{"Rice University", TierElite},
		{"Price University", TierStandard},
		{"Stanfordville Community College", TierStandard},
		{"Duke-University, Durham", TierElite},
		{"Lake Rice University", TierElite},
		{"Riceland University", TierStandard},
		{"Ohio State University", TierStandard},
		{"", TierStandard},
		{"   ", TierStandard},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.name))
		})
	}
}

func TestTierClassifier_NilAndEmpty(t *testing.T) {
	var c *TierClassifier
	assert.Equal(t, TierStandard, c.Classify("Harvard"))

	empty := NewTierClassifier(nil, []string{"", "  "})
	assert.Equal(t, TierStandard, empty.Classify("Harvard"))
}

func TestTierClassifier_EmbeddedLists(t *testing.T) {
	lists, err := reference.LoadInstitutionTiers("")
	require.NoError(t, err)
	c := NewTierClassifier(lists.HYPSM, lists.Elite)

	assert.Equal(t, TierHYPSM, c.Classify("Princeton University"))
	assert.Equal(t, TierHYPSM, c.Classify("Massachusetts Institute of Technology (MIT)"))
	assert.Equal(t, TierElite, c.Classify("Washington University in St. Louis"))
	assert.Equal(t, TierElite, c.Classify("University of California, Berkeley"))
	assert.Equal(t, TierStandard, c.Classify("Smithville State College"))
	// no short "mit" alias
	assert.Equal(t, TierStandard, c.Classify("Smith College"))
}

func TestNormalizeInstitution(t *testing.T) {
	assert.Equal(t, "university of california berkeley", normalizeInstitution("University of California, Berkeley"))
	assert.Equal(t, "washington university in st louis", normalizeInstitution("Washington University in St. Louis"))
	assert.Equal(t, "", normalizeInstitution(" ,.- "))
}
