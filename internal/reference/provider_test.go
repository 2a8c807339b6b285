package reference

import (
	"path/filepath"
	"testing"

	"medadmit-workers/internal/common/errors"
	"medadmit-workers/internal/models"
	"medadmit-workers/pkg/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRecord(id string) models.SchoolRecord {
	return models.SchoolRecord{
		ID:                id,
		Name:              "Test School of Medicine",
		State:             "OH",
		IsPublic:          true,
		GPAMedian:         3.75,
		GPASpread:         0.2,
		MCATMedian:        511,
		MCATSpread:        5,
		AcceptanceRate:    0.05,
		TotalApplicants:   5000,
		InStatePreference: 0.5,
		Tier:              3,
		MissionTags:       []models.MissionTag{models.MissionRuralServing},
		MissionBonuses:    map[models.MissionTag]float64{models.MissionRuralServing: 0.3},
	}
}

func TestLoadEmbedded(t *testing.T) {
	p, err := LoadEmbedded()
	require.NoError(t, err)

	assert.Equal(t, 26, p.Len())
	assert.Equal(t, "2024.1", p.Version())

	harvard, ok := p.GetSchoolByID("harvard-med")
	require.True(t, ok)
	assert.Equal(t, "MA", harvard.State)
	assert.Equal(t, 1, harvard.Tier)

	uw, ok := p.GetSchoolByID("uw-medicine")
	require.True(t, ok)
	assert.True(t, uw.IsPublic)
	assert.Greater(t, uw.InStatePreference, 0.0)
	assert.True(t, uw.HasMission(models.MissionRuralServing))

	_, ok = p.GetSchoolByID("does-not-exist")
	assert.False(t, ok)
}

func TestStaticProvider_StableOrderAndCopies(t *testing.T) {
	p, err := LoadEmbedded()
	require.NoError(t, err)

	first := p.GetAllSchools()
	second := p.GetAllSchools()
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
	}
	assert.Equal(t, "harvard-med", first[0].ID)

	first[0].GPAMedian = 0
	first[0].MissionTags[0] = "mutated"
	again, _ := p.GetSchoolByID("harvard-med")
	assert.Equal(t, 3.94, again.GPAMedian)
	assert.Equal(t, models.MissionResearch, again.MissionTags[0])
}

func TestNewStaticProvider_RejectsInvalidRecords(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *models.SchoolRecord)
	}{
		{"zero gpa spread", func(r *models.SchoolRecord) { r.GPASpread = 0 }},
		{"negative mcat spread", func(r *models.SchoolRecord) { r.MCATSpread = -1 }},
		{"acceptance rate one", func(r *models.SchoolRecord) { r.AcceptanceRate = 1 }},
		{"acceptance rate zero", func(r *models.SchoolRecord) { r.AcceptanceRate = 0 }},
		{"preference above one", func(r *models.SchoolRecord) { r.InStatePreference = 1.2 }},
		{"tier out of range", func(r *models.SchoolRecord) { r.Tier = 7 }},
		{"unknown state", func(r *models.SchoolRecord) { r.State = "XX" }},
		{"missing id", func(r *models.SchoolRecord) { r.ID = "" }},
		{"unknown mission tag", func(r *models.SchoolRecord) { r.MissionTags = append(r.MissionTags, "space-medicine") }},
		{"bonus without tag", func(r *models.SchoolRecord) {
			r.MissionBonuses[models.MissionHBCU] = 0.5
		}},
		{"negative bonus", func(r *models.SchoolRecord) {
			r.MissionBonuses[models.MissionRuralServing] = -0.1
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := validRecord("test-med")
			tt.mutate(&rec)
			_, err := NewStaticProvider("t", []models.SchoolRecord{rec})
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.ErrCodeReferenceDataInvalid))
		})
	}
}

func TestNewStaticProvider_DuplicateID(t *testing.T) {
	_, err := NewStaticProvider("t", []models.SchoolRecord{validRecord("a"), validRecord("a")})
	require.Error(t, err)
	assert.Contains(t, errors.Normalize(err).Details, "duplicate")
}

func TestNewStaticProvider_Empty(t *testing.T) {
	p, err := NewStaticProvider("t", nil)
	require.NoError(t, err)
	assert.Empty(t, p.GetAllSchools())
}

func TestLoadFile_RoundTrip(t *testing.T) {
	reg := &registry.SchoolRegistry{
		Version: "test",
		Schools: []registry.SchoolEntry{EntryFromRecord(validRecord("ohio-test"))},
	}
	path := filepath.Join(t.TempDir(), "schools.json")
	require.NoError(t, registry.SaveRegistry(reg, path))

	p, err := LoadFile(path)
	require.NoError(t, err)
	rec, ok := p.GetSchoolByID("ohio-test")
	require.True(t, ok)
	assert.Equal(t, validRecord("ohio-test"), rec)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestLoadInstitutionTiers(t *testing.T) {
	tiers, err := LoadInstitutionTiers("")
	require.NoError(t, err)
	assert.Equal(t, "harvard", tiers.HYPSM[0])
	assert.Contains(t, tiers.Elite, "duke university")

	_, err = LoadInstitutionTiers(filepath.Join(t.TempDir(), "none.json"))
	assert.Error(t, err)
}

func TestIsKnownState(t *testing.T) {
	assert.True(t, IsKnownState("CA"))
	assert.True(t, IsKnownState(" wa "))
	assert.True(t, IsKnownState("DC"))
	assert.True(t, IsKnownState("PR"))
	assert.False(t, IsKnownState("ZZ"))
	assert.False(t, IsKnownState(""))
}
