package admissions

import (
	"context"
	"testing"
	"time"

	"medadmit-workers/internal/common/errors"
	"medadmit-workers/internal/common/logger"
	"medadmit-workers/internal/engine"
	"medadmit-workers/internal/models"
	"medadmit-workers/internal/predictioncache"
	"medadmit-workers/internal/reference"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, cache *predictioncache.Cache) *Service {
	t.Helper()
	provider, err := reference.LoadEmbedded()
	require.NoError(t, err)
	lists, err := reference.LoadInstitutionTiers("")
	require.NoError(t, err)

	eng := engine.New(provider, engine.NewTierClassifier(lists.HYPSM, lists.Elite), engine.DefaultPolicy())
	return NewService(ServiceDependencies{
		Engine:   eng,
		Provider: provider,
		Cache:    cache,
		Logger:   logger.NewTestLogger(t),
	})
}

func validDocument() map[string]interface{} {
	return map[string]interface{}{
		"cumulativeGPA":      3.7,
		"mcatTotal":          515.0,
		"stateOfResidence":   "ca",
		"raceEthnicity":      nil,
		"clinicalHoursTotal": 600.0,
	}
}

func TestDecodeApplicant(t *testing.T) {
	raw, err := DecodeApplicant(validDocument())
	require.NoError(t, err)
	require.NotNil(t, raw.CumulativeGPA)
	assert.Equal(t, 3.7, *raw.CumulativeGPA)
	assert.Equal(t, 515, *raw.MCATTotal)
	assert.Nil(t, raw.RaceEthnicity)
	assert.Equal(t, 600.0, *raw.ClinicalHoursTotal)
}

func TestDecodeApplicant_SchemaFailures(t *testing.T) {
	tests := []struct {
		name string
		doc  interface{}
	}{
		{"nil document", nil},
		{"missing gpa", map[string]interface{}{"mcatTotal": 510.0, "stateOfResidence": "CA"}},
		{"wrong type", map[string]interface{}{"cumulativeGPA": "high", "mcatTotal": 510.0, "stateOfResidence": "CA"}},
		{"bad race", map[string]interface{}{"cumulativeGPA": 3.5, "mcatTotal": 510.0, "stateOfResidence": "CA", "raceEthnicity": "martian"}},
		{"negative research hours", map[string]interface{}{"cumulativeGPA": 3.5, "mcatTotal": 510.0, "stateOfResidence": "CA", "researchHoursTotal": -10.0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeApplicant(tt.doc)
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.ErrCodeValidationFailed))
		})
	}
}

func TestDecodeApplicantJSON_Malformed(t *testing.T) {
	_, err := DecodeApplicantJSON([]byte(`{"cumulativeGPA":`))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeParseError))
}

func TestService_NormalizeDocument(t *testing.T) {
	svc := newTestService(t, nil)
	doc := validDocument()
	doc["publicationCount"] = 2.0

	out, err := svc.NormalizeDocument(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, "CA", out.Applicant.StateOfResidence)
	require.Len(t, out.Warnings, 1)
	assert.Equal(t, engine.WarnPublicationFlagMismatch, out.Warnings[0].Code)

	doc["mcatTotal"] = 600.0
	_, err = svc.NormalizeDocument(context.Background(), doc)
	assert.True(t, errors.HasCode(err, errors.ErrCodeValidationFailed))
}

func TestService_Predictions(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()
	a := models.ApplicantInput{CumulativeGPA: 3.7, MCATTotal: 515, StateOfResidence: "WA"}

	r, err := svc.SchoolProbability(ctx, a, "uw-medicine")
	require.NoError(t, err)
	assert.Equal(t, "uw-medicine", r.SchoolID)
	assert.True(t, r.Fit.IsInState)

	_, err = svc.SchoolProbability(ctx, a, "nowhere")
	assert.True(t, errors.HasCode(err, errors.ErrCodeSchoolNotFound))

	all, err := svc.AllSchoolProbabilities(ctx, a)
	require.NoError(t, err)
	assert.Len(t, all, len(svc.Schools()))

	q, err := svc.QuickPrediction(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, len(svc.Schools()), q.SchoolCount)
}

func TestService_CachesResults(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	cache := predictioncache.New(client, time.Hour, "test", "v1", logger.NewTestLogger(t))
	svc := newTestService(t, cache)
	ctx := context.Background()
	a := models.ApplicantInput{CumulativeGPA: 3.7, MCATTotal: 515, StateOfResidence: "CA"}

	first, err := svc.QuickPrediction(ctx, a)
	require.NoError(t, err)

	key, err := cache.Key(OpQuickPrediction, a, "")
	require.NoError(t, err)
	assert.True(t, mr.Exists(key))

	second, err := svc.QuickPrediction(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	r1, err := svc.SchoolProbability(ctx, a, "harvard-med")
	require.NoError(t, err)
	r2, err := svc.SchoolProbability(ctx, a, "harvard-med")
	require.NoError(t, err)
	assert.Equal(t, r1, r2)

	all1, err := svc.AllSchoolProbabilities(ctx, a)
	require.NoError(t, err)
	all2, err := svc.AllSchoolProbabilities(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, all1, all2)
}
