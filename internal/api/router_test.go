package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"medadmit-workers/internal/admissions"
	"medadmit-workers/internal/common/logger"
	"medadmit-workers/internal/engine"
	"medadmit-workers/internal/models"
	"medadmit-workers/internal/reference"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T, checks map[string]ReadinessCheck) http.Handler {
	t.Helper()
	provider, err := reference.LoadEmbedded()
	require.NoError(t, err)
	lists, err := reference.LoadInstitutionTiers("")
	require.NoError(t, err)

	eng := engine.New(provider, engine.NewTierClassifier(lists.HYPSM, lists.Elite), engine.DefaultPolicy())
	svc := admissions.NewService(admissions.ServiceDependencies{
		Engine:   eng,
		Provider: provider,
		Logger:   logger.NewTestLogger(t),
	})
	return NewRouter(Options{
		Service:         svc,
		Logger:          logger.NewTestLogger(t),
		Version:         "test",
		DatasetVersion:  provider.Version(),
		ReadinessChecks: checks,
	})
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

const validBody = `{"cumulativeGPA":3.7,"mcatTotal":515,"stateOfResidence":"CA","raceEthnicity":null}`

func TestPredict_Success(t *testing.T) {
	r := newTestRouter(t, nil)

	w := do(t, r, http.MethodPost, "/api/predict", validBody)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Contains(t, body, "score")
	assert.Contains(t, body, "tier")
	assert.Contains(t, body, "globalProbability")
	assert.Contains(t, body, "expectedAcceptances")
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	g := body["globalProbability"].(float64)
	assert.GreaterOrEqual(t, g, 0.0)
	assert.LessOrEqual(t, g, 1.0)
}

func TestPredict_ValidationErrors(t *testing.T) {
	r := newTestRouter(t, nil)

	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"malformed json", `{"cumulativeGPA":`, ""},
		{"missing required", `{"cumulativeGPA":3.7}`, "mcatTotal"},
		{"wrong type", `{"cumulativeGPA":"3.7","mcatTotal":515,"stateOfResidence":"CA"}`, "cumulativeGPA"},
		{"out of range", `{"cumulativeGPA":4.7,"mcatTotal":515,"stateOfResidence":"CA"}`, "cumulativeGPA"},
		{"mcat out of range", `{"cumulativeGPA":3.7,"mcatTotal":530,"stateOfResidence":"CA"}`, "mcatTotal"},
		{"unknown race", `{"cumulativeGPA":3.7,"mcatTotal":515,"stateOfResidence":"CA","raceEthnicity":"martian"}`, "raceEthnicity"},
		{"negative clinical hours", `{"cumulativeGPA":3.7,"mcatTotal":515,"stateOfResidence":"CA","clinicalHoursTotal":-500}`, "clinicalHoursTotal"},
		{"negative research hours", `{"cumulativeGPA":3.7,"mcatTotal":515,"stateOfResidence":"CA","researchHoursTotal":-10}`, "researchHoursTotal"},
		{"negative publications", `{"cumulativeGPA":3.7,"mcatTotal":515,"stateOfResidence":"CA","publicationCount":-1}`, "publicationCount"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, r, http.MethodPost, "/api/predict", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)

			body := decode(t, w)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, "Invalid applicant", body["error"])
			require.NotEmpty(t, body["details"])
			if tt.field != "" {
				assert.Contains(t, fmt.Sprint(body["details"]), tt.field)
			}
		})
	}
}

func TestSchoolProbability(t *testing.T) {
	r := newTestRouter(t, nil)

	w := do(t, r, http.MethodPost, "/api/schools/uw-medicine/probability",
		`{"cumulativeGPA":3.7,"mcatTotal":515,"stateOfResidence":"wa","publicationCount":1}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp schoolProbabilityResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "uw-medicine", resp.Result.SchoolID)
	assert.True(t, resp.Result.Fit.IsInState)
	assert.LessOrEqual(t, resp.Result.ProbabilityLower, resp.Result.Probability)
	assert.LessOrEqual(t, resp.Result.Probability, resp.Result.ProbabilityUpper)
	require.Len(t, resp.Warnings, 1)
	assert.Equal(t, engine.WarnPublicationFlagMismatch, resp.Warnings[0].Code)
}

func TestSchoolProbability_NotFound(t *testing.T) {
	r := newTestRouter(t, nil)

	w := do(t, r, http.MethodPost, "/api/schools/atlantis-med/probability", validBody)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, false, decode(t, w)["success"])
}

func TestAllSchoolProbabilities(t *testing.T) {
	r := newTestRouter(t, nil)

	w := do(t, r, http.MethodPost, "/api/schools/probabilities", validBody)
	require.Equal(t, http.StatusOK, w.Code)

	var resp allSchoolsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)

	list := do(t, r, http.MethodGet, "/api/schools", "")
	require.Equal(t, http.StatusOK, list.Code)
	var schools struct {
		Schools []schoolSummary `json:"schools"`
	}
	require.NoError(t, json.Unmarshal(list.Body.Bytes(), &schools))

	require.Len(t, resp.Results, len(schools.Schools))
	for i := range schools.Schools {
		assert.Equal(t, schools.Schools[i].ID, resp.Results[i].SchoolID)
		assert.Contains(t, []models.Category{models.CategoryReach, models.CategoryTarget, models.CategorySafety}, resp.Results[i].Category)
	}
}

func TestHealthReadyMetrics(t *testing.T) {
	r := newTestRouter(t, map[string]ReadinessCheck{
		"reference": func(context.Context) error { return nil },
	})

	w := do(t, r, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decode(t, w)["status"])

	w = do(t, r, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["ready"])

	do(t, r, http.MethodPost, "/api/predict", validBody)
	w = do(t, r, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "admission_predictions_total")
	assert.Contains(t, w.Body.String(), "http_requests_total")
}

func TestReady_FailingCheck(t *testing.T) {
	r := newTestRouter(t, map[string]ReadinessCheck{
		"redis": func(context.Context) error { return fmt.Errorf("dial tcp: connection refused") },
	})

	w := do(t, r, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	body := decode(t, w)
	assert.Equal(t, false, body["ready"])
	checks := body["checks"].(map[string]interface{})
	assert.Contains(t, checks["redis"], "connection refused")
}

func TestRequestIDPropagated(t *testing.T) {
	r := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))
}
