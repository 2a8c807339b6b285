// internal/admissions/service.go
package admissions

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"medadmit-workers/internal/common/errors"
	"medadmit-workers/internal/common/logger"
	"medadmit-workers/internal/common/metrics"
	"medadmit-workers/internal/common/observability"
	"medadmit-workers/internal/common/validation"
	"medadmit-workers/internal/engine"
	"medadmit-workers/internal/models"
	"medadmit-workers/internal/predictioncache"
	"medadmit-workers/internal/reference"
)

// Operation names used for metrics and cache keys.
const (
	OpNormalize       = "normalize"
	OpSchool          = "school_probability"
	OpAllSchools      = "all_school_probabilities"
	OpQuickPrediction = "quick_prediction"
)

// Service is the entry point shared by the job workers and the HTTP API. It
// wraps the engine with schema validation, caching and instrumentation.
type Service struct {
	engine   *engine.Engine
	provider reference.Provider
	cache    *predictioncache.Cache
	obs      *observability.Observability
	logger   logger.Logger
}

type ServiceDependencies struct {
	Engine        *engine.Engine
	Provider      reference.Provider
	Cache         *predictioncache.Cache
	Observability *observability.Observability
	Logger        logger.Logger
}

func NewService(deps ServiceDependencies) *Service {
	log := deps.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Service{
		engine:   deps.Engine,
		provider: deps.Provider,
		cache:    deps.Cache,
		obs:      deps.Observability,
		logger:   log,
	}
}

// DecodeApplicant validates a decoded JSON document against the applicant
// schema and converts it to a RawApplicant.
func DecodeApplicant(doc interface{}) (models.RawApplicant, error) {
	if doc == nil {
		return models.RawApplicant{}, errors.NewValidationFailedError("applicant is required", "applicant is required")
	}

	result, err := validation.ValidateApplicant(doc)
	if err != nil {
		return models.RawApplicant{}, errors.NewInternalError(err)
	}
	if !result.Valid {
		issues := result.GetErrorMessages()
		return models.RawApplicant{}, errors.NewValidationFailedError(fmt.Sprintf("Validation errors: %v", issues), issues...)
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return models.RawApplicant{}, errors.NewParseError(err)
	}
	var raw models.RawApplicant
	if err := json.Unmarshal(data, &raw); err != nil {
		return models.RawApplicant{}, errors.NewParseError(err)
	}
	return raw, nil
}

// DecodeApplicantJSON is DecodeApplicant for a raw request body.
func DecodeApplicantJSON(body []byte) (models.RawApplicant, error) {
	var doc interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		return models.RawApplicant{}, errors.NewParseError(err)
	}
	return DecodeApplicant(doc)
}

// Normalize produces the canonical applicant and records any warnings.
func (s *Service) Normalize(ctx context.Context, raw models.RawApplicant) (models.NormalizedApplicant, error) {
	start := time.Now()
	out, err := engine.Normalize(raw)
	s.observe(OpNormalize, start, err)
	if err != nil {
		return models.NormalizedApplicant{}, err
	}

	for _, w := range out.Warnings {
		s.obs.RecordWarning(ctx, w.Code)
		s.logger.Warn("applicant normalized with warning", map[string]interface{}{
			"code":  w.Code,
			"field": w.Field,
		})
	}
	return out, nil
}

// NormalizeDocument runs schema validation and normalization on a decoded
// applicant document.
func (s *Service) NormalizeDocument(ctx context.Context, doc interface{}) (models.NormalizedApplicant, error) {
	raw, err := DecodeApplicant(doc)
	if err != nil {
		s.observe(OpNormalize, time.Now(), err)
		return models.NormalizedApplicant{}, err
	}
	return s.Normalize(ctx, raw)
}

// SchoolProbability scores the applicant against one school by id.
func (s *Service) SchoolProbability(ctx context.Context, applicant models.ApplicantInput, schoolID string) (models.ProbabilityResult, error) {
	start := time.Now()

	key, _ := s.cache.Key(OpSchool, applicant, schoolID)
	var cached models.ProbabilityResult
	if key != "" && s.cache.Get(ctx, key, &cached) {
		s.observe(OpSchool, start, nil)
		return cached, nil
	}

	result, err := s.engine.CalculateSchoolProbabilityByID(applicant, schoolID)
	s.observe(OpSchool, start, err)
	if err != nil {
		return models.ProbabilityResult{}, err
	}

	s.recordResult(ctx, result)
	s.cache.Set(ctx, key, result)
	return result, nil
}

// AllSchoolProbabilities scores the applicant against every reference school
// in reference order.
func (s *Service) AllSchoolProbabilities(ctx context.Context, applicant models.ApplicantInput) ([]models.ProbabilityResult, error) {
	start := time.Now()

	key, _ := s.cache.Key(OpAllSchools, applicant, "")
	var cached []models.ProbabilityResult
	if key != "" && s.cache.Get(ctx, key, &cached) {
		s.observe(OpAllSchools, start, nil)
		return cached, nil
	}

	results, err := s.engine.CalculateAllSchoolProbabilities(applicant)
	s.observe(OpAllSchools, start, err)
	if err != nil {
		return nil, err
	}

	for _, r := range results {
		s.recordResult(ctx, r)
	}
	s.cache.Set(ctx, key, results)
	return results, nil
}

// QuickPrediction returns the aggregate quick prediction for the applicant.
func (s *Service) QuickPrediction(ctx context.Context, applicant models.ApplicantInput) (models.QuickPredictionResult, error) {
	start := time.Now()

	key, _ := s.cache.Key(OpQuickPrediction, applicant, "")
	var cached models.QuickPredictionResult
	if key != "" && s.cache.Get(ctx, key, &cached) {
		s.observe(OpQuickPrediction, start, nil)
		return cached, nil
	}

	result, err := s.engine.GenerateQuickPrediction(applicant)
	s.observe(OpQuickPrediction, start, err)
	if err != nil {
		return models.QuickPredictionResult{}, err
	}

	s.obs.RecordQuickScore(ctx, result.Tier, result.Score)
	s.logger.Info("quick prediction generated", map[string]interface{}{
		"score":               result.Score,
		"tier":                result.Tier,
		"globalProbability":   result.GlobalProbability,
		"expectedAcceptances": result.ExpectedAcceptances,
	})
	s.cache.Set(ctx, key, result)
	return result, nil
}

// Schools returns the reference school set in reference order.
func (s *Service) Schools() []models.SchoolRecord {
	return s.provider.GetAllSchools()
}

func (s *Service) recordResult(ctx context.Context, r models.ProbabilityResult) {
	metrics.PredictionCategoryTotal.WithLabelValues(string(r.Category)).Inc()
	s.obs.RecordProbability(ctx, r.SchoolID, string(r.Category), r.Probability)
}

func (s *Service) observe(operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = string(errors.CodeOf(err))
	}
	metrics.PredictionsTotal.WithLabelValues(operation, status).Inc()
	metrics.PredictionDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
