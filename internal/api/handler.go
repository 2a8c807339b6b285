// internal/api/handler.go
package api

import (
	"io"
	"net/http"

	"medadmit-workers/internal/admissions"
	"medadmit-workers/internal/common/errors"
	"medadmit-workers/internal/common/logger"
	"medadmit-workers/internal/models"

	"github.com/gin-gonic/gin"
)

const maxBodyBytes = 64 << 10

// Handler serves the prediction endpoints.
type Handler struct {
	service *admissions.Service
	logger  logger.Logger
}

func NewHandler(service *admissions.Service, log logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  log.WithFields(map[string]interface{}{"component": "api"}),
	}
}

type errorResponse struct {
	Success bool     `json:"success"`
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

type quickPredictionResponse struct {
	Success             bool    `json:"success"`
	Score               float64 `json:"score"`
	Tier                string  `json:"tier"`
	GlobalProbability   float64 `json:"globalProbability"`
	ExpectedAcceptances float64 `json:"expectedAcceptances"`
}

type schoolProbabilityResponse struct {
	Success  bool                          `json:"success"`
	Result   models.ProbabilityResult      `json:"result"`
	Warnings []models.NormalizationWarning `json:"warnings,omitempty"`
}

type allSchoolsResponse struct {
	Success  bool                          `json:"success"`
	Results  []models.ProbabilityResult    `json:"results"`
	Warnings []models.NormalizationWarning `json:"warnings,omitempty"`
}

type schoolSummary struct {
	ID             string              `json:"id"`
	Name           string              `json:"name"`
	State          string              `json:"state"`
	IsPublic       bool                `json:"isPublic"`
	AcceptanceRate float64             `json:"acceptanceRate"`
	MissionTags    []models.MissionTag `json:"missionTags,omitempty"`
}

// Predict handles POST /api/predict.
func (h *Handler) Predict(c *gin.Context) {
	normalized, ok := h.bindApplicant(c)
	if !ok {
		return
	}

	result, err := h.service.QuickPrediction(c.Request.Context(), normalized.Applicant)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, quickPredictionResponse{
		Success:             true,
		Score:               result.Score,
		Tier:                result.Tier,
		GlobalProbability:   result.GlobalProbability,
		ExpectedAcceptances: result.ExpectedAcceptances,
	})
}

// SchoolProbability handles POST /api/schools/:id/probability.
func (h *Handler) SchoolProbability(c *gin.Context) {
	normalized, ok := h.bindApplicant(c)
	if !ok {
		return
	}

	result, err := h.service.SchoolProbability(c.Request.Context(), normalized.Applicant, c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, schoolProbabilityResponse{
		Success:  true,
		Result:   result,
		Warnings: normalized.Warnings,
	})
}

// AllSchoolProbabilities handles POST /api/schools/probabilities.
func (h *Handler) AllSchoolProbabilities(c *gin.Context) {
	normalized, ok := h.bindApplicant(c)
	if !ok {
		return
	}

	results, err := h.service.AllSchoolProbabilities(c.Request.Context(), normalized.Applicant)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, allSchoolsResponse{
		Success:  true,
		Results:  results,
		Warnings: normalized.Warnings,
	})
}

// ListSchools handles GET /api/schools.
func (h *Handler) ListSchools(c *gin.Context) {
	schools := h.service.Schools()
	out := make([]schoolSummary, 0, len(schools))
	for _, s := range schools {
		out = append(out, schoolSummary{
			ID:             s.ID,
			Name:           s.Name,
			State:          s.State,
			IsPublic:       s.IsPublic,
			AcceptanceRate: s.AcceptanceRate,
			MissionTags:    s.MissionTags,
		})
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "schools": out})
}

func (h *Handler) bindApplicant(c *gin.Context) (models.NormalizedApplicant, bool) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		h.writeError(c, errors.NewParseError(err))
		return models.NormalizedApplicant{}, false
	}

	raw, err := admissions.DecodeApplicantJSON(body)
	if err != nil {
		h.writeError(c, err)
		return models.NormalizedApplicant{}, false
	}

	normalized, err := h.service.Normalize(c.Request.Context(), raw)
	if err != nil {
		h.writeError(c, err)
		return models.NormalizedApplicant{}, false
	}
	return normalized, true
}

func (h *Handler) writeError(c *gin.Context, err error) {
	stdErr := errors.Normalize(err)

	switch stdErr.Code {
	case errors.ErrCodeValidationFailed, errors.ErrCodeParseError:
		details, _ := stdErr.Metadata["issues"].([]string)
		if len(details) == 0 && stdErr.Details != "" {
			details = []string{stdErr.Details}
		}
		c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid applicant", Details: details})

	case errors.ErrCodeSchoolNotFound:
		c.JSON(http.StatusNotFound, errorResponse{Error: stdErr.Message, Details: []string{stdErr.Details}})

	default:
		h.logger.Error("prediction request failed", map[string]interface{}{
			"requestId": c.GetString("requestId"),
			"errorCode": string(stdErr.Code),
			"details":   stdErr.Details,
		})
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "Internal server error"})
	}
}
