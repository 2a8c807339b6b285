// internal/workers/admissions/generate-quick-prediction/models.go
package generatequickprediction

import "medadmit-workers/internal/models"

type Input struct {
	Applicant interface{} `json:"applicant"`
}

type Output struct {
	QuickPrediction       models.QuickPredictionResult  `json:"quickPrediction"`
	NormalizationWarnings []models.NormalizationWarning `json:"normalizationWarnings"`
}
