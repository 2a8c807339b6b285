// internal/workers/admissions/normalize-applicant/models.go
package normalizeapplicant

import "medadmit-workers/internal/models"

type Input struct {
	Applicant interface{} `json:"applicant"`
}

type Output struct {
	Applicant             models.ApplicantInput         `json:"applicant"`
	NormalizationWarnings []models.NormalizationWarning `json:"normalizationWarnings"`
}
