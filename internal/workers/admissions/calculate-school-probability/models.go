// internal/workers/admissions/calculate-school-probability/models.go
package calculateschoolprobability

import "medadmit-workers/internal/models"

type Input struct {
	Applicant interface{} `json:"applicant"`
	SchoolID  string      `json:"schoolId"`
}

type Output struct {
	ProbabilityResult     models.ProbabilityResult      `json:"probabilityResult"`
	Category              models.Category               `json:"category"`
	NormalizationWarnings []models.NormalizationWarning `json:"normalizationWarnings"`
}
