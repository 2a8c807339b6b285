// internal/workers/admissions/calculate-all-school-probabilities/models.go
package calculateallschoolprobabilities

import "medadmit-workers/internal/models"

type Input struct {
	Applicant interface{} `json:"applicant"`
}

type Output struct {
	SchoolProbabilities   []models.ProbabilityResult    `json:"schoolProbabilities"`
	SchoolCount           int                           `json:"schoolCount"`
	CategoryCounts        map[models.Category]int       `json:"categoryCounts"`
	NormalizationWarnings []models.NormalizationWarning `json:"normalizationWarnings"`
}
