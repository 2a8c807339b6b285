// internal/models/prediction.go
package models

// Category buckets a point probability for an applicant at one school.
type Category string

const (
	CategoryReach  Category = "reach"
	CategoryTarget Category = "target"
	CategorySafety Category = "safety"
)

// FactorBreakdown holds the signed log-odds contributions behind a probability.
type FactorBreakdown struct {
	AcademicFit            float64 `json:"academicFit"`
	DemographicAdjustment  float64 `json:"demographicAdjustment"`
	GeographicAdjustment   float64 `json:"geographicAdjustment"`
	ExperientialAdjustment float64 `json:"experientialAdjustment"`
	RiskAdjustment         float64 `json:"riskAdjustment"`
	InstitutionAdjustment  float64 `json:"institutionAdjustment"`
	MissionAdjustment      float64 `json:"missionAdjustment"`
}

// Total sums every contribution.
func (f FactorBreakdown) Total() float64 {
	return f.AcademicFit +
		f.DemographicAdjustment +
		f.GeographicAdjustment +
		f.ExperientialAdjustment +
		f.RiskAdjustment +
		f.InstitutionAdjustment +
		f.MissionAdjustment
}

// FitDiagnostics describes how an applicant sits against a school's profile.
type FitDiagnostics struct {
	GPAPercentile    float64      `json:"gpaPercentile"`
	MCATPercentile   float64      `json:"mcatPercentile"`
	IsInState        bool         `json:"isInState"`
	MissionAlignment []MissionTag `json:"missionAlignment"`
}

// ProbabilityResult is the outcome of scoring one applicant against one school.
// ProbabilityLower <= Probability <= ProbabilityUpper always holds.
type ProbabilityResult struct {
	SchoolID         string          `json:"schoolId"`
	SchoolName       string          `json:"schoolName"`
	Probability      float64         `json:"probability"`
	ProbabilityLower float64         `json:"probabilityLower"`
	ProbabilityUpper float64         `json:"probabilityUpper"`
	Category         Category        `json:"category"`
	Factors          FactorBreakdown `json:"factors"`
	Fit              FitDiagnostics  `json:"fit"`
}

// QuickPredictionResult summarises an applicant across the whole reference set.
type QuickPredictionResult struct {
	Score               float64 `json:"score"`
	Tier                string  `json:"tier"`
	GlobalProbability   float64 `json:"globalProbability"`
	ExpectedAcceptances float64 `json:"expectedAcceptances"`
	SchoolCount         int     `json:"schoolCount"`
}
