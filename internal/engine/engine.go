package engine

import (
	"sort"

	"medadmit-workers/internal/common/errors"
	"medadmit-workers/internal/models"
	"medadmit-workers/internal/reference"
)

// Engine scores applicants against a reference snapshot.
type Engine struct {
	provider reference.Provider
	tiers    *TierClassifier
	policy   Policy
}

// New builds an engine. A nil tier classifier treats every undergraduate
// institution as standard.
func New(provider reference.Provider, tiers *TierClassifier, policy Policy) *Engine {
	if policy.UncertaintyMargin < 0 {
		policy.UncertaintyMargin = 0
	}
	return &Engine{provider: provider, tiers: tiers, policy: policy}
}

// Policy returns the scoring constants in use.
func (e *Engine) Policy() Policy {
	return e.policy
}

// CalculateSchoolProbability scores one applicant against one school.
func (e *Engine) CalculateSchoolProbability(applicant models.ApplicantInput, school models.SchoolRecord) (models.ProbabilityResult, error) {
	c, err := e.compose(applicant, school)
	if err != nil {
		return models.ProbabilityResult{}, err
	}

	lo, err := e.logOdds(school, c.factors)
	if err != nil {
		return models.ProbabilityResult{}, err
	}
	lower, point, upper := e.bounds(lo)

	return models.ProbabilityResult{
		SchoolID:         school.ID,
		SchoolName:       school.Name,
		Probability:      point,
		ProbabilityLower: lower,
		ProbabilityUpper: upper,
		Category:         e.policy.Classify(point),
		Factors:          c.factors,
		Fit:              c.fit,
	}, nil
}

// CalculateSchoolProbabilityByID resolves schoolID through the provider.
// Unknown ids fail with SCHOOL_NOT_FOUND.
func (e *Engine) CalculateSchoolProbabilityByID(applicant models.ApplicantInput, schoolID string) (models.ProbabilityResult, error) {
	school, ok := e.provider.GetSchoolByID(schoolID)
	if !ok {
		return models.ProbabilityResult{}, errors.NewSchoolNotFoundError(schoolID)
	}
	return e.CalculateSchoolProbability(applicant, school)
}

// CalculateAllSchoolProbabilities returns one result per reference school in
// reference order.
func (e *Engine) CalculateAllSchoolProbabilities(applicant models.ApplicantInput) ([]models.ProbabilityResult, error) {
	schools := e.provider.GetAllSchools()
	results := make([]models.ProbabilityResult, 0, len(schools))
	for _, s := range schools {
		r, err := e.CalculateSchoolProbability(applicant, s)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, nil
}

// GenerateQuickPrediction scores the applicant against BaselineProfile and
// folds the full per-school run into aggregate statistics.
//
// expectedAcceptances sums every school's point probability.
// globalProbability is P(at least one acceptance) over the
// TypicalApplications schools with the most applicants.
func (e *Engine) GenerateQuickPrediction(applicant models.ApplicantInput) (models.QuickPredictionResult, error) {
	composite, err := e.composite(applicant)
	if err != nil {
		return models.QuickPredictionResult{}, err
	}
	score := e.policy.QuickScoreBase + e.policy.QuickScoreScale*composite

	schools := e.provider.GetAllSchools()
	probs := make([]float64, len(schools))
	var expected float64
	for i, s := range schools {
		r, err := e.CalculateSchoolProbability(applicant, s)
		if err != nil {
			return models.QuickPredictionResult{}, err
		}
		probs[i] = r.Probability
		expected += r.Probability
	}

	return models.QuickPredictionResult{
		Score:               score,
		Tier:                e.policy.QuickTier(score),
		GlobalProbability:   e.globalProbability(schools, probs),
		ExpectedAcceptances: expected,
		SchoolCount:         len(schools),
	}, nil
}

// composite is the school-independent strength used for the quick score.
// Geography and mission are school-specific and left out.
func (e *Engine) composite(applicant models.ApplicantInput) (float64, error) {
	c, err := e.compose(applicant, BaselineProfile)
	if err != nil {
		return 0, err
	}
	f := c.factors
	return f.AcademicFit +
		f.DemographicAdjustment +
		f.ExperientialAdjustment +
		f.RiskAdjustment +
		f.InstitutionAdjustment, nil
}

func (e *Engine) globalProbability(schools []models.SchoolRecord, probs []float64) float64 {
	if len(schools) == 0 {
		return 0
	}
	idx := make([]int, len(schools))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return schools[idx[a]].TotalApplicants > schools[idx[b]].TotalApplicants
	})

	n := e.policy.TypicalApplications
	if n <= 0 || n > len(idx) {
		n = len(idx)
	}
	none := 1.0
	for _, i := range idx[:n] {
		none *= 1 - probs[i]
	}
	return clamp(1-none, 0, 1)
}

// QuickTier returns the label of the first band whose minimum the score
// reaches.
func (p Policy) QuickTier(score float64) string {
	for _, band := range p.QuickBands {
		if score >= band.Min {
			return band.Label
		}
	}
	return LowestQuickTier
}
