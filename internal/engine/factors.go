package engine

import (
	"math"
	"strings"

	"medadmit-workers/internal/models"
)

// composition is the per-school factor breakdown plus fit diagnostics.
type composition struct {
	factors models.FactorBreakdown
	fit     models.FitDiagnostics
}

func (e *Engine) compose(a models.ApplicantInput, s models.SchoolRecord) (composition, error) {
	gpa := e.blendedGPA(a)
	zGPA, err := zScore(gpa, s.GPAMedian, s.GPASpread)
	if err != nil {
		return composition{}, err
	}
	zMCAT, err := zScore(float64(a.MCATTotal), s.MCATMedian, s.MCATSpread)
	if err != nil {
		return composition{}, err
	}

	inState := isInState(a, s)
	alignment := e.missionAlignment(a, s)

	c := composition{
		factors: models.FactorBreakdown{
			AcademicFit:            e.academicFit(zGPA, zMCAT, s),
			DemographicAdjustment:  e.demographicAdjustment(a),
			GeographicAdjustment:   e.geographicAdjustment(inState, s),
			ExperientialAdjustment: e.experientialAdjustment(a),
			RiskAdjustment:         e.riskAdjustment(a),
			InstitutionAdjustment:  e.institutionAdjustment(a),
			MissionAdjustment:      missionAdjustment(alignment, s),
		},
		fit: models.FitDiagnostics{
			GPAPercentile:    clamp(100*normalCDF(zGPA), 0, 100),
			MCATPercentile:   clamp(100*normalCDF(zMCAT), 0, 100),
			IsInState:        inState,
			MissionAlignment: alignment,
		},
	}
	return c, nil
}

// blendedGPA weights cumulative and science GPA when both are known.
func (e *Engine) blendedGPA(a models.ApplicantInput) float64 {
	if a.ScienceGPA == nil {
		return a.CumulativeGPA
	}
	w := e.policy.CumulativeGPAShare
	return w*a.CumulativeGPA + (1-w)*(*a.ScienceGPA)
}

func (e *Engine) academicFit(zGPA, zMCAT float64, s models.SchoolRecord) float64 {
	p := e.policy
	zGPA = clamp(zGPA, -p.ZClip, p.ZClip)
	zMCAT = clamp(zMCAT, -p.ZClip, p.ZClip)
	return e.selectivitySlope(s) * (p.GPAWeight*zGPA + p.MCATWeight*zMCAT)
}

// selectivitySlope steepens academic fit at more selective schools.
func (e *Engine) selectivitySlope(s models.SchoolRecord) float64 {
	tier := s.Tier
	if tier == 0 {
		tier = e.deriveTier(s.AcceptanceRate)
	}
	if slope, ok := e.policy.TierSlopes[tier]; ok {
		return slope
	}
	return e.policy.DefaultSlope
}

func (e *Engine) deriveTier(acceptanceRate float64) int {
	for i, cutoff := range e.policy.TierAcceptanceCutoff {
		if acceptanceRate < cutoff {
			return i + 1
		}
	}
	return len(e.policy.TierAcceptanceCutoff) + 1
}

func (e *Engine) demographicAdjustment(a models.ApplicantInput) float64 {
	p := e.policy
	total := p.URMBonus[a.RaceEthnicity]
	if a.IsFirstGeneration {
		total += p.FirstGenBonus
	}
	if a.IsDisadvantaged {
		total += p.DisadvantagedBonus
	}
	if a.IsRuralBackground {
		total += p.RuralBonus
	}
	return math.Min(total, p.DemographicCap)
}

func isInState(a models.ApplicantInput, s models.SchoolRecord) bool {
	return a.StateOfResidence != "" && strings.EqualFold(a.StateOfResidence, s.State)
}

func (e *Engine) geographicAdjustment(inState bool, s models.SchoolRecord) float64 {
	p := e.policy
	switch {
	case inState && s.InStatePreference > 0:
		return p.InStateWeight * s.InStatePreference
	case !inState && s.IsPublic && s.InStatePreference >= p.OutOfStatePreferenceMin:
		return -p.OutOfStatePenalty * s.InStatePreference
	default:
		return 0
	}
}

func saturate(c ExperienceCurve, x float64) float64 {
	if x <= 0 || c.Scale <= 0 {
		return 0
	}
	return c.Weight * (1 - math.Exp(-x/c.Scale))
}

// experientialAdjustment is concave in every input and bounded above by the
// sum of curve weights less the baseline.
func (e *Engine) experientialAdjustment(a models.ApplicantInput) float64 {
	p := e.policy
	total := saturate(p.Clinical, a.ClinicalHoursTotal) +
		saturate(p.Research, a.ResearchHoursTotal) +
		saturate(p.Publications, float64(a.PublicationCount)) +
		saturate(p.Shadowing, a.ShadowingHours) +
		saturate(p.Volunteering, a.NonClinicalVolunteerHours) +
		saturate(p.Leadership, float64(a.LeadershipExperiences)) +
		saturate(p.Teaching, a.TeachingHours)
	return total - p.ExperienceBaseline
}

func (e *Engine) riskAdjustment(a models.ApplicantInput) float64 {
	var total float64
	if a.HasInstitutionalAction {
		total += e.policy.InstitutionalActionPenalty
	}
	if a.HasCriminalHistory {
		total += e.policy.CriminalHistoryPenalty
	}
	return total
}

func (e *Engine) institutionAdjustment(a models.ApplicantInput) float64 {
	switch e.tiers.Classify(a.UndergraduateInstitution) {
	case TierHYPSM:
		return e.policy.HYPSMBonus
	case TierElite:
		return e.policy.EliteBonus
	default:
		return 0
	}
}

// missionAlignment lists the school's tags the applicant satisfies, in the
// school's tag order.
func (e *Engine) missionAlignment(a models.ApplicantInput, s models.SchoolRecord) []models.MissionTag {
	matched := []models.MissionTag{}
	for _, tag := range s.MissionTags {
		if e.satisfies(a, tag) {
			matched = append(matched, tag)
		}
	}
	return matched
}

func (e *Engine) satisfies(a models.ApplicantInput, tag models.MissionTag) bool {
	switch tag {
	case models.MissionRuralServing:
		return a.IsRuralBackground
	case models.MissionResearch:
		return a.ResearchHoursTotal >= e.policy.ResearchMissionHours || a.PublicationCount >= 1
	case models.MissionPrimaryCare:
		return a.PrimaryCareInterest
	case models.MissionHBCU:
		return a.RaceEthnicity == models.RaceBlack
	case models.MissionDiversity:
		return a.RaceEthnicity.IsURM()
	default:
		return false
	}
}

func missionAdjustment(alignment []models.MissionTag, s models.SchoolRecord) float64 {
	var total float64
	for _, tag := range alignment {
		total += s.MissionBonuses[tag]
	}
	return total
}
