package engine

import (
	"fmt"
	"math"
	"strings"

	"medadmit-workers/internal/common/errors"
	"medadmit-workers/internal/models"
	"medadmit-workers/internal/reference"
)

// Warning codes raised by Normalize.
const (
	WarnMCATSectionOutOfRange     = "MCAT_SECTION_OUT_OF_RANGE"
	WarnMCATSectionMismatch       = "MCAT_SECTION_MISMATCH"
	WarnNegativeCount             = "NEGATIVE_COUNT"
	WarnClinicalHoursInconsistent = "CLINICAL_HOURS_INCONSISTENT"
	WarnPublicationFlagMismatch   = "PUBLICATION_FLAG_MISMATCH"
	WarnUnknownState              = "UNKNOWN_STATE"
)

const (
	minGPA         = 0.0
	maxGPA         = 4.0
	minMCATTotal   = 472
	maxMCATTotal   = 528
	minMCATSection = 118
	maxMCATSection = 132
)

// Normalize turns a raw applicant into the canonical record. Optional fields
// default to zero values. Missing or out-of-bound required fields fail with
// VALIDATION_FAILED; inconsistencies in optional fields are resolved
// conservatively or left in place, and always reported as warnings.
func Normalize(raw models.RawApplicant) (models.NormalizedApplicant, error) {
	n := &normalizer{}
	a := models.ApplicantInput{}

	n.required(raw, &a)
	if len(n.issues) > 0 {
		return models.NormalizedApplicant{}, errors.NewValidationFailedError(
			strings.Join(n.issues, "; "), n.issues...,
		)
	}

	a.MCATCPBS = n.section("mcatCPBS", raw.MCATCPBS)
	a.MCATCARS = n.section("mcatCARS", raw.MCATCARS)
	a.MCATBBLS = n.section("mcatBBLS", raw.MCATBBLS)
	a.MCATPSBB = n.section("mcatPSBB", raw.MCATPSBB)
	if a.MCATCPBS != nil && a.MCATCARS != nil && a.MCATBBLS != nil && a.MCATPSBB != nil {
		sum := *a.MCATCPBS + *a.MCATCARS + *a.MCATBBLS + *a.MCATPSBB
		if sum != a.MCATTotal {
			n.warn(WarnMCATSectionMismatch, "mcatTotal",
				fmt.Sprintf("section scores sum to %d but total is %d; total kept", sum, a.MCATTotal))
		}
	}

	a.IsFirstGeneration = boolOr(raw.IsFirstGeneration)
	a.IsDisadvantaged = boolOr(raw.IsDisadvantaged)
	a.IsRuralBackground = boolOr(raw.IsRuralBackground)
	a.IsReapplicant = boolOr(raw.IsReapplicant)
	a.HasInstitutionalAction = boolOr(raw.HasInstitutionalAction)
	a.HasCriminalHistory = boolOr(raw.HasCriminalHistory)
	a.HasResearchPublications = boolOr(raw.HasResearchPublications)
	a.PrimaryCareInterest = boolOr(raw.PrimaryCareInterest)

	a.ClinicalHoursTotal = n.hours("clinicalHoursTotal", raw.ClinicalHoursTotal)
	a.ClinicalHoursPaid = n.hours("clinicalHoursPaid", raw.ClinicalHoursPaid)
	a.ClinicalHoursVolunteer = n.hours("clinicalHoursVolunteer", raw.ClinicalHoursVolunteer)
	a.ResearchHoursTotal = n.hours("researchHoursTotal", raw.ResearchHoursTotal)
	a.PublicationCount = n.count("publicationCount", raw.PublicationCount)
	a.NonClinicalVolunteerHours = n.hours("nonClinicalVolunteerHours", raw.NonClinicalVolunteerHours)
	a.ShadowingHours = n.hours("shadowingHours", raw.ShadowingHours)
	a.LeadershipExperiences = n.count("leadershipExperiences", raw.LeadershipExperiences)
	a.TeachingHours = n.hours("teachingHours", raw.TeachingHours)

	if parts := a.ClinicalHoursPaid + a.ClinicalHoursVolunteer; a.ClinicalHoursTotal < parts {
		n.warn(WarnClinicalHoursInconsistent, "clinicalHoursTotal",
			fmt.Sprintf("total %.0f is below paid + volunteer %.0f; raised to the sum", a.ClinicalHoursTotal, parts))
		a.ClinicalHoursTotal = parts
	}

	switch {
	case !a.HasResearchPublications && a.PublicationCount > 0:
		n.warn(WarnPublicationFlagMismatch, "hasResearchPublications",
			fmt.Sprintf("publication flag is false but publicationCount is %d", a.PublicationCount))
	case a.HasResearchPublications && a.PublicationCount == 0:
		n.warn(WarnPublicationFlagMismatch, "publicationCount",
			"publication flag is true but publicationCount is 0")
	}

	if raw.ApplicationYear != nil {
		a.ApplicationYear = *raw.ApplicationYear
	}
	if raw.UndergraduateInstitution != nil {
		a.UndergraduateInstitution = strings.TrimSpace(*raw.UndergraduateInstitution)
	}

	return models.NormalizedApplicant{Applicant: a, Warnings: n.warnings}, nil
}

type normalizer struct {
	issues   []string
	warnings []models.NormalizationWarning
}

func (n *normalizer) fail(format string, args ...interface{}) {
	n.issues = append(n.issues, fmt.Sprintf(format, args...))
}

func (n *normalizer) warn(code, field, msg string) {
	n.warnings = append(n.warnings, models.NormalizationWarning{Code: code, Field: field, Message: msg})
}

func (n *normalizer) required(raw models.RawApplicant, a *models.ApplicantInput) {
	switch {
	case raw.CumulativeGPA == nil:
		n.fail("cumulativeGPA is required")
	case !inRange(*raw.CumulativeGPA, minGPA, maxGPA):
		n.fail("cumulativeGPA must be between %.1f and %.1f, got %v", minGPA, maxGPA, *raw.CumulativeGPA)
	default:
		a.CumulativeGPA = *raw.CumulativeGPA
	}

	if raw.ScienceGPA != nil {
		if !inRange(*raw.ScienceGPA, minGPA, maxGPA) {
			n.fail("scienceGPA must be between %.1f and %.1f, got %v", minGPA, maxGPA, *raw.ScienceGPA)
		} else {
			v := *raw.ScienceGPA
			a.ScienceGPA = &v
		}
	}

	switch {
	case raw.MCATTotal == nil:
		n.fail("mcatTotal is required")
	case *raw.MCATTotal < minMCATTotal || *raw.MCATTotal > maxMCATTotal:
		n.fail("mcatTotal must be between %d and %d, got %d", minMCATTotal, maxMCATTotal, *raw.MCATTotal)
	default:
		a.MCATTotal = *raw.MCATTotal
	}

	state := ""
	if raw.StateOfResidence != nil {
		state = strings.ToUpper(strings.TrimSpace(*raw.StateOfResidence))
	}
	switch {
	case state == "":
		n.fail("stateOfResidence is required")
	case len(state) != 2:
		n.fail("stateOfResidence must be a 2-letter code, got %q", state)
	default:
		a.StateOfResidence = state
		if !reference.IsKnownState(state) {
			n.warn(WarnUnknownState, "stateOfResidence",
				fmt.Sprintf("%s is not a known residency code; treated as out of state everywhere", state))
		}
	}

	if raw.RaceEthnicity != nil {
		race := models.RaceEthnicity(strings.ToLower(strings.TrimSpace(*raw.RaceEthnicity)))
		switch {
		case race == "":
		case !race.IsValid():
			n.fail("raceEthnicity %q is not a recognised category", *raw.RaceEthnicity)
		default:
			a.RaceEthnicity = race
		}
	}
}

func (n *normalizer) section(field string, v *int) *int {
	if v == nil {
		return nil
	}
	s := *v
	if s < minMCATSection || s > maxMCATSection {
		clamped := s
		if clamped < minMCATSection {
			clamped = minMCATSection
		} else {
			clamped = maxMCATSection
		}
		n.warn(WarnMCATSectionOutOfRange, field,
			fmt.Sprintf("section score %d outside [%d,%d]; clamped to %d", s, minMCATSection, maxMCATSection, clamped))
		s = clamped
	}
	return &s
}

func (n *normalizer) hours(field string, v *float64) float64 {
	if v == nil || math.IsNaN(*v) {
		return 0
	}
	if *v < 0 {
		n.warn(WarnNegativeCount, field, fmt.Sprintf("negative value %v clamped to 0", *v))
		return 0
	}
	return *v
}

func (n *normalizer) count(field string, v *int) int {
	if v == nil {
		return 0
	}
	if *v < 0 {
		n.warn(WarnNegativeCount, field, fmt.Sprintf("negative value %d clamped to 0", *v))
		return 0
	}
	return *v
}

func boolOr(v *bool) bool {
	return v != nil && *v
}

func inRange(v, lo, hi float64) bool {
	return !math.IsNaN(v) && v >= lo && v <= hi
}
