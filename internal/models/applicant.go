// internal/models/applicant.go
package models

// RaceEthnicity is the self-reported race/ethnicity category of an applicant.
type RaceEthnicity string

const (
	RaceWhite                         RaceEthnicity = "white"
	RaceAsian                         RaceEthnicity = "asian"
	RaceBlack                         RaceEthnicity = "black"
	RaceHispanic                      RaceEthnicity = "hispanic"
	RaceAmericanIndianAlaskaNative    RaceEthnicity = "american_indian_alaska_native"
	RaceNativeHawaiianPacificIslander RaceEthnicity = "native_hawaiian_pacific_islander"
	RaceMultiracial                   RaceEthnicity = "multiracial"
	RaceOther                         RaceEthnicity = "other"
	RacePreferNotToSay                RaceEthnicity = "prefer_not_to_say"
)

// RaceEthnicityValues lists every accepted category in schema order.
var RaceEthnicityValues = []RaceEthnicity{
	RaceWhite,
	RaceAsian,
	RaceBlack,
	RaceHispanic,
	RaceAmericanIndianAlaskaNative,
	RaceNativeHawaiianPacificIslander,
	RaceMultiracial,
	RaceOther,
	RacePreferNotToSay,
}

// IsURM reports whether the category is underrepresented in medicine.
func (r RaceEthnicity) IsURM() bool {
	switch r {
	case RaceBlack, RaceHispanic, RaceAmericanIndianAlaskaNative, RaceNativeHawaiianPacificIslander:
		return true
	default:
		return false
	}
}

// IsValid reports whether r is one of the enumerated categories.
func (r RaceEthnicity) IsValid() bool {
	for _, v := range RaceEthnicityValues {
		if v == r {
			return true
		}
	}
	return false
}

// RawApplicant is an applicant as received from a job or HTTP request.
// Every field is optional; the normalizer fills defaults and rejects
// payloads missing required fields.
type RawApplicant struct {
	CumulativeGPA *float64 `json:"cumulativeGPA"`
	ScienceGPA    *float64 `json:"scienceGPA,omitempty"`

	MCATTotal *int `json:"mcatTotal"`
	MCATCPBS  *int `json:"mcatCPBS,omitempty"`
	MCATCARS  *int `json:"mcatCARS,omitempty"`
	MCATBBLS  *int `json:"mcatBBLS,omitempty"`
	MCATPSBB  *int `json:"mcatPSBB,omitempty"`

	StateOfResidence *string `json:"stateOfResidence"`
	RaceEthnicity    *string `json:"raceEthnicity,omitempty"`

	IsFirstGeneration       *bool `json:"isFirstGeneration,omitempty"`
	IsDisadvantaged         *bool `json:"isDisadvantaged,omitempty"`
	IsRuralBackground       *bool `json:"isRuralBackground,omitempty"`
	IsReapplicant           *bool `json:"isReapplicant,omitempty"`
	HasInstitutionalAction  *bool `json:"hasInstitutionalAction,omitempty"`
	HasCriminalHistory      *bool `json:"hasCriminalHistory,omitempty"`
	HasResearchPublications *bool `json:"hasResearchPublications,omitempty"`
	PrimaryCareInterest     *bool `json:"primaryCareInterest,omitempty"`

	ClinicalHoursTotal        *float64 `json:"clinicalHoursTotal,omitempty"`
	ClinicalHoursPaid         *float64 `json:"clinicalHoursPaid,omitempty"`
	ClinicalHoursVolunteer    *float64 `json:"clinicalHoursVolunteer,omitempty"`
	ResearchHoursTotal        *float64 `json:"researchHoursTotal,omitempty"`
	PublicationCount          *int     `json:"publicationCount,omitempty"`
	NonClinicalVolunteerHours *float64 `json:"nonClinicalVolunteerHours,omitempty"`
	ShadowingHours            *float64 `json:"shadowingHours,omitempty"`
	LeadershipExperiences     *int     `json:"leadershipExperiences,omitempty"`
	TeachingHours             *float64 `json:"teachingHours,omitempty"`

	ApplicationYear          *int    `json:"applicationYear,omitempty"`
	UndergraduateInstitution *string `json:"undergraduateInstitution,omitempty"`
}

// ApplicantInput is the canonical applicant consumed by the scoring engine.
// Hour and count fields are never negative.
type ApplicantInput struct {
	CumulativeGPA float64  `json:"cumulativeGPA"`
	ScienceGPA    *float64 `json:"scienceGPA,omitempty"`

	MCATTotal int  `json:"mcatTotal"`
	MCATCPBS  *int `json:"mcatCPBS,omitempty"`
	MCATCARS  *int `json:"mcatCARS,omitempty"`
	MCATBBLS  *int `json:"mcatBBLS,omitempty"`
	MCATPSBB  *int `json:"mcatPSBB,omitempty"`

	StateOfResidence string        `json:"stateOfResidence"`
	RaceEthnicity    RaceEthnicity `json:"raceEthnicity,omitempty"`

	IsFirstGeneration       bool `json:"isFirstGeneration"`
	IsDisadvantaged         bool `json:"isDisadvantaged"`
	IsRuralBackground       bool `json:"isRuralBackground"`
	IsReapplicant           bool `json:"isReapplicant"`
	HasInstitutionalAction  bool `json:"hasInstitutionalAction"`
	HasCriminalHistory      bool `json:"hasCriminalHistory"`
	HasResearchPublications bool `json:"hasResearchPublications"`
	PrimaryCareInterest     bool `json:"primaryCareInterest"`

	ClinicalHoursTotal        float64 `json:"clinicalHoursTotal"`
	ClinicalHoursPaid         float64 `json:"clinicalHoursPaid"`
	ClinicalHoursVolunteer    float64 `json:"clinicalHoursVolunteer"`
	ResearchHoursTotal        float64 `json:"researchHoursTotal"`
	PublicationCount          int     `json:"publicationCount"`
	NonClinicalVolunteerHours float64 `json:"nonClinicalVolunteerHours"`
	ShadowingHours            float64 `json:"shadowingHours"`
	LeadershipExperiences     int     `json:"leadershipExperiences"`
	TeachingHours             float64 `json:"teachingHours"`

	ApplicationYear          int    `json:"applicationYear,omitempty"`
	UndergraduateInstitution string `json:"undergraduateInstitution,omitempty"`
}

// NormalizationWarning records an inconsistency the normalizer resolved or
// left in place without failing the request.
type NormalizationWarning struct {
	Code    string `json:"code"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// NormalizedApplicant pairs the canonical applicant with any warnings raised
// while producing it.
type NormalizedApplicant struct {
	Applicant ApplicantInput         `json:"applicant"`
	Warnings  []NormalizationWarning `json:"warnings,omitempty"`
}
