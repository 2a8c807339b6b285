// Package engine implements the admission probability scorer: applicant
// normalization, percentile and institution tier lookup, factor composition,
// probability synthesis and aggregation across the reference school set.
//
// Every operation is a pure function of its inputs and the read-only
// reference snapshot, so an Engine is safe for concurrent use.
package engine

import (
	"medadmit-workers/internal/common/config"
	"medadmit-workers/internal/models"
)

// ExperienceCurve is one saturating term w·(1 − e^(−x/s)).
type ExperienceCurve struct {
	Weight float64
	Scale  float64
}

// ScoreBand maps a minimum quick score to a tier label. Bands are checked in
// order, so they must be sorted by Min descending.
type ScoreBand struct {
	Min   float64
	Label string
}

// Policy holds every tunable constant of the scorer.
//
// UncertaintyMargin widens the point estimate by a fixed amount in log-odds
// space. It is a policy knob, not a statistically derived interval.
type Policy struct {
	UncertaintyMargin float64
	MedianLift        float64
	AcceptanceFloor   float64
	AcceptanceCeiling float64

	ReachBelow float64
	TargetUpTo float64

	ZClip                float64
	GPAWeight            float64
	MCATWeight           float64
	CumulativeGPAShare   float64
	TierSlopes           map[int]float64
	DefaultSlope         float64
	TierAcceptanceCutoff [3]float64

	URMBonus           map[models.RaceEthnicity]float64
	FirstGenBonus      float64
	DisadvantagedBonus float64
	RuralBonus         float64
	DemographicCap     float64

	InStateWeight           float64
	OutOfStatePenalty       float64
	OutOfStatePreferenceMin float64

	Clinical           ExperienceCurve
	Research           ExperienceCurve
	Publications       ExperienceCurve
	Shadowing          ExperienceCurve
	Volunteering       ExperienceCurve
	Leadership         ExperienceCurve
	Teaching           ExperienceCurve
	ExperienceBaseline float64

	InstitutionalActionPenalty float64
	CriminalHistoryPenalty     float64

	HYPSMBonus float64
	EliteBonus float64

	ResearchMissionHours float64

	TypicalApplications int
	QuickScoreBase      float64
	QuickScoreScale     float64
	QuickBands          []ScoreBand
}

// DefaultPolicy returns the production scoring constants.
func DefaultPolicy() Policy {
	return Policy{
		UncertaintyMargin: 0.6,
		MedianLift:        1.0,
		AcceptanceFloor:   0.005,
		AcceptanceCeiling: 0.95,

		ReachBelow: 0.25,
		TargetUpTo: 0.65,

		ZClip:              3,
		GPAWeight:          0.4,
		MCATWeight:         0.6,
		CumulativeGPAShare: 0.6,
		TierSlopes:         map[int]float64{1: 1.2, 2: 1.0, 3: 0.8, 4: 0.6},
		DefaultSlope:       0.8,
		// acceptance rate cutoffs for tiers 1, 2 and 3; anything above is tier 4
		TierAcceptanceCutoff: [3]float64{0.05, 0.08, 0.15},

		URMBonus: map[models.RaceEthnicity]float64{
			models.RaceBlack:                         0.9,
			models.RaceHispanic:                      0.7,
			models.RaceAmericanIndianAlaskaNative:    0.9,
			models.RaceNativeHawaiianPacificIslander: 0.6,
		},
		FirstGenBonus:      0.15,
		DisadvantagedBonus: 0.22,
		RuralBonus:         0.20,
		DemographicCap:     1.2,

		InStateWeight:           1.6,
		OutOfStatePenalty:       0.8,
		OutOfStatePreferenceMin: 0.6,

		Clinical:           ExperienceCurve{Weight: 0.35, Scale: 800},
		Research:           ExperienceCurve{Weight: 0.25, Scale: 1000},
		Publications:       ExperienceCurve{Weight: 0.10, Scale: 2},
		Shadowing:          ExperienceCurve{Weight: 0.10, Scale: 50},
		Volunteering:       ExperienceCurve{Weight: 0.10, Scale: 200},
		Leadership:         ExperienceCurve{Weight: 0.10, Scale: 3},
		Teaching:           ExperienceCurve{Weight: 0.05, Scale: 150},
		ExperienceBaseline: 0.30,

		InstitutionalActionPenalty: -0.6,
		CriminalHistoryPenalty:     -0.9,

		HYPSMBonus: 0.25,
		EliteBonus: 0.12,

		ResearchMissionHours: 1000,

		TypicalApplications: 16,
		QuickScoreBase:      50,
		QuickScoreScale:     20,
		QuickBands: []ScoreBand{
			{Min: 80, Label: "exceptional"},
			{Min: 65, Label: "strong"},
			{Min: 50, Label: "competitive"},
			{Min: 35, Label: "developing"},
		},
	}
}

// PolicyFromConfig applies the model section of the application config on
// top of DefaultPolicy.
func PolicyFromConfig(cfg config.ModelConfig) Policy {
	p := DefaultPolicy()
	if cfg.UncertaintyMargin >= 0 {
		p.UncertaintyMargin = cfg.UncertaintyMargin
	}
	if cfg.TypicalApplications > 0 {
		p.TypicalApplications = cfg.TypicalApplications
	}
	return p
}

// LowestQuickTier is the label for scores below every band.
const LowestQuickTier = "low"

// BaselineProfile is the synthetic national-average school the quick score
// is computed against. It never appears in the reference set.
var BaselineProfile = models.SchoolRecord{
	ID:                "national-baseline",
	Name:              "National applicant baseline",
	GPAMedian:         3.75,
	GPASpread:         0.20,
	MCATMedian:        511,
	MCATSpread:        5.0,
	AcceptanceRate:    0.41,
	InStatePreference: 0,
	Tier:              3,
}
