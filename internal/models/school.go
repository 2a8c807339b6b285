// internal/models/school.go
package models

// MissionTag marks an institutional mission emphasis.
type MissionTag string

const (
	MissionRuralServing MissionTag = "rural-serving"
	MissionResearch     MissionTag = "research-focused"
	MissionPrimaryCare  MissionTag = "primary-care-focused"
	MissionHBCU         MissionTag = "hbcu"
	MissionDiversity    MissionTag = "diversity-focused"
)

// MissionTags lists every known mission tag.
var MissionTags = []MissionTag{
	MissionRuralServing,
	MissionResearch,
	MissionPrimaryCare,
	MissionHBCU,
	MissionDiversity,
}

// IsKnown reports whether t is a recognised mission tag.
func (t MissionTag) IsKnown() bool {
	for _, m := range MissionTags {
		if m == t {
			return true
		}
	}
	return false
}

// SchoolRecord is the historical admission profile of one medical school.
// Records are read-only once loaded.
type SchoolRecord struct {
	ID                string                 `json:"id"`
	Name              string                 `json:"name"`
	State             string                 `json:"state"`
	IsPublic          bool                   `json:"isPublic"`
	GPAMedian         float64                `json:"gpaMedian"`
	GPASpread         float64                `json:"gpaSpread"`
	MCATMedian        float64                `json:"mcatMedian"`
	MCATSpread        float64                `json:"mcatSpread"`
	AcceptanceRate    float64                `json:"acceptanceRate"`
	TotalApplicants   int                    `json:"totalApplicants"`
	InStatePreference float64                `json:"inStatePreference"`
	Tier              int                    `json:"tier,omitempty"`
	MissionTags       []MissionTag           `json:"missionTags,omitempty"`
	MissionBonuses    map[MissionTag]float64 `json:"missionBonuses,omitempty"`
}

// Clone returns a deep copy so callers cannot mutate shared reference data.
func (s SchoolRecord) Clone() SchoolRecord {
	out := s
	if s.MissionTags != nil {
		out.MissionTags = append([]MissionTag(nil), s.MissionTags...)
	}
	if s.MissionBonuses != nil {
		out.MissionBonuses = make(map[MissionTag]float64, len(s.MissionBonuses))
		for k, v := range s.MissionBonuses {
			out.MissionBonuses[k] = v
		}
	}
	return out
}

// HasMission reports whether the school carries the given tag.
func (s SchoolRecord) HasMission(tag MissionTag) bool {
	for _, t := range s.MissionTags {
		if t == tag {
			return true
		}
	}
	return false
}
