// pkg/registry/schema.go
package registry

// SchoolRegistry is the on-disk reference dataset of medical school admission
// profiles.
type SchoolRegistry struct {
	Version     string        `json:"version"`
	LastUpdated string        `json:"lastUpdated"`
	Source      string        `json:"source,omitempty"`
	Schools     []SchoolEntry `json:"schools"`
}

type SchoolEntry struct {
	ID                string             `json:"id"`
	Name              string             `json:"name"`
	State             string             `json:"state"`
	IsPublic          bool               `json:"isPublic"`
	GPAMedian         float64            `json:"gpaMedian"`
	GPASpread         float64            `json:"gpaSpread"`
	MCATMedian        float64            `json:"mcatMedian"`
	MCATSpread        float64            `json:"mcatSpread"`
	AcceptanceRate    float64            `json:"acceptanceRate"`
	TotalApplicants   int                `json:"totalApplicants"`
	InStatePreference float64            `json:"inStatePreference"`
	Tier              int                `json:"tier,omitempty"`
	MissionTags       []string           `json:"missionTags,omitempty"`
	MissionBonuses    map[string]float64 `json:"missionBonuses,omitempty"`
}

// InstitutionTiers holds the ordered undergraduate institution name lists
// used for WARS-style tier lookup. Earlier lists take precedence.
type InstitutionTiers struct {
	Version string   `json:"version"`
	HYPSM   []string `json:"hypsm"`
	Elite   []string `json:"elite"`
}
