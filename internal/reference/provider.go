// Package reference loads and serves the read-only school reference dataset.
package reference

import (
	"fmt"

	"medadmit-workers/internal/common/errors"
	"medadmit-workers/internal/models"
)

// Provider is the reference data contract consumed by the scoring engine.
// GetAllSchools returns schools in a stable order for the life of the process.
type Provider interface {
	GetSchoolByID(id string) (models.SchoolRecord, bool)
	GetAllSchools() []models.SchoolRecord
}

// StaticProvider is an immutable in-memory snapshot. Every accessor hands
// out deep copies.
type StaticProvider struct {
	schools []models.SchoolRecord
	index   map[string]int
	version string
}

// NewStaticProvider validates records and builds a snapshot. Degenerate
// distributions are rejected here so scoring never divides by zero.
func NewStaticProvider(version string, records []models.SchoolRecord) (*StaticProvider, error) {
	p := &StaticProvider{
		schools: make([]models.SchoolRecord, 0, len(records)),
		index:   make(map[string]int, len(records)),
		version: version,
	}

	for i, rec := range records {
		if err := validateRecord(rec); err != nil {
			return nil, errors.NewReferenceDataInvalidError(fmt.Sprintf("school %d (%s): %v", i, rec.ID, err))
		}
		if _, dup := p.index[rec.ID]; dup {
			return nil, errors.NewReferenceDataInvalidError(fmt.Sprintf("duplicate school id %q", rec.ID))
		}
		p.index[rec.ID] = len(p.schools)
		p.schools = append(p.schools, rec.Clone())
	}
	return p, nil
}

func validateRecord(rec models.SchoolRecord) error {
	switch {
	case rec.ID == "":
		return fmt.Errorf("id is required")
	case rec.Name == "":
		return fmt.Errorf("name is required")
	case !IsKnownState(rec.State):
		return fmt.Errorf("unknown state %q", rec.State)
	case rec.GPASpread <= 0:
		return fmt.Errorf("gpaSpread must be positive, got %v", rec.GPASpread)
	case rec.MCATSpread <= 0:
		return fmt.Errorf("mcatSpread must be positive, got %v", rec.MCATSpread)
	case rec.AcceptanceRate <= 0 || rec.AcceptanceRate >= 1:
		return fmt.Errorf("acceptanceRate must be in (0,1), got %v", rec.AcceptanceRate)
	case rec.InStatePreference < 0 || rec.InStatePreference > 1:
		return fmt.Errorf("inStatePreference must be in [0,1], got %v", rec.InStatePreference)
	case rec.Tier < 0 || rec.Tier > 4:
		return fmt.Errorf("tier must be in [0,4], got %d", rec.Tier)
	case rec.TotalApplicants < 0:
		return fmt.Errorf("totalApplicants must not be negative")
	}

	for _, tag := range rec.MissionTags {
		if !tag.IsKnown() {
			return fmt.Errorf("unknown mission tag %q", tag)
		}
	}
	for tag, bonus := range rec.MissionBonuses {
		if !rec.HasMission(tag) {
			return fmt.Errorf("mission bonus for %q without matching tag", tag)
		}
		if bonus < 0 {
			return fmt.Errorf("mission bonus for %q must not be negative", tag)
		}
	}
	return nil
}

func (p *StaticProvider) GetSchoolByID(id string) (models.SchoolRecord, bool) {
	i, ok := p.index[id]
	if !ok {
		return models.SchoolRecord{}, false
	}
	return p.schools[i].Clone(), true
}

func (p *StaticProvider) GetAllSchools() []models.SchoolRecord {
	out := make([]models.SchoolRecord, len(p.schools))
	for i, s := range p.schools {
		out[i] = s.Clone()
	}
	return out
}

// Len returns the number of schools in the snapshot.
func (p *StaticProvider) Len() int {
	return len(p.schools)
}

// Version returns the dataset version the snapshot was built from.
func (p *StaticProvider) Version() string {
	return p.version
}
