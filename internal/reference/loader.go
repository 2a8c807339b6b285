package reference

import (
	_ "embed"
	"fmt"

	"medadmit-workers/internal/models"
	"medadmit-workers/pkg/registry"
)

//go:embed data/schools.json
var embeddedSchools []byte

//go:embed data/institutions.json
var embeddedInstitutions []byte

// LoadEmbedded builds a provider from the dataset compiled into the binary.
func LoadEmbedded() (*StaticProvider, error) {
	reg, err := registry.ParseRegistry(embeddedSchools)
	if err != nil {
		return nil, err
	}
	return FromRegistry(reg)
}

// LoadFile builds a provider from a registry JSON file on disk.
func LoadFile(path string) (*StaticProvider, error) {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("load school registry %s: %w", path, err)
	}
	return FromRegistry(reg)
}

// FromRegistry converts and validates registry entries.
func FromRegistry(reg *registry.SchoolRegistry) (*StaticProvider, error) {
	records := make([]models.SchoolRecord, 0, len(reg.Schools))
	for _, e := range reg.Schools {
		records = append(records, RecordFromEntry(e))
	}
	return NewStaticProvider(reg.Version, records)
}

// RecordFromEntry maps a registry entry onto the engine's school record.
func RecordFromEntry(e registry.SchoolEntry) models.SchoolRecord {
	rec := models.SchoolRecord{
		ID:                e.ID,
		Name:              e.Name,
		State:             e.State,
		IsPublic:          e.IsPublic,
		GPAMedian:         e.GPAMedian,
		GPASpread:         e.GPASpread,
		MCATMedian:        e.MCATMedian,
		MCATSpread:        e.MCATSpread,
		AcceptanceRate:    e.AcceptanceRate,
		TotalApplicants:   e.TotalApplicants,
		InStatePreference: e.InStatePreference,
		Tier:              e.Tier,
	}
	for _, tag := range e.MissionTags {
		rec.MissionTags = append(rec.MissionTags, models.MissionTag(tag))
	}
	if len(e.MissionBonuses) > 0 {
		rec.MissionBonuses = make(map[models.MissionTag]float64, len(e.MissionBonuses))
		for tag, bonus := range e.MissionBonuses {
			rec.MissionBonuses[models.MissionTag(tag)] = bonus
		}
	}
	return rec
}

// EntryFromRecord is the inverse of RecordFromEntry.
func EntryFromRecord(rec models.SchoolRecord) registry.SchoolEntry {
	e := registry.SchoolEntry{
		ID:                rec.ID,
		Name:              rec.Name,
		State:             rec.State,
		IsPublic:          rec.IsPublic,
		GPAMedian:         rec.GPAMedian,
		GPASpread:         rec.GPASpread,
		MCATMedian:        rec.MCATMedian,
		MCATSpread:        rec.MCATSpread,
		AcceptanceRate:    rec.AcceptanceRate,
		TotalApplicants:   rec.TotalApplicants,
		InStatePreference: rec.InStatePreference,
		Tier:              rec.Tier,
	}
	for _, tag := range rec.MissionTags {
		e.MissionTags = append(e.MissionTags, string(tag))
	}
	if len(rec.MissionBonuses) > 0 {
		e.MissionBonuses = make(map[string]float64, len(rec.MissionBonuses))
		for tag, bonus := range rec.MissionBonuses {
			e.MissionBonuses[string(tag)] = bonus
		}
	}
	return e
}

// LoadInstitutionTiers returns the institution name lists from path, or the
// embedded lists when path is empty.
func LoadInstitutionTiers(path string) (*registry.InstitutionTiers, error) {
	if path == "" {
		return registry.ParseInstitutionTiers(embeddedInstitutions)
	}
	tiers, err := registry.LoadInstitutionTiers(path)
	if err != nil {
		return nil, fmt.Errorf("load institution tiers %s: %w", path, err)
	}
	return tiers, nil
}
