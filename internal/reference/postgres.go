package reference

import (
	"context"
	"encoding/json"
	"fmt"

	"medadmit-workers/internal/common/errors"
	"medadmit-workers/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// SchemaSQL creates the table LoadFromPostgres reads.
const SchemaSQL = `
CREATE TABLE IF NOT EXISTS medical_schools (
    id                  TEXT PRIMARY KEY,
    name                TEXT NOT NULL,
    state               CHAR(2) NOT NULL,
    is_public           BOOLEAN NOT NULL DEFAULT FALSE,
    gpa_median          DOUBLE PRECISION NOT NULL,
    gpa_spread          DOUBLE PRECISION NOT NULL CHECK (gpa_spread > 0),
    mcat_median         DOUBLE PRECISION NOT NULL,
    mcat_spread         DOUBLE PRECISION NOT NULL CHECK (mcat_spread > 0),
    acceptance_rate     DOUBLE PRECISION NOT NULL,
    total_applicants    INTEGER NOT NULL DEFAULT 0,
    in_state_preference DOUBLE PRECISION NOT NULL DEFAULT 0,
    tier                SMALLINT NOT NULL DEFAULT 0,
    mission_tags        TEXT[] NOT NULL DEFAULT '{}',
    mission_bonuses     JSONB,
    sort_order          INTEGER NOT NULL DEFAULT 0,
    dataset_version     TEXT NOT NULL DEFAULT ''
)`

const selectSchoolsSQL = `
SELECT id, name, state, is_public, gpa_median, gpa_spread, mcat_median, mcat_spread,
       acceptance_rate, total_applicants, in_state_preference, tier,
       mission_tags, mission_bonuses, dataset_version
FROM medical_schools
ORDER BY sort_order, id`

const upsertSchoolSQL = `
INSERT INTO medical_schools (
    id, name, state, is_public, gpa_median, gpa_spread, mcat_median, mcat_spread,
    acceptance_rate, total_applicants, in_state_preference, tier,
    mission_tags, mission_bonuses, sort_order, dataset_version
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
ON CONFLICT (id) DO UPDATE SET
    name = EXCLUDED.name,
    state = EXCLUDED.state,
    is_public = EXCLUDED.is_public,
    gpa_median = EXCLUDED.gpa_median,
    gpa_spread = EXCLUDED.gpa_spread,
    mcat_median = EXCLUDED.mcat_median,
    mcat_spread = EXCLUDED.mcat_spread,
    acceptance_rate = EXCLUDED.acceptance_rate,
    total_applicants = EXCLUDED.total_applicants,
    in_state_preference = EXCLUDED.in_state_preference,
    tier = EXCLUDED.tier,
    mission_tags = EXCLUDED.mission_tags,
    mission_bonuses = EXCLUDED.mission_bonuses,
    sort_order = EXCLUDED.sort_order,
    dataset_version = EXCLUDED.dataset_version`

type schoolRow struct {
	ID                string         `db:"id"`
	Name              string         `db:"name"`
	State             string         `db:"state"`
	IsPublic          bool           `db:"is_public"`
	GPAMedian         float64        `db:"gpa_median"`
	GPASpread         float64        `db:"gpa_spread"`
	MCATMedian        float64        `db:"mcat_median"`
	MCATSpread        float64        `db:"mcat_spread"`
	AcceptanceRate    float64        `db:"acceptance_rate"`
	TotalApplicants   int            `db:"total_applicants"`
	InStatePreference float64        `db:"in_state_preference"`
	Tier              int            `db:"tier"`
	MissionTags       pq.StringArray `db:"mission_tags"`
	MissionBonuses    []byte         `db:"mission_bonuses"`
	DatasetVersion    string         `db:"dataset_version"`
}

func (r schoolRow) toRecord() (models.SchoolRecord, error) {
	rec := models.SchoolRecord{
		ID:                r.ID,
		Name:              r.Name,
		State:             r.State,
		IsPublic:          r.IsPublic,
		GPAMedian:         r.GPAMedian,
		GPASpread:         r.GPASpread,
		MCATMedian:        r.MCATMedian,
		MCATSpread:        r.MCATSpread,
		AcceptanceRate:    r.AcceptanceRate,
		TotalApplicants:   r.TotalApplicants,
		InStatePreference: r.InStatePreference,
		Tier:              r.Tier,
	}
	for _, tag := range r.MissionTags {
		rec.MissionTags = append(rec.MissionTags, models.MissionTag(tag))
	}
	if len(r.MissionBonuses) > 0 {
		if err := json.Unmarshal(r.MissionBonuses, &rec.MissionBonuses); err != nil {
			return rec, fmt.Errorf("decode mission_bonuses for %s: %w", r.ID, err)
		}
	}
	return rec, nil
}

// LoadFromPostgres reads the full school table once and snapshots it.
func LoadFromPostgres(ctx context.Context, db *sqlx.DB) (*StaticProvider, error) {
	var rows []schoolRow
	if err := db.SelectContext(ctx, &rows, selectSchoolsSQL); err != nil {
		return nil, errors.NewQueryExecutionFailedError("select medical_schools", err)
	}

	version := ""
	records := make([]models.SchoolRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := row.toRecord()
		if err != nil {
			return nil, errors.NewReferenceDataInvalidError(err.Error())
		}
		if version == "" {
			version = row.DatasetVersion
		}
		records = append(records, rec)
	}
	return NewStaticProvider(version, records)
}

// UpsertSchools writes records in one transaction, preserving their order
// through sort_order.
func UpsertSchools(ctx context.Context, db *sqlx.DB, version string, records []models.SchoolRecord) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.NewDatabaseConnectionFailedError(err)
	}

	for i, rec := range records {
		var bonuses []byte
		if len(rec.MissionBonuses) > 0 {
			if bonuses, err = json.Marshal(rec.MissionBonuses); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("encode mission bonuses for %s: %w", rec.ID, err)
			}
		}
		tags := make([]string, 0, len(rec.MissionTags))
		for _, tag := range rec.MissionTags {
			tags = append(tags, string(tag))
		}

		if _, err := tx.ExecContext(ctx, upsertSchoolSQL,
			rec.ID, rec.Name, rec.State, rec.IsPublic,
			rec.GPAMedian, rec.GPASpread, rec.MCATMedian, rec.MCATSpread,
			rec.AcceptanceRate, rec.TotalApplicants, rec.InStatePreference, rec.Tier,
			pq.Array(tags), bonuses, i, version,
		); err != nil {
			_ = tx.Rollback()
			return errors.NewQueryExecutionFailedError("upsert medical_schools", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.NewQueryExecutionFailedError("commit medical_schools", err)
	}
	return nil
}

// EnsureSchema creates the medical_schools table when missing.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, SchemaSQL); err != nil {
		return errors.NewQueryExecutionFailedError("create medical_schools", err)
	}
	return nil
}
