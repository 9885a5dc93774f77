package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"triage-desk/pkg"
)

// ErrNotFound is returned when a referral id has no stored note.
var ErrNotFound = errors.New("referral not found")

// Repository stores referral notes in Postgres. The triage result and the
// facility list are persisted as JSONB so the wire shape and the stored
// shape stay identical.
type Repository struct {
	DB *sql.DB
}

// NewRepository constructs a Repository from an existing sql.DB. The caller
// is responsible for managing the DB connection lifecycle.
func NewRepository(db *sql.DB) *Repository { return &Repository{DB: db} }

// SaveReferral persists one referral note.
func (r *Repository) SaveReferral(ctx context.Context, note *pkg.ReferralNote) error {
	triageJSON, err := json.Marshal(note.TriageResult)
	if err != nil {
		return err
	}
	facilitiesJSON, err := json.Marshal(note.RecommendedFacilities)
	if err != nil {
		return err
	}
	var patientID sql.NullString
	if note.PatientID != "" {
		patientID = sql.NullString{String: note.PatientID, Valid: true}
	}
	_, err = r.DB.ExecContext(ctx,
		`INSERT INTO referrals (id, patient_id, triage_result, facilities, generated_at)
         VALUES ($1, $2, $3, $4, $5)`,
		note.ID, patientID, triageJSON, facilitiesJSON, note.GeneratedAt,
	)
	return err
}

// GetReferral loads a referral note by id.
func (r *Repository) GetReferral(ctx context.Context, id string) (*pkg.ReferralNote, error) {
	var (
		note           pkg.ReferralNote
		patientID      sql.NullString
		triageJSON     []byte
		facilitiesJSON []byte
	)
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, patient_id, triage_result, facilities, generated_at
         FROM referrals
         WHERE id = $1`, id,
	).Scan(&note.ID, &patientID, &triageJSON, &facilitiesJSON, &note.GeneratedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	note.PatientID = patientID.String
	if err := json.Unmarshal(triageJSON, &note.TriageResult); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(facilitiesJSON, &note.RecommendedFacilities); err != nil {
		return nil, err
	}
	return &note, nil
}

// ListRecentReferrals returns the newest referral notes, most recent first.
func (r *Repository) ListRecentReferrals(ctx context.Context, limit int) ([]pkg.ReferralNote, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, patient_id, triage_result, facilities, generated_at
         FROM referrals
         ORDER BY generated_at DESC
         LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []pkg.ReferralNote
	for rows.Next() {
		var (
			note           pkg.ReferralNote
			patientID      sql.NullString
			triageJSON     []byte
			facilitiesJSON []byte
		)
		if err := rows.Scan(&note.ID, &patientID, &triageJSON, &facilitiesJSON, &note.GeneratedAt); err != nil {
			return nil, err
		}
		note.PatientID = patientID.String
		if err := json.Unmarshal(triageJSON, &note.TriageResult); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(facilitiesJSON, &note.RecommendedFacilities); err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}
	return notes, rows.Err()
}
