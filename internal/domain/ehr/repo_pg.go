package ehr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dental/clinic/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const ehrCols = `id, patient_id, appointment_id, status, notation,
	allergies, medical_alerts, history, diagnosis, xray_findings, periodontal_status,
	treatments, clinical_notes, recommendations,
	medications, procedures, teeth, xrays,
	created_at, updated_at, updated_by`

// collections is the JSONB encoding of the nested entries.
type collections struct {
	medications, procedures, teeth, xrays []byte
}

func encodeCollections(rec *EHR) (collections, error) {
	var (
		c   collections
		err error
	)
	stripped := StripEntryIDs(*rec)
	if c.medications, err = json.Marshal(stripped.Medications); err != nil {
		return c, fmt.Errorf("encode medications: %w", err)
	}
	if c.procedures, err = json.Marshal(stripped.Procedures); err != nil {
		return c, fmt.Errorf("encode procedures: %w", err)
	}
	if c.teeth, err = json.Marshal(stripped.Teeth); err != nil {
		return c, fmt.Errorf("encode teeth: %w", err)
	}
	if c.xrays, err = json.Marshal(stripped.XRays); err != nil {
		return c, fmt.Errorf("encode xrays: %w", err)
	}
	return c, nil
}

func scanEHR(row pgx.Row) (*EHR, error) {
	var (
		rec EHR
		c   collections
	)
	err := row.Scan(&rec.ID, &rec.PatientID, &rec.AppointmentID, &rec.Status, &rec.Notation,
		&rec.Allergies, &rec.MedicalAlerts, &rec.History, &rec.Diagnosis, &rec.XRayFindings, &rec.PeriodontalStatus,
		&rec.Treatments, &rec.ClinicalNotes, &rec.Recommendations,
		&c.medications, &c.procedures, &c.teeth, &c.xrays,
		&rec.CreatedAt, &rec.UpdatedAt, &rec.UpdatedBy)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	for _, f := range []struct {
		raw  []byte
		into interface{}
	}{
		{c.medications, &rec.Medications},
		{c.procedures, &rec.Procedures},
		{c.teeth, &rec.Teeth},
		{c.xrays, &rec.XRays},
	} {
		if err := json.Unmarshal(f.raw, f.into); err != nil {
			return nil, fmt.Errorf("decode ehr %d: %w", rec.ID, err)
		}
	}
	return &rec, nil
}

func (r *repoPG) Create(ctx context.Context, rec *EHR) error {
	c, err := encodeCollections(rec)
	if err != nil {
		return err
	}
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO ehr_records (
			patient_id, appointment_id, status, notation,
			allergies, medical_alerts, history, diagnosis, xray_findings, periodontal_status,
			treatments, clinical_notes, recommendations,
			medications, procedures, teeth, xrays, updated_by
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
		RETURNING id, created_at, updated_at`,
		rec.PatientID, rec.AppointmentID, rec.Status, rec.Notation,
		rec.Allergies, rec.MedicalAlerts, rec.History, rec.Diagnosis, rec.XRayFindings, rec.PeriodontalStatus,
		rec.Treatments, rec.ClinicalNotes, rec.Recommendations,
		c.medications, c.procedures, c.teeth, c.xrays, rec.UpdatedBy,
	).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id int64) (*EHR, error) {
	return scanEHR(r.conn(ctx).QueryRow(ctx, `SELECT `+ehrCols+` FROM ehr_records WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, rec *EHR, changes []ChangeLog) error {
	c, err := encodeCollections(rec)
	if err != nil {
		return err
	}
	return db.WithTx(ctx, r.pool, func(ctx context.Context) error {
		err := r.conn(ctx).QueryRow(ctx, `
			UPDATE ehr_records SET patient_id=$2, appointment_id=$3, status=$4, notation=$5,
				allergies=$6, medical_alerts=$7, history=$8, diagnosis=$9, xray_findings=$10,
				periodontal_status=$11, treatments=$12, clinical_notes=$13, recommendations=$14,
				medications=$15, procedures=$16, teeth=$17, xrays=$18, updated_by=$19, updated_at=NOW()
			WHERE id = $1
			RETURNING created_at, updated_at`,
			rec.ID, rec.PatientID, rec.AppointmentID, rec.Status, rec.Notation,
			rec.Allergies, rec.MedicalAlerts, rec.History, rec.Diagnosis, rec.XRayFindings,
			rec.PeriodontalStatus, rec.Treatments, rec.ClinicalNotes, rec.Recommendations,
			c.medications, c.procedures, c.teeth, c.xrays, rec.UpdatedBy,
		).Scan(&rec.CreatedAt, &rec.UpdatedAt)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		for i := range changes {
			ch := &changes[i]
			err := r.conn(ctx).QueryRow(ctx, `
				INSERT INTO ehr_changes (ehr_id, changed_at, change_type, field_name, old_value, new_value, changed_by)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
				RETURNING id`,
				ch.EHRID, ch.ChangedAt, ch.ChangeType, ch.FieldName, ch.OldValue, ch.NewValue, ch.ChangedBy,
			).Scan(&ch.ID)
			if err != nil {
				return fmt.Errorf("append ehr change: %w", err)
			}
		}
		return nil
	})
}

func (r *repoPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM ehr_records WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, patientID int64) ([]EHR, error) {
	query := `SELECT ` + ehrCols + ` FROM ehr_records`
	var args []interface{}
	if patientID != 0 {
		query += ` WHERE patient_id = $1`
		args = append(args, patientID)
	}
	query += ` ORDER BY id`

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []EHR{}
	for rows.Next() {
		rec, err := scanEHR(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *rec)
	}
	return items, rows.Err()
}

func (r *repoPG) ListChanges(ctx context.Context, ehrIDs []int64) ([]ChangeLog, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, ehr_id, changed_at, change_type, field_name, old_value, new_value, changed_by
		FROM ehr_changes WHERE ehr_id = ANY($1) ORDER BY id`, ehrIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ChangeLog{}
	for rows.Next() {
		var c ChangeLog
		if err := rows.Scan(&c.ID, &c.EHRID, &c.ChangedAt, &c.ChangeType, &c.FieldName,
			&c.OldValue, &c.NewValue, &c.ChangedBy); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}
