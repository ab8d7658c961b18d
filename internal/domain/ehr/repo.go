package ehr

import (
	"context"
)

type Repository interface {
	Create(ctx context.Context, r *EHR) error
	GetByID(ctx context.Context, id int64) (*EHR, error)
	// Update stores r and appends changes in one unit of work.
	Update(ctx context.Context, r *EHR, changes []ChangeLog) error
	Delete(ctx context.Context, id int64) error
	// List returns records for a patient, or all records when patientID is
	// zero, in id order.
	List(ctx context.Context, patientID int64) ([]EHR, error)
	ListChanges(ctx context.Context, ehrIDs []int64) ([]ChangeLog, error)
}
