package ehr

import (
	"errors"
	"time"
)

var (
	ErrNotFound        = errors.New("ehr not found")
	ErrSessionNotFound = errors.New("editing session not found")
	ErrEntryNotFound   = errors.New("entry not found")
)

type Status string

const (
	StatusDraft    Status = "draft"
	StatusComplete Status = "complete"
)

// Fields are the free-text sections of a record.
type Fields struct {
	Allergies         string `json:"allergies"`
	MedicalAlerts     string `json:"medicalAlerts"`
	History           string `json:"history"`
	Diagnosis         string `json:"diagnosis"`
	XRayFindings      string `json:"xRayFindings"`
	PeriodontalStatus string `json:"periodontalStatus"`
	Treatments        string `json:"treatments"`
	ClinicalNotes     string `json:"clinicalNotes"`
	Recommendations   string `json:"recommendations"`
}

// Entry ids are assigned while editing and stripped from saved payloads.

type Medication struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	Dosage    string `json:"dosage"`
	Frequency string `json:"frequency"`
	Route     string `json:"route"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Notes     string `json:"notes"`
}

type Procedure struct {
	ID          string `json:"id,omitempty"`
	Code        string `json:"code"`
	Description string `json:"description"`
	ToothNumber string `json:"toothNumber"`
	Status      string `json:"status"`
	PerformedAt string `json:"performedAt"`
	Notes       string `json:"notes"`
}

type ToothRecord struct {
	ID                 string `json:"id,omitempty"`
	ToothNumber        int    `json:"toothNumber"`
	Condition          string `json:"condition"`
	TreatmentPlanned   string `json:"treatmentPlanned"`
	TreatmentCompleted bool   `json:"treatmentCompleted"`
	CompletedDate      string `json:"completedDate"`
	SurfacesAffected   string `json:"surfacesAffected"`
	Notes              string `json:"notes"`
}

type XRay struct {
	ID       string `json:"id,omitempty"`
	Type     string `json:"type"`
	Findings string `json:"findings"`
	TakenAt  string `json:"takenAt"`
	TakenBy  string `json:"takenBy"`
	ImageURL string `json:"imageUrl"`
	Notes    string `json:"notes"`
}

// EHR is the clinical record written for one patient visit.
type EHR struct {
	ID            int64    `json:"id"`
	PatientID     int64    `json:"patientId"`
	AppointmentID int64    `json:"appointmentId"`
	Status        Status   `json:"status"`
	Notation      Notation `json:"notation"`
	Fields

	Medications []Medication  `json:"medications"`
	Procedures  []Procedure   `json:"procedures"`
	Teeth       []ToothRecord `json:"teeth"`
	XRays       []XRay        `json:"xRays"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	UpdatedBy string    `json:"updatedBy,omitempty"`
}

// Clone deep-copies the nested collections.
func (e EHR) Clone() EHR {
	e.Medications = append([]Medication{}, e.Medications...)
	e.Procedures = append([]Procedure{}, e.Procedures...)
	e.Teeth = append([]ToothRecord{}, e.Teeth...)
	e.XRays = append([]XRay{}, e.XRays...)
	return e
}

type ChangeType string

const (
	ChangeAdded   ChangeType = "Added"
	ChangeUpdated ChangeType = "Updated"
	ChangeDeleted ChangeType = "Deleted"
)

// ChangeLog records one field-level difference between two saves.
type ChangeLog struct {
	ID         int64      `json:"id"`
	EHRID      int64      `json:"ehrId"`
	ChangedAt  time.Time  `json:"changedAt"`
	ChangeType ChangeType `json:"changeType"`
	FieldName  string     `json:"fieldName"`
	OldValue   string     `json:"oldValue,omitempty"`
	NewValue   string     `json:"newValue,omitempty"`
	ChangedBy  string     `json:"changedBy,omitempty"`
}

// ValidationError names the field that failed.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}
