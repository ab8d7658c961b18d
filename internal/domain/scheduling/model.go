package scheduling

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("appointment not found")

// Appointment is one booked visit. Date is "YYYY-MM-DD" and Time is
// "HH:MM:SS"; both are kept as strings so ordering is lexicographic.
type Appointment struct {
	ID              int64     `db:"id" json:"id"`
	Date            string    `db:"date" json:"date"`
	Time            string    `db:"time" json:"time"`
	Type            string    `db:"type" json:"type"`
	PatientID       int64     `db:"patient_id" json:"patientId"`
	DoctorID        int64     `db:"doctor_id" json:"doctorId"`
	NurseID         int64     `db:"nurse_id" json:"nurseId"`
	ReferenceNumber string    `db:"reference_number" json:"referenceNumber"`
	CreatedAt       time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time `db:"updated_at" json:"updatedAt"`
}

// AppointmentTypes are the form options. Other values are accepted as free
// text and render with the default calendar color.
var AppointmentTypes = []string{
	"Checkup", "Cleaning", "Root Canal", "Filling",
	"Extraction", "Crown", "Whitening", "Emergency",
}

// ValidationError names the form field that failed.
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

// AppointmentFilter narrows repository listings. Zero values match all.
// From and To are inclusive API dates.
type AppointmentFilter struct {
	PatientID int64
	DoctorID  int64
	From      string
	To        string
}

func (f AppointmentFilter) matches(a Appointment) bool {
	if f.PatientID != 0 && a.PatientID != f.PatientID {
		return false
	}
	if f.DoctorID != 0 && a.DoctorID != f.DoctorID {
		return false
	}
	if f.From != "" && a.Date < f.From {
		return false
	}
	if f.To != "" && a.Date > f.To {
		return false
	}
	return true
}
