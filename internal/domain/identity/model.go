package identity

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrPatientNotFound = errors.New("patient not found")
	ErrDoctorNotFound  = errors.New("doctor not found")
	ErrNurseNotFound   = errors.New("nurse not found")
)

// Genders accepted on the patient form.
var Genders = map[string]bool{
	"Male":   true,
	"Female": true,
	"Other":  true,
}

// Patient is a registered clinic patient. DateOfBirth is "YYYY-MM-DD"; age
// is always derived from it.
type Patient struct {
	ID          int64     `db:"id" json:"id"`
	FirstName   string    `db:"first_name" json:"first"`
	MiddleName  string    `db:"middle_name" json:"middle,omitempty"`
	LastName    string    `db:"last_name" json:"last"`
	Gender      string    `db:"gender" json:"gender"`
	DateOfBirth string    `db:"date_of_birth" json:"dob"`
	Phone       string    `db:"phone" json:"phone"`
	Email       string    `db:"email" json:"email,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// FullName joins first, middle and last, skipping an empty middle name.
func (p Patient) FullName() string {
	parts := make([]string, 0, 3)
	for _, s := range []string{p.FirstName, p.MiddleName, p.LastName} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

func (p *Patient) key() int64 { return p.ID }
func (p *Patient) setID(id int64) { p.ID = id }
func (p *Patient) stamp(created, updated time.Time) { p.CreatedAt, p.UpdatedAt = created, updated }
func (p *Patient) created() time.Time { return p.CreatedAt }

type Doctor struct {
	ID             int64     `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	Email          string    `db:"email" json:"email"`
	Phone          string    `db:"phone" json:"phone"`
	Specialization string    `db:"specialization" json:"specialization,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}

func (d *Doctor) key() int64 { return d.ID }
func (d *Doctor) setID(id int64) { d.ID = id }
func (d *Doctor) stamp(created, updated time.Time) { d.CreatedAt, d.UpdatedAt = created, updated }
func (d *Doctor) created() time.Time { return d.CreatedAt }

type Nurse struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Phone     string    `db:"phone" json:"phone"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

func (n *Nurse) key() int64 { return n.ID }
func (n *Nurse) setID(id int64) { n.ID = id }
func (n *Nurse) stamp(created, updated time.Time) { n.CreatedAt, n.UpdatedAt = created, updated }
func (n *Nurse) created() time.Time { return n.CreatedAt }

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
