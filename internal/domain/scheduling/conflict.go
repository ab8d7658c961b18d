package scheduling

import (
	"fmt"

	"github.com/dental/clinic/pkg/clinicdate"
)

// DefaultConflictWindow is the spacing, in minutes, a doctor needs between
// two appointments on the same day.
const DefaultConflictWindow = 30

// Candidate is the date, time and doctor of an appointment being entered.
// ExcludeID is the appointment under edit, which never conflicts with itself.
type Candidate struct {
	Date      string `json:"date" query:"date"`
	Time      string `json:"time" query:"time"`
	DoctorID  int64  `json:"doctorId" query:"doctor_id"`
	ExcludeID int64  `json:"excludeId" query:"exclude_id"`
}

func (c Candidate) complete() bool {
	return c.Date != "" && c.Time != "" && c.DoctorID != 0
}

// Conflict is an advisory double-booking warning. It never blocks a save.
type Conflict struct {
	AppointmentID int64  `json:"appointmentId"`
	DoctorID      int64  `json:"doctorId"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	Message       string `json:"message"`
}

// FindConflict returns the first appointment, in list order, booked for the
// candidate's doctor on the same date less than window minutes away.
// Incomplete candidates and unparseable times never conflict.
func FindConflict(appts []Appointment, cand Candidate, window int) *Appointment {
	if !cand.complete() {
		return nil
	}
	want, err := clinicdate.MinutesOfDay(cand.Time)
	if err != nil {
		return nil
	}
	for i := range appts {
		a := &appts[i]
		if a.Date != cand.Date || a.DoctorID != cand.DoctorID {
			continue
		}
		if cand.ExcludeID != 0 && a.ID == cand.ExcludeID {
			continue
		}
		got, err := clinicdate.MinutesOfDay(a.Time)
		if err != nil {
			continue
		}
		if abs(got-want) < window {
			return a
		}
	}
	return nil
}

// NewConflict builds the warning for a clash with apt. An empty doctorName
// falls back to "Doctor <id>".
func NewConflict(apt *Appointment, doctorName string) *Conflict {
	if doctorName == "" {
		doctorName = fmt.Sprintf("Doctor %d", apt.DoctorID)
	}
	return &Conflict{
		AppointmentID: apt.ID,
		DoctorID:      apt.DoctorID,
		Date:          apt.Date,
		Time:          apt.Time,
		Message:       fmt.Sprintf("%s has appointment at %s", doctorName, clinicdate.FormatTimeDisplay(apt.Time)),
	}
}

// DetectConflict combines FindConflict and NewConflict. doctorName labels
// the clashing appointment's doctor.
func DetectConflict(appts []Appointment, cand Candidate, window int, doctorName string) *Conflict {
	clash := FindConflict(appts, cand, window)
	if clash == nil {
		return nil
	}
	return NewConflict(clash, doctorName)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
