// Package dashboard aggregates the front-page statistics and the patient
// detail page from the other clinic services.
package dashboard

import (
	"time"

	"github.com/dental/clinic/internal/domain/ehr"
	"github.com/dental/clinic/internal/domain/identity"
	"github.com/dental/clinic/internal/domain/scheduling"
	"github.com/dental/clinic/internal/domain/supply"
	"github.com/dental/clinic/pkg/clinicdate"
)

// VisitStatus describes where today's appointment stands relative to now.
type VisitStatus string

const (
	VisitCompleted  VisitStatus = "completed"
	VisitInProgress VisitStatus = "in-progress"
	VisitUpcoming   VisitStatus = "upcoming"
)

// An appointment counts as in progress from an hour before now until a
// quarter hour after.
const (
	inProgressBefore = 60
	inProgressAfter  = 15
)

func minutesNow(now time.Time) int {
	return now.Hour()*60 + now.Minute()
}

// StatusAt classifies an appointment time on today's schedule. Unparseable
// times are upcoming.
func StatusAt(apptTime string, now time.Time) VisitStatus {
	m, err := clinicdate.MinutesOfDay(apptTime)
	if err != nil {
		return VisitUpcoming
	}
	cur := minutesNow(now)
	switch {
	case m < cur-inProgressBefore:
		return VisitCompleted
	case m < cur+inProgressAfter:
		return VisitInProgress
	}
	return VisitUpcoming
}

type ScheduleItem struct {
	scheduling.Appointment
	Status VisitStatus `json:"status"`
}

type Summary struct {
	TotalPatients     int            `json:"totalPatients"`
	TotalAppointments int            `json:"totalAppointments"`
	TodayAppointments int            `json:"todayAppointments"`
	CompletedToday    int            `json:"completedToday"`
	LowStockItems     int            `json:"lowStockItems"`
	TodaySchedule     []ScheduleItem `json:"todaySchedule"`
	LowStock          []supply.View  `json:"lowStock"`
}

// Summarize builds the dashboard from raw lists. Today's schedule is sorted
// by time. CompletedToday counts appointments whose start time has passed.
func Summarize(appts []scheduling.Appointment, patients int, lowStock []supply.View, now time.Time) Summary {
	today := clinicdate.Today(now)
	todays := []scheduling.Appointment{}
	for _, a := range appts {
		if a.Date == today {
			todays = append(todays, a)
		}
	}
	scheduling.SortByDateTime(todays, false)

	if lowStock == nil {
		lowStock = []supply.View{}
	}
	s := Summary{
		TotalPatients:     patients,
		TotalAppointments: len(appts),
		TodayAppointments: len(todays),
		LowStockItems:     len(lowStock),
		TodaySchedule:     make([]ScheduleItem, 0, len(todays)),
		LowStock:          lowStock,
	}
	cur := minutesNow(now)
	for _, a := range todays {
		if m, err := clinicdate.MinutesOfDay(a.Time); err == nil && m < cur {
			s.CompletedToday++
		}
		s.TodaySchedule = append(s.TodaySchedule, ScheduleItem{Appointment: a, Status: StatusAt(a.Time, now)})
	}
	return s
}

// LastVisit returns the latest appointment dated before today, or nil.
func LastVisit(appts []scheduling.Appointment, today string) *scheduling.Appointment {
	var last *scheduling.Appointment
	for i := range appts {
		a := appts[i]
		if a.Date >= today {
			continue
		}
		if last == nil || a.Date > last.Date || (a.Date == last.Date && a.Time > last.Time) {
			last = &a
		}
	}
	return last
}

type PatientDetail struct {
	Patient      identity.PatientView     `json:"patient"`
	Appointments []scheduling.Appointment `json:"appointments"`
	Records      []ehr.EHR                `json:"records"`
	LastVisit    *scheduling.Appointment  `json:"lastVisit"`
}
