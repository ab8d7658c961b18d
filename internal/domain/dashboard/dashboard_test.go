package dashboard

import (
	"testing"
	"time"

	"github.com/dental/clinic/internal/domain/scheduling"
	"github.com/dental/clinic/internal/domain/supply"
)

// 10:30 on 2024-03-10.
var fixedNow = time.Date(2024, 3, 10, 10, 30, 0, 0, time.UTC)

func TestStatusAt(t *testing.T) {
	tests := []struct {
		at   string
		want VisitStatus
	}{
		{"09:00:00", VisitCompleted},
		{"09:29:00", VisitCompleted},
		{"09:30:00", VisitInProgress},
		{"10:30:00", VisitInProgress},
		{"10:44:00", VisitInProgress},
		{"10:45:00", VisitUpcoming},
		{"15:00:00", VisitUpcoming},
		{"soon", VisitUpcoming},
	}
	for _, tt := range tests {
		if got := StatusAt(tt.at, fixedNow); got != tt.want {
			t.Errorf("StatusAt(%s) = %s, want %s", tt.at, got, tt.want)
		}
	}
}

func sampleAppointments() []scheduling.Appointment {
	return []scheduling.Appointment{
		{ID: 1, Date: "2024-03-10", Time: "14:00:00", PatientID: 1},
		{ID: 2, Date: "2024-03-09", Time: "09:00:00", PatientID: 1},
		{ID: 3, Date: "2024-03-10", Time: "08:30:00", PatientID: 2},
		{ID: 4, Date: "2024-03-10", Time: "10:15:00", PatientID: 3},
		{ID: 5, Date: "2024-03-12", Time: "09:00:00", PatientID: 1},
		{ID: 6, Date: "2024-03-09", Time: "16:00:00", PatientID: 1},
	}
}

func TestSummarize(t *testing.T) {
	low := []supply.View{{Supply: supply.Supply{ID: 9, Quantity: 2}, Status: supply.LowStock}}
	s := Summarize(sampleAppointments(), 42, low, fixedNow)

	if s.TotalPatients != 42 || s.TotalAppointments != 6 || s.TodayAppointments != 3 || s.LowStockItems != 1 {
		t.Errorf("unexpected totals %+v", s)
	}
	if s.CompletedToday != 2 {
		t.Errorf("expected 2 completed today, got %d", s.CompletedToday)
	}
	wantOrder := []int64{3, 4, 1}
	wantStatus := []VisitStatus{VisitCompleted, VisitInProgress, VisitUpcoming}
	for i, item := range s.TodaySchedule {
		if item.ID != wantOrder[i] || item.Status != wantStatus[i] {
			t.Errorf("schedule[%d] = %d/%s, want %d/%s", i, item.ID, item.Status, wantOrder[i], wantStatus[i])
		}
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil, 0, nil, fixedNow)
	if s.TodaySchedule == nil || s.LowStock == nil {
		t.Error("expected empty, non-nil lists")
	}
}

func TestLastVisit(t *testing.T) {
	got := LastVisit(sampleAppointments(), "2024-03-10")
	if got == nil || got.ID != 6 {
		t.Errorf("expected appointment 6, got %+v", got)
	}
	if got := LastVisit(sampleAppointments(), "2024-03-01"); got != nil {
		t.Errorf("expected no last visit, got %+v", got)
	}
}
