package scheduling

import (
	"fmt"
	"time"

	"github.com/dental/clinic/pkg/clinicdate"
)

// MaxIndicators is how many type markers a calendar day shows before the
// rest collapse into an overflow count.
const MaxIndicators = 3

const defaultColor = "gray"

var typeColors = map[string]string{
	"Checkup":    "blue",
	"Cleaning":   "green",
	"Root Canal": "purple",
	"Filling":    "yellow",
	"Emergency":  "red",
	"Extraction": "orange",
	"Treatment":  "indigo",
}

// ColorFor maps an appointment type to its calendar color. Unknown types
// get gray.
func ColorFor(appointmentType string) string {
	if c, ok := typeColors[appointmentType]; ok {
		return c
	}
	return defaultColor
}

// Month identifies a calendar page.
type Month struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// ParseMonth validates a year and 1-based month number.
func ParseMonth(year, month int) (Month, error) {
	if month < 1 || month > 12 {
		return Month{}, invalid("month", fmt.Sprintf("invalid month %d: expected 1-12", month))
	}
	if year < 1 || year > 9999 {
		return Month{}, invalid("year", fmt.Sprintf("invalid year %d", year))
	}
	return Month{Year: year, Month: time.Month(month)}, nil
}

func (m Month) first() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Prev and Next step one month, wrapping the year.
func (m Month) Prev() Month { return MonthOf(m.first().AddDate(0, -1, 0)) }
func (m Month) Next() Month { return MonthOf(m.first().AddDate(0, 1, 0)) }

func (m Month) String() string {
	return m.first().Format("January 2006")
}

func (m Month) DaysIn() int {
	return m.first().AddDate(0, 1, -1).Day()
}

type Indicator struct {
	Type  string `json:"type"`
	Color string `json:"color"`
}

// DayCell is one populated square of the month grid.
type DayCell struct {
	Day           int           `json:"day"`
	Date          string        `json:"date"`
	IsToday       bool          `json:"isToday"`
	Appointments  []Appointment `json:"appointments"`
	Indicators    []Indicator   `json:"indicators"`
	Overflow      int           `json:"overflow"`
	OverflowLabel string        `json:"overflowLabel,omitempty"`
}

// MonthView is a Sunday-first grid. Nil cells are the blanks before the 1st
// and after the last day.
type MonthView struct {
	Year  int          `json:"year"`
	Month int          `json:"month"`
	Title string       `json:"title"`
	Weeks [][]*DayCell `json:"weeks"`
	Prev  Month        `json:"prev"`
	Next  Month        `json:"next"`
}

// BuildMonth lays out m and attaches to each day the appointments whose
// date string equals that day exactly, in input order.
func BuildMonth(m Month, appts []Appointment, today string) MonthView {
	byDate := make(map[string][]Appointment)
	for _, a := range appts {
		byDate[a.Date] = append(byDate[a.Date], a)
	}

	cells := make([]*DayCell, 0, 42)
	for i := 0; i < int(m.first().Weekday()); i++ {
		cells = append(cells, nil)
	}
	for day := 1; day <= m.DaysIn(); day++ {
		date := fmt.Sprintf("%04d-%02d-%02d", m.Year, int(m.Month), day)
		cells = append(cells, newDayCell(day, date, date == today, byDate[date]))
	}
	for len(cells)%7 != 0 {
		cells = append(cells, nil)
	}

	weeks := make([][]*DayCell, 0, len(cells)/7)
	for i := 0; i < len(cells); i += 7 {
		weeks = append(weeks, cells[i:i+7])
	}

	return MonthView{
		Year:  m.Year,
		Month: int(m.Month),
		Title: m.String(),
		Weeks: weeks,
		Prev:  m.Prev(),
		Next:  m.Next(),
	}
}

func newDayCell(day int, date string, isToday bool, appts []Appointment) *DayCell {
	cell := &DayCell{
		Day:          day,
		Date:         date,
		IsToday:      isToday,
		Appointments: appts,
		Indicators:   []Indicator{},
	}
	if cell.Appointments == nil {
		cell.Appointments = []Appointment{}
	}
	for i, a := range appts {
		if i == MaxIndicators {
			break
		}
		cell.Indicators = append(cell.Indicators, Indicator{Type: a.Type, Color: ColorFor(a.Type)})
	}
	if n := len(appts); n > MaxIndicators {
		cell.Overflow = n - MaxIndicators
		cell.OverflowLabel = fmt.Sprintf("+%d", cell.Overflow)
	}
	return cell
}

// PopulatedDays counts the days that have at least one appointment.
func (v MonthView) PopulatedDays() int {
	n := 0
	for _, week := range v.Weeks {
		for _, cell := range week {
			if cell != nil && len(cell.Appointments) > 0 {
				n++
			}
		}
	}
	return n
}

// Day returns the cell for a day of the month, or nil.
func (v MonthView) Day(day int) *DayCell {
	for _, week := range v.Weeks {
		for _, cell := range week {
			if cell != nil && cell.Day == day {
				return cell
			}
		}
	}
	return nil
}

type AgendaStatus string

const (
	StatusPast      AgendaStatus = "Past"
	StatusScheduled AgendaStatus = "Scheduled"
)

type AgendaItem struct {
	Appointment
	Status AgendaStatus `json:"status"`
}

// DayAgenda returns the appointments on date sorted by time. Each is Past
// once its start is before now, read in now's location.
func DayAgenda(appts []Appointment, date string, now time.Time) []AgendaItem {
	var day []Appointment
	for _, a := range appts {
		if a.Date == date {
			day = append(day, a)
		}
	}
	SortByDateTime(day, false)

	items := make([]AgendaItem, 0, len(day))
	for _, a := range day {
		status := StatusScheduled
		if start, err := time.ParseInLocation(clinicdate.DateLayout+" "+clinicdate.TimeLayout, a.Date+" "+a.Time, now.Location()); err == nil && start.Before(now) {
			status = StatusPast
		}
		items = append(items, AgendaItem{Appointment: a, Status: status})
	}
	return items
}
