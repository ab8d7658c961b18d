package scheduling

import (
	"fmt"
	"sort"
)

type Tab string

const (
	TabAll      Tab = "all"
	TabUpcoming Tab = "upcoming"
	TabPast     Tab = "past"
)

// ParseTab accepts the list tab names; empty means all.
func ParseTab(s string) (Tab, error) {
	switch Tab(s) {
	case "", TabAll:
		return TabAll, nil
	case TabUpcoming, TabPast:
		return Tab(s), nil
	}
	return "", invalid("tab", fmt.Sprintf("invalid tab %q: expected all, upcoming or past", s))
}

// Filter partitions appts by calendar date against today and orders the
// result by date then time. Upcoming includes every appointment dated today,
// even one already finished. Past lists the most recent day first. The input
// slice is not modified.
func Filter(appts []Appointment, tab Tab, today string) []Appointment {
	out := make([]Appointment, 0, len(appts))
	for _, a := range appts {
		switch tab {
		case TabUpcoming:
			if a.Date < today {
				continue
			}
		case TabPast:
			if a.Date >= today {
				continue
			}
		}
		out = append(out, a)
	}
	SortByDateTime(out, tab == TabPast)
	return out
}

// SortByDateTime sorts in place: date ascending (descending when
// newestFirst), then time ascending within a day.
func SortByDateTime(appts []Appointment, newestFirst bool) {
	sort.SliceStable(appts, func(i, j int) bool {
		a, b := appts[i], appts[j]
		if a.Date != b.Date {
			if newestFirst {
				return a.Date > b.Date
			}
			return a.Date < b.Date
		}
		return a.Time < b.Time
	})
}
