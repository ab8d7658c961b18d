package ehr

import (
	"fmt"
	"sort"
	"time"
)

type EventKind string

const (
	EventChange EventKind = "change"
	EventRecord EventKind = "ehr"
)

type TimelineEvent struct {
	ID          string     `json:"id"`
	Kind        EventKind  `json:"kind"`
	At          time.Time  `json:"at"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	User        string     `json:"user,omitempty"`
	ChangeType  ChangeType `json:"changeType,omitempty"`
	EHRID       int64      `json:"ehrId"`
}

// BuildTimeline merges change-log entries and record saves, newest first.
// Events with equal timestamps keep changes ahead of records.
func BuildTimeline(logs []ChangeLog, records []EHR) []TimelineEvent {
	events := make([]TimelineEvent, 0, len(logs)+len(records))
	for _, l := range logs {
		events = append(events, TimelineEvent{
			ID:          fmt.Sprintf("change-%d", l.ID),
			Kind:        EventChange,
			At:          l.ChangedAt,
			Title:       fmt.Sprintf("%s: %s", l.ChangeType, l.FieldName),
			Description: changeDescription(l),
			User:        l.ChangedBy,
			ChangeType:  l.ChangeType,
			EHRID:       l.EHRID,
		})
	}
	for _, r := range records {
		desc := r.Diagnosis
		if desc == "" {
			desc = r.ClinicalNotes
		}
		if desc == "" {
			desc = "EHR record modified"
		}
		events = append(events, TimelineEvent{
			ID:          fmt.Sprintf("ehr-%d", r.ID),
			Kind:        EventRecord,
			At:          r.UpdatedAt,
			Title:       "Health Record Updated",
			Description: desc,
			User:        r.UpdatedBy,
			EHRID:       r.ID,
		})
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].At.After(events[j].At) })
	return events
}

func changeDescription(l ChangeLog) string {
	switch {
	case l.OldValue != "" && l.NewValue != "":
		return fmt.Sprintf("Changed from %q to %q", l.OldValue, l.NewValue)
	case l.NewValue != "":
		return fmt.Sprintf("Added %q", l.NewValue)
	}
	return "Field updated"
}
