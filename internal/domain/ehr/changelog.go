package ehr

import (
	"reflect"
	"strconv"
	"time"
)

type fieldValue struct {
	name string
	get  func(EHR) string
}

var diffedFields = []fieldValue{
	{"status", func(r EHR) string { return string(r.Status) }},
	{"allergies", func(r EHR) string { return r.Allergies }},
	{"medicalAlerts", func(r EHR) string { return r.MedicalAlerts }},
	{"history", func(r EHR) string { return r.History }},
	{"diagnosis", func(r EHR) string { return r.Diagnosis }},
	{"xRayFindings", func(r EHR) string { return r.XRayFindings }},
	{"periodontalStatus", func(r EHR) string { return r.PeriodontalStatus }},
	{"treatments", func(r EHR) string { return r.Treatments }},
	{"clinicalNotes", func(r EHR) string { return r.ClinicalNotes }},
	{"recommendations", func(r EHR) string { return r.Recommendations }},
}

// Diff lists the changes from before to after. Text fields report their
// old and new values; collections report entry counts, and a same-length
// collection whose entries changed is reported as Updated.
func Diff(before, after EHR, actor string, at time.Time) []ChangeLog {
	var out []ChangeLog
	add := func(kind ChangeType, field, oldV, newV string) {
		out = append(out, ChangeLog{
			EHRID:      after.ID,
			ChangedAt:  at,
			ChangeType: kind,
			FieldName:  field,
			OldValue:   oldV,
			NewValue:   newV,
			ChangedBy:  actor,
		})
	}

	for _, f := range diffedFields {
		oldV, newV := f.get(before), f.get(after)
		switch {
		case oldV == newV:
		case oldV == "":
			add(ChangeAdded, f.name, "", newV)
		case newV == "":
			add(ChangeDeleted, f.name, oldV, "")
		default:
			add(ChangeUpdated, f.name, oldV, newV)
		}
	}

	b, a := StripEntryIDs(before), StripEntryIDs(after)
	collections := []struct {
		name     string
		old, new int
		same     bool
	}{
		{"medications", len(b.Medications), len(a.Medications), reflect.DeepEqual(b.Medications, a.Medications)},
		{"procedures", len(b.Procedures), len(a.Procedures), reflect.DeepEqual(b.Procedures, a.Procedures)},
		{"teeth", len(b.Teeth), len(a.Teeth), reflect.DeepEqual(b.Teeth, a.Teeth)},
		{"xRays", len(b.XRays), len(a.XRays), reflect.DeepEqual(b.XRays, a.XRays)},
	}
	for _, c := range collections {
		oldV, newV := strconv.Itoa(c.old), strconv.Itoa(c.new)
		switch {
		case c.new > c.old:
			add(ChangeAdded, c.name, oldV, newV)
		case c.new < c.old:
			add(ChangeDeleted, c.name, oldV, newV)
		case !c.same:
			add(ChangeUpdated, c.name, oldV, newV)
		}
	}
	return out
}
