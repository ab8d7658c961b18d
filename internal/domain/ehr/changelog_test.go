package ehr

import (
	"testing"
	"time"
)

func TestDiff(t *testing.T) {
	at := time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC)
	before := EHR{ID: 5, Status: StatusDraft, Fields: Fields{Diagnosis: "Caries", ClinicalNotes: "old"}}
	after := EHR{
		ID:     5,
		Status: StatusDraft,
		Fields: Fields{Diagnosis: "Caries on 16", Allergies: "Penicillin"},
		Teeth:  []ToothRecord{{ToothNumber: 16}},
	}

	changes := Diff(before, after, "dr.smith", at)
	want := []struct {
		kind  ChangeType
		field string
		oldV  string
		newV  string
	}{
		{ChangeAdded, "allergies", "", "Penicillin"},
		{ChangeUpdated, "diagnosis", "Caries", "Caries on 16"},
		{ChangeDeleted, "clinicalNotes", "old", ""},
		{ChangeAdded, "teeth", "0", "1"},
	}
	if len(changes) != len(want) {
		t.Fatalf("expected %d changes, got %+v", len(want), changes)
	}
	for i, w := range want {
		c := changes[i]
		if c.ChangeType != w.kind || c.FieldName != w.field || c.OldValue != w.oldV || c.NewValue != w.newV {
			t.Errorf("change %d = %+v, want %+v", i, c, w)
		}
		if c.EHRID != 5 || c.ChangedBy != "dr.smith" || !c.ChangedAt.Equal(at) {
			t.Errorf("change %d has wrong metadata %+v", i, c)
		}
	}
}

func TestDiff_Collections(t *testing.T) {
	before := EHR{Medications: []Medication{{ID: "a", Name: "Ibuprofen"}}}

	sameButIDs := EHR{Medications: []Medication{{ID: "b", Name: "Ibuprofen"}}}
	if got := Diff(before, sameButIDs, "", time.Time{}); len(got) != 0 {
		t.Errorf("entry ids alone should not count as changes: %+v", got)
	}

	edited := EHR{Medications: []Medication{{Name: "Paracetamol"}}}
	got := Diff(before, edited, "", time.Time{})
	if len(got) != 1 || got[0].ChangeType != ChangeUpdated || got[0].FieldName != "medications" {
		t.Errorf("expected one Updated medications change, got %+v", got)
	}

	removed := EHR{}
	got = Diff(before, removed, "", time.Time{})
	if len(got) != 1 || got[0].ChangeType != ChangeDeleted || got[0].NewValue != "0" {
		t.Errorf("expected one Deleted medications change, got %+v", got)
	}
}

func TestDiff_Status(t *testing.T) {
	got := Diff(EHR{Status: StatusDraft}, EHR{Status: StatusComplete}, "", time.Time{})
	if len(got) != 1 || got[0].FieldName != "status" || got[0].OldValue != "draft" || got[0].NewValue != "complete" {
		t.Errorf("unexpected status change %+v", got)
	}
}
