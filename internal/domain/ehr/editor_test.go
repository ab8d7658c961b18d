package ehr

import (
	"errors"
	"testing"
	"time"
)

var fixedNow = time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func newTestEditor() *Editor {
	return NewEditor(EHR{PatientID: 1, AppointmentID: 2}, CounterGenerator(), clock)
}

func assertValidation(t *testing.T, err error) {
	t.Helper()
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
}

func TestNewEditor_Defaults(t *testing.T) {
	ed := newTestEditor()
	r := ed.Record()
	if r.Notation != NotationFDI {
		t.Errorf("expected fdi notation, got %q", r.Notation)
	}
	if r.Medications == nil || r.Teeth == nil {
		t.Error("expected empty, non-nil collections")
	}
}

func TestNewEditor_AssignsMissingIDs(t *testing.T) {
	base := EHR{Medications: []Medication{{ID: "keep"}, {Name: "Ibuprofen"}}}
	ed := NewEditor(base, CounterGenerator(), clock)
	meds := ed.Record().Medications
	if meds[0].ID != "keep" || meds[1].ID != "1" {
		t.Errorf("unexpected ids %q %q", meds[0].ID, meds[1].ID)
	}
	if base.Medications[1].ID != "" {
		t.Error("base record was modified")
	}
}

func TestEditor_AddDefaults(t *testing.T) {
	ed := newTestEditor()

	m := ed.AddMedication()
	if m.ID != "1" || m.Route != "Oral" || m.StartDate != "2024-03-10" {
		t.Errorf("unexpected medication %+v", m)
	}
	p := ed.AddProcedure()
	if p.Status != "Planned" || p.PerformedAt != "2024-03-10T09:30" {
		t.Errorf("unexpected procedure %+v", p)
	}
	x := ed.AddXRay()
	if x.Type != "Periapical" || x.TakenAt != "2024-03-10T09:30" {
		t.Errorf("unexpected x-ray %+v", x)
	}
	tooth, err := ed.AddTooth(0)
	if err != nil || tooth.ToothNumber != DefaultToothNumber {
		t.Errorf("unexpected tooth %+v, %v", tooth, err)
	}
	if m.ID == p.ID || p.ID == x.ID || x.ID == tooth.ID {
		t.Error("entry ids must be unique")
	}
}

func TestEditor_AddTooth_Duplicate(t *testing.T) {
	ed := newTestEditor()
	if _, err := ed.AddTooth(0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := ed.AddTooth(11)
	assertValidation(t, err)
	if n := len(ed.Record().Teeth); n != 1 {
		t.Errorf("expected 1 tooth, got %d", n)
	}
}

func TestEditor_AddTooth_UniversalDefault(t *testing.T) {
	ed := newTestEditor()
	if err := ed.SetField("notation", "universal"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tooth, err := ed.AddTooth(0)
	if err != nil || tooth.ToothNumber != 8 {
		t.Errorf("expected universal 8, got %+v, %v", tooth, err)
	}
}

func TestEditor_ToggleTooth(t *testing.T) {
	ed := newTestEditor()
	ed.AddTooth(21)
	before := len(ed.Record().Teeth)

	on, err := ed.ToggleTooth(14)
	if err != nil || !on {
		t.Fatalf("expected tooth 14 added, got %v, %v", on, err)
	}
	teeth := ed.Record().Teeth
	if len(teeth) != before+1 {
		t.Fatalf("expected %d teeth, got %d", before+1, len(teeth))
	}
	added := teeth[len(teeth)-1]
	if added.ToothNumber != 14 || added.Condition != DefaultToggleCondition {
		t.Errorf("unexpected toggled tooth %+v", added)
	}

	on, err = ed.ToggleTooth(14)
	if err != nil || on {
		t.Fatalf("expected tooth 14 removed, got %v, %v", on, err)
	}
	if n := len(ed.Record().Teeth); n != before {
		t.Errorf("expected %d teeth after second toggle, got %d", before, n)
	}

	_, err = ed.ToggleTooth(19)
	assertValidation(t, err)
}

func TestEditor_UpdateTooth(t *testing.T) {
	ed := newTestEditor()
	a, _ := ed.AddTooth(11)
	ed.AddTooth(12)

	_, err := ed.UpdateTooth(a.ID, "toothNumber", "12")
	assertValidation(t, err)

	got, err := ed.UpdateTooth(a.ID, "treatmentCompleted", "true")
	if err != nil || !got.TreatmentCompleted {
		t.Errorf("unexpected update %+v, %v", got, err)
	}
	_, err = ed.UpdateTooth(a.ID, "treatmentCompleted", "maybe")
	assertValidation(t, err)

	got, err = ed.UpdateTooth(a.ID, "toothNumber", "11")
	if err != nil || got.ToothNumber != 11 {
		t.Errorf("renumbering to itself should succeed: %+v, %v", got, err)
	}
	if _, err := ed.UpdateTooth("nope", "notes", "x"); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("expected ErrEntryNotFound, got %v", err)
	}
}

func TestEditor_UpdateProcedureStatus(t *testing.T) {
	ed := newTestEditor()
	p := ed.AddProcedure()

	_, err := ed.UpdateProcedure(p.ID, "status", "Bogus")
	assertValidation(t, err)
	got, err := ed.UpdateProcedure(p.ID, "status", "In Progress")
	if err != nil || got.Status != "In Progress" {
		t.Errorf("unexpected procedure %+v, %v", got, err)
	}
}

func TestEditor_UpdateXRayType(t *testing.T) {
	ed := newTestEditor()
	x := ed.AddXRay()
	_, err := ed.UpdateXRay(x.ID, "type", "MRI")
	assertValidation(t, err)
	got, err := ed.UpdateXRay(x.ID, "imageUrl", "/xray/1.png")
	if err != nil || got.ImageURL != "/xray/1.png" {
		t.Errorf("unexpected x-ray %+v, %v", got, err)
	}
}

func TestEditor_SectionDispatch(t *testing.T) {
	ed := newTestEditor()
	for _, s := range []string{SectionMedications, SectionProcedures, SectionTeeth, SectionXRays} {
		if _, err := ed.Add(s); err != nil {
			t.Fatalf("Add(%s): %v", s, err)
		}
	}
	r := ed.Record()
	if len(r.Medications) != 1 || len(r.Procedures) != 1 || len(r.Teeth) != 1 || len(r.XRays) != 1 {
		t.Fatalf("unexpected record %+v", r)
	}

	if _, err := ed.Update(SectionMedications, r.Medications[0].ID, "name", "Amoxicillin"); err != nil {
		t.Errorf("Update: %v", err)
	}
	if err := ed.Remove(SectionXRays, r.XRays[0].ID); err != nil {
		t.Errorf("Remove: %v", err)
	}
	if got := ed.Record(); got.Medications[0].Name != "Amoxicillin" || len(got.XRays) != 0 {
		t.Errorf("unexpected record after edits %+v", got)
	}

	_, err := ed.Add("allergies")
	assertValidation(t, err)
	assertValidation(t, ed.Remove("implants", "1"))
}

func TestEditor_SetField(t *testing.T) {
	ed := newTestEditor()
	if err := ed.SetField("diagnosis", "Caries"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ed.SetField("patientId", "42"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r := ed.Record()
	if r.Diagnosis != "Caries" || r.PatientID != 42 {
		t.Errorf("unexpected record %+v", r)
	}
	assertValidation(t, ed.SetField("patientId", "abc"))
	assertValidation(t, ed.SetField("favouriteColour", "blue"))
	assertValidation(t, ed.SetField("notation", "palmer"))
}

func TestEditor_SetNotationConvertsTeeth(t *testing.T) {
	ed := newTestEditor()
	ed.AddTooth(11)
	ed.AddTooth(36)

	if err := ed.SetField("notation", "universal"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	teeth := ed.Record().Teeth
	if teeth[0].ToothNumber != 8 || teeth[1].ToothNumber != 19 {
		t.Errorf("unexpected universal teeth %+v", teeth)
	}
	if err := ed.SetField("notation", "fdi"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	teeth = ed.Record().Teeth
	if teeth[0].ToothNumber != 11 || teeth[1].ToothNumber != 36 {
		t.Errorf("unexpected fdi teeth %+v", teeth)
	}
}

func TestEditor_PayloadStripsIDs(t *testing.T) {
	ed := newTestEditor()
	ed.AddMedication()
	ed.AddTooth(0)

	p := ed.Payload()
	if p.Medications[0].ID != "" || p.Teeth[0].ID != "" {
		t.Errorf("payload kept entry ids: %+v", p)
	}
	if r := ed.Record(); r.Medications[0].ID == "" {
		t.Error("working record lost its ids")
	}
}
