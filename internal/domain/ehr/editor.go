package ehr

import (
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/dental/clinic/pkg/clinicdate"
)

// Sections that hold repeatable entries.
const (
	SectionMedications = "medications"
	SectionProcedures  = "procedures"
	SectionTeeth       = "teeth"
	SectionXRays       = "xrays"
)

const DefaultRoute = "Oral"

var ProcedureStatuses = map[string]bool{
	"Planned":     true,
	"In Progress": true,
	"Done":        true,
	"Completed":   true,
	"Cancelled":   true,
}

var XRayTypes = map[string]bool{
	"Periapical": true,
	"Bitewing":   true,
	"Panoramic":  true,
	"Occlusal":   true,
	"CBCT":       true,
}

// IDGenerator yields entry identifiers unique within an editing session.
type IDGenerator func() string

func UUIDGenerator() IDGenerator {
	return uuid.NewString
}

// CounterGenerator yields "1", "2", ... and is safe for concurrent use.
func CounterGenerator() IDGenerator {
	var n atomic.Int64
	return func() string { return strconv.FormatInt(n.Add(1), 10) }
}

// Editor holds one in-progress record. It is not safe for concurrent use;
// SessionStore serializes access.
type Editor struct {
	ehr   EHR
	newID IDGenerator
	now   func() time.Time
}

// NewEditor starts editing base. Entries without an id get one.
func NewEditor(base EHR, newID IDGenerator, now func() time.Time) *Editor {
	if newID == nil {
		newID = UUIDGenerator()
	}
	if now == nil {
		now = time.Now
	}
	e := &Editor{ehr: base.Clone(), newID: newID, now: now}
	if e.ehr.Notation == "" {
		e.ehr.Notation = NotationFDI
	}
	for i := range e.ehr.Medications {
		if e.ehr.Medications[i].ID == "" {
			e.ehr.Medications[i].ID = newID()
		}
	}
	for i := range e.ehr.Procedures {
		if e.ehr.Procedures[i].ID == "" {
			e.ehr.Procedures[i].ID = newID()
		}
	}
	for i := range e.ehr.Teeth {
		if e.ehr.Teeth[i].ID == "" {
			e.ehr.Teeth[i].ID = newID()
		}
	}
	for i := range e.ehr.XRays {
		if e.ehr.XRays[i].ID == "" {
			e.ehr.XRays[i].ID = newID()
		}
	}
	return e
}

// Record returns a copy of the working record, entry ids included.
func (e *Editor) Record() EHR {
	return e.ehr.Clone()
}

// Payload returns the record as saved: entry ids are stripped.
func (e *Editor) Payload() EHR {
	return StripEntryIDs(e.ehr)
}

func StripEntryIDs(r EHR) EHR {
	out := r.Clone()
	for i := range out.Medications {
		out.Medications[i].ID = ""
	}
	for i := range out.Procedures {
		out.Procedures[i].ID = ""
	}
	for i := range out.Teeth {
		out.Teeth[i].ID = ""
	}
	for i := range out.XRays {
		out.XRays[i].ID = ""
	}
	return out
}

func (e *Editor) today() string {
	return clinicdate.Today(e.now())
}

func (e *Editor) nowInput() string {
	return e.now().Format(clinicdate.DateTimeInputLayout)
}

// SetField assigns a top-level field by its JSON name: the patient and
// appointment ids, a free-text section, or "notation", which renumbers
// existing teeth into the new scheme.
func (e *Editor) SetField(name, value string) error {
	f := &e.ehr.Fields
	switch name {
	case "patientId", "appointmentId":
		id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil || id < 0 {
			return invalid(name, fmt.Sprintf("invalid %s %q", name, value))
		}
		if name == "patientId" {
			e.ehr.PatientID = id
		} else {
			e.ehr.AppointmentID = id
		}
	case "allergies":
		f.Allergies = value
	case "medicalAlerts":
		f.MedicalAlerts = value
	case "history":
		f.History = value
	case "diagnosis":
		f.Diagnosis = value
	case "xRayFindings":
		f.XRayFindings = value
	case "periodontalStatus":
		f.PeriodontalStatus = value
	case "treatments":
		f.Treatments = value
	case "clinicalNotes":
		f.ClinicalNotes = value
	case "recommendations":
		f.Recommendations = value
	case "notation":
		n, err := ParseNotation(value)
		if err != nil {
			return err
		}
		teeth, err := ConvertTeeth(e.ehr.Teeth, e.ehr.Notation, n)
		if err != nil {
			return invalid("notation", err.Error())
		}
		e.ehr.Teeth, e.ehr.Notation = teeth, n
	default:
		return invalid(name, fmt.Sprintf("unknown field %q", name))
	}
	return nil
}

// -- Medications --

func (e *Editor) AddMedication() Medication {
	m := Medication{ID: e.newID(), Route: DefaultRoute, StartDate: e.today()}
	e.ehr.Medications = append(e.ehr.Medications, m)
	return m
}

func (e *Editor) UpdateMedication(id, field, value string) (Medication, error) {
	for i := range e.ehr.Medications {
		m := &e.ehr.Medications[i]
		if m.ID != id {
			continue
		}
		switch field {
		case "name":
			m.Name = value
		case "dosage":
			m.Dosage = value
		case "frequency":
			m.Frequency = value
		case "route":
			m.Route = value
		case "startDate":
			m.StartDate = value
		case "endDate":
			m.EndDate = value
		case "notes":
			m.Notes = value
		default:
			return Medication{}, invalid(field, fmt.Sprintf("unknown medication field %q", field))
		}
		return *m, nil
	}
	return Medication{}, ErrEntryNotFound
}

func (e *Editor) RemoveMedication(id string) error {
	for i, m := range e.ehr.Medications {
		if m.ID == id {
			e.ehr.Medications = append(e.ehr.Medications[:i], e.ehr.Medications[i+1:]...)
			return nil
		}
	}
	return ErrEntryNotFound
}

// -- Procedures --

func (e *Editor) AddProcedure() Procedure {
	p := Procedure{ID: e.newID(), Status: "Planned", PerformedAt: e.nowInput()}
	e.ehr.Procedures = append(e.ehr.Procedures, p)
	return p
}

func (e *Editor) UpdateProcedure(id, field, value string) (Procedure, error) {
	for i := range e.ehr.Procedures {
		p := &e.ehr.Procedures[i]
		if p.ID != id {
			continue
		}
		switch field {
		case "code":
			p.Code = value
		case "description":
			p.Description = value
		case "toothNumber":
			p.ToothNumber = value
		case "status":
			if !ProcedureStatuses[value] {
				return Procedure{}, invalid("status", fmt.Sprintf("invalid procedure status %q", value))
			}
			p.Status = value
		case "performedAt":
			p.PerformedAt = value
		case "notes":
			p.Notes = value
		default:
			return Procedure{}, invalid(field, fmt.Sprintf("unknown procedure field %q", field))
		}
		return *p, nil
	}
	return Procedure{}, ErrEntryNotFound
}

func (e *Editor) RemoveProcedure(id string) error {
	for i, p := range e.ehr.Procedures {
		if p.ID == id {
			e.ehr.Procedures = append(e.ehr.Procedures[:i], e.ehr.Procedures[i+1:]...)
			return nil
		}
	}
	return ErrEntryNotFound
}

// -- Teeth --

func (e *Editor) toothIndex(number int) int {
	for i, t := range e.ehr.Teeth {
		if t.ToothNumber == number {
			return i
		}
	}
	return -1
}

func (e *Editor) checkTooth(number int) error {
	if !ValidTooth(number, e.ehr.Notation) {
		return invalid("toothNumber", fmt.Sprintf("invalid %s tooth number %d", e.ehr.Notation, number))
	}
	if e.toothIndex(number) >= 0 {
		return invalid("toothNumber", fmt.Sprintf("tooth %d is already recorded", number))
	}
	return nil
}

// AddTooth adds a blank record for number, or DefaultToothNumber when
// number is zero. A number already on the chart is rejected.
func (e *Editor) AddTooth(number int) (ToothRecord, error) {
	if number == 0 {
		number = DefaultToothNumber
		if e.ehr.Notation == NotationUniversal {
			number, _ = FDIToUniversal(DefaultToothNumber)
		}
	}
	if err := e.checkTooth(number); err != nil {
		return ToothRecord{}, err
	}
	t := ToothRecord{ID: e.newID(), ToothNumber: number}
	e.ehr.Teeth = append(e.ehr.Teeth, t)
	return t, nil
}

// ToggleTooth adds number with condition Healthy when absent and removes its
// record when present. It reports whether the tooth is now recorded.
func (e *Editor) ToggleTooth(number int) (bool, error) {
	if i := e.toothIndex(number); i >= 0 {
		e.ehr.Teeth = append(e.ehr.Teeth[:i], e.ehr.Teeth[i+1:]...)
		return false, nil
	}
	if err := e.checkTooth(number); err != nil {
		return false, err
	}
	e.ehr.Teeth = append(e.ehr.Teeth, ToothRecord{ID: e.newID(), ToothNumber: number, Condition: DefaultToggleCondition})
	return true, nil
}

func (e *Editor) UpdateTooth(id, field, value string) (ToothRecord, error) {
	for i := range e.ehr.Teeth {
		t := &e.ehr.Teeth[i]
		if t.ID != id {
			continue
		}
		switch field {
		case "toothNumber":
			n, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil {
				return ToothRecord{}, invalid("toothNumber", fmt.Sprintf("invalid tooth number %q", value))
			}
			if n != t.ToothNumber {
				if err := e.checkTooth(n); err != nil {
					return ToothRecord{}, err
				}
			}
			t.ToothNumber = n
		case "condition":
			t.Condition = value
		case "treatmentPlanned":
			t.TreatmentPlanned = value
		case "treatmentCompleted":
			done, err := strconv.ParseBool(value)
			if err != nil {
				return ToothRecord{}, invalid("treatmentCompleted", fmt.Sprintf("invalid boolean %q", value))
			}
			t.TreatmentCompleted = done
		case "completedDate":
			t.CompletedDate = value
		case "surfacesAffected":
			t.SurfacesAffected = value
		case "notes":
			t.Notes = value
		default:
			return ToothRecord{}, invalid(field, fmt.Sprintf("unknown tooth field %q", field))
		}
		return *t, nil
	}
	return ToothRecord{}, ErrEntryNotFound
}

func (e *Editor) RemoveTooth(id string) error {
	for i, t := range e.ehr.Teeth {
		if t.ID == id {
			e.ehr.Teeth = append(e.ehr.Teeth[:i], e.ehr.Teeth[i+1:]...)
			return nil
		}
	}
	return ErrEntryNotFound
}

// -- X-rays --

func (e *Editor) AddXRay() XRay {
	x := XRay{ID: e.newID(), Type: "Periapical", TakenAt: e.nowInput()}
	e.ehr.XRays = append(e.ehr.XRays, x)
	return x
}

func (e *Editor) UpdateXRay(id, field, value string) (XRay, error) {
	for i := range e.ehr.XRays {
		x := &e.ehr.XRays[i]
		if x.ID != id {
			continue
		}
		switch field {
		case "type":
			if !XRayTypes[value] {
				return XRay{}, invalid("type", fmt.Sprintf("invalid x-ray type %q", value))
			}
			x.Type = value
		case "findings":
			x.Findings = value
		case "takenAt":
			x.TakenAt = value
		case "takenBy":
			x.TakenBy = value
		case "imageUrl":
			x.ImageURL = value
		case "notes":
			x.Notes = value
		default:
			return XRay{}, invalid(field, fmt.Sprintf("unknown x-ray field %q", field))
		}
		return *x, nil
	}
	return XRay{}, ErrEntryNotFound
}

func (e *Editor) RemoveXRay(id string) error {
	for i, x := range e.ehr.XRays {
		if x.ID == id {
			e.ehr.XRays = append(e.ehr.XRays[:i], e.ehr.XRays[i+1:]...)
			return nil
		}
	}
	return ErrEntryNotFound
}

// -- Section dispatch --

func unknownSection(section string) error {
	return invalid("section", fmt.Sprintf("unknown section %q", section))
}

// Add appends a defaulted entry to section and returns it.
func (e *Editor) Add(section string) (interface{}, error) {
	switch section {
	case SectionMedications:
		return e.AddMedication(), nil
	case SectionProcedures:
		return e.AddProcedure(), nil
	case SectionTeeth:
		return e.AddTooth(0)
	case SectionXRays:
		return e.AddXRay(), nil
	}
	return nil, unknownSection(section)
}

// Update sets one field of the entry id in section.
func (e *Editor) Update(section, id, field, value string) (interface{}, error) {
	switch section {
	case SectionMedications:
		return e.UpdateMedication(id, field, value)
	case SectionProcedures:
		return e.UpdateProcedure(id, field, value)
	case SectionTeeth:
		return e.UpdateTooth(id, field, value)
	case SectionXRays:
		return e.UpdateXRay(id, field, value)
	}
	return nil, unknownSection(section)
}

func (e *Editor) Remove(section, id string) error {
	switch section {
	case SectionMedications:
		return e.RemoveMedication(id)
	case SectionProcedures:
		return e.RemoveProcedure(id)
	case SectionTeeth:
		return e.RemoveTooth(id)
	case SectionXRays:
		return e.RemoveXRay(id)
	}
	return unknownSection(section)
}
