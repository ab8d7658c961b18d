package ehr

import "fmt"

// Validate checks a record before it is saved. Patient and appointment are
// always required; a primary diagnosis only when the record is not a draft.
func Validate(r EHR, draft bool) error {
	if r.PatientID <= 0 || r.AppointmentID <= 0 {
		return invalid("patientId", "Patient and appointment are required")
	}
	if !draft && r.Diagnosis == "" {
		return invalid("diagnosis", "Primary diagnosis is required")
	}

	notation := r.Notation
	if notation == "" {
		notation = NotationFDI
	}
	seen := make(map[int]bool, len(r.Teeth))
	for _, t := range r.Teeth {
		if !ValidTooth(t.ToothNumber, notation) {
			return invalid("teeth", fmt.Sprintf("invalid %s tooth number %d", notation, t.ToothNumber))
		}
		if seen[t.ToothNumber] {
			return invalid("teeth", fmt.Sprintf("tooth %d is recorded more than once", t.ToothNumber))
		}
		seen[t.ToothNumber] = true
	}
	for _, p := range r.Procedures {
		if !ProcedureStatuses[p.Status] {
			return invalid("procedures", fmt.Sprintf("invalid procedure status %q", p.Status))
		}
	}
	for _, x := range r.XRays {
		if !XRayTypes[x.Type] {
			return invalid("xRays", fmt.Sprintf("invalid x-ray type %q", x.Type))
		}
	}
	return nil
}
