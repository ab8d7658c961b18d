package ehr

import "testing"

func TestValidate(t *testing.T) {
	base := func() EHR {
		return EHR{PatientID: 1, AppointmentID: 2, Fields: Fields{Diagnosis: "Caries"}}
	}
	tests := []struct {
		name    string
		mutate  func(*EHR)
		draft   bool
		wantErr string
	}{
		{"valid", func(r *EHR) {}, false, ""},
		{"missing patient", func(r *EHR) { r.PatientID = 0 }, true, "Patient and appointment are required"},
		{"missing appointment", func(r *EHR) { r.AppointmentID = 0 }, false, "Patient and appointment are required"},
		{"missing diagnosis", func(r *EHR) { r.Diagnosis = "" }, false, "Primary diagnosis is required"},
		{"draft without diagnosis", func(r *EHR) { r.Diagnosis = "" }, true, ""},
		{"bad fdi tooth", func(r *EHR) { r.Teeth = []ToothRecord{{ToothNumber: 9}} }, false, "invalid fdi tooth number 9"},
		{"universal tooth", func(r *EHR) {
			r.Notation = NotationUniversal
			r.Teeth = []ToothRecord{{ToothNumber: 9}}
		}, false, ""},
		{"duplicate tooth", func(r *EHR) { r.Teeth = []ToothRecord{{ToothNumber: 11}, {ToothNumber: 11}} }, false, "tooth 11 is recorded more than once"},
		{"bad status", func(r *EHR) { r.Procedures = []Procedure{{Status: "Someday"}} }, false, `invalid procedure status "Someday"`},
		{"bad x-ray", func(r *EHR) { r.XRays = []XRay{{Type: "MRI"}} }, false, `invalid x-ray type "MRI"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := base()
			tt.mutate(&r)
			err := Validate(r, tt.draft)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || err.Error() != tt.wantErr {
				t.Errorf("expected %q, got %v", tt.wantErr, err)
			}
		})
	}
}
