package identity

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// AutocompleteLimit caps the patient picker's suggestion list.
const AutocompleteLimit = 10

type PatientSort string

const (
	SortByName PatientSort = "name"
	SortByAge  PatientSort = "age"
)

// GenderAll disables the gender filter.
const GenderAll = "All"

// PatientQuery drives the patient list: case-insensitive search over full
// name and phone, an exact gender filter and a sort order.
type PatientQuery struct {
	Search string
	Gender string
	Sort   PatientSort
}

func ParsePatientQuery(search, gender, sortBy string) (PatientQuery, error) {
	q := PatientQuery{Search: strings.TrimSpace(search), Gender: gender, Sort: PatientSort(sortBy)}
	if q.Gender == "" {
		q.Gender = GenderAll
	}
	if q.Gender != GenderAll && !Genders[q.Gender] {
		return q, invalid("gender", fmt.Sprintf("invalid gender filter %q", gender))
	}
	switch q.Sort {
	case "":
		q.Sort = SortByName
	case SortByName, SortByAge:
	default:
		return q, invalid("sort", fmt.Sprintf("invalid sort %q: expected name or age", sortBy))
	}
	return q, nil
}

// MatchesSearch reports whether term appears in the patient's full name or
// phone, ignoring case. An empty term matches everyone.
func MatchesSearch(p Patient, term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.FullName()), term) ||
		strings.Contains(strings.ToLower(p.Phone), term)
}

// PatientView is a patient with the age derived for the requesting day.
type PatientView struct {
	Patient
	Age int `json:"age"`
}

func NewPatientView(p Patient, today time.Time) PatientView {
	age, _ := Age(p.DateOfBirth, today)
	return PatientView{Patient: p, Age: age}
}

// FilterPatients applies q to patients and returns views in q's order. Name
// order compares "first last" case-insensitively; age order is youngest
// first. Ties keep input order.
func FilterPatients(patients []Patient, q PatientQuery, today time.Time) []PatientView {
	out := make([]PatientView, 0, len(patients))
	for _, p := range patients {
		if !MatchesSearch(p, q.Search) {
			continue
		}
		if q.Gender != "" && q.Gender != GenderAll && p.Gender != q.Gender {
			continue
		}
		out = append(out, NewPatientView(p, today))
	}

	if q.Sort == SortByAge {
		sort.SliceStable(out, func(i, j int) bool { return out[i].Age < out[j].Age })
	} else {
		sort.SliceStable(out, func(i, j int) bool { return sortName(out[i].Patient) < sortName(out[j].Patient) })
	}
	return out
}

func sortName(p Patient) string {
	return strings.ToLower(p.FirstName + " " + p.LastName)
}

// Autocomplete returns at most AutocompleteLimit patients matching term in
// input order. A blank term suggests nothing.
func Autocomplete(patients []Patient, term string) []Patient {
	out := []Patient{}
	if strings.TrimSpace(term) == "" {
		return out
	}
	for _, p := range patients {
		if MatchesSearch(p, term) {
			out = append(out, p)
			if len(out) == AutocompleteLimit {
				break
			}
		}
	}
	return out
}
