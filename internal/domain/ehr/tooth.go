package ehr

import (
	"fmt"
	"strings"
)

// Notation is the tooth numbering scheme a chart uses.
type Notation string

const (
	NotationUniversal Notation = "universal"
	NotationFDI       Notation = "fdi"
)

// DefaultToothNumber is the tooth a manually added record starts on.
const DefaultToothNumber = 11

// DefaultToggleCondition is given to teeth added from the chart.
const DefaultToggleCondition = "Healthy"

func ParseNotation(s string) (Notation, error) {
	switch Notation(strings.ToLower(s)) {
	case "", NotationFDI:
		return NotationFDI, nil
	case NotationUniversal:
		return NotationUniversal, nil
	}
	return "", invalid("notation", fmt.Sprintf("invalid notation %q: expected fdi or universal", s))
}

// ValidTooth reports whether n names a permanent tooth in notation.
func ValidTooth(n int, notation Notation) bool {
	if notation == NotationUniversal {
		return n >= 1 && n <= 32
	}
	q, p := n/10, n%10
	return q >= 1 && q <= 4 && p >= 1 && p <= 8
}

// UniversalToFDI converts a Universal number (1 = upper right third molar)
// to its FDI two-digit equivalent.
func UniversalToFDI(u int) (int, error) {
	switch {
	case u >= 1 && u <= 8:
		return 19 - u, nil
	case u >= 9 && u <= 16:
		return u + 12, nil
	case u >= 17 && u <= 24:
		return 55 - u, nil
	case u >= 25 && u <= 32:
		return u + 16, nil
	}
	return 0, fmt.Errorf("invalid universal tooth number %d", u)
}

func FDIToUniversal(fdi int) (int, error) {
	if !ValidTooth(fdi, NotationFDI) {
		return 0, fmt.Errorf("invalid FDI tooth number %d", fdi)
	}
	q, p := fdi/10, fdi%10
	switch q {
	case 1:
		return 9 - p, nil
	case 2:
		return 8 + p, nil
	case 3:
		return 25 - p, nil
	}
	return 24 + p, nil
}

// ConvertTeeth renumbers records between notations.
func ConvertTeeth(teeth []ToothRecord, from, to Notation) ([]ToothRecord, error) {
	out := append([]ToothRecord{}, teeth...)
	if from == to {
		return out, nil
	}
	for i := range out {
		var (
			n   int
			err error
		)
		if to == NotationFDI {
			n, err = UniversalToFDI(out[i].ToothNumber)
		} else {
			n, err = FDIToUniversal(out[i].ToothNumber)
		}
		if err != nil {
			return nil, err
		}
		out[i].ToothNumber = n
	}
	return out, nil
}

// ConditionCategory groups free-text tooth conditions for the chart overlay.
type ConditionCategory string

const (
	CategoryHealthy ConditionCategory = "healthy"
	CategoryProblem ConditionCategory = "problem"
	CategoryTreated ConditionCategory = "treated"
	CategoryMissing ConditionCategory = "missing"
)

func CategorizeCondition(condition string) ConditionCategory {
	c := strings.ToLower(condition)
	switch {
	case strings.Contains(c, "missing"), strings.Contains(c, "extracted"):
		return CategoryMissing
	case strings.Contains(c, "cavity"), strings.Contains(c, "decay"), strings.Contains(c, "problem"):
		return CategoryProblem
	case strings.Contains(c, "treated"), strings.Contains(c, "filled"), strings.Contains(c, "crown"):
		return CategoryTreated
	}
	return CategoryHealthy
}

// ChartTooth is one position on the rendered chart.
type ChartTooth struct {
	Number   int               `json:"number"`
	Quadrant string            `json:"quadrant"`
	Selected bool              `json:"selected"`
	Category ConditionCategory `json:"category"`
}

var quadrants = []string{"upper-right", "upper-left", "lower-left", "lower-right"}

// Chart lays out all 32 teeth in Universal order, which walks the upper
// arch right to left and then the lower arch left to right.
func Chart(teeth []ToothRecord, notation Notation) []ChartTooth {
	byNumber := make(map[int]ToothRecord, len(teeth))
	for _, t := range teeth {
		byNumber[t.ToothNumber] = t
	}

	out := make([]ChartTooth, 0, 32)
	for u := 1; u <= 32; u++ {
		n := u
		if notation != NotationUniversal {
			n, _ = UniversalToFDI(u)
		}
		ct := ChartTooth{Number: n, Quadrant: quadrants[(u-1)/8], Category: CategoryHealthy}
		if rec, ok := byNumber[n]; ok {
			ct.Selected = true
			ct.Category = CategorizeCondition(rec.Condition)
		}
		out = append(out, ct)
	}
	return out
}
