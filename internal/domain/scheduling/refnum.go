package scheduling

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"regexp"
)

var (
	refSpace   = big.NewInt(999999)
	refPattern = regexp.MustCompile(`^APT-\d{4}-\d{6}$`)
)

// NewReferenceNumber returns "APT-<year>-<6 digits>" using randomness from r.
func NewReferenceNumber(year int, r io.Reader) (string, error) {
	n, err := rand.Int(r, refSpace)
	if err != nil {
		return "", fmt.Errorf("generate reference number: %w", err)
	}
	return fmt.Sprintf("APT-%04d-%06d", year, n.Int64()), nil
}

func IsReferenceNumber(s string) bool {
	return refPattern.MatchString(s)
}
