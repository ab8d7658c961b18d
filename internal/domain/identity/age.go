package identity

import (
	"time"

	"github.com/dental/clinic/pkg/clinicdate"
)

// Age returns whole years between dob and today, counting a birthday only
// once its month and day have been reached.
func Age(dob string, today time.Time) (int, error) {
	birth, err := clinicdate.ParseDate(clinicdate.DateAPIToInput(dob))
	if err != nil {
		return 0, err
	}
	age := today.Year() - birth.Year()
	if today.Month() < birth.Month() || (today.Month() == birth.Month() && today.Day() < birth.Day()) {
		age--
	}
	return age, nil
}
