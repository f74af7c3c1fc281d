package validate

import (
	"fmt"
	"regexp"
	"time"
)

var emailRx = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// UserID must be lowercase letters, digits, underscore, 1-20 chars
var userIdRx = regexp.MustCompile(`^[a-z0-9_]{1,20}$`)

func UserID(v string) error {
	if v == "" {
		return fmt.Errorf("userId is required")
	}
	if !userIdRx.MatchString(v) {
		return fmt.Errorf("userId must be 1-20 lowercase letters, digits or underscore")
	}
	return nil
}

func Email(v string) error {
	if v == "" {
		return fmt.Errorf("email is required")
	}
	if len(v) > 320 || !emailRx.MatchString(v) {
		return fmt.Errorf("invalid email")
	}
	return nil
}

func NonEmpty(field, v string) error {
	if v == "" {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}

func MaxLen(field string, v *string, limit int) error {
	if v == nil {
		return nil
	}
	if len(*v) > limit {
		return fmt.Errorf("%s exceeds %d characters", field, limit)
	}
	return nil
}

func NonNegative(field string, v float64) error {
	if v < 0 {
		return fmt.Errorf("%s must not be negative", field)
	}
	return nil
}

// TimeZone checks that v is a loadable IANA zone name. Empty is allowed;
// callers default it to UTC.
func TimeZone(v string) error {
	if v == "" {
		return nil
	}
	if _, err := time.LoadLocation(v); err != nil {
		return fmt.Errorf("unknown time zone %q", v)
	}
	return nil
}
