package domain

import (
	"fmt"
	"regexp"
	"strings"
)

var licensePlatePattern = regexp.MustCompile(`^[A-Z0-9\s\-\.]+$`)

// NormalizeLicensePlate trims and uppercases a plate and validates the
// restricted character set. Plates are 2-10 characters of letters, digits,
// spaces, dashes and dots.
func NormalizeLicensePlate(raw string) (string, error) {
	plate := strings.ToUpper(strings.TrimSpace(raw))
	if plate == "" {
		return "", fmt.Errorf("license plate cannot be empty")
	}
	if len(plate) < 2 || len(plate) > 10 {
		return "", fmt.Errorf("license plate must be between 2 and 10 characters")
	}
	if !licensePlatePattern.MatchString(plate) {
		return "", fmt.Errorf("license plate contains invalid characters")
	}
	return plate, nil
}
