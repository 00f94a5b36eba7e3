package phone

import (
	"errors"
	"strings"
)

// matchLength is the canonical suffix length used for comparison. Numbers
// that normalize to fewer digits are rejected rather than fuzzy-matched,
// which avoids false-positive collisions on short or partial numbers.
const matchLength = 9

// ErrTooShort is returned when a number normalizes to fewer than nine
// digits and cannot be used for matching.
var ErrTooShort = errors.New("phone number too short to match")

// Normalize canonicalizes a raw phone string into a digit-only suffix for
// comparison: non-digits are removed, the given country calling code prefix
// is stripped, then a leading local-format zero, and the result is clipped
// to its last nine digits.
func Normalize(raw, countryCode string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	if countryCode != "" && strings.HasPrefix(digits, countryCode) {
		digits = digits[len(countryCode):]
	}
	digits = strings.TrimPrefix(digits, "0")

	if len(digits) > matchLength {
		digits = digits[len(digits)-matchLength:]
	}
	if len(digits) < matchLength {
		return "", ErrTooShort
	}
	return digits, nil
}

// Match reports whether two raw phone strings resolve to the same canonical
// suffix. Numbers too short to normalize never match.
func Match(a, b, countryCode string) bool {
	na, err := Normalize(a, countryCode)
	if err != nil {
		return false
	}
	nb, err := Normalize(b, countryCode)
	if err != nil {
		return false
	}
	return na == nb
}
