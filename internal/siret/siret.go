// Package siret cleans, validates and formats French registry identifiers:
// the 14-digit SIRET (establishment) and the 9-digit SIREN (legal entity).
package siret

import (
	"strings"
)

const (
	// FullLength is the number of digits in a SIRET.
	FullLength = 14
	// EntityLength is the number of digits in a SIREN.
	EntityLength = 9
)

// InvalidMessage is the user-facing message for a malformed SIRET.
const InvalidMessage = "Le SIRET doit contenir exactement 14 chiffres (must contain exactly 14 digits)."

// Validation is the outcome of ValidateComplete.
type Validation struct {
	Valid   bool
	Cleaned string
	Message string
}

// Clean strips every character that is not an ASCII digit.
func Clean(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		if c := raw[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// IsValidFull reports whether digits is exactly 14 ASCII digits.
func IsValidFull(digits string) bool {
	return len(digits) == FullLength && allDigits(digits)
}

// ExtractEntityID returns the SIREN prefix of a SIRET, or "" when the input
// is too short. Callers must check for the empty result.
func ExtractEntityID(full string) string {
	if len(full) < EntityLength {
		return ""
	}
	return full[:EntityLength]
}

// ValidateComplete cleans raw and validates the result. Every lookup path
// goes through here so no caller can skip cleaning.
func ValidateComplete(raw string) Validation {
	cleaned := Clean(raw)
	if !IsValidFull(cleaned) {
		return Validation{Cleaned: cleaned, Message: InvalidMessage}
	}
	return Validation{Valid: true, Cleaned: cleaned}
}

// FormatSIREN groups a 9-digit SIREN as "123 456 789". Other inputs are
// returned unchanged.
func FormatSIREN(s string) string {
	if len(s) != EntityLength {
		return s
	}
	return s[0:3] + " " + s[3:6] + " " + s[6:9]
}

// FormatSIRET groups a 14-digit SIRET as "123 456 789 01234". Other inputs
// are returned unchanged.
func FormatSIRET(s string) string {
	if len(s) != FullLength {
		return s
	}
	return s[0:3] + " " + s[3:6] + " " + s[6:9] + " " + s[9:14]
}

// MaskSecret hides all but the last four characters of a credential.
func MaskSecret(s string) string {
	if len(s) < 8 {
		return "***"
	}
	return strings.Repeat("*", len(s)-4) + s[len(s)-4:]
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
