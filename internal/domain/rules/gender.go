package rules

import "strings"

const (
	GenderMale   = "Male"
	GenderFemale = "Female"
)

// NormalizeGender maps free-form gender input to the canonical values used
// by the profile store. Unknown input normalizes to empty.
func NormalizeGender(gender string) string {
	switch strings.ToLower(strings.TrimSpace(gender)) {
	case "male", "m":
		return GenderMale
	case "female", "f":
		return GenderFemale
	}
	return ""
}

// OppositeGender returns the default partner gender for a viewer, or empty
// when the viewer's own gender is unset or unrecognized (no filter).
func OppositeGender(gender string) string {
	switch NormalizeGender(gender) {
	case GenderMale:
		return GenderFemale
	case GenderFemale:
		return GenderMale
	}
	return ""
}

// GenderMatches compares case-insensitively; an empty filter matches all.
func GenderMatches(filter, candidate string) bool {
	if strings.TrimSpace(filter) == "" {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(filter), strings.TrimSpace(candidate))
}
