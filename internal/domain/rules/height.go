package rules

import (
	"strconv"
	"strings"

	"github.com/rajsir217-oss/profiledata-gateway/internal/domain/model"
)

// ParseHeight parses a profile height string in `feet'inches"` form
// (5'7", 5' 7, 6'0). Returns total inches and false for empty or
// malformed input; callers skip height-derived filters in that case.
func ParseHeight(height string) (int, bool) {
	value := strings.TrimSpace(height)
	if value == "" {
		return 0, false
	}

	value = strings.TrimSuffix(value, `"`)
	feetPart, inchPart, found := strings.Cut(value, "'")
	if !found {
		return 0, false
	}

	feet, err := strconv.Atoi(strings.TrimSpace(feetPart))
	if err != nil || feet < 0 {
		return 0, false
	}

	inches := 0
	if trimmed := strings.TrimSpace(inchPart); trimmed != "" {
		inches, err = strconv.Atoi(trimmed)
		if err != nil || inches < 0 || inches > 11 {
			return 0, false
		}
	}

	total := feet*12 + inches
	if total <= 0 {
		return 0, false
	}
	return total, true
}

// HeightBoundFromInches converts total inches back into the feet/inches
// pair used for display and for upstream query fields. Negative totals
// floor at zero.
func HeightBoundFromInches(total int) model.HeightBound {
	if total < 0 {
		total = 0
	}
	return model.HeightBound{
		Feet:   total / 12,
		Inches: total % 12,
	}
}
