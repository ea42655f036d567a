package rules

import "strings"

const linkedinPlaceholder = "[Private - Request Access]"

// MaskEmail keeps the first character of the local part and the domain:
// john.doe@example.com -> j***@example.com.
func MaskEmail(email string) string {
	if email == "" || !strings.Contains(email, "@") {
		return email
	}

	local, domain, _ := strings.Cut(email, "@")
	if local == "" {
		return email
	}
	return local[:1] + "***@" + domain
}

// MaskPhone keeps the last four digits: +1-555-123-4567 -> ***-***-4567.
// Extensions are dropped before masking.
func MaskPhone(phone string) string {
	if phone == "" {
		return phone
	}

	cleaned := phone
	if idx := strings.Index(strings.ToLower(cleaned), "ext"); idx >= 0 {
		cleaned = cleaned[:idx]
	}

	var digits []byte
	for i := 0; i < len(cleaned); i++ {
		if cleaned[i] >= '0' && cleaned[i] <= '9' {
			digits = append(digits, cleaned[i])
		}
	}
	if len(digits) < 4 {
		return "***"
	}
	return "***-***-" + string(digits[len(digits)-4:])
}

// MaskLocation coarsens a street-level location to city/state granularity.
// "123 Main St, New York, NY" -> "NY"; four or more comma parts keep the
// last two; one or two parts pass through unchanged.
func MaskLocation(location string) string {
	if location == "" {
		return location
	}

	raw := strings.Split(location, ",")
	parts := make([]string, 0, len(raw))
	for _, p := range raw {
		parts = append(parts, strings.TrimSpace(p))
	}

	switch {
	case len(parts) == 3:
		return parts[2]
	case len(parts) >= 4:
		return strings.Join(parts[len(parts)-2:], ", ")
	default:
		return location
	}
}

// MaskWorkplace keeps only the company name before the first comma.
func MaskWorkplace(workplace string) string {
	if workplace == "" {
		return workplace
	}
	first, _, _ := strings.Cut(workplace, ",")
	return strings.TrimSpace(first)
}

// MaskLinkedinURL hides the URL entirely.
func MaskLinkedinURL(url string) string {
	if url == "" {
		return url
	}
	return linkedinPlaceholder
}
