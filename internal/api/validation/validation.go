package validation

import (
	"encoding/json"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// EmailRegex validates email format
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

	// UUIDRegex validates UUID format
	uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

	// RequirementRefRegex validates framework references like "SOX-404" or "A.9.2.1"
	requirementRefRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9.\-_ ]{0,63}$`)
)

// IsValidEmail checks if the string is a valid email format
func IsValidEmail(email string) bool {
	if len(email) > 254 {
		return false
	}
	return emailRegex.MatchString(email)
}

// IsValidUUID checks if the string is a valid UUID format
func IsValidUUID(id string) bool {
	return uuidRegex.MatchString(id)
}

// IsValidRequirementRef checks a framework requirement reference
func IsValidRequirementRef(ref string) bool {
	return requirementRefRegex.MatchString(ref)
}

// IsValidEndpoint accepts absolute http(s) URLs with a host
func IsValidEndpoint(endpoint string) bool {
	u, err := url.Parse(endpoint)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// IsValidJSONObject reports whether raw is a JSON object
func IsValidJSONObject(raw []byte) bool {
	var obj map[string]interface{}
	return json.Unmarshal(raw, &obj) == nil
}

// IsValidPassword checks password length
func IsValidPassword(password string) (bool, string) {
	if len(password) < 8 {
		return false, "Password must be at least 8 characters"
	}
	if len(password) > 128 {
		return false, "Password must be at most 128 characters"
	}
	return true, ""
}

// SanitizeString removes potentially dangerous characters for display
func SanitizeString(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")

	var result strings.Builder
	for _, r := range s {
		if r == '\n' || r == '\r' || r == '\t' || !unicode.IsControl(r) {
			result.WriteRune(r)
		}
	}

	return result.String()
}

// TruncateString truncates a string to maxLen runes
func TruncateString(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen])
}

// CleanText strips control characters and caps free text at maxLen runes
func CleanText(s string, maxLen int) string {
	return TruncateString(SanitizeString(s), maxLen)
}

// RequireText records a field error when the trimmed value is empty or too long
func RequireText(errors map[string]string, field, value string, maxLen int) {
	trimmed := strings.TrimSpace(value)
	switch {
	case trimmed == "":
		errors[field] = strings.ToUpper(field[:1]) + strings.ReplaceAll(field[1:], "_", " ") + " is required"
	case len(trimmed) > maxLen:
		errors[field] = "Must be at most " + strconv.Itoa(maxLen) + " characters"
	}
}
