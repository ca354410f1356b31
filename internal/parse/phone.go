package parse

import "strings"

// NormalizePhone reduces a phone number to "+" followed by digits. A bare
// ten-digit national number gets countryCode prepended. It returns "" when raw
// contains no digits.
func NormalizePhone(raw, countryCode string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" {
		return ""
	}
	if len(digits) == 10 {
		digits = strings.TrimPrefix(countryCode, "+") + digits
	}
	return "+" + digits
}
