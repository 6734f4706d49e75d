package sanitizer

import (
	"strings"

	"golang.org/x/text/cases"
)

// NormalizeEmail trims surrounding whitespace and case-folds the whole address.
// Case folding is Unicode-aware, so non-ASCII local parts compare consistently too.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	if email == "" {
		return ""
	}
	return cases.Fold().String(email)
}

// MaskEmail keeps the first character of the local part and the domain.
// Input without exactly one @ is returned fully masked.
func MaskEmail(email string) string {
	email = strings.TrimSpace(email)

	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" || strings.Contains(domain, "@") {
		return "***"
	}

	runes := []rune(local)
	return string(runes[0]) + strings.Repeat("*", len(runes)-1) + "@" + domain
}
