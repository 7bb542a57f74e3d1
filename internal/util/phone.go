package util

import (
	"regexp"
	"strings"
)

var (
	nonDigits = regexp.MustCompile(`\D+`)
	mobile344 = regexp.MustCompile(`^(\d{3})(\d{4})(\d{4})$`)
)

// NormalizePhone canonicalizes raw phone input into the stored form: digits
// only, a dropped leading zero ("10...") restored, the 010 mobile prefix
// prepended when missing, and 11-digit 3-4-4 shapes formatted XXX-XXXX-XXXX.
// Anything else stays as the bare digit string. Returns "" when the input
// contains no digits at all.
func NormalizePhone(raw string) string {
	s := nonDigits.ReplaceAllString(strings.TrimSpace(raw), "")
	if s == "" {
		return ""
	}

	if strings.HasPrefix(s, "10") {
		s = "0" + s
	}
	if !strings.HasPrefix(s, "010") {
		s = "010" + s
	}

	if m := mobile344.FindStringSubmatch(s); m != nil {
		return m[1] + "-" + m[2] + "-" + m[3]
	}

	return s
}
