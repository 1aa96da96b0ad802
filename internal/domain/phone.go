package domain

import "strings"

// FormatPhone renders a phone number as "(AAA) EEE-LLLL" when it contains
// exactly ten digits. Any other digit count returns phone unchanged, and an
// absent phone returns NotAvailable.
func FormatPhone(phone string, present bool) string {
	if !present {
		return NotAvailable
	}

	digits := stripNonDigits(phone)
	if len(digits) != 10 {
		return phone
	}
	return "(" + digits[:3] + ") " + digits[3:6] + "-" + digits[6:]
}

func stripNonDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
