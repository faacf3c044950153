package utils

import "regexp"

var emailRe = regexp.MustCompile(`^[0-9a-zA-Z]([-_.]?[0-9a-zA-Z])*@[0-9a-zA-Z]([-_.]?[0-9a-zA-Z])*\.[a-zA-Z]{2,3}$`)

// ValidEmail reports whether the address has a plausible mailbox@domain.tld shape.
func ValidEmail(email string) bool {
	return emailRe.MatchString(email)
}

// ValidPassword enforces the signup password policy: 6 to 15
// characters drawn from letters, digits and !@#$%^&*, with at least
// two of those three character classes present.
func ValidPassword(password string) bool {
	if len(password) < 6 || len(password) > 15 {
		return false
	}
	var hasLetter, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			hasLetter = true
		case r >= '0' && r <= '9':
			hasDigit = true
		case r == '!' || r == '@' || r == '#' || r == '$' || r == '%' || r == '^' || r == '&' || r == '*':
			hasSpecial = true
		default:
			return false
		}
	}
	classes := 0
	for _, ok := range []bool{hasLetter, hasDigit, hasSpecial} {
		if ok {
			classes++
		}
	}
	return classes >= 2
}

// ValidName requires a display name of at least two characters.
func ValidName(name string) bool {
	return len([]rune(name)) >= 2
}
