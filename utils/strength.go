package utils

import (
	"strings"
	"unicode"

	"github.com/nbutton23/zxcvbn-go"
)

var strengthLabels = [...]string{"Very Weak", "Weak", "Fair", "Strong", "Very Strong"}

// PasswordScore rates a candidate password from 0 (very weak) to 4
// (very strong). Each present character class earns a point; a password
// under the minimum length can never rate above Fair, and one the
// zxcvbn estimator cracks instantly (dictionary words, keyboard walks,
// repeats) is pinned to Weak regardless of its classes.
func PasswordScore(password string) int {
	hasUpper, hasLower, hasDigit, hasSymbol := passwordClasses(password)
	score := 0
	for _, present := range []bool{hasUpper, hasLower, hasDigit, hasSymbol} {
		if present {
			score++
		}
	}
	if len(password) < MIN_PASSWORD_LENGTH && score > 2 {
		score = 2
	}
	if zxcvbn.PasswordStrength(password, nil).Score == 0 && score > 1 {
		score = 1
	}
	return score
}

// PasswordFeedback lists every unmet requirement, ending with a
// guessability warning when the estimator flags the password.
func PasswordFeedback(password string) string {
	hasUpper, hasLower, hasDigit, hasSymbol := passwordClasses(password)
	var problems []string
	if len(password) < MIN_PASSWORD_LENGTH {
		problems = append(problems, "Password must be at least 12 characters long")
	}
	if !hasUpper {
		problems = append(problems, "Add an uppercase letter")
	}
	if !hasLower {
		problems = append(problems, "Add a lowercase letter")
	}
	if !hasDigit {
		problems = append(problems, "Add a digit")
	}
	if !hasSymbol {
		problems = append(problems, "Add a symbol")
	}
	if zxcvbn.PasswordStrength(password, nil).Score < MIN_PASSWORD_SCORE {
		problems = append(problems, "Avoid dictionary words and repeated patterns")
	}
	return strings.Join(problems, ". ")
}

// PasswordStrengthText translates a score into its label.
func PasswordStrengthText(score int) string {
	if score < 0 || score >= len(strengthLabels) {
		return strengthLabels[0]
	}
	return strengthLabels[score]
}

func passwordClasses(password string) (hasUpper, hasLower, hasDigit, hasSymbol bool) {
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSymbol = true
		}
	}
	return
}
