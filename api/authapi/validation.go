package authapi

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	apperrors "github.com/jrsteele09/book-inventory-client/internal/errors"
)

const (
	minLoginPasswordLength    = 6
	minRegisterPasswordLength = 8
	minNameLength             = 2
	passwordSpecials          = "@$!%*?&"
)

// PasswordRule is one requirement a new password has to meet.
type PasswordRule struct {
	Label string
	Test  func(string) bool
}

// PasswordRules are checked on registration, in display order.
var PasswordRules = []PasswordRule{
	{Label: "At least one uppercase letter", Test: containsAny("ABCDEFGHIJKLMNOPQRSTUVWXYZ")},
	{Label: "At least one lowercase letter", Test: containsAny("abcdefghijklmnopqrstuvwxyz")},
	{Label: "At least one number", Test: containsAny("0123456789")},
	{Label: "At least one special character (" + passwordSpecials + ")", Test: containsAny(passwordSpecials)},
}

func containsAny(chars string) func(string) bool {
	return func(s string) bool { return strings.ContainsAny(s, chars) }
}

// PasswordStrength is the share of PasswordRules met by password, 0 to 100.
func PasswordStrength(password string) int {
	met := 0
	for _, rule := range PasswordRules {
		if rule.Test(password) {
			met++
		}
	}
	return (met*100 + len(PasswordRules)/2) / len(PasswordRules)
}

// ValidatePasswordStrength checks a password chosen at registration.
func ValidatePasswordStrength(password string) error {
	if utf8.RuneCountInString(password) < minRegisterPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters long", apperrors.ErrInvalidRequest, minRegisterPasswordLength)
	}
	for _, rule := range PasswordRules {
		if !rule.Test(password) {
			return fmt.Errorf("%w: password needs %s", apperrors.ErrInvalidRequest, strings.ToLower(rule.Label))
		}
	}
	return nil
}

// ValidateCredentials validates login input before it is sent.
func ValidateCredentials(email, password string) error {
	if err := validateEmail(email); err != nil {
		return err
	}
	if password == "" {
		return fmt.Errorf("%w: password is required", apperrors.ErrInvalidRequest)
	}
	if utf8.RuneCountInString(password) < minLoginPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters long", apperrors.ErrInvalidRequest, minLoginPasswordLength)
	}
	return nil
}

// ValidateRegistration validates a sign-up form; the field errors are keyed
// like the backend's.
func ValidateRegistration(r Registration) map[string]string {
	fields := map[string]string{}
	if utf8.RuneCountInString(strings.TrimSpace(r.FirstName)) < minNameLength {
		fields["firstName"] = fmt.Sprintf("first name must be at least %d characters", minNameLength)
	}
	if utf8.RuneCountInString(strings.TrimSpace(r.LastName)) < minNameLength {
		fields["lastName"] = fmt.Sprintf("last name must be at least %d characters", minNameLength)
	}
	if err := validateEmail(r.Email); err != nil {
		fields["email"] = "a valid email is required"
	}
	if err := ValidatePasswordStrength(r.Password); err != nil {
		fields["password"] = strings.TrimPrefix(err.Error(), apperrors.ErrInvalidRequest.Error()+": ")
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("%w: email is required", apperrors.ErrInvalidRequest)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@"):], ".") {
		return fmt.Errorf("%w: invalid email format", apperrors.ErrInvalidRequest)
	}
	return nil
}
