package useradmin

import (
	"net/mail"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

const (
	maxEmailLen    = 255
	minPasswordLen = 8
	maxPasswordLen = 72
	minFullNameLen = 2
	maxFullNameLen = 100
	maxPhoneLen    = 20
)

// Loose phone shape: digits, spaces, plus, hyphen, parentheses.
var phonePattern = regexp.MustCompile(`^[0-9+\-() ]+$`)

type fieldChecker struct {
	issues []FieldError
}

func (c *fieldChecker) add(field, message string) {
	c.issues = append(c.issues, FieldError{Field: field, Message: message})
}

func (c *fieldChecker) err() error {
	if len(c.issues) == 0 {
		return nil
	}
	return &ValidationError{Fields: c.issues}
}

func (c *fieldChecker) email(field, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		c.add(field, "email is required")
		return
	}
	if len(value) > maxEmailLen {
		c.add(field, "email must be at most 255 characters")
		return
	}
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		c.add(field, "invalid email address")
	}
}

func (c *fieldChecker) password(field, value string) {
	if len(value) < minPasswordLen {
		c.add(field, "password must be at least 8 characters")
		return
	}
	if len(value) > maxPasswordLen {
		c.add(field, "password must be at most 72 characters")
	}
}

func (c *fieldChecker) fullName(field, value string, required bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		if required {
			c.add(field, "full name is required")
		}
		return
	}
	if len([]rune(value)) < minFullNameLen {
		c.add(field, "full name must be at least 2 characters")
		return
	}
	if len([]rune(value)) > maxFullNameLen {
		c.add(field, "full name must be at most 100 characters")
	}
}

func (c *fieldChecker) arabicName(field, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	if len([]rune(value)) > maxFullNameLen {
		c.add(field, "name must be at most 100 characters")
	}
}

func (c *fieldChecker) phone(field, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	if len(value) > maxPhoneLen {
		c.add(field, "phone must be at most 20 characters")
		return
	}
	if !phonePattern.MatchString(value) {
		c.add(field, "phone may only contain digits, spaces, +, - and parentheses")
	}
}

func (c *fieldChecker) uuid(field, value string) {
	if uuid.Validate(strings.TrimSpace(value)) != nil {
		c.add(field, field+" must be a valid UUID")
	}
}

func (c *fieldChecker) assignableRole(field string, role Role) {
	if !role.Assignable() {
		c.add(field, "role must be admin or employee")
	}
}
