package useradmin

import (
	"fmt"
	"strings"
)

// Command is the closed set of privileged admin actions. Each action carries
// its own payload type so dispatch is exhaustive at compile time; adding an
// action without handling it everywhere will not build.
type Command interface {
	Action() string
	validate() error
	isCommand()
}

// CreateUser provisions an identity, a profile in the caller's company and a
// role assignment as one logical unit.
type CreateUser struct {
	Email      string
	Password   string
	FullName   string
	FullNameAr string
	Department string
	Phone      string
	Role       Role
}

// UpdateRole changes the role on an existing assignment.
type UpdateRole struct {
	UserID  string
	NewRole Role
}

// ToggleActive flips the is_active flag on a profile.
type ToggleActive struct {
	ProfileID string
	IsActive  bool
}

// DeleteUser removes an identity; the store cascades the dependent profile
// and role assignment.
type DeleteUser struct {
	UserID    string
	ProfileID string
}

// UpdateProfile applies a partial update to display attributes. Nil fields
// are omitted, never overwritten with empty values.
type UpdateProfile struct {
	ProfileID  string
	FullName   *string
	FullNameAr *string
	Department *string
	Phone      *string
}

func (CreateUser) Action() string    { return "create" }
func (UpdateRole) Action() string    { return "updateRole" }
func (ToggleActive) Action() string  { return "toggleActive" }
func (DeleteUser) Action() string    { return "delete" }
func (UpdateProfile) Action() string { return "updateProfile" }

func (CreateUser) isCommand()    {}
func (UpdateRole) isCommand()    {}
func (ToggleActive) isCommand()  {}
func (DeleteUser) isCommand()    {}
func (UpdateProfile) isCommand() {}

func (c CreateUser) validate() error {
	var check fieldChecker
	check.email("email", c.Email)
	check.password("password", c.Password)
	check.fullName("fullName", c.FullName, true)
	check.arabicName("fullNameAr", c.FullNameAr)
	check.phone("phone", c.Phone)
	check.assignableRole("role", c.Role)
	return check.err()
}

func (c UpdateRole) validate() error {
	var check fieldChecker
	check.uuid("userId", c.UserID)
	check.assignableRole("newRole", c.NewRole)
	return check.err()
}

func (c ToggleActive) validate() error {
	var check fieldChecker
	check.uuid("profileId", c.ProfileID)
	return check.err()
}

func (c DeleteUser) validate() error {
	var check fieldChecker
	check.uuid("userId", c.UserID)
	check.uuid("profileId", c.ProfileID)
	return check.err()
}

func (c UpdateProfile) validate() error {
	var check fieldChecker
	check.uuid("profileId", c.ProfileID)
	if c.FullName != nil {
		check.fullName("fullName", *c.FullName, false)
	}
	if c.FullNameAr != nil {
		check.arabicName("fullNameAr", *c.FullNameAr)
	}
	if c.Phone != nil {
		check.phone("phone", *c.Phone)
	}
	return check.err()
}

// Request is the wire shape of an admin call: an action discriminator plus
// the union of every action's fields.
type Request struct {
	Action     string  `json:"action"`
	Email      string  `json:"email,omitempty"`
	Password   string  `json:"password,omitempty"`
	Role       string  `json:"role,omitempty"`
	UserID     string  `json:"userId,omitempty"`
	ProfileID  string  `json:"profileId,omitempty"`
	NewRole    string  `json:"newRole,omitempty"`
	IsActive   *bool   `json:"isActive,omitempty"`
	FullName   *string `json:"fullName,omitempty"`
	FullNameAr *string `json:"fullNameAr,omitempty"`
	Department *string `json:"department,omitempty"`
	Phone      *string `json:"phone,omitempty"`
}

// ParseCommand turns a wire request into its typed command. Shape problems
// (unknown action, missing discriminated fields, unparseable roles) are
// reported as validation errors before any store access.
func ParseCommand(req Request) (Command, error) {
	switch strings.TrimSpace(req.Action) {
	case "create":
		role, err := ParseRole(req.Role)
		if err != nil {
			return nil, &ValidationError{Fields: []FieldError{{Field: "role", Message: "role must be admin or employee"}}}
		}
		return CreateUser{
			Email:      strings.TrimSpace(req.Email),
			Password:   req.Password,
			FullName:   deref(req.FullName),
			FullNameAr: deref(req.FullNameAr),
			Department: deref(req.Department),
			Phone:      deref(req.Phone),
			Role:       role,
		}, nil
	case "updateRole":
		role, err := ParseRole(req.NewRole)
		if err != nil {
			return nil, &ValidationError{Fields: []FieldError{{Field: "newRole", Message: "newRole must be admin or employee"}}}
		}
		return UpdateRole{UserID: strings.TrimSpace(req.UserID), NewRole: role}, nil
	case "toggleActive":
		if req.IsActive == nil {
			return nil, &ValidationError{Fields: []FieldError{{Field: "isActive", Message: "isActive is required"}}}
		}
		return ToggleActive{ProfileID: strings.TrimSpace(req.ProfileID), IsActive: *req.IsActive}, nil
	case "delete":
		return DeleteUser{
			UserID:    strings.TrimSpace(req.UserID),
			ProfileID: strings.TrimSpace(req.ProfileID),
		}, nil
	case "updateProfile":
		return UpdateProfile{
			ProfileID:  strings.TrimSpace(req.ProfileID),
			FullName:   req.FullName,
			FullNameAr: req.FullNameAr,
			Department: req.Department,
			Phone:      req.Phone,
		}, nil
	case "":
		return nil, &ValidationError{Fields: []FieldError{{Field: "action", Message: "action is required"}}}
	default:
		return nil, &ValidationError{Fields: []FieldError{{Field: "action", Message: fmt.Sprintf("unknown action %q", req.Action)}}}
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
