package useradmin

import "time"

// Identity is an authentication principal in the identity store, globally
// unique by email. Identities are created and destroyed only through the
// create/delete actions.
type Identity struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Profile is the tenant-scoped display record for an identity. A profile's
// company id never changes once set.
type Profile struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	CompanyID  string    `json:"company_id"`
	FullName   string    `json:"full_name"`
	FullNameAr string    `json:"full_name_ar,omitempty"`
	Department string    `json:"department,omitempty"`
	Phone      string    `json:"phone,omitempty"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// RoleAssignment maps an identity to its single role within a company.
type RoleAssignment struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	CompanyID string    `json:"company_id"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Actor is the resolved caller: identity, tenant and role looked up from the
// store on every invocation. Nothing in Actor comes from the request payload.
type Actor struct {
	UserID    string
	ProfileID string
	CompanyID string
	Role      Role
}

// ProfileUpdate is a partial update; nil fields are left untouched.
type ProfileUpdate struct {
	FullName   *string
	FullNameAr *string
	Department *string
	Phone      *string
}

// Result is returned by a successful admin action.
type Result struct {
	UserID string `json:"userId,omitempty"`
}
