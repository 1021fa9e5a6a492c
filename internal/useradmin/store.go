package useradmin

import "context"

// Store describes the identity and directory persistence the admin service
// depends on. Identity creation/removal and directory rows are not joined by
// a transaction; the service compensates across them explicitly.
type Store interface {
	// CreateIdentity registers an authentication principal and returns its id.
	// A duplicate email surfaces as ErrConflict with the store's message.
	CreateIdentity(ctx context.Context, email, passwordHash string) (string, error)
	// DeleteIdentity removes the principal. The backing schema cascades the
	// delete to the dependent profile and role assignment.
	DeleteIdentity(ctx context.Context, userID string) error

	// ProfileByUser returns the caller's own profile regardless of tenant.
	ProfileByUser(ctx context.Context, userID string) (Profile, error)
	// UpsertProfile inserts the profile or, when a row for the same identity
	// already exists (for example created by a store-side trigger), updates it
	// in place. Returns the resulting profile id.
	UpsertProfile(ctx context.Context, p Profile) (string, error)
	// UpdateProfile applies a partial update scoped to the given company.
	UpdateProfile(ctx context.Context, companyID, profileID string, upd ProfileUpdate) error
	// SetProfileActive flips is_active scoped to the given company.
	SetProfileActive(ctx context.Context, companyID, profileID string, active bool) error

	// RoleByUser returns the assignment for (company, user).
	RoleByUser(ctx context.Context, companyID, userID string) (RoleAssignment, error)
	// InsertRoleAssignment records a new (identity, company) -> role mapping.
	InsertRoleAssignment(ctx context.Context, a RoleAssignment) error
	// UpdateRoleAssignment changes the role for (company, user).
	UpdateRoleAssignment(ctx context.Context, companyID, userID string, role Role) error
}
