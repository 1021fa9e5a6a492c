package useradmin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"crewdesk.org/internal/auth"
	"crewdesk.org/internal/obs"
)

// Service enforces the admin authorization contract and dispatches the five
// privileged actions. It is stateless: every invocation re-resolves the
// caller's tenant and role from the store and performs sequential, awaited
// store calls with no shared state across requests.
type Service struct {
	store Store
	now   func() time.Time
	hash  func(string) (string, error)
}

// Option configures Service behavior.
type Option func(*Service)

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) Option {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// WithPasswordHasher overrides password hashing (useful for tests; bcrypt is
// deliberately slow).
func WithPasswordHasher(fn func(string) (string, error)) Option {
	return func(s *Service) {
		if fn != nil {
			s.hash = fn
		}
	}
}

// NewService constructs the admin service.
func NewService(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("useradmin: store is required")
	}
	svc := &Service{
		store: store,
		now:   time.Now,
		hash:  auth.HashPassword,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// ResolveActor loads the caller's profile and role assignment. The tenant
// always comes from the caller's own profile, never from client input.
func (s *Service) ResolveActor(ctx context.Context, userID string) (Actor, error) {
	profile, err := s.store.ProfileByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Actor{}, fmt.Errorf("%w: caller has no profile", ErrForbidden)
		}
		return Actor{}, err
	}
	assignment, err := s.store.RoleByUser(ctx, profile.CompanyID, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Actor{}, fmt.Errorf("%w: caller has no role", ErrForbidden)
		}
		return Actor{}, err
	}
	return Actor{
		UserID:    userID,
		ProfileID: profile.ID,
		CompanyID: profile.CompanyID,
		Role:      assignment.Role,
	}, nil
}

// Execute resolves the caller, validates the command and dispatches it.
// Validation and authorization short-circuit before any mutating store call,
// so those failure classes never leave partial side effects.
func (s *Service) Execute(ctx context.Context, callerUserID string, cmd Command) (Result, error) {
	actor, err := s.ResolveActor(ctx, callerUserID)
	if err != nil {
		return Result{}, err
	}
	if err := cmd.validate(); err != nil {
		return Result{}, err
	}
	if err := authorize(actor, cmd); err != nil {
		return Result{}, err
	}

	switch c := cmd.(type) {
	case CreateUser:
		return s.createUser(ctx, actor, c)
	case UpdateRole:
		return Result{}, s.updateRole(ctx, actor, c)
	case ToggleActive:
		return Result{}, s.toggleActive(ctx, actor, c)
	case DeleteUser:
		return Result{}, s.deleteUser(ctx, actor, c)
	case UpdateProfile:
		return Result{}, s.updateProfile(ctx, actor, c)
	default:
		return Result{}, fmt.Errorf("useradmin: unhandled command %T", cmd)
	}
}

// authorize applies the per-action permission table. Target-specific
// invariants (super_admin immutability, self-delete) are checked by the
// action handlers once the target is loaded.
func authorize(actor Actor, cmd Command) error {
	switch c := cmd.(type) {
	case CreateUser:
		if !actor.Role.AtLeast(RoleAdmin) {
			return fmt.Errorf("%w: insufficient role", ErrForbidden)
		}
		if actor.Role == RoleAdmin && c.Role != RoleEmployee {
			return fmt.Errorf("%w: admins can only create employees", ErrForbidden)
		}
		return nil
	case UpdateRole, DeleteUser:
		if actor.Role != RoleSuperAdmin {
			return fmt.Errorf("%w: insufficient role", ErrForbidden)
		}
		return nil
	case ToggleActive, UpdateProfile:
		if !actor.Role.AtLeast(RoleAdmin) {
			return fmt.Errorf("%w: insufficient role", ErrForbidden)
		}
		return nil
	default:
		return fmt.Errorf("%w: insufficient role", ErrForbidden)
	}
}

// createUser runs the provisioning saga: identity, then profile upsert, then
// role assignment. The identity store and the directory rows are not joined
// by a transaction, so downstream failures compensate by deleting the
// identity; the cascade removes whatever directory rows were written.
func (s *Service) createUser(ctx context.Context, actor Actor, cmd CreateUser) (Result, error) {
	hash, err := s.hash(cmd.Password)
	if err != nil {
		return Result{}, err
	}

	userID, err := s.store.CreateIdentity(ctx, cmd.Email, hash)
	if err != nil {
		return Result{}, err
	}

	now := s.now().UTC()
	profile := Profile{
		UserID:     userID,
		CompanyID:  actor.CompanyID,
		FullName:   SanitizeName(cmd.FullName),
		FullNameAr: SanitizeName(cmd.FullNameAr),
		Department: cmd.Department,
		Phone:      cmd.Phone,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := s.store.UpsertProfile(ctx, profile); err != nil {
		s.compensateIdentity(ctx, userID, "profile upsert failed")
		return Result{}, err
	}

	assignment := RoleAssignment{
		UserID:    userID,
		CompanyID: actor.CompanyID,
		Role:      cmd.Role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.InsertRoleAssignment(ctx, assignment); err != nil {
		s.compensateIdentity(ctx, userID, "role assignment failed")
		return Result{}, err
	}

	return Result{UserID: userID}, nil
}

// compensateIdentity undoes a committed identity creation after a downstream
// failure. Compensation is best-effort: a second failure leaves the identity
// behind and is logged for operator cleanup.
func (s *Service) compensateIdentity(ctx context.Context, userID, reason string) {
	if err := s.store.DeleteIdentity(ctx, userID); err != nil {
		obs.LogError("identity rollback failed", err, map[string]any{
			"user_id": userID,
			"reason":  reason,
		})
	}
}

func (s *Service) updateRole(ctx context.Context, actor Actor, cmd UpdateRole) error {
	assignment, err := s.store.RoleByUser(ctx, actor.CompanyID, cmd.UserID)
	if err != nil {
		return err
	}
	if assignment.Role == RoleSuperAdmin {
		return fmt.Errorf("%w: cannot change the role of a super admin", ErrForbidden)
	}
	if assignment.Role == cmd.NewRole {
		return nil
	}
	return s.store.UpdateRoleAssignment(ctx, actor.CompanyID, cmd.UserID, cmd.NewRole)
}

func (s *Service) toggleActive(ctx context.Context, actor Actor, cmd ToggleActive) error {
	return s.store.SetProfileActive(ctx, actor.CompanyID, cmd.ProfileID, cmd.IsActive)
}

func (s *Service) deleteUser(ctx context.Context, actor Actor, cmd DeleteUser) error {
	if cmd.UserID == actor.UserID {
		return fmt.Errorf("%w: cannot delete yourself", ErrForbidden)
	}
	assignment, err := s.store.RoleByUser(ctx, actor.CompanyID, cmd.UserID)
	if err != nil {
		return err
	}
	if assignment.Role == RoleSuperAdmin {
		return fmt.Errorf("%w: cannot delete a super admin", ErrForbidden)
	}
	// The store cascades the delete to the profile and role assignment.
	return s.store.DeleteIdentity(ctx, cmd.UserID)
}

func (s *Service) updateProfile(ctx context.Context, actor Actor, cmd UpdateProfile) error {
	upd := ProfileUpdate{
		Department: cmd.Department,
		Phone:      cmd.Phone,
	}
	if cmd.FullName != nil {
		name := SanitizeName(*cmd.FullName)
		upd.FullName = &name
	}
	if cmd.FullNameAr != nil {
		name := SanitizeName(*cmd.FullNameAr)
		upd.FullNameAr = &name
	}
	if upd.FullName == nil && upd.FullNameAr == nil && upd.Department == nil && upd.Phone == nil {
		return nil
	}
	return s.store.UpdateProfile(ctx, actor.CompanyID, cmd.ProfileID, upd)
}
