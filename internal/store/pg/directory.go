package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"crewdesk.org/internal/ids"
	"crewdesk.org/internal/useradmin"
)

const (
	pgErrUniqueViolation     = "23505"
	pgErrForeignKeyViolation = "23503"
)

var _ useradmin.Store = (*Store)(nil)

func (s *Store) CreateIdentity(ctx context.Context, email, passwordHash string) (string, error) {
	if s.db == nil {
		return "", errors.New("database connection unavailable")
	}
	var id string
	err := s.db.QueryRowContext(ctx, `
		insert into identities (email, password_hash)
		values ($1, $2)
		returning id
	`, strings.ToLower(strings.TrimSpace(email)), passwordHash).Scan(&id)
	if err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
			return "", fmt.Errorf("%w: email already registered", useradmin.ErrConflict)
		}
		return "", err
	}
	return id, nil
}

func (s *Store) DeleteIdentity(ctx context.Context, userID string) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	// Dependent profile and role assignment rows cascade with the identity.
	res, err := s.db.ExecContext(ctx, `delete from identities where id = $1`, userID)
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return useradmin.ErrNotFound
	}
	return nil
}

func (s *Store) ProfileByUser(ctx context.Context, userID string) (useradmin.Profile, error) {
	if s.db == nil {
		return useradmin.Profile{}, errors.New("database connection unavailable")
	}
	var (
		p          useradmin.Profile
		nameAr     sql.NullString
		department sql.NullString
		phone      sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		select id, user_id, company_id, full_name, full_name_ar, department, phone, is_active, created_at, updated_at
		from profiles
		where user_id = $1
	`, userID).Scan(&p.ID, &p.UserID, &p.CompanyID, &p.FullName, &nameAr, &department, &phone, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return useradmin.Profile{}, useradmin.ErrNotFound
	}
	if err != nil {
		return useradmin.Profile{}, err
	}
	if nameAr.Valid {
		p.FullNameAr = nameAr.String
	}
	if department.Valid {
		p.Department = department.String
	}
	if phone.Valid {
		p.Phone = phone.String
	}
	return p, nil
}

func (s *Store) UpsertProfile(ctx context.Context, p useradmin.Profile) (string, error) {
	if s.db == nil {
		return "", errors.New("database connection unavailable")
	}
	// A store-side trigger may have created the profile row already; update it
	// in place in that case. company_id is never overwritten.
	var id string
	err := s.db.QueryRowContext(ctx, `
		insert into profiles (user_id, company_id, full_name, full_name_ar, department, phone, is_active)
		values ($1, $2, $3, $4, $5, $6, $7)
		on conflict (user_id) do update set
			full_name    = excluded.full_name,
			full_name_ar = excluded.full_name_ar,
			department   = excluded.department,
			phone        = excluded.phone,
			is_active    = excluded.is_active,
			updated_at   = now()
		returning id
	`, p.UserID, p.CompanyID, p.FullName, nullIfEmpty(p.FullNameAr), nullIfEmpty(p.Department), nullIfEmpty(p.Phone), p.IsActive).Scan(&id)
	if err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrForeignKeyViolation {
			return "", useradmin.ErrNotFound
		}
		return "", err
	}
	return id, nil
}

func (s *Store) UpdateProfile(ctx context.Context, companyID, profileID string, upd useradmin.ProfileUpdate) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	var (
		sets []string
		args []any
		idx  = 1
	)
	if upd.FullName != nil {
		sets = append(sets, fmt.Sprintf("full_name = $%d", idx))
		args = append(args, *upd.FullName)
		idx++
	}
	if upd.FullNameAr != nil {
		sets = append(sets, fmt.Sprintf("full_name_ar = $%d", idx))
		args = append(args, nullIfEmpty(*upd.FullNameAr))
		idx++
	}
	if upd.Department != nil {
		sets = append(sets, fmt.Sprintf("department = $%d", idx))
		args = append(args, nullIfEmpty(*upd.Department))
		idx++
	}
	if upd.Phone != nil {
		sets = append(sets, fmt.Sprintf("phone = $%d", idx))
		args = append(args, nullIfEmpty(*upd.Phone))
		idx++
	}
	if len(sets) == 0 {
		return nil
	}
	sets = append(sets, "updated_at = now()")
	query := fmt.Sprintf(`update profiles set %s where id = $%d and company_id = $%d`,
		strings.Join(sets, ", "), idx, idx+1)
	args = append(args, profileID, companyID)
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return useradmin.ErrNotFound
	}
	return nil
}

func (s *Store) SetProfileActive(ctx context.Context, companyID, profileID string, active bool) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	res, err := s.db.ExecContext(ctx, `
		update profiles set is_active = $1, updated_at = now()
		where id = $2 and company_id = $3
	`, active, profileID, companyID)
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return useradmin.ErrNotFound
	}
	return nil
}

func (s *Store) RoleByUser(ctx context.Context, companyID, userID string) (useradmin.RoleAssignment, error) {
	if s.db == nil {
		return useradmin.RoleAssignment{}, errors.New("database connection unavailable")
	}
	var (
		a    useradmin.RoleAssignment
		role string
	)
	err := s.db.QueryRowContext(ctx, `
		select id, user_id, company_id, role, created_at, updated_at
		from role_assignments
		where company_id = $1 and user_id = $2
	`, companyID, userID).Scan(&a.ID, &a.UserID, &a.CompanyID, &role, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return useradmin.RoleAssignment{}, useradmin.ErrNotFound
	}
	if err != nil {
		return useradmin.RoleAssignment{}, err
	}
	a.Role = useradmin.Role(role)
	return a, nil
}

func (s *Store) InsertRoleAssignment(ctx context.Context, a useradmin.RoleAssignment) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	id := a.ID
	if id == "" {
		id = ids.New()
	}
	_, err := s.db.ExecContext(ctx, `
		insert into role_assignments (id, user_id, company_id, role)
		values ($1, $2, $3, $4)
	`, id, a.UserID, a.CompanyID, string(a.Role))
	if err != nil {
		if pgErr, ok := maybePgError(err); ok {
			switch pgErr.Code {
			case pgErrUniqueViolation:
				return fmt.Errorf("%w: role assignment already exists", useradmin.ErrConflict)
			case pgErrForeignKeyViolation:
				return useradmin.ErrNotFound
			}
		}
		return err
	}
	return nil
}

func (s *Store) UpdateRoleAssignment(ctx context.Context, companyID, userID string, role useradmin.Role) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	res, err := s.db.ExecContext(ctx, `
		update role_assignments set role = $1, updated_at = now()
		where company_id = $2 and user_id = $3
	`, string(role), companyID, userID)
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return useradmin.ErrNotFound
	}
	return nil
}

func maybePgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

func nullIfEmpty(s string) sql.NullString {
	s = strings.TrimSpace(s)
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
