package pg

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"crewdesk.org/internal/useradmin"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewWithDB(db), mock
}

func expectMet(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateIdentityNormalizesEmail(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("insert into identities").
		WithArgs("ann@example.com", "hash-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("uuid-1"))

	id, err := store.CreateIdentity(context.Background(), "  Ann@Example.COM ", "hash-1")
	if err != nil {
		t.Fatalf("CreateIdentity: %v", err)
	}
	if id != "uuid-1" {
		t.Fatalf("unexpected id: %s", id)
	}
	expectMet(t, mock)
}

func TestCreateIdentityUniqueViolationIsConflict(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("insert into identities").
		WithArgs("dup@example.com", "hash-1").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := store.CreateIdentity(context.Background(), "dup@example.com", "hash-1")
	if !errors.Is(err, useradmin.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	expectMet(t, mock)
}

func TestDeleteIdentityMissingRowIsNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("delete from identities").
		WithArgs("uuid-missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.DeleteIdentity(context.Background(), "uuid-missing")
	if !errors.Is(err, useradmin.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	expectMet(t, mock)
}

func TestProfileByUserHandlesNullColumns(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{
		"id", "user_id", "company_id", "full_name", "full_name_ar", "department", "phone", "is_active", "created_at", "updated_at",
	}).AddRow("prof-1", "uuid-1", "tenant-a", "Ann Clark", nil, nil, nil, true, now, now)
	mock.ExpectQuery("select id, user_id, company_id, full_name").
		WithArgs("uuid-1").
		WillReturnRows(rows)

	p, err := store.ProfileByUser(context.Background(), "uuid-1")
	if err != nil {
		t.Fatalf("ProfileByUser: %v", err)
	}
	if p.FullNameAr != "" || p.Department != "" || p.Phone != "" {
		t.Fatalf("null columns should map to empty strings: %+v", p)
	}
	if p.CompanyID != "tenant-a" {
		t.Fatalf("unexpected company: %s", p.CompanyID)
	}
	expectMet(t, mock)
}

func TestProfileByUserNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("select id, user_id, company_id, full_name").
		WithArgs("uuid-missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := store.ProfileByUser(context.Background(), "uuid-missing")
	if !errors.Is(err, useradmin.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	expectMet(t, mock)
}

func TestUpsertProfileReturnsID(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("insert into profiles").
		WithArgs("uuid-1", "tenant-a", "Ann Clark", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), true).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("prof-1"))

	id, err := store.UpsertProfile(context.Background(), useradmin.Profile{
		UserID:    "uuid-1",
		CompanyID: "tenant-a",
		FullName:  "Ann Clark",
		IsActive:  true,
	})
	if err != nil {
		t.Fatalf("UpsertProfile: %v", err)
	}
	if id != "prof-1" {
		t.Fatalf("unexpected id: %s", id)
	}
	expectMet(t, mock)
}

func TestUpsertProfileMissingIdentityIsNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("insert into profiles").
		WithArgs("uuid-gone", "tenant-a", "Ann Clark", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), true).
		WillReturnError(&pgconn.PgError{Code: "23503"})

	_, err := store.UpsertProfile(context.Background(), useradmin.Profile{
		UserID:    "uuid-gone",
		CompanyID: "tenant-a",
		FullName:  "Ann Clark",
		IsActive:  true,
	})
	if !errors.Is(err, useradmin.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	expectMet(t, mock)
}

func TestUpdateProfileBuildsPartialSetClause(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`update profiles set full_name = \$1, phone = \$2, updated_at = now\(\) where id = \$3 and company_id = \$4`).
		WithArgs("Ann Clark", sqlmock.AnyArg(), "prof-1", "tenant-a").
		WillReturnResult(sqlmock.NewResult(0, 1))

	name := "Ann Clark"
	phone := "+1 555 0100"
	err := store.UpdateProfile(context.Background(), "tenant-a", "prof-1", useradmin.ProfileUpdate{
		FullName: &name,
		Phone:    &phone,
	})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	expectMet(t, mock)
}

func TestUpdateProfileEmptyUpdateSkipsQuery(t *testing.T) {
	store, mock := newMockStore(t)

	if err := store.UpdateProfile(context.Background(), "tenant-a", "prof-1", useradmin.ProfileUpdate{}); err != nil {
		t.Fatalf("empty update: %v", err)
	}
	expectMet(t, mock)
}

func TestUpdateProfileWrongTenantIsNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("update profiles set").
		WithArgs("Ann Clark", "prof-1", "tenant-b").
		WillReturnResult(sqlmock.NewResult(0, 0))

	name := "Ann Clark"
	err := store.UpdateProfile(context.Background(), "tenant-b", "prof-1", useradmin.ProfileUpdate{FullName: &name})
	if !errors.Is(err, useradmin.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	expectMet(t, mock)
}

func TestSetProfileActiveScopedByTenant(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("update profiles set is_active").
		WithArgs(false, "prof-1", "tenant-a").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := store.SetProfileActive(context.Background(), "tenant-a", "prof-1", false); err != nil {
		t.Fatalf("SetProfileActive: %v", err)
	}
	expectMet(t, mock)
}

func TestRoleByUserScopedByTenant(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{"id", "user_id", "company_id", "role", "created_at", "updated_at"}).
		AddRow("ra-1", "uuid-1", "tenant-a", "admin", now, now)
	mock.ExpectQuery("select id, user_id, company_id, role").
		WithArgs("tenant-a", "uuid-1").
		WillReturnRows(rows)

	a, err := store.RoleByUser(context.Background(), "tenant-a", "uuid-1")
	if err != nil {
		t.Fatalf("RoleByUser: %v", err)
	}
	if a.Role != useradmin.RoleAdmin {
		t.Fatalf("unexpected role: %s", a.Role)
	}
	expectMet(t, mock)
}

func TestInsertRoleAssignmentErrorMapping(t *testing.T) {
	store, mock := newMockStore(t)
	assignment := useradmin.RoleAssignment{
		ID:        "ra-1",
		UserID:    "uuid-1",
		CompanyID: "tenant-a",
		Role:      useradmin.RoleEmployee,
	}

	mock.ExpectExec("insert into role_assignments").
		WithArgs("ra-1", "uuid-1", "tenant-a", "employee").
		WillReturnError(&pgconn.PgError{Code: "23505"})
	if err := store.InsertRoleAssignment(context.Background(), assignment); !errors.Is(err, useradmin.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	mock.ExpectExec("insert into role_assignments").
		WithArgs("ra-1", "uuid-1", "tenant-a", "employee").
		WillReturnError(&pgconn.PgError{Code: "23503"})
	if err := store.InsertRoleAssignment(context.Background(), assignment); !errors.Is(err, useradmin.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	expectMet(t, mock)
}

func TestInsertRoleAssignmentGeneratesID(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("insert into role_assignments").
		WithArgs(sqlmock.AnyArg(), "uuid-1", "tenant-a", "employee").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := store.InsertRoleAssignment(context.Background(), useradmin.RoleAssignment{
		UserID:    "uuid-1",
		CompanyID: "tenant-a",
		Role:      useradmin.RoleEmployee,
	})
	if err != nil {
		t.Fatalf("InsertRoleAssignment: %v", err)
	}
	expectMet(t, mock)
}

func TestUpdateRoleAssignmentNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("update role_assignments set role").
		WithArgs("admin", "tenant-a", "uuid-missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.UpdateRoleAssignment(context.Background(), "tenant-a", "uuid-missing", useradmin.RoleAdmin)
	if !errors.Is(err, useradmin.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	expectMet(t, mock)
}
