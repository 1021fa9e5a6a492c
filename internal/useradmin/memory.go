package useradmin

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"crewdesk.org/internal/ids"
)

// Memory is an in-process Store used by tests and DSN-less development runs.
// It mirrors the relational schema's behavior: unique emails, one profile and
// one role assignment per (identity, company), cascading identity deletes.
type Memory struct {
	mu          sync.Mutex
	identities  map[string]memIdentity
	profiles    map[string]Profile
	assignments map[string]RoleAssignment
}

type memIdentity struct {
	id           string
	email        string
	passwordHash string
	createdAt    time.Time
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		identities:  make(map[string]memIdentity),
		profiles:    make(map[string]Profile),
		assignments: make(map[string]RoleAssignment),
	}
}

func assignmentKey(companyID, userID string) string {
	return companyID + "/" + userID
}

func (m *Memory) CreateIdentity(ctx context.Context, email, passwordHash string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, ident := range m.identities {
		if ident.email == email {
			return "", fmt.Errorf("%w: email already registered", ErrConflict)
		}
	}
	id := uuid.NewString()
	m.identities[id] = memIdentity{
		id:           id,
		email:        email,
		passwordHash: passwordHash,
		createdAt:    time.Now().UTC(),
	}
	return id, nil
}

func (m *Memory) DeleteIdentity(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.identities[userID]; !ok {
		return ErrNotFound
	}
	delete(m.identities, userID)
	for id, p := range m.profiles {
		if p.UserID == userID {
			delete(m.profiles, id)
		}
	}
	for key, a := range m.assignments {
		if a.UserID == userID {
			delete(m.assignments, key)
		}
	}
	return nil
}

func (m *Memory) ProfileByUser(ctx context.Context, userID string) (Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.profiles {
		if p.UserID == userID {
			return p, nil
		}
	}
	return Profile{}, ErrNotFound
}

func (m *Memory) UpsertProfile(ctx context.Context, p Profile) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, existing := range m.profiles {
		if existing.UserID == p.UserID {
			// company_id never changes once set
			existing.FullName = p.FullName
			existing.FullNameAr = p.FullNameAr
			existing.Department = p.Department
			existing.Phone = p.Phone
			existing.IsActive = p.IsActive
			existing.UpdatedAt = time.Now().UTC()
			m.profiles[id] = existing
			return id, nil
		}
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	m.profiles[p.ID] = p
	return p.ID, nil
}

func (m *Memory) UpdateProfile(ctx context.Context, companyID, profileID string, upd ProfileUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[profileID]
	if !ok || p.CompanyID != companyID {
		return ErrNotFound
	}
	if upd.FullName != nil {
		p.FullName = *upd.FullName
	}
	if upd.FullNameAr != nil {
		p.FullNameAr = *upd.FullNameAr
	}
	if upd.Department != nil {
		p.Department = *upd.Department
	}
	if upd.Phone != nil {
		p.Phone = *upd.Phone
	}
	p.UpdatedAt = time.Now().UTC()
	m.profiles[profileID] = p
	return nil
}

func (m *Memory) SetProfileActive(ctx context.Context, companyID, profileID string, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[profileID]
	if !ok || p.CompanyID != companyID {
		return ErrNotFound
	}
	p.IsActive = active
	p.UpdatedAt = time.Now().UTC()
	m.profiles[profileID] = p
	return nil
}

func (m *Memory) RoleByUser(ctx context.Context, companyID, userID string) (RoleAssignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.assignments[assignmentKey(companyID, userID)]
	if !ok {
		return RoleAssignment{}, ErrNotFound
	}
	return a, nil
}

func (m *Memory) InsertRoleAssignment(ctx context.Context, a RoleAssignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := assignmentKey(a.CompanyID, a.UserID)
	if _, ok := m.assignments[key]; ok {
		return fmt.Errorf("%w: role assignment already exists", ErrConflict)
	}
	if a.ID == "" {
		a.ID = ids.New()
	}
	m.assignments[key] = a
	return nil
}

func (m *Memory) UpdateRoleAssignment(ctx context.Context, companyID, userID string, role Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := assignmentKey(companyID, userID)
	a, ok := m.assignments[key]
	if !ok {
		return ErrNotFound
	}
	a.Role = role
	a.UpdatedAt = time.Now().UTC()
	m.assignments[key] = a
	return nil
}

// SeedMember inserts an identity, profile and role assignment directly,
// bypassing the service. Test and bootstrap helper.
func (m *Memory) SeedMember(p Profile, role Role) (userID, profileID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.UserID == "" {
		p.UserID = uuid.NewString()
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	m.identities[p.UserID] = memIdentity{
		id:        p.UserID,
		email:     strings.ToLower(fmt.Sprintf("%s@seed.local", p.UserID)),
		createdAt: now,
	}
	m.profiles[p.ID] = p
	m.assignments[assignmentKey(p.CompanyID, p.UserID)] = RoleAssignment{
		ID:        ids.New(),
		UserID:    p.UserID,
		CompanyID: p.CompanyID,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return p.UserID, p.ID
}

// IdentityEmail reports the stored email for an identity, if it exists.
// Used by tests asserting compensation behavior.
func (m *Memory) IdentityEmail(userID string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ident, ok := m.identities[userID]
	if !ok {
		return "", false
	}
	return ident.email, true
}

var _ Store = (*Memory)(nil)
