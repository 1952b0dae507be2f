package account

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wellness/portal/internal/platform/apperr"
	"github.com/wellness/portal/internal/platform/auth"
)

// memoryUserRepo keeps accounts in process memory. It backs
// STORE_DRIVER=memory and the service tests.
type memoryUserRepo struct {
	mu      sync.RWMutex
	users   map[string]*User
	byEmail map[string]string
	now     func() time.Time
}

func NewUserRepoMemory() UserRepository {
	return &memoryUserRepo{
		users:   make(map[string]*User),
		byEmail: make(map[string]string),
		now:     time.Now,
	}
}

func cloneUser(u *User) *User {
	cp := *u
	if u.HealthConditions != nil {
		cp.HealthConditions = append([]string(nil), u.HealthConditions...)
	}
	return &cp
}

func (r *memoryUserRepo) Create(_ context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[u.Email]; ok {
		return apperr.Conflict(msgUserExists)
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := r.now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now

	r.users[u.ID] = cloneUser(u)
	r.byEmail[u.Email] = u.ID
	return nil
}

func (r *memoryUserRepo) GetByID(_ context.Context, id string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, apperr.NotFound("User not found")
	}
	return cloneUser(u), nil
}

func (r *memoryUserRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, apperr.NotFound("User not found")
	}
	return cloneUser(r.users[id]), nil
}

func (r *memoryUserRepo) GetByIDAndRole(_ context.Context, id string, role auth.Role) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok || u.Role != role {
		return nil, apperr.NotFound(notFoundFor(role))
	}
	return cloneUser(u), nil
}

func (r *memoryUserRepo) ListByRole(_ context.Context, role auth.Role) ([]*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := []*User{}
	for _, u := range r.users {
		if u.Role == role {
			items = append(items, cloneUser(u))
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		}
		return items[i].ID < items[j].ID
	})
	return items, nil
}

func (r *memoryUserRepo) UpdateProfile(_ context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.users[u.ID]
	if !ok {
		return apperr.NotFound("User not found")
	}
	u.UpdatedAt = r.now().UTC()

	next := cloneUser(stored)
	next.Name = u.Name
	next.ProfileComplete = u.ProfileComplete
	next.Age = u.Age
	next.Gender = u.Gender
	next.HealthConditions = append([]string(nil), u.HealthConditions...)
	next.Specialization = u.Specialization
	next.YearsOfExperience = u.YearsOfExperience
	next.Bio = u.Bio
	next.UpdatedAt = u.UpdatedAt
	r.users[u.ID] = next
	return nil
}

func (r *memoryUserRepo) AddHealthCondition(_ context.Context, patientID, condition string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[patientID]
	if !ok || u.Role != auth.RolePatient {
		return nil, apperr.NotFound("Patient not found")
	}
	for _, c := range u.HealthConditions {
		if c == condition {
			return nil, apperr.Conflict(msgConditionExists)
		}
	}
	u.HealthConditions = append(u.HealthConditions, condition)
	u.UpdatedAt = r.now().UTC()
	return append([]string(nil), u.HealthConditions...), nil
}

func (r *memoryUserRepo) SetAssignedProvider(_ context.Context, patientID, providerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[patientID]
	if !ok || u.Role != auth.RolePatient {
		return apperr.NotFound("Patient not found")
	}
	u.AssignedProvider = providerID
	u.UpdatedAt = r.now().UTC()
	return nil
}
