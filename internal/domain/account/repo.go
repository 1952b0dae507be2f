package account

import (
	"context"

	"github.com/wellness/portal/internal/platform/auth"
)

// UserRepository persists accounts. Missing users are reported as apperr
// not_found errors and a taken email as an apperr conflict.
type UserRepository interface {
	// Create assigns the id and timestamps of u.
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	// GetByIDAndRole reports not_found when the user exists with another role.
	GetByIDAndRole(ctx context.Context, id string, role auth.Role) (*User, error)
	ListByRole(ctx context.Context, role auth.Role) ([]*User, error)
	// UpdateProfile writes the mutable profile fields and completeness flag.
	UpdateProfile(ctx context.Context, u *User) error
	// AddHealthCondition appends condition to a patient's set and returns the
	// new set. An existing entry is a conflict.
	AddHealthCondition(ctx context.Context, patientID, condition string) ([]string, error)
	// SetAssignedProvider touches only the patient's assignedProvider.
	SetAssignedProvider(ctx context.Context, patientID, providerID string) error
}

func notFoundFor(role auth.Role) string {
	switch role {
	case auth.RolePatient:
		return "Patient not found"
	case auth.RoleProvider:
		return "Provider not found"
	}
	return "User not found"
}

const (
	msgUserExists      = "User already exists"
	msgConditionExists = "Illness already exists in health conditions"
)
