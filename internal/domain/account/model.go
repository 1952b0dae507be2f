package account

import (
	"time"

	"github.com/wellness/portal/internal/platform/auth"
)

// User is a patient or provider account. Fields of the other role stay at
// their zero value and are never serialized.
type User struct {
	ID              string    `bson:"_id"`
	Name            string    `bson:"name"`
	Email           string    `bson:"email"`
	PasswordHash    string    `bson:"password"`
	Role            auth.Role `bson:"role"`
	ProfileComplete bool      `bson:"profileComplete"`

	Age              *int     `bson:"age,omitempty"`
	Gender           string   `bson:"gender,omitempty"`
	HealthConditions []string `bson:"healthConditions,omitempty"`
	AssignedProvider string   `bson:"assignedProvider,omitempty"`

	Specialization    string `bson:"specialization,omitempty"`
	LicenseNumber     string `bson:"licenseNumber,omitempty"`
	YearsOfExperience *int   `bson:"yearsOfExperience,omitempty"`
	Bio               string `bson:"bio,omitempty"`

	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

func (u *User) IsPatient() bool  { return u.Role == auth.RolePatient }
func (u *User) IsProvider() bool { return u.Role == auth.RoleProvider }

// View is the role-projected JSON representation of a user. The password
// hash has no field here and cannot leak.
type View struct {
	ID              string    `json:"_id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Role            auth.Role `json:"role"`
	ProfileComplete bool      `json:"profileComplete"`

	Age              *int      `json:"age,omitempty"`
	Gender           string    `json:"gender,omitempty"`
	HealthConditions *[]string `json:"healthConditions,omitempty"`

	Specialization    string `json:"specialization,omitempty"`
	LicenseNumber     string `json:"licenseNumber,omitempty"`
	YearsOfExperience *int   `json:"yearsOfExperience,omitempty"`
	Bio               string `json:"bio,omitempty"`
}

// ToView projects u for its own role.
func (u *User) ToView() View {
	v := View{
		ID:              u.ID,
		Name:            u.Name,
		Email:           u.Email,
		Role:            u.Role,
		ProfileComplete: u.ProfileComplete,
	}
	switch u.Role {
	case auth.RolePatient:
		v.Age = u.Age
		v.Gender = u.Gender
		conditions := u.HealthConditions
		if conditions == nil {
			conditions = []string{}
		}
		v.HealthConditions = &conditions
	case auth.RoleProvider:
		v.Specialization = u.Specialization
		v.LicenseNumber = u.LicenseNumber
		v.YearsOfExperience = u.YearsOfExperience
		v.Bio = u.Bio
	}
	return v
}

// RegisterInput is the body of POST /api/auth/register.
type RegisterInput struct {
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	Password          string    `json:"password"`
	Role              auth.Role `json:"role"`
	Specialization    string    `json:"specialization"`
	LicenseNumber     string    `json:"licenseNumber"`
	YearsOfExperience *int      `json:"yearsOfExperience"`
	Bio               string    `json:"bio"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
