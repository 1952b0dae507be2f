package account

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wellness/portal/internal/platform/apperr"
	"github.com/wellness/portal/internal/platform/auth"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type userRepoPG struct{ pool *pgxpool.Pool }

func NewUserRepoPG(pool *pgxpool.Pool) UserRepository {
	return &userRepoPG{pool: pool}
}

func (r *userRepoPG) conn(_ context.Context) queryable {
	return r.pool
}

const userCols = `id, name, email, password, role, profile_complete,
	age, gender, health_conditions, COALESCE(assigned_provider, ''),
	specialization, license_number, years_of_experience, bio,
	created_at, updated_at`

func (r *userRepoPG) scanUser(row pgx.Row, role auth.Role) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.ProfileComplete,
		&u.Age, &u.Gender, &u.HealthConditions, &u.AssignedProvider,
		&u.Specialization, &u.LicenseNumber, &u.YearsOfExperience, &u.Bio,
		&u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound(notFoundFor(role))
	}
	if err != nil {
		return nil, apperr.Wrap(err, "scan user")
	}
	return &u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *userRepoPG) Create(ctx context.Context, u *User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	conditions := u.HealthConditions
	if conditions == nil {
		conditions = []string{}
	}
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO users (id, name, email, password, role, profile_complete,
			age, gender, health_conditions, specialization, license_number,
			years_of_experience, bio)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		RETURNING created_at, updated_at`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Role, u.ProfileComplete,
		u.Age, u.Gender, conditions, u.Specialization, u.LicenseNumber,
		u.YearsOfExperience, u.Bio,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	if isUniqueViolation(err) {
		return apperr.Conflict(msgUserExists)
	}
	return apperr.Wrap(err, "insert user")
}

func (r *userRepoPG) GetByID(ctx context.Context, id string) (*User, error) {
	return r.scanUser(r.conn(ctx).QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE id = $1`, id), "")
}

func (r *userRepoPG) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.scanUser(r.conn(ctx).QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE email = $1`, email), "")
}

func (r *userRepoPG) GetByIDAndRole(ctx context.Context, id string, role auth.Role) (*User, error) {
	return r.scanUser(r.conn(ctx).QueryRow(ctx,
		`SELECT `+userCols+` FROM users WHERE id = $1 AND role = $2`, id, role), role)
}

func (r *userRepoPG) ListByRole(ctx context.Context, role auth.Role) ([]*User, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+userCols+` FROM users WHERE role = $1 ORDER BY created_at, id`, role)
	if err != nil {
		return nil, apperr.Wrap(err, "list users")
	}
	defer rows.Close()

	items := []*User{}
	for rows.Next() {
		u, err := r.scanUser(rows, role)
		if err != nil {
			return nil, err
		}
		items = append(items, u)
	}
	return items, apperr.Wrap(rows.Err(), "list users")
}

func (r *userRepoPG) UpdateProfile(ctx context.Context, u *User) error {
	conditions := u.HealthConditions
	if conditions == nil {
		conditions = []string{}
	}
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE users SET name=$2, profile_complete=$3, age=$4, gender=$5,
			health_conditions=$6, specialization=$7, years_of_experience=$8,
			bio=$9, updated_at=NOW()
		WHERE id = $1
		RETURNING updated_at`,
		u.ID, u.Name, u.ProfileComplete, u.Age, u.Gender, conditions,
		u.Specialization, u.YearsOfExperience, u.Bio,
	).Scan(&u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("User not found")
	}
	return apperr.Wrap(err, "update user")
}

func (r *userRepoPG) AddHealthCondition(ctx context.Context, patientID, condition string) ([]string, error) {
	var conditions []string
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE users SET health_conditions = array_append(health_conditions, $2), updated_at = NOW()
		WHERE id = $1 AND role = 'patient' AND NOT ($2 = ANY(health_conditions))
		RETURNING health_conditions`,
		patientID, condition,
	).Scan(&conditions)
	if err == nil {
		return conditions, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.Wrap(err, "add health condition")
	}

	// No row updated: either the patient is missing or already has it.
	if _, err := r.GetByIDAndRole(ctx, patientID, auth.RolePatient); err != nil {
		return nil, err
	}
	return nil, apperr.Conflict(msgConditionExists)
}

func (r *userRepoPG) SetAssignedProvider(ctx context.Context, patientID, providerID string) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE users SET assigned_provider = $2, updated_at = NOW()
		WHERE id = $1 AND role = 'patient'`, patientID, providerID)
	if err != nil {
		return apperr.Wrap(err, "assign provider")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Patient not found")
	}
	return nil
}
