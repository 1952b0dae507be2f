package account

import (
	"context"
	"strings"
	"time"

	"github.com/wellness/portal/internal/platform/apperr"
	"github.com/wellness/portal/internal/platform/auth"
)

// PasswordHasher hashes and verifies account passwords.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(hash, plain string) bool
}

type Service struct {
	users       UserRepository
	hasher      PasswordHasher
	tokens      *auth.TokenIssuer
	policy      *auth.Policy
	evaluator   *Evaluator
	revocations auth.RevocationStore
}

func NewService(users UserRepository, hasher PasswordHasher, tokens *auth.TokenIssuer, policy *auth.Policy) *Service {
	return &Service{
		users:     users,
		hasher:    hasher,
		tokens:    tokens,
		policy:    policy,
		evaluator: NewEvaluator(MergeFallback),
	}
}

// SetEvaluator replaces the default fallback-merge evaluator.
func (s *Service) SetEvaluator(e *Evaluator) {
	s.evaluator = e
}

// SetRevocationStore enables Logout. Without a store Logout is a no-op.
func (s *Service) SetRevocationStore(rs auth.RevocationStore) {
	s.revocations = rs
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an account and issues its first token.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, auth.Token, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	if in.Name == "" || in.Email == "" || in.Password == "" || in.Role == "" {
		return nil, auth.Token{}, apperr.Validation("Please provide all required fields")
	}
	if !in.Role.Valid() {
		return nil, auth.Token{}, apperr.Validation("Invalid role. Must be patient or provider")
	}
	if in.Role == auth.RoleProvider && (in.Specialization == "" || in.LicenseNumber == "") {
		return nil, auth.Token{}, apperr.Validation("Providers must provide specialization and license number")
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, auth.Token{}, apperr.Wrap(err, "hash password")
	}

	// Accounts start Incomplete; only UpdateProfile advances them.
	u := &User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         in.Role,
	}
	switch in.Role {
	case auth.RolePatient:
		u.HealthConditions = []string{}
	case auth.RoleProvider:
		u.Specialization = in.Specialization
		u.LicenseNumber = in.LicenseNumber
		u.YearsOfExperience = in.YearsOfExperience
		u.Bio = in.Bio
	}

	if err := s.users.Create(ctx, u); err != nil {
		return nil, auth.Token{}, err
	}

	tok, err := s.tokens.Issue(u.ID, u.Role)
	if err != nil {
		return nil, auth.Token{}, apperr.Wrap(err, "issue token")
	}
	return u, tok, nil
}

// Login verifies credentials. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, in LoginInput) (*User, auth.Token, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, auth.Token{}, apperr.Validation("Please provide email and password")
	}

	invalid := apperr.Unauthenticated(apperr.CodeInvalidCredential, "Invalid credentials")
	u, err := s.users.GetByEmail(ctx, email)
	if apperr.KindOf(err) == apperr.KindNotFound {
		return nil, auth.Token{}, invalid
	}
	if err != nil {
		return nil, auth.Token{}, err
	}
	if !s.hasher.Verify(u.PasswordHash, in.Password) {
		return nil, auth.Token{}, invalid
	}

	tok, err := s.tokens.Issue(u.ID, u.Role)
	if err != nil {
		return nil, auth.Token{}, apperr.Wrap(err, "issue token")
	}
	return u, tok, nil
}

// GetProfile returns the caller's own account.
func (s *Service) GetProfile(ctx context.Context, caller auth.Identity) (*User, error) {
	u, err := s.users.GetByID(ctx, caller.ID)
	if err != nil {
		return nil, err
	}
	if err := s.policy.Authorize(caller, auth.ActionProfileRead, auth.Resource{OwnerID: u.ID}).Err(); err != nil {
		return nil, err
	}
	return u, nil
}

// UpdateProfile merges p into the caller's account and re-derives the
// completeness flag before persisting.
func (s *Service) UpdateProfile(ctx context.Context, caller auth.Identity, p ProfilePatch) (*User, error) {
	current, err := s.users.GetByID(ctx, caller.ID)
	if err != nil {
		return nil, err
	}
	if err := s.policy.Authorize(caller, auth.ActionProfileUpdate, auth.Resource{OwnerID: current.ID}).Err(); err != nil {
		return nil, err
	}

	merged, err := s.evaluator.Evaluate(current, p)
	if err != nil {
		return nil, err
	}
	if err := s.users.UpdateProfile(ctx, merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// Logout revokes the presented token until it would have expired anyway.
func (s *Service) Logout(ctx context.Context, caller auth.Identity, tokenID string, expiresAt time.Time) error {
	if s.revocations == nil {
		return nil
	}
	if tokenID == "" {
		return apperr.Unauthenticated(apperr.CodeInvalidCredential, "Token is not valid")
	}
	return apperr.Wrap(s.revocations.Revoke(ctx, tokenID, caller.ID, expiresAt), "revoke token")
}
