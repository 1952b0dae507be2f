package careteam

import (
	"context"
	"strings"

	"github.com/wellness/portal/internal/domain/account"
	"github.com/wellness/portal/internal/domain/goal"
	"github.com/wellness/portal/internal/platform/apperr"
	"github.com/wellness/portal/internal/platform/auth"
)

// GoalLister loads a patient's goals, newest first.
type GoalLister interface {
	ListForOwner(ctx context.Context, ownerID string) ([]*goal.Goal, error)
}

// Service links patients and providers. With the default policy any
// authenticated caller may read or modify any patient record here.
type Service struct {
	users  account.UserRepository
	goals  GoalLister
	policy *auth.Policy
}

func NewService(users account.UserRepository, goals GoalLister, policy *auth.Policy) *Service {
	return &Service{users: users, goals: goals, policy: policy}
}

func (s *Service) ListProviders(ctx context.Context, caller auth.Identity) ([]*account.User, error) {
	if err := s.policy.AuthorizeRole(caller, auth.ActionProviderList).Err(); err != nil {
		return nil, err
	}
	return s.users.ListByRole(ctx, auth.RoleProvider)
}

func (s *Service) GetProvider(ctx context.Context, caller auth.Identity, id string) (*account.User, error) {
	if err := s.policy.AuthorizeRole(caller, auth.ActionProviderGet).Err(); err != nil {
		return nil, err
	}
	return s.users.GetByIDAndRole(ctx, id, auth.RoleProvider)
}

// Directory lists providers as id and name only.
func (s *Service) Directory(ctx context.Context, caller auth.Identity) ([]DirectoryEntry, error) {
	if err := s.policy.AuthorizeRole(caller, auth.ActionProviderDirectory).Err(); err != nil {
		return nil, err
	}
	providers, err := s.users.ListByRole(ctx, auth.RoleProvider)
	if err != nil {
		return nil, err
	}
	entries := make([]DirectoryEntry, len(providers))
	for i, p := range providers {
		entries[i] = DirectoryEntry{UserID: p.ID, Name: p.Name}
	}
	return entries, nil
}

func (s *Service) GetPatientData(ctx context.Context, caller auth.Identity, patientID string) (*PatientData, error) {
	if err := s.policy.AuthorizeRole(caller, auth.ActionPatientRead).Err(); err != nil {
		return nil, err
	}
	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		return nil, apperr.Validation("Please provide userId")
	}

	p, err := s.users.GetByIDAndRole(ctx, patientID, auth.RolePatient)
	if err != nil {
		return nil, err
	}
	goals, err := s.goals.ListForOwner(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	conditions := p.HealthConditions
	if conditions == nil {
		conditions = []string{}
	}
	return &PatientData{
		ID:               p.ID,
		Name:             p.Name,
		Email:            p.Email,
		Age:              p.Age,
		Gender:           p.Gender,
		HealthConditions: conditions,
		ProfileComplete:  p.ProfileComplete,
		Goals:            goals,
	}, nil
}

// AddIllness appends illness to the patient's health conditions. Adding an
// existing entry is a conflict and leaves the set unchanged.
func (s *Service) AddIllness(ctx context.Context, caller auth.Identity, patientID, illness string) ([]string, error) {
	if err := s.policy.AuthorizeRole(caller, auth.ActionPatientIllnessAdd).Err(); err != nil {
		return nil, err
	}
	patientID = strings.TrimSpace(patientID)
	illness = strings.TrimSpace(illness)
	if patientID == "" || illness == "" {
		return nil, apperr.Validation("Please provide userId and illness")
	}
	return s.users.AddHealthCondition(ctx, patientID, illness)
}

// AssignProvider records providerID as the patient's provider. Both ids must
// resolve to accounts of the right role.
func (s *Service) AssignProvider(ctx context.Context, caller auth.Identity, patientID, providerID string) (*Assignment, error) {
	if err := s.policy.AuthorizeRole(caller, auth.ActionPatientAssignProv).Err(); err != nil {
		return nil, err
	}
	patientID = strings.TrimSpace(patientID)
	providerID = strings.TrimSpace(providerID)
	if patientID == "" || providerID == "" {
		return nil, apperr.Validation("Please provide patientId and providerId")
	}

	p, err := s.users.GetByIDAndRole(ctx, patientID, auth.RolePatient)
	if err != nil {
		return nil, err
	}
	provider, err := s.users.GetByIDAndRole(ctx, providerID, auth.RoleProvider)
	if err != nil {
		return nil, err
	}
	if err := s.users.SetAssignedProvider(ctx, p.ID, provider.ID); err != nil {
		return nil, err
	}

	return &Assignment{
		ID:                   p.ID,
		Name:                 p.Name,
		AssignedProvider:     provider.ID,
		AssignedProviderName: provider.Name,
	}, nil
}
