package goal

import (
	"context"
	"strings"
	"time"

	"github.com/wellness/portal/internal/platform/apperr"
	"github.com/wellness/portal/internal/platform/auth"
)

type Service struct {
	goals  GoalRepository
	policy *auth.Policy
	now    func() time.Time
}

func NewService(goals GoalRepository, policy *auth.Policy) *Service {
	return &Service{goals: goals, policy: policy, now: time.Now}
}

// ListGoals returns the caller's goals, newest first.
func (s *Service) ListGoals(ctx context.Context, caller auth.Identity) ([]*Goal, error) {
	if err := s.policy.AuthorizeRole(caller, auth.ActionGoalList).Err(); err != nil {
		return nil, err
	}
	return s.goals.ListByOwner(ctx, caller.ID)
}

// ListForOwner returns another user's goals without a policy check. Callers
// are responsible for authorizing access to the owner.
func (s *Service) ListForOwner(ctx context.Context, ownerID string) ([]*Goal, error) {
	return s.goals.ListByOwner(ctx, ownerID)
}

func (s *Service) CreateGoal(ctx context.Context, caller auth.Identity, in CreateInput) (*Goal, error) {
	if err := s.policy.AuthorizeRole(caller, auth.ActionGoalCreate).Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, apperr.Validation("Please provide a goal title")
	}
	if in.Category == "" {
		in.Category = CategoryOther
	}
	if !validCategories[in.Category] {
		return nil, apperr.Validationf("invalid category: %s", in.Category)
	}

	g := &Goal{
		UserID:      caller.ID,
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		TargetValue: in.TargetValue,
		Unit:        in.Unit,
		StartDate:   s.now().UTC(),
		EndDate:     in.EndDate,
		Status:      StatusActive,
	}
	if err := s.goals.Create(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

// UpdateGoal applies p to an owned goal and persists it with its
// recomputed progress in a single write.
func (s *Service) UpdateGoal(ctx context.Context, caller auth.Identity, id string, p Patch) (*Goal, error) {
	g, err := s.goals.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.Authorize(caller, auth.ActionGoalUpdate, auth.Resource{OwnerID: g.UserID}).Err(); err != nil {
		return nil, err
	}
	if err := applyPatch(g, p); err != nil {
		return nil, err
	}
	if p.TouchesProgress() {
		g.Progress = Progress(g.CurrentValue, g.TargetValue, g.Progress)
	}
	if err := s.goals.Update(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *Service) DeleteGoal(ctx context.Context, caller auth.Identity, id string) error {
	g, err := s.goals.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.policy.Authorize(caller, auth.ActionGoalDelete, auth.Resource{OwnerID: g.UserID}).Err(); err != nil {
		return err
	}
	return s.goals.Delete(ctx, id)
}

// applyPatch validates p in full before touching g.
func applyPatch(g *Goal, p Patch) error {
	if p.Title.Set && strings.TrimSpace(p.Title.Value) == "" {
		return apperr.Validation("Please provide a goal title")
	}
	if p.Category.Set && !validCategories[p.Category.Value] {
		return apperr.Validationf("invalid category: %s", p.Category.Value)
	}
	if p.Status.Set && !validStatuses[p.Status.Value] {
		return apperr.Validationf("invalid status: %s", p.Status.Value)
	}
	if p.StartDate.Set && p.StartDate.Value == nil {
		return apperr.Validation("startDate cannot be null")
	}
	if p.CurrentValue.Set && p.CurrentValue.Value == nil {
		return apperr.Validation("currentValue cannot be null")
	}

	if p.Title.Set {
		g.Title = p.Title.Value
	}
	if p.Description.Set {
		g.Description = p.Description.Value
	}
	if p.Category.Set {
		g.Category = p.Category.Value
	}
	if p.TargetValue.Set {
		g.TargetValue = p.TargetValue.Value
	}
	if p.CurrentValue.Set {
		g.CurrentValue = *p.CurrentValue.Value
	}
	if p.Unit.Set {
		g.Unit = p.Unit.Value
	}
	if p.StartDate.Set {
		g.StartDate = *p.StartDate.Value
	}
	if p.EndDate.Set {
		g.EndDate = p.EndDate.Value
	}
	if p.Status.Set {
		g.Status = p.Status.Value
	}
	return nil
}
