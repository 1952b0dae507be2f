package goal

import (
	"context"
	"testing"
	"time"

	"github.com/wellness/portal/internal/platform/apperr"
	"github.com/wellness/portal/internal/platform/auth"
	"github.com/wellness/portal/pkg/patch"
)

// countingRepo records writes so tests can assert the single-write update.
type countingRepo struct {
	GoalRepository
	updates int
}

func (r *countingRepo) Update(ctx context.Context, g *Goal) error {
	r.updates++
	return r.GoalRepository.Update(ctx, g)
}

var (
	alice = auth.Identity{ID: "alice", Role: auth.RolePatient}
	bob   = auth.Identity{ID: "bob", Role: auth.RolePatient}
	drSam = auth.Identity{ID: "sam", Role: auth.RoleProvider}
)

func newTestService() (*Service, *countingRepo) {
	repo := &countingRepo{GoalRepository: NewGoalRepoMemory()}
	return NewService(repo, auth.NewPolicy(auth.PolicyOptions{})), repo
}

func mustCreate(t *testing.T, svc *Service, caller auth.Identity, in CreateInput) *Goal {
	t.Helper()
	g, err := svc.CreateGoal(context.Background(), caller, in)
	if err != nil {
		t.Fatalf("create goal: %v", err)
	}
	return g
}

func TestCreateGoal_Defaults(t *testing.T) {
	svc, _ := newTestService()
	g := mustCreate(t, svc, alice, CreateInput{Title: "Walk daily", TargetValue: ptr(10000), Unit: "steps"})

	if g.UserID != alice.ID {
		t.Errorf("owner = %q, want %q", g.UserID, alice.ID)
	}
	if g.Category != CategoryOther || g.Status != StatusActive {
		t.Errorf("defaults = %s/%s", g.Category, g.Status)
	}
	if g.CurrentValue != 0 || g.Progress != 0 {
		t.Errorf("current/progress = %v/%v, want 0/0", g.CurrentValue, g.Progress)
	}
	if g.StartDate.IsZero() || g.CreatedAt.IsZero() {
		t.Error("expected start date and created at to be set")
	}
}

func TestCreateGoal_Validation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.CreateGoal(ctx, alice, CreateInput{Title: "  "}); apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("blank title: kind = %s", apperr.KindOf(err))
	}
	if _, err := svc.CreateGoal(ctx, alice, CreateInput{Title: "x", Category: "cardio"}); apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("bad category: kind = %s", apperr.KindOf(err))
	}
}

func TestCreateGoal_ProviderDenied(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.CreateGoal(context.Background(), drSam, CreateInput{Title: "x"})
	if apperr.KindOf(err) != apperr.KindAuthorization || apperr.CodeOf(err) != apperr.CodeInsufficientRole {
		t.Errorf("err = %v", err)
	}
}

func TestListGoals_NewestFirstAndScoped(t *testing.T) {
	svc, _ := newTestService()
	first := mustCreate(t, svc, alice, CreateInput{Title: "first"})
	mustCreate(t, svc, bob, CreateInput{Title: "bob's"})
	second := mustCreate(t, svc, alice, CreateInput{Title: "second"})

	goals, err := svc.ListGoals(context.Background(), alice)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(goals) != 2 {
		t.Fatalf("len = %d, want 2", len(goals))
	}
	if goals[0].ID != second.ID || goals[1].ID != first.ID {
		t.Errorf("order = %s, %s", goals[0].Title, goals[1].Title)
	}
}

func TestUpdateGoal_RecomputesProgressInOneWrite(t *testing.T) {
	svc, repo := newTestService()
	g := mustCreate(t, svc, alice, CreateInput{Title: "Walk", TargetValue: ptr(10000)})

	updated, err := svc.UpdateGoal(context.Background(), alice, g.ID, Patch{CurrentValue: patch.Of(ptr(5000.0))})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Progress != 50 {
		t.Errorf("progress = %v, want 50", updated.Progress)
	}
	if repo.updates != 1 {
		t.Errorf("writes = %d, want 1", repo.updates)
	}

	stored, _ := repo.GetByID(context.Background(), g.ID)
	if stored.Progress != 50 || stored.CurrentValue != 5000 {
		t.Errorf("stored = %+v", stored)
	}
}

func TestUpdateGoal_OvershootCapped(t *testing.T) {
	svc, _ := newTestService()
	g := mustCreate(t, svc, alice, CreateInput{Title: "Walk", TargetValue: ptr(10000)})

	updated, err := svc.UpdateGoal(context.Background(), alice, g.ID, Patch{CurrentValue: patch.Of(ptr(12000.0))})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Progress != 100 {
		t.Errorf("progress = %v, want 100", updated.Progress)
	}
}

func TestUpdateGoal_NoTargetKeepsProgress(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	g := mustCreate(t, svc, alice, CreateInput{Title: "Walk", TargetValue: ptr(10)})

	if _, err := svc.UpdateGoal(ctx, alice, g.ID, Patch{CurrentValue: patch.Of(ptr(4.0))}); err != nil {
		t.Fatalf("update: %v", err)
	}
	updated, err := svc.UpdateGoal(ctx, alice, g.ID, Patch{
		TargetValue:  patch.Of[*float64](nil),
		CurrentValue: patch.Of(ptr(9.0)),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.TargetValue != nil {
		t.Error("expected target to be cleared")
	}
	if updated.Progress != 40 {
		t.Errorf("progress = %v, want prior 40", updated.Progress)
	}
}

func TestUpdateGoal_UntouchedValuesKeepProgress(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	g := mustCreate(t, svc, alice, CreateInput{Title: "Walk", TargetValue: ptr(10)})

	// Progress stays 0 even though current/target would now disagree.
	stored, _ := repo.GetByID(ctx, g.ID)
	stored.CurrentValue = 5
	_ = repo.GoalRepository.Update(ctx, stored)

	updated, err := svc.UpdateGoal(ctx, alice, g.ID, Patch{Title: patch.Of("Walk more")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Progress != 0 {
		t.Errorf("progress = %v, want 0", updated.Progress)
	}
	if updated.Title != "Walk more" {
		t.Errorf("title = %q", updated.Title)
	}
}

func TestUpdateGoal_PresenceAppliesZeroValues(t *testing.T) {
	svc, _ := newTestService()
	g := mustCreate(t, svc, alice, CreateInput{Title: "Walk", Description: "mornings", Unit: "steps"})

	updated, err := svc.UpdateGoal(context.Background(), alice, g.ID, Patch{
		Description: patch.Of(""),
		Unit:        patch.Of(""),
		Status:      patch.Of(StatusPaused),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Description != "" || updated.Unit != "" || updated.Status != StatusPaused {
		t.Errorf("updated = %+v", updated)
	}
}

func TestUpdateGoal_Validation(t *testing.T) {
	svc, repo := newTestService()
	g := mustCreate(t, svc, alice, CreateInput{Title: "Walk"})

	tests := []struct {
		name string
		p    Patch
	}{
		{"empty title", Patch{Title: patch.Of("")}},
		{"bad status", Patch{Status: patch.Of(Status("done"))}},
		{"bad category", Patch{Category: patch.Of(Category("cardio"))}},
		{"null start date", Patch{StartDate: patch.Of[*time.Time](nil)}},
		{"null current value", Patch{CurrentValue: patch.Of[*float64](nil)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UpdateGoal(context.Background(), alice, g.ID, tt.p)
			if apperr.KindOf(err) != apperr.KindValidation {
				t.Errorf("kind = %s, want validation", apperr.KindOf(err))
			}
		})
	}
	if repo.updates != 0 {
		t.Errorf("writes = %d, want 0", repo.updates)
	}
}

func TestUpdateGoal_NotOwner(t *testing.T) {
	svc, repo := newTestService()
	g := mustCreate(t, svc, alice, CreateInput{Title: "Walk", TargetValue: ptr(10)})

	_, err := svc.UpdateGoal(context.Background(), bob, g.ID, Patch{CurrentValue: patch.Of(ptr(5.0))})
	if apperr.KindOf(err) != apperr.KindAuthorization || apperr.CodeOf(err) != apperr.CodeNotOwner {
		t.Fatalf("err = %v", err)
	}
	if repo.updates != 0 {
		t.Error("goal was written despite denial")
	}
	stored, _ := repo.GetByID(context.Background(), g.ID)
	if stored.CurrentValue != 0 {
		t.Errorf("current = %v, want 0", stored.CurrentValue)
	}
}

func TestUpdateGoal_NotFound(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.UpdateGoal(context.Background(), alice, "missing", Patch{})
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("kind = %s, want not_found", apperr.KindOf(err))
	}
}

func TestDeleteGoal(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	g := mustCreate(t, svc, alice, CreateInput{Title: "Walk"})

	err := svc.DeleteGoal(ctx, bob, g.ID)
	if apperr.KindOf(err) != apperr.KindAuthorization {
		t.Fatalf("non-owner delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, g.ID); err != nil {
		t.Fatal("goal removed by non-owner")
	}

	if err := svc.DeleteGoal(ctx, alice, g.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, g.ID); apperr.KindOf(err) != apperr.KindNotFound {
		t.Error("goal still present after delete")
	}
	if err := svc.DeleteGoal(ctx, alice, g.ID); apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("second delete kind = %s", apperr.KindOf(err))
	}
}

func TestListForOwner(t *testing.T) {
	svc, _ := newTestService()
	mustCreate(t, svc, alice, CreateInput{Title: "Walk"})

	goals, err := svc.ListForOwner(context.Background(), alice.ID)
	if err != nil || len(goals) != 1 {
		t.Errorf("goals = %d, err = %v", len(goals), err)
	}
}
