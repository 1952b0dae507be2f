package goal

import "context"

// GoalRepository persists goals. Missing documents are reported as
// apperr not_found errors.
type GoalRepository interface {
	// Create assigns the id and timestamps of g.
	Create(ctx context.Context, g *Goal) error
	GetByID(ctx context.Context, id string) (*Goal, error)
	// ListByOwner returns the owner's goals, newest first.
	ListByOwner(ctx context.Context, ownerID string) ([]*Goal, error)
	// Update writes every mutable field of g in one statement and refreshes
	// g.UpdatedAt.
	Update(ctx context.Context, g *Goal) error
	Delete(ctx context.Context, id string) error
}
