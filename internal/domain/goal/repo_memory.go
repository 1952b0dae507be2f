package goal

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wellness/portal/internal/platform/apperr"
)

// memoryGoalRepo keeps goals in process memory. It backs STORE_DRIVER=memory
// and the server tests.
type memoryGoalRepo struct {
	mu    sync.RWMutex
	goals map[string]*Goal
	seq   map[string]int
	next  int
	now   func() time.Time
}

func NewGoalRepoMemory() GoalRepository {
	return &memoryGoalRepo{
		goals: make(map[string]*Goal),
		seq:   make(map[string]int),
		now:   time.Now,
	}
}

func (r *memoryGoalRepo) Create(_ context.Context, g *Goal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if _, ok := r.goals[g.ID]; ok {
		return apperr.Conflict("goal already exists")
	}
	now := r.now().UTC()
	g.CreatedAt, g.UpdatedAt = now, now

	cp := *g
	r.goals[g.ID] = &cp
	r.next++
	r.seq[g.ID] = r.next
	return nil
}

func (r *memoryGoalRepo) GetByID(_ context.Context, id string) (*Goal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.goals[id]
	if !ok {
		return nil, apperr.NotFound("Goal not found")
	}
	cp := *g
	return &cp, nil
}

func (r *memoryGoalRepo) ListByOwner(_ context.Context, ownerID string) ([]*Goal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := []*Goal{}
	for _, g := range r.goals {
		if g.UserID == ownerID {
			cp := *g
			items = append(items, &cp)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return r.seq[items[i].ID] > r.seq[items[j].ID]
	})
	return items, nil
}

func (r *memoryGoalRepo) Update(_ context.Context, g *Goal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	old, ok := r.goals[g.ID]
	if !ok {
		return apperr.NotFound("Goal not found")
	}
	g.UserID = old.UserID
	g.CreatedAt = old.CreatedAt
	g.UpdatedAt = r.now().UTC()

	cp := *g
	r.goals[g.ID] = &cp
	return nil
}

func (r *memoryGoalRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.goals[id]; !ok {
		return apperr.NotFound("Goal not found")
	}
	delete(r.goals, id)
	delete(r.seq, id)
	return nil
}
