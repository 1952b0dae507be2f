package goal

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wellness/portal/internal/platform/apperr"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type goalRepoPG struct{ pool *pgxpool.Pool }

func NewGoalRepoPG(pool *pgxpool.Pool) GoalRepository {
	return &goalRepoPG{pool: pool}
}

func (r *goalRepoPG) conn(_ context.Context) queryable {
	return r.pool
}

const goalCols = `id, user_id, title, description, category, target_value,
	current_value, unit, start_date, end_date, status, progress,
	created_at, updated_at`

func (r *goalRepoPG) scanGoal(row pgx.Row) (*Goal, error) {
	var g Goal
	err := row.Scan(&g.ID, &g.UserID, &g.Title, &g.Description, &g.Category,
		&g.TargetValue, &g.CurrentValue, &g.Unit, &g.StartDate, &g.EndDate,
		&g.Status, &g.Progress, &g.CreatedAt, &g.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("Goal not found")
	}
	if err != nil {
		return nil, apperr.Wrap(err, "scan goal")
	}
	return &g, nil
}

func (r *goalRepoPG) Create(ctx context.Context, g *Goal) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO goals (id, user_id, title, description, category, target_value,
			current_value, unit, start_date, end_date, status, progress)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING created_at, updated_at`,
		g.ID, g.UserID, g.Title, g.Description, g.Category, g.TargetValue,
		g.CurrentValue, g.Unit, g.StartDate, g.EndDate, g.Status, g.Progress,
	).Scan(&g.CreatedAt, &g.UpdatedAt)
	return apperr.Wrap(err, "insert goal")
}

func (r *goalRepoPG) GetByID(ctx context.Context, id string) (*Goal, error) {
	return r.scanGoal(r.conn(ctx).QueryRow(ctx, `SELECT `+goalCols+` FROM goals WHERE id = $1`, id))
}

func (r *goalRepoPG) ListByOwner(ctx context.Context, ownerID string) ([]*Goal, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+goalCols+` FROM goals WHERE user_id = $1
		ORDER BY created_at DESC, id DESC`, ownerID)
	if err != nil {
		return nil, apperr.Wrap(err, "list goals")
	}
	defer rows.Close()

	items := []*Goal{}
	for rows.Next() {
		g, err := r.scanGoal(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, g)
	}
	return items, apperr.Wrap(rows.Err(), "list goals")
}

func (r *goalRepoPG) Update(ctx context.Context, g *Goal) error {
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE goals SET title=$2, description=$3, category=$4, target_value=$5,
			current_value=$6, unit=$7, start_date=$8, end_date=$9, status=$10,
			progress=$11, updated_at=NOW()
		WHERE id = $1
		RETURNING updated_at`,
		g.ID, g.Title, g.Description, g.Category, g.TargetValue,
		g.CurrentValue, g.Unit, g.StartDate, g.EndDate, g.Status, g.Progress,
	).Scan(&g.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("Goal not found")
	}
	return apperr.Wrap(err, "update goal")
}

func (r *goalRepoPG) Delete(ctx context.Context, id string) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM goals WHERE id = $1`, id)
	if err != nil {
		return apperr.Wrap(err, "delete goal")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Goal not found")
	}
	return nil
}
