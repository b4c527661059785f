// Package plans persists generated workout plans and tracks which one is
// active.
package plans

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/coachx/coachx/internal/coach"
)

// Plan lifecycle states.
const (
	StatusGenerated = "generated"
	StatusActive    = "active"
	StatusCompleted = "completed"
)

// ErrNotFound indicates the referenced plan does not exist.
var ErrNotFound = errors.New("plan not found")

// Plan is a stored workout plan. PlanStructure is opaque to this layer.
type Plan struct {
	ID            uuid.UUID                  `json:"id"`
	Title         string                     `json:"title"`
	Description   string                     `json:"description"`
	DurationWeeks int                        `json:"duration_weeks"`
	PlanStructure map[string]json.RawMessage `json:"plan_structure"`
	Status        string                     `json:"status"`
	CreatedAt     time.Time                  `json:"created_at"`
}

// DB is the subset of pgx operations the store needs; *pgxpool.Pool
// satisfies it.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store persists workout plans.
type Store struct {
	db DB
}

func NewStore(db DB) *Store {
	return &Store{db: db}
}

// Save stores a freshly generated plan and returns it with its assigned ID.
// New plans start in the generated state.
func (s *Store) Save(ctx context.Context, generated coach.GeneratedPlan, durationWeeks int) (Plan, error) {
	plan := Plan{
		ID:            uuid.New(),
		Title:         generated.Title,
		Description:   generated.Description,
		DurationWeeks: durationWeeks,
		PlanStructure: generated.PlanStructure,
		Status:        StatusGenerated,
	}

	err := s.db.QueryRow(ctx, `
		INSERT INTO workout_plans (id, title, description, duration_weeks, plan_structure, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		plan.ID, plan.Title, plan.Description, plan.DurationWeeks,
		plan.PlanStructure, plan.Status).Scan(&plan.CreatedAt)
	if err != nil {
		return Plan{}, fmt.Errorf("saving plan: %w", err)
	}
	return plan, nil
}

// Get returns one plan by ID.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (Plan, error) {
	var p Plan
	err := s.db.QueryRow(ctx, `
		SELECT id, title, description, duration_weeks, plan_structure, status, created_at
		FROM workout_plans
		WHERE id = $1`, id).Scan(
		&p.ID, &p.Title, &p.Description, &p.DurationWeeks,
		&p.PlanStructure, &p.Status, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Plan{}, ErrNotFound
		}
		return Plan{}, fmt.Errorf("loading plan: %w", err)
	}
	return p, nil
}

// List returns all plans, newest first.
func (s *Store) List(ctx context.Context) ([]Plan, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, title, description, duration_weeks, plan_structure, status, created_at
		FROM workout_plans
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing plans: %w", err)
	}
	defer rows.Close()

	var result []Plan
	for rows.Next() {
		var p Plan
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.DurationWeeks,
			&p.PlanStructure, &p.Status, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning plan row: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("plan rows: %w", err)
	}
	return result, nil
}

// Activate marks the given plan active and demotes any previously active
// plan. Returns the activated plan, or ErrNotFound.
func (s *Store) Activate(ctx context.Context, id uuid.UUID) (Plan, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE workout_plans SET status = $1 WHERE id = $2`, StatusActive, id)
	if err != nil {
		return Plan{}, fmt.Errorf("activating plan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Nothing changed yet, so an unknown ID leaves the current active
		// plan in place.
		return Plan{}, ErrNotFound
	}

	if _, err := s.db.Exec(ctx, `
		UPDATE workout_plans SET status = $1 WHERE status = $2 AND id <> $3`,
		StatusGenerated, StatusActive, id); err != nil {
		return Plan{}, fmt.Errorf("deactivating previous plan: %w", err)
	}

	return s.Get(ctx, id)
}

// Active returns the currently active plan, or ErrNotFound when none is set.
func (s *Store) Active(ctx context.Context) (Plan, error) {
	var p Plan
	err := s.db.QueryRow(ctx, `
		SELECT id, title, description, duration_weeks, plan_structure, status, created_at
		FROM workout_plans
		WHERE status = $1`, StatusActive).Scan(
		&p.ID, &p.Title, &p.Description, &p.DurationWeeks,
		&p.PlanStructure, &p.Status, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Plan{}, ErrNotFound
		}
		return Plan{}, fmt.Errorf("loading active plan: %w", err)
	}
	return p, nil
}

// Delete removes a plan. Returns ErrNotFound if it does not exist.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM workout_plans WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting plan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
