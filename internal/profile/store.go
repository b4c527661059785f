package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound indicates no profile row exists yet.
var ErrNotFound = errors.New("profile not found")

// DB is the subset of pgx operations the store needs; *pgxpool.Pool
// satisfies it.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store persists the single user profile (row id = 1).
type Store struct {
	db DB
}

func NewStore(db DB) *Store {
	return &Store{db: db}
}

// Get returns the stored profile, or ErrNotFound if onboarding has never run.
func (s *Store) Get(ctx context.Context) (Profile, error) {
	var p Profile
	err := s.db.QueryRow(ctx, `
		SELECT COALESCE(age, 0), COALESCE(gender, ''), COALESCE(experience_level, ''),
		       COALESCE(primary_sport, ''), fitness_goals, injuries,
		       health_conditions, COALESCE(available_days_per_week, 0),
		       COALESCE(preferred_session_duration, 0), COALESCE(training_location, ''),
		       available_equipment, has_gym_membership, updated_at
		FROM user_profiles
		WHERE id = 1`).Scan(
		&p.Age, &p.Gender, &p.ExperienceLevel, &p.PrimarySport,
		&p.FitnessGoals, &p.Injuries, &p.HealthConditions,
		&p.AvailableDaysPerWeek, &p.PreferredSessionDuration,
		&p.TrainingLocation, &p.AvailableEquipment, &p.HasGymMembership,
		&p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, fmt.Errorf("loading profile: %w", err)
	}
	return p, nil
}

// Upsert stores p as the single profile row, replacing any previous values.
func (s *Store) Upsert(ctx context.Context, p Profile) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO user_profiles (
			id, age, gender, experience_level, primary_sport, fitness_goals,
			injuries, health_conditions, available_days_per_week,
			preferred_session_duration, training_location,
			available_equipment, has_gym_membership, updated_at
		) VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, now())
		ON CONFLICT (id) DO UPDATE SET
			age                        = EXCLUDED.age,
			gender                     = EXCLUDED.gender,
			experience_level           = EXCLUDED.experience_level,
			primary_sport              = EXCLUDED.primary_sport,
			fitness_goals              = EXCLUDED.fitness_goals,
			injuries                   = EXCLUDED.injuries,
			health_conditions          = EXCLUDED.health_conditions,
			available_days_per_week    = EXCLUDED.available_days_per_week,
			preferred_session_duration = EXCLUDED.preferred_session_duration,
			training_location          = EXCLUDED.training_location,
			available_equipment        = EXCLUDED.available_equipment,
			has_gym_membership         = EXCLUDED.has_gym_membership,
			updated_at                 = now()`,
		nullIfZero(p.Age), p.Gender, p.ExperienceLevel, p.PrimarySport,
		orEmpty(p.FitnessGoals), orEmpty(p.Injuries),
		orEmpty(p.HealthConditions), nullIfZero(p.AvailableDaysPerWeek),
		nullIfZero(p.PreferredSessionDuration), p.TrainingLocation,
		orEmpty(p.AvailableEquipment), p.HasGymMembership)
	if err != nil {
		return fmt.Errorf("saving profile: %w", err)
	}
	return nil
}

// nullIfZero maps 0 to SQL NULL for optional integer columns.
func nullIfZero(n int) any {
	if n == 0 {
		return nil
	}
	return n
}

// orEmpty keeps JSONB array columns non-null.
func orEmpty(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
