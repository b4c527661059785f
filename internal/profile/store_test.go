package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coachx/coachx/internal/testutil"
)

func TestStore_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := testutil.SetupTestDB(t)
	store := NewStore(tdb.Pool)
	ctx := t.Context()

	t.Run("get before upsert", func(t *testing.T) {
		_, err := store.Get(ctx)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("upsert and get", func(t *testing.T) {
		want := Profile{
			Age:                      28,
			Gender:                   "male",
			ExperienceLevel:          "intermediate",
			PrimarySport:             "boxing",
			FitnessGoals:             []string{"endurance", "technique"},
			Injuries:                 []string{"left knee"},
			AvailableDaysPerWeek:     4,
			PreferredSessionDuration: 60,
			TrainingLocation:         "gym",
			AvailableEquipment:       []string{"heavy bag", "jump rope"},
			HasGymMembership:         true,
		}
		require.NoError(t, store.Upsert(ctx, want))

		got, err := store.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, want.Age, got.Age)
		assert.Equal(t, want.PrimarySport, got.PrimarySport)
		assert.Equal(t, want.FitnessGoals, got.FitnessGoals)
		assert.Equal(t, want.Injuries, got.Injuries)
		assert.True(t, got.HasGymMembership)
		assert.False(t, got.UpdatedAt.IsZero())
	})

	t.Run("upsert replaces the single row", func(t *testing.T) {
		require.NoError(t, store.Upsert(ctx, Profile{Age: 35, PrimarySport: "crossfit"}))

		got, err := store.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, 35, got.Age)
		assert.Equal(t, "crossfit", got.PrimarySport)
	})

	t.Run("partial profile round-trips through nullable columns", func(t *testing.T) {
		require.NoError(t, store.Upsert(ctx, Profile{PrimarySport: "running"}))

		got, err := store.Get(ctx)
		require.NoError(t, err)
		assert.Zero(t, got.Age)
		assert.Empty(t, got.FitnessGoals)
		assert.Equal(t, "running", got.PrimarySport)
	})
}
