package usecase

import (
	"context"
	"testing"

	"carpool/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func preferenceFixture() (*fakePreferenceRepo, PreferenceUsecase) {
	prefRepo := &fakePreferenceRepo{}
	groupRepo := &fakeGroupRepo{groups: map[string]entity.Group{
		"group-1": {
			Id:        "group-1",
			AdminId:   "alice",
			MemberIds: []string{"alice", "bob"},
		},
	}}
	return prefRepo, NewPreferenceUsecase(prefRepo, groupRepo)
}

func TestPreferenceSubmit(t *testing.T) {
	t.Run("stores a valid submission", func(t *testing.T) {
		prefRepo, uc := preferenceFixture()

		err := uc.Submit(context.Background(), "group-1", "bob", "2026-08-31", map[string]string{
			"monday-morning":   entity.LevelPreferable,
			"friday-afternoon": entity.LevelUnavailable,
		})
		require.NoError(t, err)
		require.Len(t, prefRepo.prefs, 1)
		assert.Equal(t, "bob", prefRepo.prefs[0].DriverId)
	})

	t.Run("resubmitting replaces the previous week", func(t *testing.T) {
		prefRepo, uc := preferenceFixture()

		require.NoError(t, uc.Submit(context.Background(), "group-1", "bob", "2026-08-31",
			map[string]string{"monday-morning": entity.LevelPreferable}))
		require.NoError(t, uc.Submit(context.Background(), "group-1", "bob", "2026-08-31",
			map[string]string{"monday-morning": entity.LevelUnavailable}))

		require.Len(t, prefRepo.prefs, 1)
		assert.Equal(t, entity.LevelUnavailable, prefRepo.prefs[0].Slots["monday-morning"])
	})

	t.Run("rejects a non-Monday week", func(t *testing.T) {
		_, uc := preferenceFixture()

		err := uc.Submit(context.Background(), "group-1", "bob", "2026-09-01", nil)
		assert.ErrorIs(t, err, ErrInvalidWeek)
	})

	t.Run("rejects a malformed date", func(t *testing.T) {
		_, uc := preferenceFixture()

		err := uc.Submit(context.Background(), "group-1", "bob", "next monday", nil)
		assert.ErrorIs(t, err, ErrInvalidWeek)
	})

	t.Run("rejects an unknown slot", func(t *testing.T) {
		_, uc := preferenceFixture()

		err := uc.Submit(context.Background(), "group-1", "bob", "2026-08-31",
			map[string]string{"saturday-morning": entity.LevelPreferable})
		assert.ErrorIs(t, err, ErrInvalidSlots)
	})

	t.Run("rejects an unknown level", func(t *testing.T) {
		_, uc := preferenceFixture()

		err := uc.Submit(context.Background(), "group-1", "bob", "2026-08-31",
			map[string]string{"monday-morning": "maybe"})
		assert.ErrorIs(t, err, ErrInvalidSlots)
	})

	t.Run("non-members cannot submit", func(t *testing.T) {
		_, uc := preferenceFixture()

		err := uc.Submit(context.Background(), "group-1", "stranger", "2026-08-31",
			map[string]string{"monday-morning": entity.LevelPreferable})
		assert.ErrorIs(t, err, ErrNotGroupMember)
	})
}

func TestPreferenceList(t *testing.T) {
	prefRepo, uc := preferenceFixture()
	require.NoError(t, uc.Submit(context.Background(), "group-1", "bob", "2026-08-31",
		map[string]string{"monday-morning": entity.LevelPreferable}))
	require.NoError(t, uc.Submit(context.Background(), "group-1", "alice", "2026-08-31",
		map[string]string{"monday-morning": entity.LevelLessPreferable}))
	require.Len(t, prefRepo.prefs, 2)

	t.Run("members see the group's submissions", func(t *testing.T) {
		prefs, err := uc.List(context.Background(), "group-1", "bob", "2026-08-31")
		require.NoError(t, err)
		assert.Len(t, prefs, 2)
	})

	t.Run("only the requested week", func(t *testing.T) {
		prefs, err := uc.List(context.Background(), "group-1", "bob", "2026-09-07")
		require.NoError(t, err)
		assert.Empty(t, prefs)
	})

	t.Run("non-members are rejected", func(t *testing.T) {
		_, err := uc.List(context.Background(), "group-1", "stranger", "2026-08-31")
		assert.ErrorIs(t, err, ErrNotGroupMember)
	})
}
