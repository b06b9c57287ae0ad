package usecase

import (
	"context"
	"testing"

	"carpool/internal/entity"
	"carpool/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func prefFor(driverId string, slots map[string]string) entity.WeeklyPreference {
	return entity.WeeklyPreference{
		GroupId:       "group-1",
		DriverId:      driverId,
		WeekStartDate: "2026-08-31",
		Slots:         slots,
	}
}

func allSlots(level string) map[string]string {
	slots := make(map[string]string, len(entity.WeekSlots))
	for _, slot := range entity.WeekSlots {
		slots[slot] = level
	}
	return slots
}

func TestAssignWeek(t *testing.T) {
	members := []string{"alice", "bob", "carol"}

	t.Run("never assigns an unavailable driver", func(t *testing.T) {
		prefs := []entity.WeeklyPreference{
			prefFor("alice", allSlots(entity.LevelUnavailable)),
			prefFor("bob", allSlots(entity.LevelPreferable)),
		}

		assignments, unassigned := AssignWeek(prefs, members)

		require.Len(t, assignments, len(entity.WeekSlots))
		assert.Empty(t, unassigned)
		for _, a := range assignments {
			assert.Equal(t, "bob", a.DriverId)
		}
	})

	t.Run("unsubmitted slots default to unavailable", func(t *testing.T) {
		prefs := []entity.WeeklyPreference{
			prefFor("alice", map[string]string{"monday-morning": entity.LevelPreferable}),
		}

		assignments, unassigned := AssignWeek(prefs, members)

		require.Len(t, assignments, 1)
		assert.Equal(t, "monday-morning", assignments[0].Slot)
		assert.Len(t, unassigned, len(entity.WeekSlots)-1)
	})

	t.Run("preferable beats less-preferable regardless of load", func(t *testing.T) {
		prefs := []entity.WeeklyPreference{
			prefFor("alice", allSlots(entity.LevelPreferable)),
			prefFor("bob", allSlots(entity.LevelLessPreferable)),
		}

		assignments, _ := AssignWeek(prefs, members)

		for _, a := range assignments {
			assert.Equal(t, "alice", a.DriverId)
		}
	})

	t.Run("balances load within the same level", func(t *testing.T) {
		prefs := []entity.WeeklyPreference{
			prefFor("alice", allSlots(entity.LevelPreferable)),
			prefFor("bob", allSlots(entity.LevelPreferable)),
		}

		assignments, _ := AssignWeek(prefs, members)

		counts := map[string]int{}
		for _, a := range assignments {
			counts[a.DriverId]++
		}
		assert.Equal(t, 5, counts["alice"])
		assert.Equal(t, 5, counts["bob"])
	})

	t.Run("ties break on the lowest driver id", func(t *testing.T) {
		prefs := []entity.WeeklyPreference{
			prefFor("bob", map[string]string{"monday-morning": entity.LevelPreferable}),
			prefFor("alice", map[string]string{"monday-morning": entity.LevelPreferable}),
		}

		assignments, _ := AssignWeek(prefs, members)

		require.Len(t, assignments, 1)
		assert.Equal(t, "alice", assignments[0].DriverId)
	})

	t.Run("is deterministic for the same input", func(t *testing.T) {
		prefs := []entity.WeeklyPreference{
			prefFor("alice", allSlots(entity.LevelPreferable)),
			prefFor("bob", allSlots(entity.LevelPreferable)),
			prefFor("carol", allSlots(entity.LevelLessPreferable)),
		}

		first, firstUnassigned := AssignWeek(prefs, members)
		second, secondUnassigned := AssignWeek(prefs, members)

		assert.Equal(t, first, second)
		assert.Equal(t, firstUnassigned, secondUnassigned)
	})

	t.Run("passengers are the other members", func(t *testing.T) {
		prefs := []entity.WeeklyPreference{
			prefFor("alice", map[string]string{"monday-morning": entity.LevelPreferable}),
		}

		assignments, _ := AssignWeek(prefs, members)

		require.Len(t, assignments, 1)
		assert.ElementsMatch(t, []string{"bob", "carol"}, assignments[0].PassengerIds)
	})

	t.Run("no preferences leaves every slot unassigned", func(t *testing.T) {
		assignments, unassigned := AssignWeek(nil, members)

		assert.Empty(t, assignments)
		assert.Equal(t, entity.WeekSlots, unassigned)
	})
}

type fakeScheduleRepo struct {
	schedules map[string]entity.Schedule
	seq       int
}

func newFakeScheduleRepo() *fakeScheduleRepo {
	return &fakeScheduleRepo{schedules: map[string]entity.Schedule{}}
}

func (r *fakeScheduleRepo) Get(_ context.Context, scheduleId string) (entity.Schedule, error) {
	schedule, ok := r.schedules[scheduleId]
	if !ok {
		return entity.Schedule{}, repository.ErrScheduleNotFound
	}
	return schedule, nil
}

func (r *fakeScheduleRepo) GetByGroupWeek(_ context.Context, groupId, weekStartDate string) (entity.Schedule, error) {
	for _, schedule := range r.schedules {
		if schedule.GroupId == groupId && schedule.WeekStartDate == weekStartDate {
			return schedule, nil
		}
	}
	return entity.Schedule{}, repository.ErrScheduleNotFound
}

func (r *fakeScheduleRepo) Replace(_ context.Context, schedule entity.Schedule) (string, error) {
	for id, existing := range r.schedules {
		if existing.GroupId == schedule.GroupId && existing.WeekStartDate == schedule.WeekStartDate {
			schedule.Id = id
			r.schedules[id] = schedule
			return id, nil
		}
	}
	r.seq++
	schedule.Id = "schedule-" + string(rune('0'+r.seq))
	r.schedules[schedule.Id] = schedule
	return schedule.Id, nil
}

func (r *fakeScheduleRepo) Activate(_ context.Context, scheduleId string) error {
	schedule, ok := r.schedules[scheduleId]
	if !ok {
		return repository.ErrScheduleNotFound
	}
	schedule.Status = entity.ScheduleActive
	r.schedules[scheduleId] = schedule
	return nil
}

type fakePreferenceRepo struct {
	prefs []entity.WeeklyPreference
}

func (r *fakePreferenceRepo) Upsert(_ context.Context, pref entity.WeeklyPreference) error {
	for i, existing := range r.prefs {
		if existing.GroupId == pref.GroupId && existing.DriverId == pref.DriverId &&
			existing.WeekStartDate == pref.WeekStartDate {
			r.prefs[i] = pref
			return nil
		}
	}
	r.prefs = append(r.prefs, pref)
	return nil
}

func (r *fakePreferenceRepo) ListByGroupWeek(_ context.Context, groupId, weekStartDate string) ([]entity.WeeklyPreference, error) {
	var out []entity.WeeklyPreference
	for _, pref := range r.prefs {
		if pref.GroupId == groupId && pref.WeekStartDate == weekStartDate {
			out = append(out, pref)
		}
	}
	return out, nil
}

type fakeGroupRepo struct {
	groups map[string]entity.Group
}

func (r *fakeGroupRepo) Get(_ context.Context, groupId string) (entity.Group, error) {
	group, ok := r.groups[groupId]
	if !ok {
		return entity.Group{}, repository.ErrGroupNotFound
	}
	return group, nil
}

func (r *fakeGroupRepo) GetByInviteCode(_ context.Context, code string) (entity.Group, error) {
	for _, group := range r.groups {
		if group.InviteCode == code {
			return group, nil
		}
	}
	return entity.Group{}, repository.ErrGroupNotFound
}

func (r *fakeGroupRepo) Create(_ context.Context, group entity.Group) (string, error) {
	if group.Id == "" {
		group.Id = "group-" + string(rune('0'+len(r.groups)+1))
	}
	r.groups[group.Id] = group
	return group.Id, nil
}

func (r *fakeGroupRepo) ListByMember(_ context.Context, userId string) ([]entity.Group, error) {
	var out []entity.Group
	for _, group := range r.groups {
		if group.IsMember(userId) {
			out = append(out, group)
		}
	}
	return out, nil
}

func (r *fakeGroupRepo) AddJoinRequest(_ context.Context, groupId string, request entity.JoinRequest) error {
	group, ok := r.groups[groupId]
	if !ok {
		return repository.ErrGroupNotFound
	}
	group.JoinRequests = append(group.JoinRequests, request)
	r.groups[groupId] = group
	return nil
}

func (r *fakeGroupRepo) ApproveMember(_ context.Context, groupId, userId string) error {
	group, ok := r.groups[groupId]
	if !ok {
		return repository.ErrGroupNotFound
	}
	kept := group.JoinRequests[:0]
	for _, req := range group.JoinRequests {
		if req.UserId != userId {
			kept = append(kept, req)
		}
	}
	group.JoinRequests = kept
	group.MemberIds = append(group.MemberIds, userId)
	r.groups[groupId] = group
	return nil
}

type fakeNotifier struct {
	sent []sentNotification
	err  error
}

type sentNotification struct {
	userId string
	typ    string
	data   map[string]string
}

func (n *fakeNotifier) Send(_ context.Context, userId, notificationType string, data map[string]string) error {
	n.sent = append(n.sent, sentNotification{userId: userId, typ: notificationType, data: data})
	return n.err
}

func scheduleFixture() (*fakeScheduleRepo, *fakePreferenceRepo, *fakeGroupRepo, *fakeNotifier, ScheduleUsecase) {
	scheduleRepo := newFakeScheduleRepo()
	prefRepo := &fakePreferenceRepo{}
	groupRepo := &fakeGroupRepo{groups: map[string]entity.Group{
		"group-1": {
			Id:        "group-1",
			Name:      "Lincoln Elementary",
			AdminId:   "alice",
			MemberIds: []string{"alice", "bob", "carol"},
		},
	}}
	notifier := &fakeNotifier{}
	uc := NewScheduleUsecase(scheduleRepo, prefRepo, groupRepo, notifier)
	return scheduleRepo, prefRepo, groupRepo, notifier, uc
}

func TestScheduleGenerate(t *testing.T) {
	t.Run("admin generates a draft", func(t *testing.T) {
		_, prefRepo, _, _, uc := scheduleFixture()
		prefRepo.prefs = []entity.WeeklyPreference{
			prefFor("bob", allSlots(entity.LevelPreferable)),
		}

		schedule, err := uc.Generate(context.Background(), "group-1", "alice", "2026-08-31")
		require.NoError(t, err)
		assert.Equal(t, entity.ScheduleDraft, schedule.Status)
		assert.Len(t, schedule.Assignments, len(entity.WeekSlots))
		assert.NotEmpty(t, schedule.Id)
	})

	t.Run("non-admin is rejected", func(t *testing.T) {
		_, _, _, _, uc := scheduleFixture()

		_, err := uc.Generate(context.Background(), "group-1", "bob", "2026-08-31")
		assert.ErrorIs(t, err, ErrNotGroupAdmin)
	})

	t.Run("week must be a Monday", func(t *testing.T) {
		_, _, _, _, uc := scheduleFixture()

		_, err := uc.Generate(context.Background(), "group-1", "alice", "2026-09-01")
		assert.ErrorIs(t, err, ErrInvalidWeek)
	})

	t.Run("regenerating replaces the existing draft", func(t *testing.T) {
		scheduleRepo, prefRepo, _, _, uc := scheduleFixture()
		prefRepo.prefs = []entity.WeeklyPreference{
			prefFor("bob", allSlots(entity.LevelPreferable)),
		}

		first, err := uc.Generate(context.Background(), "group-1", "alice", "2026-08-31")
		require.NoError(t, err)
		second, err := uc.Generate(context.Background(), "group-1", "alice", "2026-08-31")
		require.NoError(t, err)

		assert.Equal(t, first.Id, second.Id)
		assert.Len(t, scheduleRepo.schedules, 1)
	})
}

func TestScheduleActivate(t *testing.T) {
	t.Run("activates and notifies each driver once", func(t *testing.T) {
		_, prefRepo, _, notifier, uc := scheduleFixture()
		prefRepo.prefs = []entity.WeeklyPreference{
			prefFor("alice", allSlots(entity.LevelPreferable)),
			prefFor("bob", allSlots(entity.LevelPreferable)),
		}

		draft, err := uc.Generate(context.Background(), "group-1", "alice", "2026-08-31")
		require.NoError(t, err)

		active, err := uc.Activate(context.Background(), draft.Id, "alice")
		require.NoError(t, err)
		assert.Equal(t, entity.ScheduleActive, active.Status)

		require.Len(t, notifier.sent, 2)
		for _, sent := range notifier.sent {
			assert.Equal(t, entity.NotifyScheduleActivated, sent.typ)
			assert.Equal(t, "5", sent.data["SlotCount"])
			assert.Equal(t, "Lincoln Elementary", sent.data["GroupName"])
		}
	})

	t.Run("only a draft can be activated", func(t *testing.T) {
		_, prefRepo, _, _, uc := scheduleFixture()
		prefRepo.prefs = []entity.WeeklyPreference{
			prefFor("bob", allSlots(entity.LevelPreferable)),
		}

		draft, err := uc.Generate(context.Background(), "group-1", "alice", "2026-08-31")
		require.NoError(t, err)
		_, err = uc.Activate(context.Background(), draft.Id, "alice")
		require.NoError(t, err)

		_, err = uc.Activate(context.Background(), draft.Id, "alice")
		assert.ErrorIs(t, err, ErrScheduleNotDraft)
	})

	t.Run("non-admin cannot activate", func(t *testing.T) {
		_, prefRepo, _, _, uc := scheduleFixture()
		prefRepo.prefs = []entity.WeeklyPreference{
			prefFor("bob", allSlots(entity.LevelPreferable)),
		}

		draft, err := uc.Generate(context.Background(), "group-1", "alice", "2026-08-31")
		require.NoError(t, err)

		_, err = uc.Activate(context.Background(), draft.Id, "bob")
		assert.ErrorIs(t, err, ErrNotGroupAdmin)
	})
}

func TestScheduleGet(t *testing.T) {
	t.Run("members can read the schedule", func(t *testing.T) {
		_, prefRepo, _, _, uc := scheduleFixture()
		prefRepo.prefs = []entity.WeeklyPreference{
			prefFor("bob", allSlots(entity.LevelPreferable)),
		}

		draft, err := uc.Generate(context.Background(), "group-1", "alice", "2026-08-31")
		require.NoError(t, err)

		got, err := uc.Get(context.Background(), "group-1", "bob", "2026-08-31")
		require.NoError(t, err)
		assert.Equal(t, draft.Id, got.Id)
	})

	t.Run("non-members are rejected", func(t *testing.T) {
		_, _, _, _, uc := scheduleFixture()

		_, err := uc.Get(context.Background(), "group-1", "stranger", "2026-08-31")
		assert.ErrorIs(t, err, ErrNotGroupMember)
	})

	t.Run("missing schedule", func(t *testing.T) {
		_, _, _, _, uc := scheduleFixture()

		_, err := uc.Get(context.Background(), "group-1", "bob", "2026-08-31")
		assert.ErrorIs(t, err, repository.ErrScheduleNotFound)
	})
}
