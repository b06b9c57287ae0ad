package usecase

import (
	"context"
	"errors"
	"log"
	"sort"
	"strconv"

	"carpool/internal/entity"
	"carpool/internal/repository"
)

var ErrScheduleNotDraft = errors.New("schedule is not a draft")

type ScheduleUsecase interface {
	Generate(ctx context.Context, groupId, requesterId, weekStartDate string) (entity.Schedule, error)
	Activate(ctx context.Context, scheduleId, requesterId string) (entity.Schedule, error)
	Get(ctx context.Context, groupId, requesterId, weekStartDate string) (entity.Schedule, error)
}

type scheduleUsecase struct {
	scheduleRepo repository.ScheduleRepository
	prefRepo     repository.PreferenceRepository
	groupRepo    repository.GroupRepository
	notifier     Notifier
}

func NewScheduleUsecase(
	scheduleRepo repository.ScheduleRepository,
	prefRepo repository.PreferenceRepository,
	groupRepo repository.GroupRepository,
	notifier Notifier,
) ScheduleUsecase {
	return &scheduleUsecase{
		scheduleRepo: scheduleRepo,
		prefRepo:     prefRepo,
		groupRepo:    groupRepo,
		notifier:     notifier,
	}
}

func (u *scheduleUsecase) Generate(ctx context.Context, groupId, requesterId, weekStartDate string) (entity.Schedule, error) {
	if err := ValidateWeekStart(weekStartDate); err != nil {
		return entity.Schedule{}, err
	}

	group, err := u.groupRepo.Get(ctx, groupId)
	if err != nil {
		return entity.Schedule{}, err
	}
	if group.AdminId != requesterId {
		return entity.Schedule{}, ErrNotGroupAdmin
	}

	prefs, err := u.prefRepo.ListByGroupWeek(ctx, groupId, weekStartDate)
	if err != nil {
		return entity.Schedule{}, err
	}

	assignments, unassigned := AssignWeek(prefs, group.MemberIds)

	schedule := entity.Schedule{
		GroupId:       groupId,
		WeekStartDate: weekStartDate,
		Status:        entity.ScheduleDraft,
		Assignments:   assignments,
		Unassigned:    unassigned,
	}

	scheduleId, err := u.scheduleRepo.Replace(ctx, schedule)
	if err != nil {
		return entity.Schedule{}, err
	}
	schedule.Id = scheduleId

	return schedule, nil
}

func (u *scheduleUsecase) Activate(ctx context.Context, scheduleId, requesterId string) (entity.Schedule, error) {
	schedule, err := u.scheduleRepo.Get(ctx, scheduleId)
	if err != nil {
		return entity.Schedule{}, err
	}

	group, err := u.groupRepo.Get(ctx, schedule.GroupId)
	if err != nil {
		return entity.Schedule{}, err
	}
	if group.AdminId != requesterId {
		return entity.Schedule{}, ErrNotGroupAdmin
	}
	if schedule.Status != entity.ScheduleDraft {
		return entity.Schedule{}, ErrScheduleNotDraft
	}

	if err := u.scheduleRepo.Activate(ctx, scheduleId); err != nil {
		return entity.Schedule{}, err
	}
	schedule.Status = entity.ScheduleActive

	// Each assigned driver gets one notification covering all their slots.
	slotCounts := make(map[string]int)
	for _, a := range schedule.Assignments {
		slotCounts[a.DriverId]++
	}
	for driverId, count := range slotCounts {
		if err := u.notifier.Send(ctx, driverId, entity.NotifyScheduleActivated, map[string]string{
			"GroupName":     group.Name,
			"WeekStartDate": schedule.WeekStartDate,
			"SlotCount":     strconv.Itoa(count),
		}); err != nil {
			log.Printf("Schedule notification error for %s: %v", driverId, err)
		}
	}

	return schedule, nil
}

func (u *scheduleUsecase) Get(ctx context.Context, groupId, requesterId, weekStartDate string) (entity.Schedule, error) {
	if err := ValidateWeekStart(weekStartDate); err != nil {
		return entity.Schedule{}, err
	}

	group, err := u.groupRepo.Get(ctx, groupId)
	if err != nil {
		return entity.Schedule{}, err
	}
	if !group.IsMember(requesterId) {
		return entity.Schedule{}, ErrNotGroupMember
	}

	return u.scheduleRepo.GetByGroupWeek(ctx, groupId, weekStartDate)
}

// AssignWeek runs the weekly assignment pass over the submitted preferences.
// For each slot in week order it picks among drivers who are not unavailable,
// preferring "preferable" over "less-preferable", then the driver with the
// fewest assignments so far, then the lowest driver id. Slots nobody can
// cover are returned in unassigned. The result is deterministic for a given
// input.
func AssignWeek(prefs []entity.WeeklyPreference, memberIds []string) ([]entity.Assignment, []string) {
	byDriver := make(map[string]entity.WeeklyPreference, len(prefs))
	driverIds := make([]string, 0, len(prefs))
	for _, p := range prefs {
		if _, seen := byDriver[p.DriverId]; !seen {
			driverIds = append(driverIds, p.DriverId)
		}
		byDriver[p.DriverId] = p
	}
	sort.Strings(driverIds)

	counts := make(map[string]int, len(driverIds))
	var assignments []entity.Assignment
	var unassigned []string

	for _, slot := range entity.WeekSlots {
		driverId := pickDriver(slot, driverIds, byDriver, counts)
		if driverId == "" {
			unassigned = append(unassigned, slot)
			continue
		}

		counts[driverId]++
		assignments = append(assignments, entity.Assignment{
			Slot:         slot,
			DriverId:     driverId,
			PassengerIds: passengersFor(driverId, memberIds),
		})
	}

	return assignments, unassigned
}

func pickDriver(slot string, driverIds []string, byDriver map[string]entity.WeeklyPreference, counts map[string]int) string {
	best := ""
	bestLevel := ""

	better := func(candidate, level string) bool {
		if best == "" {
			return true
		}
		// preferable beats less-preferable regardless of load
		if level != bestLevel {
			return level == entity.LevelPreferable
		}
		if counts[candidate] != counts[best] {
			return counts[candidate] < counts[best]
		}
		return candidate < best
	}

	for _, id := range driverIds {
		pref := byDriver[id]
		level := pref.Level(slot)
		if level == entity.LevelUnavailable {
			continue
		}
		if better(id, level) {
			best = id
			bestLevel = level
		}
	}

	return best
}

func passengersFor(driverId string, memberIds []string) []string {
	passengers := make([]string, 0, len(memberIds))
	for _, id := range memberIds {
		if id != driverId {
			passengers = append(passengers, id)
		}
	}
	return passengers
}
