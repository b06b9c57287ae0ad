package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"carpool/internal/entity"
	"carpool/internal/repository"
)

var (
	ErrInvalidWeek  = errors.New("weekStartDate must be a Monday in YYYY-MM-DD form")
	ErrInvalidSlots = errors.New("invalid slots")
)

type PreferenceUsecase interface {
	Submit(ctx context.Context, groupId, driverId, weekStartDate string, slots map[string]string) error
	List(ctx context.Context, groupId, requesterId, weekStartDate string) ([]entity.WeeklyPreference, error)
}

type preferenceUsecase struct {
	prefRepo  repository.PreferenceRepository
	groupRepo repository.GroupRepository
}

func NewPreferenceUsecase(prefRepo repository.PreferenceRepository, groupRepo repository.GroupRepository) PreferenceUsecase {
	return &preferenceUsecase{
		prefRepo:  prefRepo,
		groupRepo: groupRepo,
	}
}

func (u *preferenceUsecase) Submit(ctx context.Context, groupId, driverId, weekStartDate string, slots map[string]string) error {
	if err := ValidateWeekStart(weekStartDate); err != nil {
		return err
	}

	for slot, level := range slots {
		if !entity.ValidSlot(slot) {
			return fmt.Errorf("%w: unknown slot %q", ErrInvalidSlots, slot)
		}
		if !entity.ValidLevel(level) {
			return fmt.Errorf("%w: unknown preference level %q for slot %q", ErrInvalidSlots, level, slot)
		}
	}

	group, err := u.groupRepo.Get(ctx, groupId)
	if err != nil {
		return err
	}
	if !group.IsMember(driverId) {
		return ErrNotGroupMember
	}

	return u.prefRepo.Upsert(ctx, entity.WeeklyPreference{
		GroupId:       groupId,
		DriverId:      driverId,
		WeekStartDate: weekStartDate,
		Slots:         slots,
	})
}

func (u *preferenceUsecase) List(ctx context.Context, groupId, requesterId, weekStartDate string) ([]entity.WeeklyPreference, error) {
	if err := ValidateWeekStart(weekStartDate); err != nil {
		return nil, err
	}

	group, err := u.groupRepo.Get(ctx, groupId)
	if err != nil {
		return nil, err
	}
	if !group.IsMember(requesterId) {
		return nil, ErrNotGroupMember
	}

	return u.prefRepo.ListByGroupWeek(ctx, groupId, weekStartDate)
}

// ValidateWeekStart checks that week is a YYYY-MM-DD date falling on a Monday.
func ValidateWeekStart(week string) error {
	t, err := time.Parse("2006-01-02", week)
	if err != nil {
		return ErrInvalidWeek
	}
	if t.Weekday() != time.Monday {
		return ErrInvalidWeek
	}
	return nil
}
