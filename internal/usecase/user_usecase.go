package usecase

import (
	"context"
	"errors"

	"carpool/internal/entity"
	"carpool/internal/repository"
)

var (
	ErrNoFamily        = errors.New("user has no family")
	ErrAlreadyInFamily = errors.New("user already belongs to a family")
)

type UserUsecase interface {
	Get(ctx context.Context, userId string) (entity.User, error)
	GetFamily(ctx context.Context, userId string) (entity.Family, error)
	JoinFamily(ctx context.Context, userId, familyId string) error
	SetChildren(ctx context.Context, userId string, children []entity.Child) error
}

type userUsecase struct {
	userRepo   repository.UserRepository
	familyRepo repository.FamilyRepository
}

func NewUserUsecase(userRepo repository.UserRepository, familyRepo repository.FamilyRepository) UserUsecase {
	return &userUsecase{
		userRepo:   userRepo,
		familyRepo: familyRepo,
	}
}

func (u *userUsecase) Get(ctx context.Context, userId string) (entity.User, error) {
	return u.userRepo.Get(ctx, userId)
}

func (u *userUsecase) GetFamily(ctx context.Context, userId string) (entity.Family, error) {
	user, err := u.userRepo.Get(ctx, userId)
	if err != nil {
		return entity.Family{}, err
	}
	if user.FamilyId == "" {
		return entity.Family{}, ErrNoFamily
	}

	return u.familyRepo.Get(ctx, user.FamilyId)
}

func (u *userUsecase) JoinFamily(ctx context.Context, userId, familyId string) error {
	user, err := u.userRepo.Get(ctx, userId)
	if err != nil {
		return err
	}
	if user.FamilyId != "" {
		return ErrAlreadyInFamily
	}

	if _, err := u.familyRepo.Get(ctx, familyId); err != nil {
		return err
	}
	if err := u.familyRepo.AddMember(ctx, familyId, userId); err != nil {
		return err
	}

	user.FamilyId = familyId
	return u.userRepo.Update(ctx, user)
}

func (u *userUsecase) SetChildren(ctx context.Context, userId string, children []entity.Child) error {
	user, err := u.userRepo.Get(ctx, userId)
	if err != nil {
		return err
	}
	if user.FamilyId == "" {
		return ErrNoFamily
	}

	return u.familyRepo.SetChildren(ctx, user.FamilyId, children)
}
