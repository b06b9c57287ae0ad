package usecase

import (
	"context"
	"crypto/rand"
	"encoding/base32"
	"errors"
	"log"

	"carpool/internal/entity"
	"carpool/internal/repository"
)

var (
	ErrNotGroupAdmin    = errors.New("only the group admin can do this")
	ErrNotGroupMember   = errors.New("user is not a group member")
	ErrInvalidInvite    = errors.New("invalid invite code")
	ErrAlreadyMember    = errors.New("user is already a member")
	ErrAlreadyRequested = errors.New("join request already pending")
	ErrNoJoinRequest    = errors.New("no pending join request for user")
)

// Notifier is the notification side of the usecase layer; implemented by
// NotificationUsecase. Group and schedule flows report events through it.
type Notifier interface {
	Send(ctx context.Context, userId, notificationType string, data map[string]string) error
}

type GroupUsecase interface {
	Create(ctx context.Context, name, school, creatorId string) (entity.Group, error)
	Get(ctx context.Context, groupId, requesterId string) (entity.Group, error)
	ListForUser(ctx context.Context, userId string) ([]entity.Group, error)
	RequestJoin(ctx context.Context, groupId, userId, inviteCode string) error
	RequestJoinByCode(ctx context.Context, userId, inviteCode string) error
	ApproveMember(ctx context.Context, groupId, approverId, userId string) error
}

type groupUsecase struct {
	groupRepo repository.GroupRepository
	userRepo  repository.UserRepository
	notifier  Notifier
}

func NewGroupUsecase(groupRepo repository.GroupRepository, userRepo repository.UserRepository, notifier Notifier) GroupUsecase {
	return &groupUsecase{
		groupRepo: groupRepo,
		userRepo:  userRepo,
		notifier:  notifier,
	}
}

func (u *groupUsecase) Create(ctx context.Context, name, school, creatorId string) (entity.Group, error) {
	code, err := generateInviteCode()
	if err != nil {
		return entity.Group{}, err
	}

	group := entity.Group{
		Name:       name,
		School:     school,
		AdminId:    creatorId,
		MemberIds:  []string{creatorId},
		InviteCode: code,
		IsActive:   true,
	}

	groupId, err := u.groupRepo.Create(ctx, group)
	if err != nil {
		return entity.Group{}, err
	}
	group.Id = groupId

	return group, nil
}

func (u *groupUsecase) Get(ctx context.Context, groupId, requesterId string) (entity.Group, error) {
	group, err := u.groupRepo.Get(ctx, groupId)
	if err != nil {
		return entity.Group{}, err
	}

	if !group.IsMember(requesterId) {
		return entity.Group{}, ErrNotGroupMember
	}

	// The invite code is only shown to the group admin.
	if requesterId != group.AdminId {
		group.InviteCode = ""
		group.JoinRequests = nil
	}

	return group, nil
}

func (u *groupUsecase) ListForUser(ctx context.Context, userId string) ([]entity.Group, error) {
	groups, err := u.groupRepo.ListByMember(ctx, userId)
	if err != nil {
		return nil, err
	}

	for i := range groups {
		if groups[i].AdminId != userId {
			groups[i].InviteCode = ""
			groups[i].JoinRequests = nil
		}
	}

	return groups, nil
}

func (u *groupUsecase) RequestJoin(ctx context.Context, groupId, userId, inviteCode string) error {
	group, err := u.groupRepo.Get(ctx, groupId)
	if err != nil {
		return err
	}

	if group.InviteCode != inviteCode {
		return ErrInvalidInvite
	}

	return u.requestJoin(ctx, group, userId)
}

// RequestJoinByCode is the invite-link flow: the code alone identifies the
// group. An unknown code reads the same as a wrong one.
func (u *groupUsecase) RequestJoinByCode(ctx context.Context, userId, inviteCode string) error {
	group, err := u.groupRepo.GetByInviteCode(ctx, inviteCode)
	if err != nil {
		if errors.Is(err, repository.ErrGroupNotFound) {
			return ErrInvalidInvite
		}
		return err
	}

	return u.requestJoin(ctx, group, userId)
}

func (u *groupUsecase) requestJoin(ctx context.Context, group entity.Group, userId string) error {
	if group.IsMember(userId) {
		return ErrAlreadyMember
	}
	if group.HasJoinRequest(userId) {
		return ErrAlreadyRequested
	}

	if err := u.groupRepo.AddJoinRequest(ctx, group.Id, entity.JoinRequest{UserId: userId}); err != nil {
		return err
	}

	requester, err := u.userRepo.Get(ctx, userId)
	if err != nil {
		return err
	}

	if err := u.notifier.Send(ctx, group.AdminId, entity.NotifyJoinRequested, map[string]string{
		"RequesterName": requester.FirstName + " " + requester.LastName,
		"GroupName":     group.Name,
	}); err != nil {
		log.Printf("Join request notification error: %v", err)
	}

	return nil
}

func (u *groupUsecase) ApproveMember(ctx context.Context, groupId, approverId, userId string) error {
	group, err := u.groupRepo.Get(ctx, groupId)
	if err != nil {
		return err
	}

	if group.AdminId != approverId {
		return ErrNotGroupAdmin
	}
	if !group.HasJoinRequest(userId) {
		return ErrNoJoinRequest
	}

	if err := u.groupRepo.ApproveMember(ctx, groupId, userId); err != nil {
		return err
	}

	if err := u.notifier.Send(ctx, userId, entity.NotifyJoinApproved, map[string]string{
		"GroupName": group.Name,
	}); err != nil {
		log.Printf("Join approval notification error: %v", err)
	}

	return nil
}

func generateInviteCode() (string, error) {
	b := make([]byte, 5)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(b), nil
}
