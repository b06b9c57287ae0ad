package usecase

import (
	"context"
	"testing"

	"carpool/internal/entity"
	"carpool/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func groupFixture() (*fakeGroupRepo, *fakeUserRepo, *fakeNotifier, GroupUsecase) {
	groupRepo := &fakeGroupRepo{groups: map[string]entity.Group{}}
	userRepo := newFakeUserRepo()
	userRepo.users["alice"] = entity.User{Id: "alice", Email: "alice@example.com", FirstName: "Alice", LastName: "Admin"}
	userRepo.users["bob"] = entity.User{Id: "bob", Email: "bob@example.com", FirstName: "Bob", LastName: "Parent"}
	notifier := &fakeNotifier{}
	return groupRepo, userRepo, notifier, NewGroupUsecase(groupRepo, userRepo, notifier)
}

func TestGroupCreate(t *testing.T) {
	_, _, _, uc := groupFixture()

	group, err := uc.Create(context.Background(), "Lincoln Carpool", "Lincoln Elementary", "alice")
	require.NoError(t, err)

	assert.Equal(t, "alice", group.AdminId)
	assert.Equal(t, []string{"alice"}, group.MemberIds)
	assert.NotEmpty(t, group.InviteCode)
	assert.True(t, group.IsActive)
}

func TestGroupGet(t *testing.T) {
	_, _, _, uc := groupFixture()
	group, err := uc.Create(context.Background(), "Lincoln Carpool", "Lincoln Elementary", "alice")
	require.NoError(t, err)

	t.Run("admin sees the invite code", func(t *testing.T) {
		got, err := uc.Get(context.Background(), group.Id, "alice")
		require.NoError(t, err)
		assert.Equal(t, group.InviteCode, got.InviteCode)
	})

	t.Run("members do not see the invite code", func(t *testing.T) {
		require.NoError(t, uc.RequestJoin(context.Background(), group.Id, "bob", group.InviteCode))
		require.NoError(t, uc.ApproveMember(context.Background(), group.Id, "alice", "bob"))

		got, err := uc.Get(context.Background(), group.Id, "bob")
		require.NoError(t, err)
		assert.Empty(t, got.InviteCode)
		assert.Empty(t, got.JoinRequests)
	})

	t.Run("non-members are rejected", func(t *testing.T) {
		_, err := uc.Get(context.Background(), group.Id, "stranger")
		assert.ErrorIs(t, err, ErrNotGroupMember)
	})

	t.Run("unknown group", func(t *testing.T) {
		_, err := uc.Get(context.Background(), "missing", "alice")
		assert.ErrorIs(t, err, repository.ErrGroupNotFound)
	})
}

func TestGroupRequestJoin(t *testing.T) {
	t.Run("pends the request and notifies the admin", func(t *testing.T) {
		groupRepo, _, notifier, uc := groupFixture()
		group, err := uc.Create(context.Background(), "Lincoln Carpool", "Lincoln Elementary", "alice")
		require.NoError(t, err)

		require.NoError(t, uc.RequestJoin(context.Background(), group.Id, "bob", group.InviteCode))

		stored := groupRepo.groups[group.Id]
		assert.True(t, stored.HasJoinRequest("bob"))
		assert.False(t, stored.IsMember("bob"))

		require.Len(t, notifier.sent, 1)
		assert.Equal(t, "alice", notifier.sent[0].userId)
		assert.Equal(t, entity.NotifyJoinRequested, notifier.sent[0].typ)
		assert.Equal(t, "Bob Parent", notifier.sent[0].data["RequesterName"])
	})

	t.Run("wrong invite code", func(t *testing.T) {
		_, _, _, uc := groupFixture()
		group, err := uc.Create(context.Background(), "Lincoln Carpool", "Lincoln Elementary", "alice")
		require.NoError(t, err)

		err = uc.RequestJoin(context.Background(), group.Id, "bob", "WRONG")
		assert.ErrorIs(t, err, ErrInvalidInvite)
	})

	t.Run("members cannot re-request", func(t *testing.T) {
		_, _, _, uc := groupFixture()
		group, err := uc.Create(context.Background(), "Lincoln Carpool", "Lincoln Elementary", "alice")
		require.NoError(t, err)

		err = uc.RequestJoin(context.Background(), group.Id, "alice", group.InviteCode)
		assert.ErrorIs(t, err, ErrAlreadyMember)
	})

	t.Run("duplicate request", func(t *testing.T) {
		_, _, _, uc := groupFixture()
		group, err := uc.Create(context.Background(), "Lincoln Carpool", "Lincoln Elementary", "alice")
		require.NoError(t, err)

		require.NoError(t, uc.RequestJoin(context.Background(), group.Id, "bob", group.InviteCode))
		err = uc.RequestJoin(context.Background(), group.Id, "bob", group.InviteCode)
		assert.ErrorIs(t, err, ErrAlreadyRequested)
	})

	t.Run("notification failure does not fail the request", func(t *testing.T) {
		groupRepo, _, notifier, uc := groupFixture()
		notifier.err = assert.AnError
		group, err := uc.Create(context.Background(), "Lincoln Carpool", "Lincoln Elementary", "alice")
		require.NoError(t, err)

		require.NoError(t, uc.RequestJoin(context.Background(), group.Id, "bob", group.InviteCode))
		stored := groupRepo.groups[group.Id]
		assert.True(t, stored.HasJoinRequest("bob"))
	})
}

func TestGroupRequestJoinByCode(t *testing.T) {
	t.Run("the code alone identifies the group", func(t *testing.T) {
		groupRepo, _, notifier, uc := groupFixture()
		group, err := uc.Create(context.Background(), "Lincoln Carpool", "Lincoln Elementary", "alice")
		require.NoError(t, err)

		require.NoError(t, uc.RequestJoinByCode(context.Background(), "bob", group.InviteCode))

		stored := groupRepo.groups[group.Id]
		assert.True(t, stored.HasJoinRequest("bob"))
		require.Len(t, notifier.sent, 1)
		assert.Equal(t, "alice", notifier.sent[0].userId)
	})

	t.Run("unknown code reads like a wrong one", func(t *testing.T) {
		_, _, _, uc := groupFixture()

		err := uc.RequestJoinByCode(context.Background(), "bob", "NOSUCH")
		assert.ErrorIs(t, err, ErrInvalidInvite)
	})

	t.Run("members cannot re-request", func(t *testing.T) {
		_, _, _, uc := groupFixture()
		group, err := uc.Create(context.Background(), "Lincoln Carpool", "Lincoln Elementary", "alice")
		require.NoError(t, err)

		err = uc.RequestJoinByCode(context.Background(), "alice", group.InviteCode)
		assert.ErrorIs(t, err, ErrAlreadyMember)
	})
}

func TestGroupApproveMember(t *testing.T) {
	t.Run("promotes the requester and notifies them", func(t *testing.T) {
		groupRepo, _, notifier, uc := groupFixture()
		group, err := uc.Create(context.Background(), "Lincoln Carpool", "Lincoln Elementary", "alice")
		require.NoError(t, err)
		require.NoError(t, uc.RequestJoin(context.Background(), group.Id, "bob", group.InviteCode))

		require.NoError(t, uc.ApproveMember(context.Background(), group.Id, "alice", "bob"))

		stored := groupRepo.groups[group.Id]
		assert.True(t, stored.IsMember("bob"))
		assert.False(t, stored.HasJoinRequest("bob"))

		last := notifier.sent[len(notifier.sent)-1]
		assert.Equal(t, "bob", last.userId)
		assert.Equal(t, entity.NotifyJoinApproved, last.typ)
	})

	t.Run("only the admin can approve", func(t *testing.T) {
		_, _, _, uc := groupFixture()
		group, err := uc.Create(context.Background(), "Lincoln Carpool", "Lincoln Elementary", "alice")
		require.NoError(t, err)
		require.NoError(t, uc.RequestJoin(context.Background(), group.Id, "bob", group.InviteCode))

		err = uc.ApproveMember(context.Background(), group.Id, "bob", "bob")
		assert.ErrorIs(t, err, ErrNotGroupAdmin)
	})

	t.Run("no pending request", func(t *testing.T) {
		_, _, _, uc := groupFixture()
		group, err := uc.Create(context.Background(), "Lincoln Carpool", "Lincoln Elementary", "alice")
		require.NoError(t, err)

		err = uc.ApproveMember(context.Background(), group.Id, "alice", "bob")
		assert.ErrorIs(t, err, ErrNoJoinRequest)
	})
}

func TestGroupListForUser(t *testing.T) {
	_, _, _, uc := groupFixture()
	group, err := uc.Create(context.Background(), "Lincoln Carpool", "Lincoln Elementary", "alice")
	require.NoError(t, err)
	require.NoError(t, uc.RequestJoin(context.Background(), group.Id, "bob", group.InviteCode))
	require.NoError(t, uc.ApproveMember(context.Background(), group.Id, "alice", "bob"))

	t.Run("admin listing keeps the invite code", func(t *testing.T) {
		groups, err := uc.ListForUser(context.Background(), "alice")
		require.NoError(t, err)
		require.Len(t, groups, 1)
		assert.NotEmpty(t, groups[0].InviteCode)
	})

	t.Run("member listing hides it", func(t *testing.T) {
		groups, err := uc.ListForUser(context.Background(), "bob")
		require.NoError(t, err)
		require.Len(t, groups, 1)
		assert.Empty(t, groups[0].InviteCode)
	})
}
