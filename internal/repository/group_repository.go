package repository

import (
	"context"
	"errors"
	"time"

	"carpool/internal/entity"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

var ErrGroupNotFound = errors.New("group not found")

type GroupRepository interface {
	Get(ctx context.Context, groupId string) (entity.Group, error)
	GetByInviteCode(ctx context.Context, code string) (entity.Group, error)
	Create(ctx context.Context, group entity.Group) (string, error)
	ListByMember(ctx context.Context, userId string) ([]entity.Group, error)
	AddJoinRequest(ctx context.Context, groupId string, request entity.JoinRequest) error
	ApproveMember(ctx context.Context, groupId, userId string) error
}

type groupRepository struct {
	db mongo.Database
}

func NewGroupRepository(db mongo.Database) GroupRepository {
	return &groupRepository{
		db: db,
	}
}

func (r *groupRepository) Get(ctx context.Context, groupId string) (entity.Group, error) {
	collection := r.db.Collection("groups")
	filter := bson.M{"_id": groupId}

	var group entity.Group
	err := collection.FindOne(ctx, filter).Decode(&group)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return entity.Group{}, ErrGroupNotFound
		}
		return entity.Group{}, err
	}

	return group, nil
}

func (r *groupRepository) GetByInviteCode(ctx context.Context, code string) (entity.Group, error) {
	collection := r.db.Collection("groups")
	filter := bson.M{"inviteCode": code, "isActive": true}

	var group entity.Group
	err := collection.FindOne(ctx, filter).Decode(&group)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return entity.Group{}, ErrGroupNotFound
		}
		return entity.Group{}, err
	}

	return group, nil
}

func (r *groupRepository) Create(ctx context.Context, group entity.Group) (string, error) {
	collection := r.db.Collection("groups")
	group.Id = uuid.New().String()
	group.CreatedAt = time.Now()
	group.UpdatedAt = group.CreatedAt

	_, err := collection.InsertOne(ctx, group)
	if err != nil {
		return "", err
	}

	return group.Id, nil
}

func (r *groupRepository) ListByMember(ctx context.Context, userId string) ([]entity.Group, error) {
	collection := r.db.Collection("groups")
	filter := bson.M{
		"isActive": true,
		"$or": []bson.M{
			{"memberIds": userId},
			{"adminId": userId},
		},
	}

	cursor, err := collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var groups []entity.Group
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, err
	}

	return groups, nil
}

func (r *groupRepository) AddJoinRequest(ctx context.Context, groupId string, request entity.JoinRequest) error {
	collection := r.db.Collection("groups")
	filter := bson.M{"_id": groupId}
	update := bson.M{
		"$push": bson.M{"joinRequests": request},
		"$set":  bson.M{"updatedAt": time.Now()},
	}

	_, err := collection.UpdateOne(ctx, filter, update)
	return err
}

func (r *groupRepository) ApproveMember(ctx context.Context, groupId, userId string) error {
	collection := r.db.Collection("groups")
	filter := bson.M{"_id": groupId}
	update := bson.M{
		"$pull":     bson.M{"joinRequests": bson.M{"userId": userId}},
		"$addToSet": bson.M{"memberIds": userId},
		"$set":      bson.M{"updatedAt": time.Now()},
	}

	_, err := collection.UpdateOne(ctx, filter, update)
	return err
}
