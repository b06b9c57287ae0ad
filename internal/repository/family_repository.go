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

var ErrFamilyNotFound = errors.New("family not found")

type FamilyRepository interface {
	Get(ctx context.Context, familyId string) (entity.Family, error)
	Create(ctx context.Context, family entity.Family) (string, error)
	AddMember(ctx context.Context, familyId, userId string) error
	SetChildren(ctx context.Context, familyId string, children []entity.Child) error
}

type familyRepository struct {
	db mongo.Database
}

func NewFamilyRepository(db mongo.Database) FamilyRepository {
	return &familyRepository{
		db: db,
	}
}

func (r *familyRepository) Get(ctx context.Context, familyId string) (entity.Family, error) {
	collection := r.db.Collection("families")
	filter := bson.M{"_id": familyId}

	var family entity.Family
	err := collection.FindOne(ctx, filter).Decode(&family)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return entity.Family{}, ErrFamilyNotFound
		}
		return entity.Family{}, err
	}

	return family, nil
}

func (r *familyRepository) Create(ctx context.Context, family entity.Family) (string, error) {
	collection := r.db.Collection("families")
	family.Id = uuid.New().String()
	family.CreatedAt = time.Now()

	_, err := collection.InsertOne(ctx, family)
	if err != nil {
		return "", err
	}

	return family.Id, nil
}

func (r *familyRepository) AddMember(ctx context.Context, familyId, userId string) error {
	collection := r.db.Collection("families")
	filter := bson.M{"_id": familyId}
	update := bson.M{
		"$addToSet": bson.M{"memberIds": userId},
	}

	_, err := collection.UpdateOne(ctx, filter, update)
	return err
}

func (r *familyRepository) SetChildren(ctx context.Context, familyId string, children []entity.Child) error {
	collection := r.db.Collection("families")
	filter := bson.M{"_id": familyId}
	update := bson.M{
		"$set": bson.M{"children": children},
	}

	result, err := collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrFamilyNotFound
	}
	return nil
}
