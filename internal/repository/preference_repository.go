package repository

import (
	"context"
	"time"

	"carpool/internal/entity"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type PreferenceRepository interface {
	Upsert(ctx context.Context, pref entity.WeeklyPreference) error
	ListByGroupWeek(ctx context.Context, groupId, weekStartDate string) ([]entity.WeeklyPreference, error)
}

type preferenceRepository struct {
	db mongo.Database
}

func NewPreferenceRepository(db mongo.Database) PreferenceRepository {
	return &preferenceRepository{
		db: db,
	}
}

func (r *preferenceRepository) Upsert(ctx context.Context, pref entity.WeeklyPreference) error {
	collection := r.db.Collection("preferences")
	filter := bson.M{
		"groupId":       pref.GroupId,
		"driverId":      pref.DriverId,
		"weekStartDate": pref.WeekStartDate,
	}
	update := bson.M{
		"$set": bson.M{
			"slots":       pref.Slots,
			"submittedAt": time.Now(),
		},
		"$setOnInsert": bson.M{
			"_id":           uuid.New().String(),
			"groupId":       pref.GroupId,
			"driverId":      pref.DriverId,
			"weekStartDate": pref.WeekStartDate,
		},
	}

	_, err := collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

func (r *preferenceRepository) ListByGroupWeek(ctx context.Context, groupId, weekStartDate string) ([]entity.WeeklyPreference, error) {
	collection := r.db.Collection("preferences")
	filter := bson.M{
		"groupId":       groupId,
		"weekStartDate": weekStartDate,
	}

	cursor, err := collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var prefs []entity.WeeklyPreference
	if err := cursor.All(ctx, &prefs); err != nil {
		return nil, err
	}

	return prefs, nil
}
