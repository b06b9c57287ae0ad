package repository

import (
	"context"
	"errors"
	"time"

	"carpool/internal/entity"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrScheduleNotFound = errors.New("schedule not found")

type ScheduleRepository interface {
	Get(ctx context.Context, scheduleId string) (entity.Schedule, error)
	GetByGroupWeek(ctx context.Context, groupId, weekStartDate string) (entity.Schedule, error)
	// Replace overwrites any existing schedule for the (group, week) pair.
	Replace(ctx context.Context, schedule entity.Schedule) (string, error)
	Activate(ctx context.Context, scheduleId string) error
}

type scheduleRepository struct {
	db mongo.Database
}

func NewScheduleRepository(db mongo.Database) ScheduleRepository {
	return &scheduleRepository{
		db: db,
	}
}

func (r *scheduleRepository) Get(ctx context.Context, scheduleId string) (entity.Schedule, error) {
	collection := r.db.Collection("schedules")
	filter := bson.M{"_id": scheduleId}

	var schedule entity.Schedule
	err := collection.FindOne(ctx, filter).Decode(&schedule)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return entity.Schedule{}, ErrScheduleNotFound
		}
		return entity.Schedule{}, err
	}

	return schedule, nil
}

func (r *scheduleRepository) GetByGroupWeek(ctx context.Context, groupId, weekStartDate string) (entity.Schedule, error) {
	collection := r.db.Collection("schedules")
	filter := bson.M{
		"groupId":       groupId,
		"weekStartDate": weekStartDate,
	}

	var schedule entity.Schedule
	err := collection.FindOne(ctx, filter).Decode(&schedule)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return entity.Schedule{}, ErrScheduleNotFound
		}
		return entity.Schedule{}, err
	}

	return schedule, nil
}

func (r *scheduleRepository) Replace(ctx context.Context, schedule entity.Schedule) (string, error) {
	collection := r.db.Collection("schedules")

	if schedule.Id == "" {
		schedule.Id = uuid.New().String()
	}
	schedule.GeneratedAt = time.Now()

	filter := bson.M{
		"groupId":       schedule.GroupId,
		"weekStartDate": schedule.WeekStartDate,
	}

	// Keep the existing document id on regeneration so activation links stay valid.
	var existing entity.Schedule
	err := collection.FindOne(ctx, filter).Decode(&existing)
	if err == nil {
		schedule.Id = existing.Id
	} else if err != mongo.ErrNoDocuments {
		return "", err
	}

	_, err = collection.ReplaceOne(ctx, filter, schedule, options.Replace().SetUpsert(true))
	if err != nil {
		return "", err
	}

	return schedule.Id, nil
}

func (r *scheduleRepository) Activate(ctx context.Context, scheduleId string) error {
	collection := r.db.Collection("schedules")
	filter := bson.M{"_id": scheduleId}
	now := time.Now()
	update := bson.M{
		"$set": bson.M{
			"status":      entity.ScheduleActive,
			"activatedAt": now,
		},
	}

	result, err := collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrScheduleNotFound
	}
	return nil
}
