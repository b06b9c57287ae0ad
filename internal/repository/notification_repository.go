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

var ErrNotificationNotFound = errors.New("notification not found")

type NotificationRepository interface {
	Create(ctx context.Context, notification entity.Notification) (string, error)
	Get(ctx context.Context, notificationId string) (entity.Notification, error)
	ListByUser(ctx context.Context, userId string, limit int64) ([]entity.Notification, error)
	MarkRead(ctx context.Context, notificationId string) error
}

type notificationRepository struct {
	db mongo.Database
}

func NewNotificationRepository(db mongo.Database) NotificationRepository {
	return &notificationRepository{
		db: db,
	}
}

func (r *notificationRepository) Create(ctx context.Context, notification entity.Notification) (string, error) {
	collection := r.db.Collection("notifications")
	notification.Id = uuid.New().String()
	notification.CreatedAt = time.Now()

	_, err := collection.InsertOne(ctx, notification)
	if err != nil {
		return "", err
	}

	return notification.Id, nil
}

func (r *notificationRepository) Get(ctx context.Context, notificationId string) (entity.Notification, error) {
	collection := r.db.Collection("notifications")
	filter := bson.M{"_id": notificationId}

	var notification entity.Notification
	err := collection.FindOne(ctx, filter).Decode(&notification)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return entity.Notification{}, ErrNotificationNotFound
		}
		return entity.Notification{}, err
	}

	return notification, nil
}

func (r *notificationRepository) ListByUser(ctx context.Context, userId string, limit int64) ([]entity.Notification, error) {
	collection := r.db.Collection("notifications")
	filter := bson.M{"userId": userId}
	opts := options.Find().
		SetSort(bson.M{"createdAt": -1}).
		SetLimit(limit)

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var notifications []entity.Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}

	return notifications, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, notificationId string) error {
	collection := r.db.Collection("notifications")
	filter := bson.M{"_id": notificationId}
	update := bson.M{
		"$set": bson.M{"isRead": true},
	}

	result, err := collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotificationNotFound
	}
	return nil
}
