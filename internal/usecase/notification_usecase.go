package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"text/template"

	"carpool/infrastructure/ws"
	"carpool/internal/entity"
	"carpool/internal/repository"
)

var ErrNotNotificationOwner = errors.New("notification belongs to another user")

// Message templates keyed by notification type. Subject and body are split by
// the first newline.
var notificationTemplates = map[string]string{
	entity.NotifyScheduleActivated: "Carpool schedule for week {{.WeekStartDate}}\nYou are driving {{.SlotCount}} slot(s) for {{.GroupName}} the week of {{.WeekStartDate}}.",
	entity.NotifyJoinApproved:      "Welcome to {{.GroupName}}\nYour request to join {{.GroupName}} was approved.",
	entity.NotifyJoinRequested:     "New join request for {{.GroupName}}\n{{.RequesterName}} asked to join {{.GroupName}}.",
}

type NotificationUsecase interface {
	Notifier
	ListForUser(ctx context.Context, userId string, limit int64) ([]entity.Notification, error)
	MarkRead(ctx context.Context, notificationId, requesterId string) error
}

type notificationUsecase struct {
	notificationRepo repository.NotificationRepository
	hub              ws.IHub
	templates        map[string]*template.Template
}

func NewNotificationUsecase(notificationRepo repository.NotificationRepository, hub ws.IHub) (NotificationUsecase, error) {
	templates := make(map[string]*template.Template, len(notificationTemplates))
	for name, text := range notificationTemplates {
		tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
		if err != nil {
			return nil, fmt.Errorf("parse notification template %s: %w", name, err)
		}
		templates[name] = tmpl
	}

	return &notificationUsecase{
		notificationRepo: notificationRepo,
		hub:              hub,
		templates:        templates,
	}, nil
}

func (u *notificationUsecase) Send(ctx context.Context, userId, notificationType string, data map[string]string) error {
	tmpl, ok := u.templates[notificationType]
	if !ok {
		return fmt.Errorf("unknown notification type %q", notificationType)
	}

	var rendered strings.Builder
	if err := tmpl.Execute(&rendered, data); err != nil {
		return err
	}

	subject, body, _ := strings.Cut(rendered.String(), "\n")

	notification := entity.Notification{
		UserId:  userId,
		Type:    notificationType,
		Subject: subject,
		Body:    body,
	}

	notificationId, err := u.notificationRepo.Create(ctx, notification)
	if err != nil {
		return err
	}
	notification.Id = notificationId

	// Push delivery is best-effort; the stored notification is authoritative.
	payload, err := json.Marshal(notification)
	if err != nil {
		log.Printf("Notification marshal error: %v", err)
		return nil
	}
	u.hub.SendToUser(userId, payload)

	return nil
}

func (u *notificationUsecase) ListForUser(ctx context.Context, userId string, limit int64) ([]entity.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return u.notificationRepo.ListByUser(ctx, userId, limit)
}

func (u *notificationUsecase) MarkRead(ctx context.Context, notificationId, requesterId string) error {
	notification, err := u.notificationRepo.Get(ctx, notificationId)
	if err != nil {
		return err
	}
	if notification.UserId != requesterId {
		return ErrNotNotificationOwner
	}

	return u.notificationRepo.MarkRead(ctx, notificationId)
}
