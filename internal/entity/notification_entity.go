package entity

import "time"

// Notification template identifiers.
const (
	NotifyScheduleActivated = "schedule-activated"
	NotifyJoinApproved      = "join-approved"
	NotifyJoinRequested     = "join-requested"
)

type Notification struct {
	Id        string    `bson:"_id" json:"id"`
	UserId    string    `bson:"userId" json:"userId"`
	Type      string    `bson:"type" json:"type"`
	Subject   string    `bson:"subject" json:"subject"`
	Body      string    `bson:"body" json:"body"`
	IsRead    bool      `bson:"isRead" json:"isRead"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}
