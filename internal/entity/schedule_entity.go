package entity

import "time"

const (
	ScheduleDraft  = "draft"
	ScheduleActive = "active"
)

type Schedule struct {
	Id            string       `bson:"_id" json:"id"`
	GroupId       string       `bson:"groupId" json:"groupId"`
	WeekStartDate string       `bson:"weekStartDate" json:"weekStartDate"`
	Status        string       `bson:"status" json:"status"`
	Assignments   []Assignment `bson:"assignments" json:"assignments"`
	Unassigned    []string     `bson:"unassigned,omitempty" json:"unassigned,omitempty"` // slots with no eligible driver
	GeneratedAt   time.Time    `bson:"generatedAt" json:"generatedAt"`
	ActivatedAt   *time.Time   `bson:"activatedAt,omitempty" json:"activatedAt,omitempty"`
}

type Assignment struct {
	Slot         string   `bson:"slot" json:"slot"`
	DriverId     string   `bson:"driverId" json:"driverId"`
	PassengerIds []string `bson:"passengerIds" json:"passengerIds"`
}
