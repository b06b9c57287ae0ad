package entity

import "time"

// Preference levels a driver can assign to a weekly slot.
const (
	LevelPreferable     = "preferable"
	LevelLessPreferable = "less-preferable"
	LevelUnavailable    = "unavailable"
)

// WeekSlots is the fixed order of assignable slots in a school week.
var WeekSlots = []string{
	"monday-morning", "monday-afternoon",
	"tuesday-morning", "tuesday-afternoon",
	"wednesday-morning", "wednesday-afternoon",
	"thursday-morning", "thursday-afternoon",
	"friday-morning", "friday-afternoon",
}

// ValidSlot reports whether slot names one of the ten weekday slots.
func ValidSlot(slot string) bool {
	for _, s := range WeekSlots {
		if s == slot {
			return true
		}
	}
	return false
}

// ValidLevel reports whether level is a recognized preference level.
func ValidLevel(level string) bool {
	return level == LevelPreferable || level == LevelLessPreferable || level == LevelUnavailable
}

// WeeklyPreference records one driver's availability for one group and week.
// Unique per (groupId, driverId, weekStartDate); resubmitting replaces.
type WeeklyPreference struct {
	Id            string            `bson:"_id" json:"id"`
	GroupId       string            `bson:"groupId" json:"groupId"`
	DriverId      string            `bson:"driverId" json:"driverId"`
	WeekStartDate string            `bson:"weekStartDate" json:"weekStartDate"` // Monday, 2006-01-02
	Slots         map[string]string `bson:"slots" json:"slots"`                 // slot -> level
	SubmittedAt   time.Time         `bson:"submittedAt" json:"submittedAt"`
}

// Level returns the driver's level for slot, defaulting to unavailable when
// the slot was not submitted.
func (p *WeeklyPreference) Level(slot string) string {
	if level, ok := p.Slots[slot]; ok {
		return level
	}
	return LevelUnavailable
}
