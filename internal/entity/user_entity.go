package entity

import "time"

const (
	RoleParent = "parent"
	RoleAdmin  = "admin"
)

type User struct {
	Id           string    `bson:"_id" json:"id"`
	Email        string    `bson:"email" json:"email"`
	PasswordHash string    `bson:"passwordHash" json:"-"` // Don't expose hash in JSON
	FirstName    string    `bson:"firstName" json:"firstName"`
	LastName     string    `bson:"lastName" json:"lastName"`
	Role         string    `bson:"role" json:"role"`
	Phone        string    `bson:"phone,omitempty" json:"phone,omitempty"`
	FamilyId     string    `bson:"familyId,omitempty" json:"familyId,omitempty"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}

// ValidRole reports whether role is a value accounts can be created with.
func ValidRole(role string) bool {
	return role == RoleParent || role == RoleAdmin
}
