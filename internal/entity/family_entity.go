package entity

import "time"

type Family struct {
	Id        string    `bson:"_id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	MemberIds []string  `bson:"memberIds" json:"memberIds"`
	Children  []Child   `bson:"children" json:"children"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

type Child struct {
	Name  string `bson:"name" json:"name"`
	Grade string `bson:"grade" json:"grade"`
}
