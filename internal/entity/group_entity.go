package entity

import "time"

type Group struct {
	Id           string        `bson:"_id" json:"id"`
	Name         string        `bson:"name" json:"name"`
	School       string        `bson:"school" json:"school"`
	AdminId      string        `bson:"adminId" json:"adminId"`
	MemberIds    []string      `bson:"memberIds" json:"memberIds"`
	InviteCode   string        `bson:"inviteCode" json:"inviteCode,omitempty"`
	JoinRequests []JoinRequest `bson:"joinRequests" json:"joinRequests,omitempty"`
	IsActive     bool          `bson:"isActive" json:"isActive"`
	CreatedAt    time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time     `bson:"updatedAt" json:"updatedAt"`
}

type JoinRequest struct {
	UserId      string    `bson:"userId" json:"userId"`
	RequestedAt time.Time `bson:"requestedAt" json:"requestedAt"`
}

// IsMember reports whether userId belongs to the group. The group admin is
// always a member.
func (g *Group) IsMember(userId string) bool {
	if userId == g.AdminId {
		return true
	}
	for _, id := range g.MemberIds {
		if id == userId {
			return true
		}
	}
	return false
}

// HasJoinRequest reports whether userId has a pending join request.
func (g *Group) HasJoinRequest(userId string) bool {
	for _, r := range g.JoinRequests {
		if r.UserId == userId {
			return true
		}
	}
	return false
}
