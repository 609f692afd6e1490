// File: /models/user.go
package models

import "time"

type User struct {
	ID         string  `json:"id" gorm:"primaryKey;size:191"`
	FullName   string  `json:"full_name" gorm:"not null;size:255"`
	Email      string  `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Password   string  `json:"-" gorm:"not null;size:255"`
	ProfilePic *string `json:"profile_pic" gorm:"size:500"`

	// Relationship sets. For any pair (A,B) at most one of these states
	// holds: mutual membership in Friends, or a single pending request
	// (A in B.FriendRequests and B in A.SentRequests). Friends is
	// symmetric; mutations go through the friend service only.
	Friends        StringSet `json:"friends" gorm:"type:json"`
	FriendRequests StringSet `json:"friend_requests" gorm:"type:json"`
	SentRequests   StringSet `json:"sent_requests" gorm:"type:json"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserSummary is the public projection of a user sent to other clients.
type UserSummary struct {
	ID         string  `json:"id"`
	FullName   string  `json:"full_name"`
	Email      string  `json:"email"`
	ProfilePic *string `json:"profile_pic"`
}

// Summary strips credentials and relationship internals.
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:         u.ID,
		FullName:   u.FullName,
		Email:      u.Email,
		ProfilePic: u.ProfilePic,
	}
}

// Summaries converts a batch of users to their public projection.
func Summaries(users []User) []UserSummary {
	summaries := make([]UserSummary, len(users))
	for i := range users {
		summaries[i] = users[i].Summary()
	}
	return summaries
}
