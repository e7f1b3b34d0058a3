package models

import "time"

// Vote types.
const (
	VoteUp   = "up"
	VoteDown = "down"
)

// Vote is a per-user, per-answer voter record.
// The combination of UserID and AnswerID must be unique.
type Vote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_user_answer" json:"user_id"`
	AnswerID  uint      `gorm:"not null;uniqueIndex:idx_user_answer" json:"answer_id"`
	Type      string    `gorm:"not null" json:"type"`
	CreatedAt time.Time `json:"created_at"`

	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// ValidVoteType reports whether t is a recognized vote type.
func ValidVoteType(t string) bool {
	return t == VoteUp || t == VoteDown
}
