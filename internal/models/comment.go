package models

import (
	"time"

	"gorm.io/gorm"
)

// Comment represents a comment on an answer. Mentions holds the users
// resolved from @name tokens in the text; unresolved names are dropped.
type Comment struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	AnswerID  uint           `gorm:"not null;index" json:"answer_id"`
	UserID    uint           `gorm:"not null" json:"user_id"`
	User      User           `gorm:"foreignKey:UserID" json:"user"`
	Text      string         `gorm:"not null" json:"text"`
	Mentions  []User         `gorm:"many2many:comment_mentions" json:"mentions"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
