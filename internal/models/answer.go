package models

import (
	"time"

	"gorm.io/gorm"
)

// Answer represents an answer posted to a question.
type Answer struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	QuestionID  uint      `gorm:"not null;index" json:"question_id"`
	Question    *Question `gorm:"foreignKey:QuestionID" json:"question,omitempty"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	User        User      `gorm:"foreignKey:UserID" json:"author"`
	Description string    `gorm:"type:text;not null" json:"description"`
	IsAccepted  bool      `gorm:"not null;default:false" json:"is_accepted"`
	// Upvotes/Downvotes are not persisted; computed from vote rows at query
	// time so the tallies always equal the voter records.
	Upvotes   int            `gorm:"->" json:"upvotes"`
	Downvotes int            `gorm:"->" json:"downvotes"`
	Votes     []Vote         `gorm:"foreignKey:AnswerID" json:"-"`
	Comments  []Comment      `gorm:"foreignKey:AnswerID" json:"comments,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
