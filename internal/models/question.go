package models

import (
	"time"

	"gorm.io/gorm"
)

// Question represents a posted question. AcceptedAnswerID references the
// single answer the author marked as the solution; the paired invariant
// (at most one answer per question with IsAccepted = true) is maintained
// by the accept transaction in the answer repository.
type Question struct {
	ID               uint    `gorm:"primaryKey" json:"id"`
	Title            string  `gorm:"not null" json:"title"`
	Description      string  `gorm:"type:text;not null" json:"description"`
	UserID           uint    `gorm:"not null;index" json:"user_id"`
	User             User    `gorm:"foreignKey:UserID" json:"author"`
	AcceptedAnswerID *uint   `gorm:"index" json:"accepted_answer_id,omitempty"`
	AcceptedAnswer   *Answer `gorm:"foreignKey:AcceptedAnswerID" json:"accepted_answer,omitempty"`
	Tags             []Tag   `gorm:"many2many:question_tags" json:"tags"`
	Answers          []Answer `gorm:"foreignKey:QuestionID" json:"answers,omitempty"`
	// AnswersCount is not persisted; computed at query time
	AnswersCount int            `gorm:"->" json:"answers_count"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}
