package models

import (
	"strings"
	"time"
)

// Tag is a lowercase, uniquely-named topic label attachable to questions.
type Tag struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"unique;not null" json:"name"`
	// UsageCount is not persisted; populated by the popular-tags aggregation
	UsageCount int       `gorm:"->" json:"count,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// NormalizeTagName lowercases and trims a tag name; tag names are
// case-insensitively unique and stored normalized.
func NormalizeTagName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
