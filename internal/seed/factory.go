// Package seed provides helpers to create demo data for the application
// database. Intended for development and testing only.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"stackit/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db  *gorm.DB
	rng *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		db:  db,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// pastTime returns a timestamp up to maxDays in the past for a realistic
// created_at spread.
func (f *Factory) pastTime(maxDays int) time.Time {
	daysBack := f.rng.Intn(maxDays)
	hoursBack := f.rng.Intn(24)
	minsBack := f.rng.Intn(60)
	return time.Now().Add(-time.Duration(daysBack)*24*time.Hour -
		time.Duration(hoursBack)*time.Hour -
		time.Duration(minsBack)*time.Minute)
}

// CreateUser persists a user with a random but valid name and email. The
// password for every seeded user is "Password123".
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte("Password123"), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:     fmt.Sprintf("%s_%d", gofakeit.Username(), f.rng.Intn(10000)),
		Email:    gofakeit.Email(),
		Password: string(hash),
		Role:     models.RoleUser,
		Bio:      gofakeit.Sentence(8),
		Location: gofakeit.City(),
	}
	user.CreatedAt = f.pastTime(365)

	for _, override := range overrides {
		override(user)
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateTag persists a tag with the given normalized name.
func (f *Factory) CreateTag(name string) (*models.Tag, error) {
	tag := &models.Tag{Name: models.NormalizeTagName(name)}
	if err := f.db.Create(tag).Error; err != nil {
		return nil, err
	}
	return tag, nil
}

// CreateQuestion persists a question by user with the given tags.
func (f *Factory) CreateQuestion(user *models.User, tags []models.Tag, overrides ...func(*models.Question)) (*models.Question, error) {
	question := &models.Question{
		Title:       gofakeit.Question(),
		Description: gofakeit.Paragraph(1, 3, 8, "\n"),
		UserID:      user.ID,
		Tags:        tags,
	}
	question.CreatedAt = f.pastTime(90)

	for _, override := range overrides {
		override(question)
	}
	if err := f.db.Create(question).Error; err != nil {
		return nil, err
	}
	return question, nil
}

// CreateAnswer persists an answer by user to the given question.
func (f *Factory) CreateAnswer(user *models.User, question *models.Question, overrides ...func(*models.Answer)) (*models.Answer, error) {
	answer := &models.Answer{
		QuestionID:  question.ID,
		UserID:      user.ID,
		Description: gofakeit.Paragraph(1, 2, 10, "\n"),
	}
	answer.CreatedAt = question.CreatedAt.Add(time.Duration(1+f.rng.Intn(72)) * time.Hour)

	for _, override := range overrides {
		override(answer)
	}
	if err := f.db.Create(answer).Error; err != nil {
		return nil, err
	}
	return answer, nil
}

// CreateVote persists a vote by user on the given answer.
func (f *Factory) CreateVote(user *models.User, answer *models.Answer, voteType string) (*models.Vote, error) {
	vote := &models.Vote{
		UserID:   user.ID,
		AnswerID: answer.ID,
		Type:     voteType,
	}
	if err := f.db.Create(vote).Error; err != nil {
		return nil, err
	}
	return vote, nil
}

// CreateComment persists a comment by user on the given answer.
func (f *Factory) CreateComment(user *models.User, answer *models.Answer, text string, mentions ...models.User) (*models.Comment, error) {
	comment := &models.Comment{
		AnswerID: answer.ID,
		UserID:   user.ID,
		Text:     text,
		Mentions: mentions,
	}
	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}
