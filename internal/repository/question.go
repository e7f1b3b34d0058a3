package repository

import (
	"context"
	"errors"
	"strings"

	"stackit/internal/cache"
	"stackit/internal/models"

	"gorm.io/gorm"
)

// FilterUnanswered selects questions with no live answers.
const FilterUnanswered = "unanswered"

// ListQuery captures the listing parameters for questions.
type ListQuery struct {
	Page   int
	Limit  int
	Filter string
	Search string
	TagID  uint
}

// QuestionRepository defines persistence operations for questions.
type QuestionRepository interface {
	Create(ctx context.Context, question *models.Question) error
	GetByID(ctx context.Context, id uint) (*models.Question, error)
	List(ctx context.Context, q ListQuery) ([]models.Question, int64, error)
	Delete(ctx context.Context, id uint) error
	CountByUser(ctx context.Context, userID uint) (int64, error)
	CountAcceptedForUser(ctx context.Context, userID uint) (int64, error)
	RecentByUser(ctx context.Context, userID uint, limit int) ([]models.Question, error)
}

type questionRepository struct {
	db *gorm.DB
}

// NewQuestionRepository creates a new question repository backed by gorm.
func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

// applyQuestionDetails adds the computed answers_count column, counting live
// answers only.
func applyQuestionDetails(db *gorm.DB) *gorm.DB {
	return db.Select("questions.*, " +
		"(SELECT COUNT(*) FROM answers WHERE answers.question_id = questions.id AND answers.deleted_at IS NULL) AS answers_count")
}

// applyAnswerDetails adds the computed upvotes and downvotes columns so the
// tallies always equal the stored voter records.
func applyAnswerDetails(db *gorm.DB) *gorm.DB {
	return db.Select("answers.*, " +
		"(SELECT COUNT(*) FROM votes WHERE votes.answer_id = answers.id AND votes.type = 'up') AS upvotes, " +
		"(SELECT COUNT(*) FROM votes WHERE votes.answer_id = answers.id AND votes.type = 'down') AS downvotes")
}

func (r *questionRepository) Create(ctx context.Context, question *models.Question) error {
	if err := r.db.WithContext(ctx).Create(question).Error; err != nil {
		return models.NewInternalError("create question", err)
	}
	cache.InvalidateTags(ctx)
	return nil
}

func (r *questionRepository) GetByID(ctx context.Context, id uint) (*models.Question, error) {
	var question models.Question
	err := cache.Aside(ctx, cache.QuestionKey(id), &question, cache.QuestionTTL, func() error {
		return applyQuestionDetails(r.db.WithContext(ctx)).
			Preload("User").
			Preload("Tags").
			Preload("Answers", func(db *gorm.DB) *gorm.DB {
				// Accepted answer first, then newest.
				return applyAnswerDetails(db).Order("answers.is_accepted DESC, answers.created_at DESC")
			}).
			Preload("Answers.User").
			Preload("Answers.Comments", func(db *gorm.DB) *gorm.DB {
				return db.Order("comments.created_at ASC")
			}).
			Preload("Answers.Comments.User").
			Preload("Answers.Comments.Mentions").
			First(&question, id).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Question", id)
		}
		return nil, models.NewInternalError("get question", err)
	}
	return &question, nil
}

// listFilters returns a query builder with the List filters applied. A fresh
// builder is produced per call so the count and page queries stay independent.
func (r *questionRepository) listFilters(ctx context.Context, q ListQuery) *gorm.DB {
	db := r.db.WithContext(ctx).Model(&models.Question{})
	if q.Search != "" {
		db = db.Where("LOWER(questions.title) LIKE ?", "%"+strings.ToLower(q.Search)+"%")
	}
	if q.Filter == FilterUnanswered {
		db = db.Where("NOT EXISTS (SELECT 1 FROM answers WHERE answers.question_id = questions.id AND answers.deleted_at IS NULL)")
	}
	if q.TagID != 0 {
		db = db.Where("questions.id IN (SELECT question_id FROM question_tags WHERE tag_id = ?)", q.TagID)
	}
	return db
}

// List returns a page of questions, newest first, plus the total match count
// for pagination metadata.
func (r *questionRepository) List(ctx context.Context, q ListQuery) ([]models.Question, int64, error) {
	var total int64
	if err := r.listFilters(ctx, q).Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError("count questions", err)
	}

	var questions []models.Question
	err := applyQuestionDetails(r.listFilters(ctx, q)).
		Preload("User").
		Preload("Tags").
		Order("questions.created_at DESC").
		Limit(q.Limit).
		Offset((q.Page - 1) * q.Limit).
		Find(&questions).Error
	if err != nil {
		return nil, 0, models.NewInternalError("list questions", err)
	}
	return questions, total, nil
}

// Delete removes a question and everything hanging off it: answers, their
// votes and comments, and the tag attachments. Runs in one transaction.
func (r *questionRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var answerIDs []uint
		if err := tx.Model(&models.Answer{}).
			Where("question_id = ?", id).
			Pluck("id", &answerIDs).Error; err != nil {
			return err
		}

		if len(answerIDs) > 0 {
			if err := tx.Where("answer_id IN ?", answerIDs).Delete(&models.Vote{}).Error; err != nil {
				return err
			}
			if err := tx.Where("answer_id IN ?", answerIDs).Delete(&models.Comment{}).Error; err != nil {
				return err
			}
			if err := tx.Where("question_id = ?", id).Delete(&models.Answer{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Exec("DELETE FROM question_tags WHERE question_id = ?", id).Error; err != nil {
			return err
		}

		res := tx.Delete(&models.Question{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Question", id)
		}
		return models.NewInternalError("delete question", err)
	}
	cache.InvalidateQuestion(ctx, id)
	cache.InvalidateTags(ctx)
	return nil
}

func (r *questionRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Question{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, models.NewInternalError("count questions by user", err)
	}
	return count, nil
}

// CountAcceptedForUser counts the user's answers that question authors have
// accepted.
func (r *questionRepository) CountAcceptedForUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Answer{}).
		Where("user_id = ? AND is_accepted = ?", userID, true).
		Count(&count).Error
	if err != nil {
		return 0, models.NewInternalError("count accepted answers", err)
	}
	return count, nil
}

func (r *questionRepository) RecentByUser(ctx context.Context, userID uint, limit int) ([]models.Question, error) {
	var questions []models.Question
	err := applyQuestionDetails(r.db.WithContext(ctx)).
		Where("questions.user_id = ?", userID).
		Preload("Tags").
		Order("questions.created_at DESC").
		Limit(limit).
		Find(&questions).Error
	if err != nil {
		return nil, models.NewInternalError("recent questions by user", err)
	}
	return questions, nil
}
