package repository

import (
	"context"
	"errors"

	"stackit/internal/cache"
	"stackit/internal/models"

	"gorm.io/gorm"
)

// AnswerRepository defines persistence operations for answers, votes and the
// accepted-answer state.
type AnswerRepository interface {
	Create(ctx context.Context, answer *models.Answer) error
	GetByID(ctx context.Context, id uint) (*models.Answer, error)
	Delete(ctx context.Context, answer *models.Answer) error
	HasVoted(ctx context.Context, userID, answerID uint) (bool, error)
	CastVote(ctx context.Context, userID, answerID uint, voteType string) error
	AcceptAnswer(ctx context.Context, questionID, answerID uint) error
	ToggleAccepted(ctx context.Context, questionID, answerID uint) (bool, error)
	CountByUser(ctx context.Context, userID uint) (int64, error)
	RecentByUser(ctx context.Context, userID uint, limit int) ([]models.Answer, error)
}

type answerRepository struct {
	db *gorm.DB
}

// NewAnswerRepository creates a new answer repository backed by gorm.
func NewAnswerRepository(db *gorm.DB) AnswerRepository {
	return &answerRepository{db: db}
}

func (r *answerRepository) Create(ctx context.Context, answer *models.Answer) error {
	if err := r.db.WithContext(ctx).Create(answer).Error; err != nil {
		return models.NewInternalError("create answer", err)
	}
	cache.InvalidateQuestion(ctx, answer.QuestionID)
	return nil
}

func (r *answerRepository) GetByID(ctx context.Context, id uint) (*models.Answer, error) {
	var answer models.Answer
	err := applyAnswerDetails(r.db.WithContext(ctx)).
		Preload("User").
		Preload("Question").
		Preload("Question.User").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.created_at ASC")
		}).
		Preload("Comments.User").
		Preload("Comments.Mentions").
		First(&answer, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Answer", id)
		}
		return nil, models.NewInternalError("get answer", err)
	}
	return &answer, nil
}

// Delete removes an answer with its votes and comments, clearing the owning
// question's accepted reference if it pointed here.
func (r *answerRepository) Delete(ctx context.Context, answer *models.Answer) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Question{}).
			Where("id = ? AND accepted_answer_id = ?", answer.QuestionID, answer.ID).
			Update("accepted_answer_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("answer_id = ?", answer.ID).Delete(&models.Vote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("answer_id = ?", answer.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Answer{}, answer.ID).Error
	})
	if err != nil {
		return models.NewInternalError("delete answer", err)
	}
	cache.InvalidateQuestion(ctx, answer.QuestionID)
	return nil
}

func (r *answerRepository) HasVoted(ctx context.Context, userID, answerID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Vote{}).
		Where("user_id = ? AND answer_id = ?", userID, answerID).
		Count(&count).Error
	if err != nil {
		return false, models.NewInternalError("check vote", err)
	}
	return count > 0, nil
}

// CastVote records a vote, relying on the (user_id, answer_id) unique index
// so a concurrent duplicate loses the race instead of double counting.
func (r *answerRepository) CastVote(ctx context.Context, userID, answerID uint, voteType string) error {
	result := r.db.WithContext(ctx).Exec(
		"INSERT INTO votes (user_id, answer_id, type, created_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP) "+
			"ON CONFLICT (user_id, answer_id) DO NOTHING",
		userID, answerID, voteType,
	)
	if result.Error != nil {
		return models.NewInternalError("cast vote", result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewValidationError("You have already voted on this answer")
	}

	var answer models.Answer
	if err := r.db.WithContext(ctx).Select("question_id").First(&answer, answerID).Error; err == nil {
		cache.InvalidateQuestion(ctx, answer.QuestionID)
	}
	return nil
}

// setAccepted marks answerID as the question's accepted answer, demoting any
// previously accepted answer inside the same transaction.
func setAccepted(tx *gorm.DB, questionID, answerID uint) error {
	if err := tx.Model(&models.Answer{}).
		Where("question_id = ? AND is_accepted = ? AND id <> ?", questionID, true, answerID).
		Update("is_accepted", false).Error; err != nil {
		return err
	}
	if err := tx.Model(&models.Answer{}).
		Where("id = ?", answerID).
		Update("is_accepted", true).Error; err != nil {
		return err
	}
	return tx.Model(&models.Question{}).
		Where("id = ?", questionID).
		Update("accepted_answer_id", answerID).Error
}

// AcceptAnswer force-sets the accepted answer. Idempotent when the answer is
// already accepted.
func (r *answerRepository) AcceptAnswer(ctx context.Context, questionID, answerID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return setAccepted(tx, questionID, answerID)
	})
	if err != nil {
		return models.NewInternalError("accept answer", err)
	}
	cache.InvalidateQuestion(ctx, questionID)
	return nil
}

// ToggleAccepted flips the accepted state of an answer: accepting it when it
// is not the current accepted answer and unaccepting it when it is. Returns
// the resulting accepted state.
func (r *answerRepository) ToggleAccepted(ctx context.Context, questionID, answerID uint) (bool, error) {
	var accepted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var question models.Question
		if err := tx.First(&question, questionID).Error; err != nil {
			return err
		}

		if question.AcceptedAnswerID != nil && *question.AcceptedAnswerID == answerID {
			if err := tx.Model(&models.Answer{}).
				Where("id = ?", answerID).
				Update("is_accepted", false).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.Question{}).
				Where("id = ?", questionID).
				Update("accepted_answer_id", nil).Error; err != nil {
				return err
			}
			accepted = false
			return nil
		}

		accepted = true
		return setAccepted(tx, questionID, answerID)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, models.NewNotFoundError("Question", questionID)
		}
		return false, models.NewInternalError("toggle accepted answer", err)
	}
	cache.InvalidateQuestion(ctx, questionID)
	return accepted, nil
}

func (r *answerRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Answer{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, models.NewInternalError("count answers by user", err)
	}
	return count, nil
}

func (r *answerRepository) RecentByUser(ctx context.Context, userID uint, limit int) ([]models.Answer, error) {
	var answers []models.Answer
	err := applyAnswerDetails(r.db.WithContext(ctx)).
		Where("answers.user_id = ?", userID).
		Preload("Question").
		Order("answers.created_at DESC").
		Limit(limit).
		Find(&answers).Error
	if err != nil {
		return nil, models.NewInternalError("recent answers by user", err)
	}
	return answers, nil
}
