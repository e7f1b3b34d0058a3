package service

import (
	"context"
	"fmt"
	"strings"

	"stackit/internal/models"
	"stackit/internal/repository"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// Pagination is the page metadata returned alongside question listings.
type Pagination struct {
	CurrentPage    int   `json:"currentPage"`
	TotalPages     int   `json:"totalPages"`
	TotalQuestions int64 `json:"totalQuestions"`
	HasNextPage    bool  `json:"hasNextPage"`
	HasPrevPage    bool  `json:"hasPrevPage"`
}

// QuestionService implements the question lifecycle: creation with tag
// upsert, listing with filters and pagination, acceptance and deletion.
type QuestionService struct {
	questionRepo repository.QuestionRepository
	answerRepo   repository.AnswerRepository
	tagRepo      repository.TagRepository
	userRepo     repository.UserRepository
	notify       NotifyFunc
}

// NewQuestionService creates a question service. notify may be nil to
// disable notification fan-out.
func NewQuestionService(
	questionRepo repository.QuestionRepository,
	answerRepo repository.AnswerRepository,
	tagRepo repository.TagRepository,
	userRepo repository.UserRepository,
	notify NotifyFunc,
) *QuestionService {
	return &QuestionService{
		questionRepo: questionRepo,
		answerRepo:   answerRepo,
		tagRepo:      tagRepo,
		userRepo:     userRepo,
		notify:       notify,
	}
}

// CreateQuestionInput carries the parameters for CreateQuestion.
type CreateQuestionInput struct {
	UserID      uint
	Title       string
	Description string
	Tags        []string
}

// CreateQuestion posts a question, upserting each tag by normalized name so
// the attachment set is deduplicated and case-insensitive. Tags are
// optional; a question may be created without any.
func (s *QuestionService) CreateQuestion(ctx context.Context, input CreateQuestionInput) (*models.Question, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, models.NewValidationError("Question title is required")
	}
	if strings.TrimSpace(input.Description) == "" {
		return nil, models.NewValidationError("Question description is required")
	}

	seen := make(map[string]struct{}, len(input.Tags))
	names := make([]string, 0, len(input.Tags))
	for _, raw := range input.Tags {
		name := models.NormalizeTagName(raw)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}

	tags := make([]models.Tag, 0, len(names))
	for _, name := range names {
		tag, err := s.tagRepo.GetOrCreate(ctx, name)
		if err != nil {
			return nil, err
		}
		tags = append(tags, *tag)
	}

	question := &models.Question{
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		UserID:      input.UserID,
		Tags:        tags,
	}
	if err := s.questionRepo.Create(ctx, question); err != nil {
		return nil, err
	}
	return s.questionRepo.GetByID(ctx, question.ID)
}

// ListQuestionsInput carries the parameters for ListQuestions.
type ListQuestionsInput struct {
	Page   int
	Limit  int
	Filter string
	Search string
	Tag    string
}

// ListQuestions returns a page of questions, newest first. An unknown tag
// filter short-circuits to an empty page rather than an error.
func (s *QuestionService) ListQuestions(ctx context.Context, input ListQuestionsInput) ([]models.Question, Pagination, error) {
	page := input.Page
	if page < 1 {
		page = 1
	}
	limit := input.Limit
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	query := repository.ListQuery{
		Page:   page,
		Limit:  limit,
		Filter: input.Filter,
		Search: strings.TrimSpace(input.Search),
	}
	if input.Tag != "" {
		tag, err := s.tagRepo.GetByName(ctx, input.Tag)
		if err != nil {
			return nil, Pagination{}, err
		}
		if tag == nil {
			return []models.Question{}, Pagination{CurrentPage: page}, nil
		}
		query.TagID = tag.ID
	}

	questions, total, err := s.questionRepo.List(ctx, query)
	if err != nil {
		return nil, Pagination{}, err
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	meta := Pagination{
		CurrentPage:    page,
		TotalPages:     totalPages,
		TotalQuestions: total,
		HasNextPage:    page < totalPages,
		HasPrevPage:    page > 1 && total > 0,
	}
	return questions, meta, nil
}

// GetQuestion fetches a single question with its author, tags, answers and
// comment threads.
func (s *QuestionService) GetQuestion(ctx context.Context, id uint) (*models.Question, error) {
	return s.questionRepo.GetByID(ctx, id)
}

// AcceptAnswerInput carries the parameters for AcceptAnswer.
type AcceptAnswerInput struct {
	QuestionID uint
	AnswerID   uint
	UserID     uint
}

// AcceptAnswer marks an answer as the question's accepted answer. Only the
// question author may accept, the answer must belong to the question, and
// re-accepting the current answer is a no-op.
func (s *QuestionService) AcceptAnswer(ctx context.Context, input AcceptAnswerInput) (*models.Question, error) {
	question, err := s.questionRepo.GetByID(ctx, input.QuestionID)
	if err != nil {
		return nil, err
	}
	if question.UserID != input.UserID {
		return nil, models.NewForbiddenError("Only the question author can accept answers")
	}

	answer, err := s.answerRepo.GetByID(ctx, input.AnswerID)
	if err != nil {
		return nil, err
	}
	if answer.QuestionID != question.ID {
		return nil, models.NewValidationError("Answer does not belong to this question")
	}

	alreadyAccepted := question.AcceptedAnswerID != nil && *question.AcceptedAnswerID == answer.ID
	if err := s.answerRepo.AcceptAnswer(ctx, question.ID, answer.ID); err != nil {
		return nil, err
	}

	if !alreadyAccepted && answer.UserID != input.UserID && s.notify != nil {
		accepter, err := s.userRepo.GetByID(ctx, input.UserID)
		if err == nil {
			s.notify(ctx, answer.UserID, KindAccept,
				fmt.Sprintf("@%s accepted your answer", accepter.Name))
		}
	}

	return s.questionRepo.GetByID(ctx, question.ID)
}

// DeleteQuestionInput carries the parameters for DeleteQuestion.
type DeleteQuestionInput struct {
	QuestionID uint
	UserID     uint
}

// DeleteQuestion removes a question and its dependent records. Only its
// author may delete it.
func (s *QuestionService) DeleteQuestion(ctx context.Context, input DeleteQuestionInput) error {
	question, err := s.questionRepo.GetByID(ctx, input.QuestionID)
	if err != nil {
		return err
	}
	if question.UserID != input.UserID {
		return models.NewForbiddenError("You can only delete your own questions")
	}
	return s.questionRepo.Delete(ctx, question.ID)
}
