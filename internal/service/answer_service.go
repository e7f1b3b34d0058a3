package service

import (
	"context"
	"fmt"
	"strings"

	"stackit/internal/models"
	"stackit/internal/repository"
)

// AnswerService implements the answer lifecycle: submission, voting,
// acceptance toggling, commenting and deletion, with notification fan-out
// to the affected users.
type AnswerService struct {
	answerRepo   repository.AnswerRepository
	questionRepo repository.QuestionRepository
	commentRepo  repository.CommentRepository
	userRepo     repository.UserRepository
	notify       NotifyFunc
}

// NewAnswerService creates an answer service. notify may be nil to disable
// notification fan-out.
func NewAnswerService(
	answerRepo repository.AnswerRepository,
	questionRepo repository.QuestionRepository,
	commentRepo repository.CommentRepository,
	userRepo repository.UserRepository,
	notify NotifyFunc,
) *AnswerService {
	return &AnswerService{
		answerRepo:   answerRepo,
		questionRepo: questionRepo,
		commentRepo:  commentRepo,
		userRepo:     userRepo,
		notify:       notify,
	}
}

func (s *AnswerService) sendNotification(ctx context.Context, userID uint, kind, message string) {
	if s.notify != nil {
		s.notify(ctx, userID, kind, message)
	}
}

// SubmitAnswerInput carries the parameters for SubmitAnswer.
type SubmitAnswerInput struct {
	QuestionID  uint
	UserID      uint
	Description string
}

// SubmitAnswer posts an answer to a question and notifies the question
// author unless they answered their own question.
func (s *AnswerService) SubmitAnswer(ctx context.Context, input SubmitAnswerInput) (*models.Answer, error) {
	if strings.TrimSpace(input.Description) == "" {
		return nil, models.NewValidationError("Answer description is required")
	}

	question, err := s.questionRepo.GetByID(ctx, input.QuestionID)
	if err != nil {
		return nil, err
	}
	author, err := s.userRepo.GetByID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	answer := &models.Answer{
		QuestionID:  question.ID,
		UserID:      author.ID,
		Description: input.Description,
	}
	if err := s.answerRepo.Create(ctx, answer); err != nil {
		return nil, err
	}

	if question.UserID != author.ID {
		s.sendNotification(ctx, question.UserID, KindAnswer,
			fmt.Sprintf("@%s answered your question: %q", author.Name, question.Title))
	}

	return s.answerRepo.GetByID(ctx, answer.ID)
}

// VoteInput carries the parameters for Vote.
type VoteInput struct {
	AnswerID uint
	UserID   uint
	Type     string
}

// Vote records an up or down vote on an answer. A user gets exactly one vote
// per answer, ever, and may not vote on their own answer.
func (s *AnswerService) Vote(ctx context.Context, input VoteInput) (*models.Answer, error) {
	if !models.ValidVoteType(input.Type) {
		return nil, models.NewValidationError("Vote type must be 'up' or 'down'")
	}

	answer, err := s.answerRepo.GetByID(ctx, input.AnswerID)
	if err != nil {
		return nil, err
	}
	if answer.UserID == input.UserID {
		return nil, models.NewForbiddenError("You cannot vote on your own answer")
	}

	voted, err := s.answerRepo.HasVoted(ctx, input.UserID, input.AnswerID)
	if err != nil {
		return nil, err
	}
	if voted {
		return nil, models.NewValidationError("You have already voted on this answer")
	}

	if err := s.answerRepo.CastVote(ctx, input.UserID, input.AnswerID, input.Type); err != nil {
		return nil, err
	}

	return s.answerRepo.GetByID(ctx, input.AnswerID)
}

// AcceptInput carries the parameters for ToggleAccept.
type AcceptInput struct {
	AnswerID uint
	UserID   uint
}

// ToggleAccept flips the accepted state of an answer. Only the author of the
// owning question may accept, and accepting one answer demotes any other
// accepted answer on the same question. Returns the refreshed answer and the
// resulting accepted state.
func (s *AnswerService) ToggleAccept(ctx context.Context, input AcceptInput) (*models.Answer, bool, error) {
	answer, err := s.answerRepo.GetByID(ctx, input.AnswerID)
	if err != nil {
		return nil, false, err
	}
	if answer.Question == nil {
		return nil, false, models.NewInternalError("accept answer", fmt.Errorf("answer %d has no question", answer.ID))
	}
	if answer.Question.UserID != input.UserID {
		return nil, false, models.NewForbiddenError("Only the question author can accept answers")
	}

	accepted, err := s.answerRepo.ToggleAccepted(ctx, answer.QuestionID, answer.ID)
	if err != nil {
		return nil, false, err
	}

	if accepted && answer.UserID != input.UserID {
		accepter, err := s.userRepo.GetByID(ctx, input.UserID)
		if err == nil {
			s.sendNotification(ctx, answer.UserID, KindAccept,
				fmt.Sprintf("@%s accepted your answer", accepter.Name))
		}
	}

	refreshed, err := s.answerRepo.GetByID(ctx, answer.ID)
	if err != nil {
		return nil, false, err
	}
	return refreshed, accepted, nil
}

// AddCommentInput carries the parameters for AddComment.
type AddCommentInput struct {
	AnswerID uint
	UserID   uint
	Text     string
}

// AddComment posts a comment on an answer. @name tokens in the text are
// resolved to users best-effort; unknown names are dropped. The answer
// author and every mentioned user (minus the commenter and the author, who
// is notified once) receive a notification.
func (s *AnswerService) AddComment(ctx context.Context, input AddCommentInput) (*models.Comment, error) {
	if strings.TrimSpace(input.Text) == "" {
		return nil, models.NewValidationError("Comment text is required")
	}

	answer, err := s.answerRepo.GetByID(ctx, input.AnswerID)
	if err != nil {
		return nil, err
	}
	commenter, err := s.userRepo.GetByID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	mentioned, err := s.userRepo.GetByNames(ctx, ParseMentions(input.Text))
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		AnswerID: answer.ID,
		UserID:   commenter.ID,
		Text:     input.Text,
		Mentions: mentioned,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	if answer.UserID != commenter.ID {
		s.sendNotification(ctx, answer.UserID, KindComment,
			fmt.Sprintf("@%s commented on your answer", commenter.Name))
	}
	for _, user := range mentioned {
		if user.ID == commenter.ID || user.ID == answer.UserID {
			continue
		}
		s.sendNotification(ctx, user.ID, KindMention,
			fmt.Sprintf("@%s mentioned you in a comment", commenter.Name))
	}

	return s.commentRepo.GetByID(ctx, comment.ID)
}

// DeleteAnswerInput carries the parameters for DeleteAnswer.
type DeleteAnswerInput struct {
	AnswerID uint
	UserID   uint
}

// DeleteAnswer removes an answer. Only its author may delete it.
func (s *AnswerService) DeleteAnswer(ctx context.Context, input DeleteAnswerInput) error {
	answer, err := s.answerRepo.GetByID(ctx, input.AnswerID)
	if err != nil {
		return err
	}
	if answer.UserID != input.UserID {
		return models.NewForbiddenError("You can only delete your own answers")
	}
	return s.answerRepo.Delete(ctx, answer)
}
