package service

import (
	"context"
	"testing"

	"stackit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func appCode(t *testing.T, err error) string {
	t.Helper()
	appErr, ok := err.(*models.AppError)
	require.True(t, ok, "expected *models.AppError, got %T: %v", err, err)
	return appErr.Code
}

func answerFixture() (*models.User, *models.User, *models.Question, *models.Answer) {
	asker := &models.User{ID: 1, Name: "asker"}
	responder := &models.User{ID: 2, Name: "responder"}
	question := &models.Question{ID: 10, Title: "How do I test this?", UserID: asker.ID}
	answer := &models.Answer{ID: 20, QuestionID: question.ID, UserID: responder.ID, Question: question}
	return asker, responder, question, answer
}

func TestSubmitAnswer(t *testing.T) {
	t.Parallel()

	t.Run("empty description rejected", func(t *testing.T) {
		t.Parallel()
		svc := NewAnswerService(&stubAnswerRepo{}, &stubQuestionRepo{}, newStubCommentRepo(), newStubUserRepo(), nil)

		_, err := svc.SubmitAnswer(context.Background(), SubmitAnswerInput{
			QuestionID: 1, UserID: 2, Description: "   ",
		})
		require.Error(t, err)
		assert.Equal(t, models.CodeValidation, appCode(t, err))
	})

	t.Run("unknown question rejected", func(t *testing.T) {
		t.Parallel()
		svc := NewAnswerService(&stubAnswerRepo{}, &stubQuestionRepo{}, newStubCommentRepo(), newStubUserRepo(), nil)

		_, err := svc.SubmitAnswer(context.Background(), SubmitAnswerInput{
			QuestionID: 99, UserID: 2, Description: "an answer",
		})
		require.Error(t, err)
		assert.Equal(t, models.CodeNotFound, appCode(t, err))
	})

	t.Run("notifies the question author", func(t *testing.T) {
		t.Parallel()
		asker, responder, question, _ := answerFixture()
		recorder := &notifyRecorder{}

		var created *models.Answer
		answers := &stubAnswerRepo{
			createFn: func(a *models.Answer) error {
				a.ID = 20
				created = a
				return nil
			},
			getByIDFn: func(id uint) (*models.Answer, error) { return created, nil },
		}
		questions := &stubQuestionRepo{
			getByIDFn: func(id uint) (*models.Question, error) { return question, nil },
		}
		svc := NewAnswerService(answers, questions, newStubCommentRepo(), newStubUserRepo(asker, responder), recorder.fn())

		answer, err := svc.SubmitAnswer(context.Background(), SubmitAnswerInput{
			QuestionID: question.ID, UserID: responder.ID, Description: "use a fake clock",
		})
		require.NoError(t, err)
		assert.Equal(t, question.ID, answer.QuestionID)

		require.Len(t, recorder.calls, 1)
		assert.Equal(t, asker.ID, recorder.calls[0].userID)
		assert.Equal(t, KindAnswer, recorder.calls[0].kind)
		assert.Contains(t, recorder.calls[0].message, "@responder answered your question")
	})

	t.Run("no self notification", func(t *testing.T) {
		t.Parallel()
		asker, _, question, _ := answerFixture()
		recorder := &notifyRecorder{}

		answers := &stubAnswerRepo{
			getByIDFn: func(id uint) (*models.Answer, error) {
				return &models.Answer{ID: id, QuestionID: question.ID, UserID: asker.ID}, nil
			},
		}
		questions := &stubQuestionRepo{
			getByIDFn: func(id uint) (*models.Question, error) { return question, nil },
		}
		svc := NewAnswerService(answers, questions, newStubCommentRepo(), newStubUserRepo(asker), recorder.fn())

		_, err := svc.SubmitAnswer(context.Background(), SubmitAnswerInput{
			QuestionID: question.ID, UserID: asker.ID, Description: "answering my own question",
		})
		require.NoError(t, err)
		assert.Empty(t, recorder.calls)
	})
}

func TestVote(t *testing.T) {
	t.Parallel()

	newService := func(answer *models.Answer, voted map[string]bool) *AnswerService {
		answers := &stubAnswerRepo{
			getByIDFn: func(id uint) (*models.Answer, error) {
				if id == answer.ID {
					return answer, nil
				}
				return nil, models.NewNotFoundError("Answer", id)
			},
			hasVotedFn: func(userID, answerID uint) (bool, error) {
				return voted[voteKey(userID, answerID)], nil
			},
			castVoteFn: func(userID, answerID uint, voteType string) error {
				voted[voteKey(userID, answerID)] = true
				return nil
			},
		}
		return NewAnswerService(answers, &stubQuestionRepo{}, newStubCommentRepo(), newStubUserRepo(), nil)
	}

	t.Run("invalid type rejected", func(t *testing.T) {
		t.Parallel()
		_, _, _, answer := answerFixture()
		svc := newService(answer, map[string]bool{})

		_, err := svc.Vote(context.Background(), VoteInput{AnswerID: answer.ID, UserID: 3, Type: "sideways"})
		require.Error(t, err)
		assert.Equal(t, models.CodeValidation, appCode(t, err))
	})

	t.Run("self vote forbidden", func(t *testing.T) {
		t.Parallel()
		_, responder, _, answer := answerFixture()
		svc := newService(answer, map[string]bool{})

		_, err := svc.Vote(context.Background(), VoteInput{AnswerID: answer.ID, UserID: responder.ID, Type: models.VoteUp})
		require.Error(t, err)
		assert.Equal(t, models.CodeForbidden, appCode(t, err))
	})

	t.Run("second vote rejected regardless of direction", func(t *testing.T) {
		t.Parallel()
		_, _, _, answer := answerFixture()
		voted := map[string]bool{}
		svc := newService(answer, voted)

		_, err := svc.Vote(context.Background(), VoteInput{AnswerID: answer.ID, UserID: 3, Type: models.VoteUp})
		require.NoError(t, err)

		_, err = svc.Vote(context.Background(), VoteInput{AnswerID: answer.ID, UserID: 3, Type: models.VoteDown})
		require.Error(t, err)
		assert.Equal(t, models.CodeValidation, appCode(t, err))
	})
}

func TestToggleAccept(t *testing.T) {
	t.Parallel()

	t.Run("only question author may accept", func(t *testing.T) {
		t.Parallel()
		_, responder, _, answer := answerFixture()
		answers := &stubAnswerRepo{
			getByIDFn: func(id uint) (*models.Answer, error) { return answer, nil },
		}
		svc := NewAnswerService(answers, &stubQuestionRepo{}, newStubCommentRepo(), newStubUserRepo(), nil)

		_, _, err := svc.ToggleAccept(context.Background(), AcceptInput{AnswerID: answer.ID, UserID: responder.ID})
		require.Error(t, err)
		assert.Equal(t, models.CodeForbidden, appCode(t, err))
	})

	t.Run("accepting notifies the answer author", func(t *testing.T) {
		t.Parallel()
		asker, responder, _, answer := answerFixture()
		recorder := &notifyRecorder{}
		answers := &stubAnswerRepo{
			getByIDFn: func(id uint) (*models.Answer, error) { return answer, nil },
			toggleFn:  func(questionID, answerID uint) (bool, error) { return true, nil },
		}
		svc := NewAnswerService(answers, &stubQuestionRepo{}, newStubCommentRepo(), newStubUserRepo(asker, responder), recorder.fn())

		_, accepted, err := svc.ToggleAccept(context.Background(), AcceptInput{AnswerID: answer.ID, UserID: asker.ID})
		require.NoError(t, err)
		assert.True(t, accepted)
		assert.Equal(t, []string{KindAccept}, recorder.kindsFor(responder.ID))
	})

	t.Run("unaccepting sends no notification", func(t *testing.T) {
		t.Parallel()
		asker, responder, _, answer := answerFixture()
		recorder := &notifyRecorder{}
		answers := &stubAnswerRepo{
			getByIDFn: func(id uint) (*models.Answer, error) { return answer, nil },
			toggleFn:  func(questionID, answerID uint) (bool, error) { return false, nil },
		}
		svc := NewAnswerService(answers, &stubQuestionRepo{}, newStubCommentRepo(), newStubUserRepo(asker, responder), recorder.fn())

		_, accepted, err := svc.ToggleAccept(context.Background(), AcceptInput{AnswerID: answer.ID, UserID: asker.ID})
		require.NoError(t, err)
		assert.False(t, accepted)
		assert.Empty(t, recorder.calls)
	})
}

func TestAddComment(t *testing.T) {
	t.Parallel()

	t.Run("empty text rejected", func(t *testing.T) {
		t.Parallel()
		svc := NewAnswerService(&stubAnswerRepo{}, &stubQuestionRepo{}, newStubCommentRepo(), newStubUserRepo(), nil)

		_, err := svc.AddComment(context.Background(), AddCommentInput{AnswerID: 1, UserID: 2, Text: " "})
		require.Error(t, err)
		assert.Equal(t, models.CodeValidation, appCode(t, err))
	})

	t.Run("mentions resolve and fan out once per user", func(t *testing.T) {
		t.Parallel()
		asker, responder, _, answer := answerFixture()
		commenter := &models.User{ID: 3, Name: "commenter"}
		mentioned := &models.User{ID: 4, Name: "helpful_friend"}
		recorder := &notifyRecorder{}

		answers := &stubAnswerRepo{
			getByIDFn: func(id uint) (*models.Answer, error) { return answer, nil },
		}
		comments := newStubCommentRepo()
		users := newStubUserRepo(asker, responder, commenter, mentioned)
		svc := NewAnswerService(answers, &stubQuestionRepo{}, comments, users, recorder.fn())

		comment, err := svc.AddComment(context.Background(), AddCommentInput{
			AnswerID: answer.ID,
			UserID:   commenter.ID,
			Text:     "@helpful_friend @responder @ghost see this",
		})
		require.NoError(t, err)
		require.Len(t, comment.Mentions, 2)

		// Answer author gets the comment notification, not a mention one.
		assert.Equal(t, []string{KindComment}, recorder.kindsFor(responder.ID))
		assert.Equal(t, []string{KindMention}, recorder.kindsFor(mentioned.ID))
		assert.Empty(t, recorder.kindsFor(commenter.ID))
	})

	t.Run("self comment on own answer sends nothing", func(t *testing.T) {
		t.Parallel()
		_, responder, _, answer := answerFixture()
		recorder := &notifyRecorder{}
		answers := &stubAnswerRepo{
			getByIDFn: func(id uint) (*models.Answer, error) { return answer, nil },
		}
		svc := NewAnswerService(answers, &stubQuestionRepo{}, newStubCommentRepo(), newStubUserRepo(responder), recorder.fn())

		_, err := svc.AddComment(context.Background(), AddCommentInput{
			AnswerID: answer.ID, UserID: responder.ID, Text: "clarifying my own answer",
		})
		require.NoError(t, err)
		assert.Empty(t, recorder.calls)
	})
}

func TestDeleteAnswer(t *testing.T) {
	t.Parallel()

	_, responder, _, answer := answerFixture()
	deleted := false
	answers := &stubAnswerRepo{
		getByIDFn: func(id uint) (*models.Answer, error) { return answer, nil },
		deleteFn:  func(a *models.Answer) error { deleted = true; return nil },
	}
	svc := NewAnswerService(answers, &stubQuestionRepo{}, newStubCommentRepo(), newStubUserRepo(), nil)

	err := svc.DeleteAnswer(context.Background(), DeleteAnswerInput{AnswerID: answer.ID, UserID: 99})
	require.Error(t, err)
	assert.Equal(t, models.CodeForbidden, appCode(t, err))
	assert.False(t, deleted)

	err = svc.DeleteAnswer(context.Background(), DeleteAnswerInput{AnswerID: answer.ID, UserID: responder.ID})
	require.NoError(t, err)
	assert.True(t, deleted)
}
