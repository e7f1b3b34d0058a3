package server

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAnswerHandler(t *testing.T) {
	_, askerToken := registerAccount(t)
	_, responderToken := registerAccount(t)
	questionID := createQuestionAPI(t, askerToken, "question needing answers", "answer-tag")

	t.Run("requires auth", func(t *testing.T) {
		status, _ := doJSON(t, http.MethodPost, fmt.Sprintf("/api/answers/%d", questionID), "", map[string]any{
			"description": "anonymous answer",
		})
		assert.Equal(t, http.StatusUnauthorized, status)
	})

	t.Run("empty description rejected", func(t *testing.T) {
		status, body := doJSON(t, http.MethodPost, fmt.Sprintf("/api/answers/%d", questionID), responderToken, map[string]any{
			"description": "  ",
		})
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "VALIDATION_ERROR", body["code"])
	})

	t.Run("unknown question 404", func(t *testing.T) {
		status, _ := doJSON(t, http.MethodPost, "/api/answers/999999", responderToken, map[string]any{
			"description": "answer to nothing",
		})
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("success returns populated answer", func(t *testing.T) {
		status, body := doJSON(t, http.MethodPost, fmt.Sprintf("/api/answers/%d", questionID), responderToken, map[string]any{
			"description": "a real answer",
		})
		require.Equal(t, http.StatusCreated, status)
		answer := body["answer"].(map[string]any)
		assert.Equal(t, "a real answer", answer["description"])
		assert.Equal(t, float64(questionID), answer["question_id"])
	})
}

func TestVoteAnswerHandler(t *testing.T) {
	_, askerToken := registerAccount(t)
	_, responderToken := registerAccount(t)
	_, voterToken := registerAccount(t)

	questionID := createQuestionAPI(t, askerToken, "question for voting", "vote-tag")
	answerID := createAnswerAPI(t, responderToken, questionID, "votable answer")

	votePath := fmt.Sprintf("/api/answers/%d/vote", answerID)

	t.Run("invalid type rejected", func(t *testing.T) {
		status, body := doJSON(t, http.MethodPost, votePath, voterToken, map[string]any{"type": "sideways"})
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "VALIDATION_ERROR", body["code"])
	})

	t.Run("self vote forbidden", func(t *testing.T) {
		status, body := doJSON(t, http.MethodPost, votePath, responderToken, map[string]any{"type": "up"})
		assert.Equal(t, http.StatusForbidden, status)
		assert.Equal(t, "FORBIDDEN", body["code"])
	})

	t.Run("vote succeeds and tallies update", func(t *testing.T) {
		status, body := doJSON(t, http.MethodPost, votePath, voterToken, map[string]any{"type": "up"})
		require.Equal(t, http.StatusOK, status)
		answer := body["answer"].(map[string]any)
		assert.Equal(t, float64(1), answer["upvotes"])
		assert.Equal(t, float64(0), answer["downvotes"])
	})

	t.Run("second vote rejected", func(t *testing.T) {
		status, body := doJSON(t, http.MethodPost, votePath, voterToken, map[string]any{"type": "down"})
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "You have already voted on this answer", body["error"])
	})
}

func TestToggleAcceptAnswerHandler(t *testing.T) {
	_, askerToken := registerAccount(t)
	_, responderToken := registerAccount(t)

	questionID := createQuestionAPI(t, askerToken, "question for toggle accept", "toggle-tag")
	firstID := createAnswerAPI(t, responderToken, questionID, "first answer")
	secondID := createAnswerAPI(t, responderToken, questionID, "second answer")

	t.Run("non-author forbidden", func(t *testing.T) {
		status, _ := doJSON(t, http.MethodPost, fmt.Sprintf("/api/answers/%d/accept", firstID), responderToken, nil)
		assert.Equal(t, http.StatusForbidden, status)
	})

	t.Run("accept then switch then unaccept", func(t *testing.T) {
		status, body := doJSON(t, http.MethodPost, fmt.Sprintf("/api/answers/%d/accept", firstID), askerToken, nil)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, true, body["isAccepted"])

		// Accepting the second demotes the first.
		status, body = doJSON(t, http.MethodPost, fmt.Sprintf("/api/answers/%d/accept", secondID), askerToken, nil)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, true, body["isAccepted"])

		status, qBody := doJSON(t, http.MethodGet, fmt.Sprintf("/api/questions/%d", questionID), "", nil)
		require.Equal(t, http.StatusOK, status)
		question := qBody["question"].(map[string]any)
		assert.Equal(t, float64(secondID), question["accepted_answer_id"])

		// Toggling the accepted answer again clears it.
		status, body = doJSON(t, http.MethodPost, fmt.Sprintf("/api/answers/%d/accept", secondID), askerToken, nil)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, false, body["isAccepted"])
	})
}

func TestAddCommentHandler(t *testing.T) {
	asker, askerToken := registerAccount(t)
	_, responderToken := registerAccount(t)
	_, commenterToken := registerAccount(t)

	questionID := createQuestionAPI(t, askerToken, "question for comments", "comment-tag")
	answerID := createAnswerAPI(t, responderToken, questionID, "commentable answer")

	commentPath := fmt.Sprintf("/api/answers/%d/comments", answerID)

	t.Run("empty text rejected", func(t *testing.T) {
		status, _ := doJSON(t, http.MethodPost, commentPath, commenterToken, map[string]any{"text": ""})
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("mentions resolve known users and drop unknown ones", func(t *testing.T) {
		status, body := doJSON(t, http.MethodPost, commentPath, commenterToken, map[string]any{
			"text": fmt.Sprintf("@%s @no_such_user_at_all have a look", asker),
		})
		require.Equal(t, http.StatusCreated, status)

		comment := body["comment"].(map[string]any)
		mentions := comment["mentions"].([]any)
		require.Len(t, mentions, 1)
		assert.Equal(t, asker, mentions[0].(map[string]any)["name"])
	})
}

func TestDeleteAnswerHandler(t *testing.T) {
	_, askerToken := registerAccount(t)
	_, responderToken := registerAccount(t)

	questionID := createQuestionAPI(t, askerToken, "question for answer delete", "ansdel-tag")
	answerID := createAnswerAPI(t, responderToken, questionID, "short-lived answer")

	t.Run("non-owner forbidden", func(t *testing.T) {
		status, _ := doJSON(t, http.MethodDelete, fmt.Sprintf("/api/answers/%d", answerID), askerToken, nil)
		assert.Equal(t, http.StatusForbidden, status)
	})

	t.Run("owner deletes and counts drop", func(t *testing.T) {
		status, _ := doJSON(t, http.MethodDelete, fmt.Sprintf("/api/answers/%d", answerID), responderToken, nil)
		require.Equal(t, http.StatusOK, status)

		status, body := doJSON(t, http.MethodGet, fmt.Sprintf("/api/questions/%d", questionID), "", nil)
		require.Equal(t, http.StatusOK, status)
		question := body["question"].(map[string]any)
		assert.Equal(t, float64(0), question["answers_count"])
	})
}
