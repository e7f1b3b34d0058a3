package server

import (
	"stackit/internal/middleware"
	"stackit/internal/models"
	"stackit/internal/service"

	"github.com/gofiber/fiber/v2"
)

type createAnswerRequest struct {
	Description string `json:"description"`
}

type voteRequest struct {
	Type string `json:"type"`
}

type createCommentRequest struct {
	Text string `json:"text"`
}

// CreateAnswer posts an answer to the question in the route.
func (s *Server) CreateAnswer(c *fiber.Ctx) error {
	questionID, err := parseID(c, "questionId")
	if err != nil {
		return respondAppError(c, err)
	}

	var req createAnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	answer, err := s.answerService.SubmitAnswer(c.UserContext(), service.SubmitAnswerInput{
		QuestionID:  questionID,
		UserID:      currentUserID(c),
		Description: req.Description,
	})
	if err != nil {
		return respondAppError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"answer":  answer,
	})
}

// VoteAnswer casts the caller's single up or down vote on an answer.
func (s *Server) VoteAnswer(c *fiber.Ctx) error {
	answerID, err := parseID(c, "id")
	if err != nil {
		return respondAppError(c, err)
	}

	var req voteRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	answer, err := s.answerService.Vote(c.UserContext(), service.VoteInput{
		AnswerID: answerID,
		UserID:   currentUserID(c),
		Type:     req.Type,
	})
	if err != nil {
		return respondAppError(c, err)
	}
	middleware.VotesCast.WithLabelValues(req.Type).Inc()

	return c.JSON(fiber.Map{
		"success": true,
		"answer":  answer,
	})
}

// ToggleAcceptAnswer flips the accepted state of an answer.
func (s *Server) ToggleAcceptAnswer(c *fiber.Ctx) error {
	answerID, err := parseID(c, "id")
	if err != nil {
		return respondAppError(c, err)
	}

	answer, accepted, err := s.answerService.ToggleAccept(c.UserContext(), service.AcceptInput{
		AnswerID: answerID,
		UserID:   currentUserID(c),
	})
	if err != nil {
		return respondAppError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"isAccepted": accepted,
		"answer":     answer,
	})
}

// AddComment posts a comment on an answer, resolving @mentions.
func (s *Server) AddComment(c *fiber.Ctx) error {
	answerID, err := parseID(c, "id")
	if err != nil {
		return respondAppError(c, err)
	}

	var req createCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.answerService.AddComment(c.UserContext(), service.AddCommentInput{
		AnswerID: answerID,
		UserID:   currentUserID(c),
		Text:     req.Text,
	})
	if err != nil {
		return respondAppError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"comment": comment,
	})
}

// DeleteAnswer removes the caller's answer.
func (s *Server) DeleteAnswer(c *fiber.Ctx) error {
	answerID, err := parseID(c, "id")
	if err != nil {
		return respondAppError(c, err)
	}

	err = s.answerService.DeleteAnswer(c.UserContext(), service.DeleteAnswerInput{
		AnswerID: answerID,
		UserID:   currentUserID(c),
	})
	if err != nil {
		return respondAppError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Answer deleted",
	})
}
