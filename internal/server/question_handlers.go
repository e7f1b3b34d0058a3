package server

import (
	"stackit/internal/models"
	"stackit/internal/service"

	"github.com/gofiber/fiber/v2"
)

type createQuestionRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// CreateQuestion posts a new question with its tags.
func (s *Server) CreateQuestion(c *fiber.Ctx) error {
	var req createQuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	question, err := s.questionService.CreateQuestion(c.UserContext(), service.CreateQuestionInput{
		UserID:      currentUserID(c),
		Title:       req.Title,
		Description: req.Description,
		Tags:        req.Tags,
	})
	if err != nil {
		return respondAppError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":  true,
		"question": question,
	})
}

// GetQuestions lists questions with optional filter, search and tag query
// parameters plus pagination metadata.
func (s *Server) GetQuestions(c *fiber.Ctx) error {
	questions, meta, err := s.questionService.ListQuestions(c.UserContext(), service.ListQuestionsInput{
		Page:   parseQueryInt(c, "page", 1),
		Limit:  parseQueryInt(c, "limit", 10),
		Filter: c.Query("filter"),
		Search: c.Query("search"),
		Tag:    c.Query("tag"),
	})
	if err != nil {
		return respondAppError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"questions":  questions,
		"pagination": meta,
	})
}

// GetQuestion returns a single question with its answers and comments.
func (s *Server) GetQuestion(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondAppError(c, err)
	}

	question, err := s.questionService.GetQuestion(c.UserContext(), id)
	if err != nil {
		return respondAppError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"question": question,
	})
}

// AcceptQuestionAnswer marks an answer as the question's accepted answer.
func (s *Server) AcceptQuestionAnswer(c *fiber.Ctx) error {
	questionID, err := parseID(c, "id")
	if err != nil {
		return respondAppError(c, err)
	}
	answerID, err := parseID(c, "answerId")
	if err != nil {
		return respondAppError(c, err)
	}

	question, err := s.questionService.AcceptAnswer(c.UserContext(), service.AcceptAnswerInput{
		QuestionID: questionID,
		AnswerID:   answerID,
		UserID:     currentUserID(c),
	})
	if err != nil {
		return respondAppError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"question": question,
	})
}

// DeleteQuestion removes the caller's question.
func (s *Server) DeleteQuestion(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondAppError(c, err)
	}

	err = s.questionService.DeleteQuestion(c.UserContext(), service.DeleteQuestionInput{
		QuestionID: id,
		UserID:     currentUserID(c),
	})
	if err != nil {
		return respondAppError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Question deleted",
	})
}
