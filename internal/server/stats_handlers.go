package server

import (
	"github.com/gofiber/fiber/v2"
)

const recentActivityLimit = 5

// GetMyStats returns the caller's contribution summary: question, answer
// and accepted-answer counts plus recent activity.
func (s *Server) GetMyStats(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := currentUserID(c)

	questionCount, err := s.questionRepo.CountByUser(ctx, userID)
	if err != nil {
		return respondAppError(c, err)
	}
	answerCount, err := s.answerRepo.CountByUser(ctx, userID)
	if err != nil {
		return respondAppError(c, err)
	}
	acceptedCount, err := s.questionRepo.CountAcceptedForUser(ctx, userID)
	if err != nil {
		return respondAppError(c, err)
	}
	recentQuestions, err := s.questionRepo.RecentByUser(ctx, userID, recentActivityLimit)
	if err != nil {
		return respondAppError(c, err)
	}
	recentAnswers, err := s.answerRepo.RecentByUser(ctx, userID, recentActivityLimit)
	if err != nil {
		return respondAppError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"stats": fiber.Map{
			"questions":        questionCount,
			"answers":          answerCount,
			"accepted_answers": acceptedCount,
			"recent_questions": recentQuestions,
			"recent_answers":   recentAnswers,
		},
	})
}
