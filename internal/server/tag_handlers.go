package server

import (
	"stackit/internal/models"

	"github.com/gofiber/fiber/v2"
)

const popularTagLimit = 15

type createTagRequest struct {
	Name string `json:"name"`
}

// GetTags lists all tags alphabetically.
func (s *Server) GetTags(c *fiber.Ctx) error {
	tags, err := s.tagRepo.List(c.UserContext())
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"tags":    tags,
	})
}

// GetPopularTags lists the most used tags with their usage counts.
func (s *Server) GetPopularTags(c *fiber.Ctx) error {
	tags, err := s.tagRepo.Popular(c.UserContext(), popularTagLimit)
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"tags":    tags,
	})
}

// CreateTag creates a tag ahead of use. Admin only; regular users get tags
// implicitly through question creation.
func (s *Server) CreateTag(c *fiber.Ctx) error {
	var req createTagRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if models.NormalizeTagName(req.Name) == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Tag name is required"))
	}

	tag, err := s.tagRepo.Create(c.UserContext(), req.Name)
	if err != nil {
		return respondAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"tag":     tag,
	})
}
