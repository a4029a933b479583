package server

import (
	"alumnet/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ListUnverifiedItems handles GET /api/admin/unverified-items.
// @Summary Pending submissions of one type
// @Tags moderation-admin
// @Produce json
// @Param type query string true "jobs, internships, career_fairs or hackathons"
// @Success 200 {array} object
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/unverified-items [get]
func (s *Server) ListUnverifiedItems(c *fiber.Ctx) error {
	items, err := s.moderationService.ListPending(c.UserContext(), c.Query("type"))
	if err != nil {
		return respondErr(c, err)
	}
	if items == nil {
		items = []models.UnverifiedItem{}
	}
	return c.JSON(items)
}

// ApproveItem handles POST /api/admin/unverified-items/:id/approve.
// @Summary Approve a pending submission
// @Description Publishes the item and notifies every active non-admin user
// @Tags moderation-admin
// @Produce json
// @Param id path int true "Submission ID"
// @Param type query string true "Item type"
// @Success 200 {object} object
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/unverified-items/{id}/approve [post]
func (s *Server) ApproveItem(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	item, err := s.moderationService.Approve(c.UserContext(), c.Query("type"), id, currentUserID(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Item approved",
		"item":    item,
	})
}

// RejectItem handles POST /api/admin/unverified-items/:id/reject.
// @Summary Reject a pending submission
// @Tags moderation-admin
// @Produce json
// @Param id path int true "Submission ID"
// @Param type query string true "Item type"
// @Success 200 {object} object
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/unverified-items/{id}/reject [post]
func (s *Server) RejectItem(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	item, err := s.moderationService.Reject(c.UserContext(), c.Query("type"), id, currentUserID(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Item rejected",
		"item":    item,
	})
}

// CreateItemDirect returns the admin handler that publishes itemType without review.
// @Summary Publish an item directly
// @Tags moderation-admin
// @Accept json
// @Produce json
// @Success 201 {object} object
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/jobs [post]
// @Router /admin/internships [post]
// @Router /admin/career_fairs [post]
// @Router /admin/hackathons [post]
func (s *Server) CreateItemDirect(itemType models.ItemType) fiber.Handler {
	return func(c *fiber.Ctx) error {
		item, err := s.moderationService.CreateDirect(c.UserContext(), string(itemType), c.Body())
		if err != nil {
			return respondErr(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(item)
	}
}
