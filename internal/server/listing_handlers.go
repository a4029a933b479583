package server

import (
	"alumnet/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ListItems returns the public listing handler for one item type.
// upcoming_only defaults to true except for career fairs.
// @Summary List verified items
// @Tags listings
// @Produce json
// @Param upcoming_only query bool false "Hide past events (internships, hackathons, career fairs)"
// @Param limit query int false "Page size (jobs)" default(20)
// @Param offset query int false "Offset (jobs)" default(0)
// @Success 200 {array} object
// @Router /jobs [get]
// @Router /internships [get]
// @Router /career_fairs [get]
// @Router /hackathons [get]
func (s *Server) ListItems(itemType models.ItemType) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()

		var (
			items interface{}
			err   error
		)
		switch itemType {
		case models.ItemTypeJob:
			page := parsePagination(c, 20)
			items, err = s.listingService.Jobs(ctx, page.Limit, page.Offset)
		case models.ItemTypeInternship:
			items, err = s.listingService.Internships(ctx, queryBool(c, "upcoming_only", true))
		case models.ItemTypeCareerFair:
			items, err = s.listingService.CareerFairs(ctx, queryBool(c, "upcoming_only", false))
		case models.ItemTypeHackathon:
			items, err = s.listingService.Hackathons(ctx, queryBool(c, "upcoming_only", true))
		default:
			err = models.NewInvalidTypeError(string(itemType))
		}
		if err != nil {
			return respondErr(c, err)
		}
		return c.JSON(items)
	}
}

// GetItem returns the handler for a single verified item of itemType.
// @Summary Get a verified item
// @Tags listings
// @Produce json
// @Param id path int true "Item ID"
// @Success 200 {object} object
// @Failure 404 {object} models.ErrorResponse
// @Router /jobs/{id} [get]
// @Router /internships/{id} [get]
// @Router /career_fairs/{id} [get]
// @Router /hackathons/{id} [get]
func (s *Server) GetItem(itemType models.ItemType) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c, "id")
		if err != nil {
			return nil
		}
		item, err := s.listingService.Get(c.UserContext(), string(itemType), id)
		if err != nil {
			return respondErr(c, err)
		}
		return c.JSON(item)
	}
}

// SubmitItem returns the handler that queues a member submission for review.
// @Summary Submit an item for moderation
// @Description The body holds the item fields. Status and review fields are set by the server.
// @Tags moderation
// @Security BearerAuth
// @Accept json
// @Produce json
// @Success 201 {object} object
// @Failure 400 {object} models.ErrorResponse
// @Router /jobs [post]
// @Router /internships [post]
// @Router /career_fairs [post]
// @Router /hackathons [post]
func (s *Server) SubmitItem(itemType models.ItemType) fiber.Handler {
	return func(c *fiber.Ctx) error {
		item, err := s.moderationService.Submit(c.UserContext(), string(itemType), currentUserID(c), c.Body())
		if err != nil {
			return respondErr(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(item)
	}
}

// GetFeed handles GET /api/feed/events
// @Summary Recent listings feed
// @Description Latest jobs, internships and hackathons merged, newest first
// @Tags listings
// @Produce json
// @Param limit_per_type query int false "Items per type" default(3)
// @Success 200 {array} models.FeedEvent
// @Router /feed/events [get]
func (s *Server) GetFeed(c *fiber.Ctx) error {
	events, err := s.listingService.Feed(c.UserContext(), c.QueryInt("limit_per_type", 3))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(events)
}

// ListMySubmissions handles GET /api/submissions/me
// @Summary My submissions
// @Tags moderation
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.SubmissionSummary
// @Router /submissions/me [get]
func (s *Server) ListMySubmissions(c *fiber.Ctx) error {
	subs, err := s.moderationService.ListMine(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(subs)
}
