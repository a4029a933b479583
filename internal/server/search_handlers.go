package server

import (
	"alumnet/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Search handles GET /api/search
// @Summary Search users and listings
// @Description Terms shorter than two characters return an empty list. Signed-in callers get the term saved to their history.
// @Tags search
// @Produce json
// @Param term query string true "Search term"
// @Success 200 {array} models.SearchResult
// @Failure 400 {object} models.ErrorResponse
// @Router /search [get]
func (s *Server) Search(c *fiber.Ctx) error {
	results, err := s.searchService.Search(c.UserContext(), currentUserID(c), c.Query("term"))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(results)
}

// GetSearchHistory handles GET /api/search/history
// @Summary Recent searches
// @Tags search
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.SearchHistory
// @Router /search/history [get]
func (s *Server) GetSearchHistory(c *fiber.Ctx) error {
	history, err := s.searchService.History(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(history)
}

// SubmitIssue handles POST /api/help/submit-issue
// @Summary Report a problem
// @Tags help
// @Accept json
// @Produce json
// @Param request body service.IssueInput true "Issue"
// @Success 201 {object} models.UserIssue
// @Failure 400 {object} models.ErrorResponse
// @Router /help/submit-issue [post]
func (s *Server) SubmitIssue(c *fiber.Ctx) error {
	var req service.IssueInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	issue, err := s.issueService.Submit(c.UserContext(), currentUserID(c), req)
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(issue)
}
