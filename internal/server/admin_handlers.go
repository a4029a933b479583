package server

import (
	"strings"

	"alumnet/internal/models"

	"github.com/gofiber/fiber/v2"
)

const maxAdminUserSearchLen = 64

// GetFeatureFlags returns configured feature flags and evaluated state for current user.
// @Summary Feature flags
// @Tags admin
// @Produce json
// @Success 200 {object} object{raw=map[string]string,evaluated=map[string]bool}
// @Security BearerAuth
// @Router /admin/feature-flags [get]
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	if s.featureFlags == nil {
		return c.JSON(fiber.Map{
			"raw":       map[string]string{},
			"evaluated": map[string]bool{},
		})
	}
	return c.JSON(fiber.Map{
		"raw":       s.featureFlags.Raw(),
		"evaluated": s.featureFlags.Snapshot(currentUserID(c)),
	})
}

// AdminListUsers handles GET /api/admin/users.
// @Summary List users for admin
// @Description List users with search and pagination.
// @Tags admin
// @Produce json
// @Param search query string false "Username or email fragment"
// @Param include_inactive query bool false "Include deactivated accounts"
// @Param limit query int false "Page size" default(50)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} service.UserPage
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/users [get]
func (s *Server) AdminListUsers(c *fiber.Ctx) error {
	page := parsePagination(c, 50)
	search := strings.TrimSpace(c.Query("search"))
	if len(search) > maxAdminUserSearchLen {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Search query too long (max 64 characters)"))
	}

	result, err := s.userService.ListUsers(c.UserContext(), models.UserFilter{
		Search:          search,
		IncludeInactive: queryBool(c, "include_inactive", false),
		Limit:           page.Limit,
		Offset:          page.Offset,
	})
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(result)
}

// AdminSetUserStatus handles PUT /api/admin/users/:id/status.
// @Summary Set student/alumni flags
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param request body object{is_student=bool,is_alumni=bool} true "Flags"
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/users/{id}/status [put]
func (s *Server) AdminSetUserStatus(c *fiber.Ctx) error {
	targetID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		IsStudent bool `json:"is_student"`
		IsAlumni  bool `json:"is_alumni"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	user, err := s.userService.SetStudentAlumni(c.UserContext(), targetID, req.IsStudent, req.IsAlumni)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(user)
}

// AdminSetUserRole handles PUT /api/admin/users/:id/role.
// @Summary Grant or revoke admin
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param request body object{is_admin=bool} true "Role"
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/users/{id}/role [put]
func (s *Server) AdminSetUserRole(c *fiber.Ctx) error {
	targetID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		IsAdmin *bool `json:"is_admin"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	if req.IsAdmin == nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("is_admin is required"))
	}
	user, err := s.userService.SetAdmin(c.UserContext(), currentUserID(c), targetID, *req.IsAdmin)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(user)
}

// AdminSetUserActivity handles PUT /api/admin/users/:id/activity.
// @Summary Activate or deactivate an account
// @Description Deactivation clears every role flag
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param request body object{is_active=bool} true "Activity"
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/users/{id}/activity [put]
func (s *Server) AdminSetUserActivity(c *fiber.Ctx) error {
	targetID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		IsActive *bool `json:"is_active"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	if req.IsActive == nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("is_active is required"))
	}
	user, err := s.userService.SetActive(c.UserContext(), currentUserID(c), targetID, *req.IsActive)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(user)
}

// AdminListIssues handles GET /api/admin/issues.
// @Summary Help requests
// @Tags admin
// @Produce json
// @Param status query string false "pending, investigating, resolved, closed or completed"
// @Success 200 {array} models.UserIssue
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/issues [get]
func (s *Server) AdminListIssues(c *fiber.Ctx) error {
	issues, err := s.issueService.List(c.UserContext(), c.Query("status"))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(issues)
}

// AdminUpdateIssueStatus handles PUT /api/admin/issues/:id/status.
// @Summary Move a help request to a new status
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "Issue ID"
// @Param request body object{status=string} true "New status"
// @Success 200 {object} models.UserIssue
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/issues/{id}/status [put]
func (s *Server) AdminUpdateIssueStatus(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	issue, err := s.issueService.UpdateStatus(c.UserContext(), id, req.Status)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(issue)
}
