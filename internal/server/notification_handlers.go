package server

import (
	"alumnet/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ListNotifications handles GET /api/notifications
// @Summary My notifications
// @Tags notifications
// @Security BearerAuth
// @Produce json
// @Param only_unread query bool false "Only unread"
// @Success 200 {array} models.Notification
// @Router /notifications [get]
func (s *Server) ListNotifications(c *fiber.Ctx) error {
	list, err := s.notificationService.List(c.UserContext(), currentUserID(c), queryBool(c, "only_unread", false))
	if err != nil {
		return respondErr(c, err)
	}
	if list == nil {
		list = []models.Notification{}
	}
	return c.JSON(list)
}

// GetUnreadCount handles GET /api/notifications/unread-count
// @Summary Unread notification count
// @Tags notifications
// @Security BearerAuth
// @Produce json
// @Success 200 {object} object{count=int}
// @Router /notifications/unread-count [get]
func (s *Server) GetUnreadCount(c *fiber.Ctx) error {
	n, err := s.notificationService.UnreadCount(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"count": n})
}

// MarkNotificationsRead handles POST /api/notifications/mark-read
// @Summary Mark notifications read
// @Description Only the caller's notifications are touched
// @Tags notifications
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{notification_ids=[]int} true "IDs"
// @Success 200 {object} object{updated=int}
// @Failure 400 {object} models.ErrorResponse
// @Router /notifications/mark-read [post]
func (s *Server) MarkNotificationsRead(c *fiber.Ctx) error {
	var req struct {
		NotificationIDs []uint `json:"notification_ids"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	n, err := s.notificationService.MarkRead(c.UserContext(), currentUserID(c), req.NotificationIDs)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"updated": n})
}
