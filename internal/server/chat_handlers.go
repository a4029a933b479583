package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetContacts handles GET /api/contacts
// @Summary Chat contacts
// @Description Threads with the other party, most recent activity first
// @Tags chat
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.ChatContact
// @Router /contacts [get]
func (s *Server) GetContacts(c *fiber.Ctx) error {
	contacts, err := s.chatService.Contacts(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(contacts)
}

// GetChatMessages handles GET /api/chat/:username/messages
// @Summary Messages with a user
// @Tags chat
// @Security BearerAuth
// @Produce json
// @Param username path string true "Other username"
// @Param limit query int false "Page size" default(50)
// @Param offset query int false "Offset" default(0)
// @Success 200 {array} models.ChatMessage
// @Failure 404 {object} models.ErrorResponse
// @Router /chat/{username}/messages [get]
func (s *Server) GetChatMessages(c *fiber.Ctx) error {
	page := parsePagination(c, 50)
	msgs, err := s.chatService.Messages(c.UserContext(), currentUserID(c), c.Params("username"), page.Limit, page.Offset)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(msgs)
}

// SendChatMessage handles POST /api/chat/:username/messages
// @Summary Send a message to a connection
// @Tags chat
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param username path string true "Recipient username"
// @Param request body object{content=string} true "Message"
// @Success 201 {object} models.ChatMessage
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /chat/{username}/messages [post]
func (s *Server) SendChatMessage(c *fiber.Ctx) error {
	var req struct {
		Content string `json:"content"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	msg, err := s.chatService.Send(c.UserContext(), currentUser(c), c.Params("username"), req.Content)
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}
