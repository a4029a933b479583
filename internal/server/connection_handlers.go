package server

import (
	"github.com/gofiber/fiber/v2"
)

const maxSuggestionLimit = 50

// SendConnectionRequest handles POST /api/connections/request/:username
// @Summary Send a connection request
// @Tags connections
// @Security BearerAuth
// @Produce json
// @Param username path string true "Target username"
// @Success 201 {object} models.Connection
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /connections/request/{username} [post]
func (s *Server) SendConnectionRequest(c *fiber.Ctx) error {
	conn, err := s.connectionService.SendRequest(c.UserContext(), currentUserID(c), c.Params("username"))
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(conn)
}

// ListPendingRequests handles GET /api/connections/requests/pending
// @Summary Incoming pending requests
// @Tags connections
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.PendingRequest
// @Router /connections/requests/pending [get]
func (s *Server) ListPendingRequests(c *fiber.Ctx) error {
	reqs, err := s.connectionService.ListPending(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(reqs)
}

// ListSentRequests handles GET /api/connections/requests/sent
// @Summary Outgoing pending requests
// @Tags connections
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.SentRequest
// @Router /connections/requests/sent [get]
func (s *Server) ListSentRequests(c *fiber.Ctx) error {
	reqs, err := s.connectionService.ListSent(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(reqs)
}

// AcceptConnectionRequest handles POST /api/connections/requests/accept/:requesterId
// @Summary Accept a pending request
// @Tags connections
// @Security BearerAuth
// @Produce json
// @Param requesterId path int true "Requester user ID"
// @Success 200 {object} models.Connection
// @Failure 404 {object} models.ErrorResponse
// @Router /connections/requests/accept/{requesterId} [post]
func (s *Server) AcceptConnectionRequest(c *fiber.Ctx) error {
	requesterID, err := parseID(c, "requesterId")
	if err != nil {
		return nil
	}
	conn, err := s.connectionService.Accept(c.UserContext(), currentUserID(c), requesterID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(conn)
}

// IgnoreConnectionRequest handles POST /api/connections/requests/ignore/:requesterId
// @Summary Ignore a pending request
// @Description Ignoring is final for the pair
// @Tags connections
// @Security BearerAuth
// @Produce json
// @Param requesterId path int true "Requester user ID"
// @Success 200 {object} models.Connection
// @Failure 404 {object} models.ErrorResponse
// @Router /connections/requests/ignore/{requesterId} [post]
func (s *Server) IgnoreConnectionRequest(c *fiber.Ctx) error {
	requesterID, err := parseID(c, "requesterId")
	if err != nil {
		return nil
	}
	conn, err := s.connectionService.Ignore(c.UserContext(), currentUserID(c), requesterID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(conn)
}

// RemoveConnection handles DELETE /api/connections/:username
// @Summary Remove an accepted connection
// @Tags connections
// @Security BearerAuth
// @Produce json
// @Param username path string true "Connected username"
// @Success 200 {object} object{message=string}
// @Failure 404 {object} models.ErrorResponse
// @Router /connections/{username} [delete]
func (s *Server) RemoveConnection(c *fiber.Ctx) error {
	if err := s.connectionService.Remove(c.UserContext(), currentUserID(c), c.Params("username")); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"message": "Connection removed"})
}

// GetConnectionStatus handles GET /api/connections/status/:username
// @Summary Relationship with another user
// @Tags connections
// @Security BearerAuth
// @Produce json
// @Param username path string true "Other username"
// @Success 200 {object} object{status=string}
// @Failure 404 {object} models.ErrorResponse
// @Router /connections/status/{username} [get]
func (s *Server) GetConnectionStatus(c *fiber.Ctx) error {
	status, err := s.connectionService.Status(c.UserContext(), currentUserID(c), c.Params("username"))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"status": status})
}

// ListConnections handles GET /api/users/:username/connections
// @Summary A user's accepted connections
// @Tags connections
// @Security BearerAuth
// @Produce json
// @Param username path string true "Username"
// @Success 200 {array} models.ConnectionUser
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{username}/connections [get]
func (s *Server) ListConnections(c *fiber.Ctx) error {
	users, err := s.connectionService.ListConnections(c.UserContext(), c.Params("username"))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(users)
}

// ListSuggestions handles GET /api/users/:username/suggestions
// @Summary People you may know
// @Tags connections
// @Security BearerAuth
// @Produce json
// @Param username path string true "Username (self unless admin)"
// @Param limit query int false "Max results" default(10)
// @Success 200 {array} models.ConnectionUser
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{username}/suggestions [get]
func (s *Server) ListSuggestions(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 10)
	if limit > maxSuggestionLimit {
		limit = maxSuggestionLimit
	}
	users, err := s.connectionService.ListSuggestions(c.UserContext(), currentUser(c), c.Params("username"), limit)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(users)
}
