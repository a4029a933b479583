package server

import (
	"errors"

	"alumnet/internal/middleware"
	"alumnet/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

var errNoToken = errors.New("no token")

// authenticate resolves the request's bearer token to an active user.
// Websocket upgrades may pass the token as ?token= since browsers cannot set headers on them.
func (s *Server) authenticate(c *fiber.Ctx) (*models.User, *middleware.AccessClaims, error) {
	tokenString := middleware.BearerToken(c)
	if tokenString == "" && websocket.IsWebSocketUpgrade(c) {
		tokenString = c.Query("token")
	}
	if tokenString == "" {
		return nil, nil, errNoToken
	}

	claims, err := middleware.ParseAccessToken(s.config.JWTSecret, tokenString)
	if err != nil {
		return nil, nil, models.NewUnauthorizedError("Invalid or expired token")
	}

	revoked, err := s.authService.IsRevoked(c.UserContext(), claims.JTI)
	if err != nil {
		return nil, nil, err
	}
	if revoked {
		return nil, nil, models.NewUnauthorizedError("Token has been revoked")
	}

	user, err := s.userRepo.GetByID(c.UserContext(), claims.UserID)
	if err != nil {
		if models.HasCode(err, models.CodeNotFound) {
			return nil, nil, models.NewUnauthorizedError("User no longer exists")
		}
		return nil, nil, err
	}
	if !user.IsActive {
		return nil, nil, models.NewForbiddenError("Account is deactivated")
	}
	return user, claims, nil
}

func (s *Server) setPrincipal(c *fiber.Ctx, user *models.User, claims *middleware.AccessClaims) {
	c.Locals("userID", user.ID)
	c.Locals("user", user)
	c.Locals("claims", claims)
	c.SetUserContext(middleware.WithUserID(c.UserContext(), user.ID))
}

// AuthRequired rejects requests without a valid, unrevoked token for an active user.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, claims, err := s.authenticate(c)
		if errors.Is(err, errNoToken) {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}
		if err != nil {
			return respondErr(c, err)
		}
		s.setPrincipal(c, user, claims)
		return c.Next()
	}
}

// OptionalAuth attaches the caller when a valid token is present and otherwise
// lets the request through anonymously.
func (s *Server) OptionalAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, claims, err := s.authenticate(c)
		if err == nil {
			s.setPrincipal(c, user, claims)
		}
		return c.Next()
	}
}

// AdminRequired returns middleware that rejects non-admin users with 403.
// Must be placed after AuthRequired so that the user is available in locals.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := currentUser(c)
		if user == nil || !user.IsAdmin {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Admin access required"))
		}
		return c.Next()
	}
}

// FeatureRequired hides a route behind a feature flag, answering 404 when it is off.
func (s *Server) FeatureRequired(flag string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _ := c.Locals("userID").(uint)
		if s.featureFlags != nil && !s.featureFlags.Enabled(flag, userID) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("Route", c.Path()))
		}
		return c.Next()
	}
}

func currentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals("user").(*models.User)
	return user
}

func currentUserID(c *fiber.Ctx) uint {
	id, _ := c.Locals("userID").(uint)
	return id
}

func currentClaims(c *fiber.Ctx) *middleware.AccessClaims {
	claims, _ := c.Locals("claims").(*middleware.AccessClaims)
	return claims
}
