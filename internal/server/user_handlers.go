package server

import (
	"io"

	"alumnet/internal/models"
	"alumnet/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/users/me
// @Summary Get current user profile
// @Tags users
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.User
// @Failure 401 {object} models.ErrorResponse
// @Router /users/me [get]
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	return c.JSON(currentUser(c))
}

// UpdateMyProfile handles PUT /api/users/me
// @Summary Update current user profile
// @Description Only fields present in the body are changed
// @Tags users
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body service.UpdateProfileInput true "Profile fields"
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Router /users/me [put]
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req service.UpdateProfileInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	user, err := s.userService.UpdateProfile(c.UserContext(), currentUserID(c), req)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(user)
}

// UploadAvatar handles POST /api/users/me/avatar
// @Summary Upload avatar
// @Description Accepts jpeg, png or webp. The image is fitted inside 256x256 and stored as webp.
// @Tags users
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param avatar formData file true "Avatar image"
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Router /users/me/avatar [post]
func (s *Server) UploadAvatar(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("No file uploaded"))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Failed to open uploaded file"))
	}
	defer func() { _ = file.Close() }()

	content, err := io.ReadAll(file)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Failed to read uploaded file"))
	}

	user, err := s.avatarService.Upload(c.UserContext(), service.AvatarUpload{
		UserID:      currentUserID(c),
		ContentType: fileHeader.Header.Get(fiber.HeaderContentType),
		Content:     content,
	})
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(user)
}

// GetUserProfile handles GET /api/users/:username
// @Summary Get a public profile
// @Tags users
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} models.PublicProfile
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{username} [get]
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	profile, err := s.userService.Profile(c.UserContext(), c.Params("username"))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(profile)
}

// GetLeaderboard handles GET /api/leaderboard
// @Summary Alumni leaderboard
// @Description Active alumni by activity score, then gems
// @Tags users
// @Produce json
// @Success 200 {array} models.PublicProfile
// @Router /leaderboard [get]
func (s *Server) GetLeaderboard(c *fiber.Ctx) error {
	profiles, err := s.userService.Leaderboard(c.UserContext())
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(profiles)
}

// GetTopLikedAlumni handles GET /api/alumni/top-liked
// @Summary Most liked alumni per department
// @Tags users
// @Produce json
// @Param limit query int false "Alumni per department" default(3)
// @Success 200 {array} models.DepartmentRanking
// @Router /alumni/top-liked [get]
func (s *Server) GetTopLikedAlumni(c *fiber.Ctx) error {
	rankings, err := s.userService.TopLiked(c.UserContext(), c.QueryInt("limit", 3))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(rankings)
}

// GetAlumnus handles GET /api/alumni/:id
// @Summary Alumnus profile by ID
// @Tags users
// @Security BearerAuth
// @Produce json
// @Param id path int true "Alumnus user ID"
// @Success 200 {object} models.PublicProfile
// @Failure 404 {object} models.ErrorResponse
// @Router /alumni/{id} [get]
func (s *Server) GetAlumnus(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	profile, err := s.userService.Alumnus(c.UserContext(), id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(profile)
}

// LikeAlumnus handles POST /api/alumni/:id/like
// @Summary Like an alumnus
// @Tags users
// @Security BearerAuth
// @Produce json
// @Param id path int true "Alumnus user ID"
// @Success 200 {object} models.PublicProfile
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /alumni/{id}/like [post]
func (s *Server) LikeAlumnus(c *fiber.Ctx) error {
	alumnusID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	profile, err := s.userService.LikeAlumnus(c.UserContext(), currentUserID(c), alumnusID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(profile)
}
