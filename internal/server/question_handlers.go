package server

import (
	"alumnet/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetPopularQuestions handles GET /api/questions/popular
// @Summary Most liked Expert Q&A questions
// @Tags questions
// @Produce json
// @Param limit query int false "Max results" default(10)
// @Success 200 {array} models.Question
// @Router /questions/popular [get]
func (s *Server) GetPopularQuestions(c *fiber.Ctx) error {
	questions, err := s.questionService.Popular(c.UserContext(), c.QueryInt("limit", 10))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(questions)
}

// AskQuestion handles POST /api/questions
// @Summary Ask the community a question
// @Tags questions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body service.AskInput true "Question"
// @Success 201 {object} models.Question
// @Failure 400 {object} models.ErrorResponse
// @Router /questions [post]
func (s *Server) AskQuestion(c *fiber.Ctx) error {
	var req service.AskInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	q, err := s.questionService.Ask(c.UserContext(), currentUser(c), req)
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(q)
}

// ListUserQuestions handles GET /api/users/:username/questions
// @Summary Questions asked by a user
// @Tags questions
// @Security BearerAuth
// @Produce json
// @Param username path string true "Username"
// @Success 200 {array} models.Question
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{username}/questions [get]
func (s *Server) ListUserQuestions(c *fiber.Ctx) error {
	questions, err := s.questionService.ByUser(c.UserContext(), c.Params("username"))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(questions)
}

// LikeQuestion handles POST /api/questions/:id/like
// @Summary Like a question
// @Description One like per user per question
// @Tags questions
// @Security BearerAuth
// @Produce json
// @Param id path int true "Question ID"
// @Success 200 {object} object{likes=int}
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /questions/{id}/like [post]
func (s *Server) LikeQuestion(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	likes, err := s.questionService.Like(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"likes": likes})
}

// AnswerQuestion handles POST /api/questions/:id/answers
// @Summary Answer a question
// @Tags questions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Question ID"
// @Param request body service.AnswerInput true "Answer"
// @Success 201 {object} models.ExpertAnswer
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /questions/{id}/answers [post]
func (s *Server) AnswerQuestion(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req service.AnswerInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	answer, err := s.questionService.Answer(c.UserContext(), currentUser(c), id, req)
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(answer)
}
