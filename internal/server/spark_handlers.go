package server

import (
	"alumnet/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetTodaySpark handles GET /api/daily-spark/today
// @Summary Latest Daily Spark question
// @Tags daily-spark
// @Produce json
// @Success 200 {object} models.DailySparkQuestion
// @Failure 404 {object} models.ErrorResponse
// @Router /daily-spark/today [get]
func (s *Server) GetTodaySpark(c *fiber.Ctx) error {
	q, err := s.sparkService.Today(c.UserContext())
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(q)
}

// GetTodayAnswers handles GET /api/daily-spark/today/answers
// @Summary Answers to the latest question
// @Tags daily-spark
// @Produce json
// @Success 200 {array} models.DailySparkAnswer
// @Failure 404 {object} models.ErrorResponse
// @Router /daily-spark/today/answers [get]
func (s *Server) GetTodayAnswers(c *fiber.Ctx) error {
	answers, err := s.sparkService.TodayAnswers(c.UserContext())
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(answers)
}

// GetTopSparkQuestions handles GET /api/daily-spark/top-liked
// @Summary Questions ranked by answer votes
// @Tags daily-spark
// @Produce json
// @Param limit query int false "Max results" default(5)
// @Success 200 {array} models.DailySparkRanking
// @Router /daily-spark/top-liked [get]
func (s *Server) GetTopSparkQuestions(c *fiber.Ctx) error {
	ranking, err := s.sparkService.TopQuestions(c.UserContext(), c.QueryInt("limit", 5))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(ranking)
}

// PostSparkQuestion handles POST /api/daily-spark/questions
// @Summary Post today's question
// @Description Alumni only, once per day
// @Tags daily-spark
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body service.QuestionInput true "Question"
// @Success 201 {object} models.DailySparkQuestion
// @Failure 403 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /daily-spark/questions [post]
func (s *Server) PostSparkQuestion(c *fiber.Ctx) error {
	var req service.QuestionInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	q, err := s.sparkService.PostQuestion(c.UserContext(), currentUser(c), req)
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(q)
}

// SubmitSparkAnswer handles POST /api/daily-spark/submit
// @Summary Answer the latest question
// @Tags daily-spark
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{text=string} true "Answer"
// @Success 201 {object} models.DailySparkAnswer
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /daily-spark/submit [post]
func (s *Server) SubmitSparkAnswer(c *fiber.Ctx) error {
	var req struct {
		Text string `json:"text"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	answer, err := s.sparkService.SubmitAnswer(c.UserContext(), currentUserID(c), req.Text)
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(answer)
}

// VoteSparkAnswer returns the upvote or downvote handler.
// @Summary Vote on an answer
// @Tags daily-spark
// @Security BearerAuth
// @Produce json
// @Param id path int true "Answer ID"
// @Success 200 {object} object{votes=int}
// @Failure 404 {object} models.ErrorResponse
// @Router /daily-spark/answers/{id}/upvote [post]
// @Router /daily-spark/answers/{id}/downvote [post]
func (s *Server) VoteSparkAnswer(up bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c, "id")
		if err != nil {
			return nil
		}
		votes, err := s.sparkService.Vote(c.UserContext(), id, up)
		if err != nil {
			return respondErr(c, err)
		}
		return c.JSON(fiber.Map{"votes": votes})
	}
}
