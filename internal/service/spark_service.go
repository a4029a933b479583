package service

import (
	"context"
	"strings"

	"alumnet/internal/models"
	"alumnet/internal/repository"
	"alumnet/internal/validation"
)

const (
	questionActivityPoints = 5
	answerActivityPoints   = 1
	defaultTopQuestions    = 5
	maxTopQuestions        = 50
)

// SparkService runs the Daily Spark: one interview question per alumnus per
// day, answered and voted on by everyone.
type SparkService struct {
	sparkRepo repository.SparkRepository
	userRepo  repository.UserRepository
	now       Clock
}

func NewSparkService(sparkRepo repository.SparkRepository, userRepo repository.UserRepository) *SparkService {
	return &SparkService{sparkRepo: sparkRepo, userRepo: userRepo, now: systemClock}
}

// SetClock replaces the time source that decides the posting day.
func (s *SparkService) SetClock(now Clock) {
	s.now = now
}

// QuestionInput is the payload of a new Daily Spark question.
type QuestionInput struct {
	Company  string `json:"company" validate:"max=200"`
	Role     string `json:"role" validate:"max=200"`
	Question string `json:"question" validate:"required,max=2000"`
}

// Today returns the most recently posted question.
func (s *SparkService) Today(ctx context.Context) (*models.DailySparkQuestion, error) {
	return s.sparkRepo.Latest(ctx)
}

// PostQuestion publishes today's question of an alumnus.
func (s *SparkService) PostQuestion(ctx context.Context, author *models.User, in QuestionInput) (*models.DailySparkQuestion, error) {
	if !author.IsAlumni {
		return nil, models.NewForbiddenError("Only alumni can post Daily Spark questions")
	}
	in.Question = strings.TrimSpace(in.Question)
	if err := validation.ValidateStruct(&in); err != nil {
		return nil, err
	}

	q := &models.DailySparkQuestion{
		Company:        strings.TrimSpace(in.Company),
		Role:           strings.TrimSpace(in.Role),
		Question:       in.Question,
		PostedByUserID: author.ID,
		PostedDate:     models.NewDate(s.now()),
	}
	if err := s.sparkRepo.CreateQuestion(ctx, q); err != nil {
		if models.HasCode(err, models.CodeConflict) {
			return nil, models.NewConflictError("You have already posted a question today")
		}
		return nil, err
	}
	logBestEffort(ctx, "question activity award", s.userRepo.AddActivity(ctx, author.ID, questionActivityPoints))
	return q, nil
}

// SubmitAnswer answers the latest question.
func (s *SparkService) SubmitAnswer(ctx context.Context, userID uint, text string) (*models.DailySparkAnswer, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, models.NewValidationError("Answer text is required")
	}
	if len(text) > 5000 {
		return nil, models.NewValidationError("Answer is too long (max 5000 characters)")
	}
	q, err := s.sparkRepo.Latest(ctx)
	if err != nil {
		return nil, err
	}

	a := &models.DailySparkAnswer{QuestionID: q.ID, UserID: userID, Text: text}
	if err := s.sparkRepo.CreateAnswer(ctx, a); err != nil {
		return nil, err
	}
	logBestEffort(ctx, "answer activity award", s.userRepo.AddActivity(ctx, userID, answerActivityPoints))
	return a, nil
}

// TodayAnswers lists answers to the latest question, most voted first.
func (s *SparkService) TodayAnswers(ctx context.Context) ([]models.DailySparkAnswer, error) {
	q, err := s.sparkRepo.Latest(ctx)
	if err != nil {
		return nil, err
	}
	return s.sparkRepo.ListAnswers(ctx, q.ID)
}

// Vote moves an answer's score by one and returns the new score.
func (s *SparkService) Vote(ctx context.Context, answerID uint, up bool) (int, error) {
	delta := -1
	if up {
		delta = 1
	}
	return s.sparkRepo.Vote(ctx, answerID, delta)
}

// TopQuestions ranks questions by the summed votes of their answers.
func (s *SparkService) TopQuestions(ctx context.Context, limit int) ([]models.DailySparkRanking, error) {
	if limit <= 0 {
		limit = defaultTopQuestions
	}
	if limit > maxTopQuestions {
		limit = maxTopQuestions
	}
	return s.sparkRepo.TopQuestions(ctx, limit)
}
