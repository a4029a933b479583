package service

import (
	"context"
	"fmt"
	"strings"

	"alumnet/internal/models"
	"alumnet/internal/repository"
	"alumnet/internal/validation"
)

// EventQuestionAnswered is pushed to the asker when their question gets an answer.
const EventQuestionAnswered = "question_answered"

const (
	defaultPopularQuestions = 10
	maxPopularQuestions     = 50
)

// AskInput is the payload of a new Expert Q&A question.
type AskInput struct {
	QuestionText string `json:"question_text" validate:"required,max=2000"`
}

// AnswerInput is the payload of an answer to an Expert Q&A question.
type AnswerInput struct {
	AnswerText string `json:"answer_text" validate:"required,max=5000"`
}

// QuestionService runs Expert Q&A.
type QuestionService struct {
	questionRepo  repository.QuestionRepository
	userRepo      repository.UserRepository
	notifications *NotificationService
}

func NewQuestionService(questionRepo repository.QuestionRepository, userRepo repository.UserRepository, notifications *NotificationService) *QuestionService {
	return &QuestionService{questionRepo: questionRepo, userRepo: userRepo, notifications: notifications}
}

// Popular returns the most liked questions with their answers.
func (s *QuestionService) Popular(ctx context.Context, limit int) ([]models.Question, error) {
	if limit <= 0 {
		limit = defaultPopularQuestions
	}
	if limit > maxPopularQuestions {
		limit = maxPopularQuestions
	}
	return s.questionRepo.Popular(ctx, limit)
}

func (s *QuestionService) Ask(ctx context.Context, author *models.User, in AskInput) (*models.Question, error) {
	in.QuestionText = strings.TrimSpace(in.QuestionText)
	if err := validation.ValidateStruct(&in); err != nil {
		return nil, err
	}

	q := &models.Question{UserID: author.ID, QuestionText: in.QuestionText}
	if err := s.questionRepo.Create(ctx, q); err != nil {
		return nil, err
	}
	q.Username = author.Username
	q.Answers = []models.ExpertAnswer{}
	return q, nil
}

// ByUser lists the questions an active user asked, newest first.
func (s *QuestionService) ByUser(ctx context.Context, username string) ([]models.Question, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, models.NewNotFoundError("User", username)
	}
	return s.questionRepo.ListByUser(ctx, user.ID)
}

// Like records the caller's single like and returns the new count.
func (s *QuestionService) Like(ctx context.Context, userID, questionID uint) (int, error) {
	return s.questionRepo.Like(ctx, userID, questionID)
}

// Answer stores an answer and tells the asker about it.
func (s *QuestionService) Answer(ctx context.Context, author *models.User, questionID uint, in AnswerInput) (*models.ExpertAnswer, error) {
	in.AnswerText = strings.TrimSpace(in.AnswerText)
	if err := validation.ValidateStruct(&in); err != nil {
		return nil, err
	}
	q, err := s.questionRepo.GetByID(ctx, questionID)
	if err != nil {
		return nil, err
	}

	a := &models.ExpertAnswer{
		QuestionID:     q.ID,
		UserID:         author.ID,
		AnswerText:     in.AnswerText,
		IsAlumniAnswer: author.IsAlumni,
	}
	if err := s.questionRepo.CreateAnswer(ctx, a); err != nil {
		return nil, err
	}
	a.Username = author.Username

	if q.UserID != author.ID {
		relatedID := q.ID
		err := s.notifications.Notify(ctx, &models.Notification{
			UserID:    q.UserID,
			Message:   fmt.Sprintf("%s answered your question", author.Username),
			Type:      models.NotificationQuestionAnswered,
			RelatedID: &relatedID,
		}, EventQuestionAnswered, a)
		logBestEffort(ctx, "question answered notification", err)
	}
	return a, nil
}
