package repository

import (
	"context"
	"errors"

	"alumnet/internal/models"

	"gorm.io/gorm"
)

// SparkRepository defines persistence operations for Daily Spark questions and answers.
type SparkRepository interface {
	CreateQuestion(ctx context.Context, q *models.DailySparkQuestion) error
	Latest(ctx context.Context) (*models.DailySparkQuestion, error)
	CreateAnswer(ctx context.Context, a *models.DailySparkAnswer) error
	ListAnswers(ctx context.Context, questionID uint) ([]models.DailySparkAnswer, error)
	Vote(ctx context.Context, answerID uint, delta int) (int, error)
	TopQuestions(ctx context.Context, limit int) ([]models.DailySparkRanking, error)
}

type sparkRepository struct {
	db *gorm.DB
}

// NewSparkRepository returns a new SparkRepository implementation.
func NewSparkRepository(db *gorm.DB) SparkRepository {
	return &sparkRepository{db: db}
}

// CreateQuestion relies on the (poster, day) unique index to cap one question per alumnus per day.
func (r *sparkRepository) CreateQuestion(ctx context.Context, q *models.DailySparkQuestion) error {
	if err := r.db.WithContext(ctx).Create(q).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("You have already posted a Daily Spark question today")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *sparkRepository) Latest(ctx context.Context) (*models.DailySparkQuestion, error) {
	var q models.DailySparkQuestion
	if err := r.db.WithContext(ctx).Order("posted_date DESC, id DESC").First(&q).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Daily Spark question", "latest")
		}
		return nil, models.NewInternalError(err)
	}
	return &q, nil
}

func (r *sparkRepository) CreateAnswer(ctx context.Context, a *models.DailySparkAnswer) error {
	if err := r.db.WithContext(ctx).Create(a).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *sparkRepository) ListAnswers(ctx context.Context, questionID uint) ([]models.DailySparkAnswer, error) {
	out := []models.DailySparkAnswer{}
	if err := r.db.WithContext(ctx).
		Select("daily_spark_answers.*, users.username").
		Joins("LEFT JOIN users ON users.id = daily_spark_answers.user_id").
		Where("daily_spark_answers.question_id = ?", questionID).
		Order("daily_spark_answers.votes DESC, daily_spark_answers.id ASC").
		Find(&out).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return out, nil
}

// Vote adjusts the counter in SQL so concurrent votes never overwrite each other.
func (r *sparkRepository) Vote(ctx context.Context, answerID uint, delta int) (int, error) {
	var answer models.DailySparkAnswer
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.DailySparkAnswer{}).Where("id = ?", answerID).
			UpdateColumn("votes", gorm.Expr("votes + ?", delta))
		if res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Answer", answerID)
		}
		return tx.Select("id", "votes").First(&answer, answerID).Error
	})
	if err != nil {
		return 0, asAppError(err)
	}
	return answer.Votes, nil
}

func (r *sparkRepository) TopQuestions(ctx context.Context, limit int) ([]models.DailySparkRanking, error) {
	out := []models.DailySparkRanking{}
	if err := r.db.WithContext(ctx).
		Table("daily_spark_questions AS q").
		Select("q.id, q.company, q.role, q.question, q.posted_date, COALESCE(SUM(a.votes), 0) AS total_votes").
		Joins("LEFT JOIN daily_spark_answers a ON a.question_id = q.id").
		Group("q.id, q.company, q.role, q.question, q.posted_date").
		Order("total_votes DESC, q.id DESC").
		Limit(clampLimit(limit, 5, 50)).
		Scan(&out).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return out, nil
}
