package repository

import (
	"context"

	"alumnet/internal/models"

	"gorm.io/gorm"
)

// QuestionRepository defines persistence operations for Expert Q&A.
type QuestionRepository interface {
	Create(ctx context.Context, q *models.Question) error
	GetByID(ctx context.Context, id uint) (*models.Question, error)
	Popular(ctx context.Context, limit int) ([]models.Question, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Question, error)
	Like(ctx context.Context, userID, questionID uint) (int, error)
	CreateAnswer(ctx context.Context, a *models.ExpertAnswer) error
}

type questionRepository struct {
	db *gorm.DB
}

// NewQuestionRepository returns a new QuestionRepository implementation.
func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) Create(ctx context.Context, q *models.Question) error {
	if err := r.db.WithContext(ctx).Create(q).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *questionRepository) GetByID(ctx context.Context, id uint) (*models.Question, error) {
	var q models.Question
	if err := r.withAsker(ctx).Where("questions.id = ?", id).First(&q).Error; err != nil {
		return nil, notFoundOr(err, "Question", id)
	}
	return &q, nil
}

// Popular orders by likes, newest first among equals.
func (r *questionRepository) Popular(ctx context.Context, limit int) ([]models.Question, error) {
	out := []models.Question{}
	if err := r.withAsker(ctx).
		Order("questions.likes DESC, questions.created_at DESC, questions.id DESC").
		Limit(clampLimit(limit, 10, 50)).
		Find(&out).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := r.attachAnswers(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *questionRepository) ListByUser(ctx context.Context, userID uint) ([]models.Question, error) {
	out := []models.Question{}
	if err := r.withAsker(ctx).
		Where("questions.user_id = ?", userID).
		Order("questions.created_at DESC, questions.id DESC").
		Find(&out).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := r.attachAnswers(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Like stores the (user, question) row and bumps the counter in one transaction.
// A second like by the same user hits the primary key and reports a conflict.
func (r *questionRepository) Like(ctx context.Context, userID, questionID uint) (int, error) {
	var likes int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var exists int64
		if err := tx.Model(&models.Question{}).Where("id = ?", questionID).Count(&exists).Error; err != nil {
			return models.NewInternalError(err)
		}
		if exists == 0 {
			return models.NewNotFoundError("Question", questionID)
		}
		if err := tx.Create(&models.QuestionLike{UserID: userID, QuestionID: questionID}).Error; err != nil {
			if isUniqueConstraintError(err) {
				return models.NewConflictError("You already liked this question")
			}
			return models.NewInternalError(err)
		}
		if err := tx.Model(&models.Question{}).Where("id = ?", questionID).
			UpdateColumn("likes", gorm.Expr("likes + ?", 1)).Error; err != nil {
			return models.NewInternalError(err)
		}
		return tx.Model(&models.Question{}).Where("id = ?", questionID).Pluck("likes", &likes).Error
	})
	if err != nil {
		return 0, asAppError(err)
	}
	return likes, nil
}

func (r *questionRepository) CreateAnswer(ctx context.Context, a *models.ExpertAnswer) error {
	if err := r.db.WithContext(ctx).Create(a).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *questionRepository) withAsker(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Question{}).
		Select("questions.*, users.username").
		Joins("LEFT JOIN users ON users.id = questions.user_id")
}

// attachAnswers loads the answers of every question in one query, oldest first.
func (r *questionRepository) attachAnswers(ctx context.Context, questions []models.Question) error {
	if len(questions) == 0 {
		return nil
	}
	ids := make([]uint, len(questions))
	index := make(map[uint]int, len(questions))
	for i := range questions {
		ids[i] = questions[i].ID
		index[questions[i].ID] = i
		questions[i].Answers = []models.ExpertAnswer{}
	}

	var answers []models.ExpertAnswer
	if err := r.db.WithContext(ctx).Model(&models.ExpertAnswer{}).
		Select("expert_qa_answers.*, users.username").
		Joins("LEFT JOIN users ON users.id = expert_qa_answers.user_id").
		Where("expert_qa_answers.question_id IN ?", ids).
		Order("expert_qa_answers.created_at ASC, expert_qa_answers.id ASC").
		Find(&answers).Error; err != nil {
		return models.NewInternalError(err)
	}
	for _, a := range answers {
		i := index[a.QuestionID]
		questions[i].Answers = append(questions[i].Answers, a)
	}
	return nil
}
