package repository

import (
	"context"
	"errors"
	"time"

	"alumnet/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ChatRepository defines the interface for chat data operations
type ChatRepository interface {
	EnsureThread(ctx context.Context, pair models.UserPair) (*models.ChatThread, error)
	FindThread(ctx context.Context, pair models.UserPair) (*models.ChatThread, error)
	AddMessage(ctx context.Context, msg *models.ChatMessage) error
	ListMessages(ctx context.Context, threadID uint, limit, offset int) ([]models.ChatMessage, error)
	Contacts(ctx context.Context, userID uint) ([]models.ChatContact, error)
}

// chatRepository implements ChatRepository
type chatRepository struct {
	db *gorm.DB
}

// NewChatRepository creates a new chat repository
func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

// EnsureThread returns the pair's thread, creating it on first use. Two
// concurrent first messages both end up on the same row through the pair index.
func (r *chatRepository) EnsureThread(ctx context.Context, pair models.UserPair) (*models.ChatThread, error) {
	thread := models.ChatThread{UserLowID: pair.Low, UserHighID: pair.High}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_low_id"}, {Name: "user_high_id"}}, DoNothing: true}).
		Create(&thread).Error; err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, models.NewInternalError(err)
	}
	found, err := r.FindThread(ctx, pair)
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, models.NewInternalError(errors.New("chat thread vanished after upsert"))
	}
	return found, nil
}

// FindThread returns nil when the pair has never chatted.
func (r *chatRepository) FindThread(ctx context.Context, pair models.UserPair) (*models.ChatThread, error) {
	var thread models.ChatThread
	if err := r.db.WithContext(ctx).
		Where("user_low_id = ? AND user_high_id = ?", pair.Low, pair.High).
		First(&thread).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &thread, nil
}

// AddMessage stores msg and bumps the thread's last activity in one transaction.
func (r *chatRepository) AddMessage(ctx context.Context, msg *models.ChatMessage) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		at := msg.CreatedAt
		if at.IsZero() {
			at = time.Now()
		}
		return tx.Model(&models.ChatThread{}).Where("id = ?", msg.ThreadID).
			UpdateColumn("last_message_at", at).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// ListMessages returns a page of the thread, newest first.
func (r *chatRepository) ListMessages(ctx context.Context, threadID uint, limit, offset int) ([]models.ChatMessage, error) {
	out := []models.ChatMessage{}
	if err := r.db.WithContext(ctx).
		Where("thread_id = ?", threadID).
		Order("created_at DESC, id DESC").
		Limit(clampLimit(limit, 50, 100)).
		Offset(offset).
		Find(&out).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return out, nil
}

func (r *chatRepository) Contacts(ctx context.Context, userID uint) ([]models.ChatContact, error) {
	out := []models.ChatContact{}
	if err := r.db.WithContext(ctx).
		Table("chat_threads AS t").
		Select("t.id AS thread_id, u.id AS user_id, u.username, u.avatar_url, t.last_message_at").
		Joins("JOIN users u ON u.id = CASE WHEN t.user_low_id = ? THEN t.user_high_id ELSE t.user_low_id END", userID).
		Where("(t.user_low_id = ? OR t.user_high_id = ?)", userID, userID).
		Where("u.deleted_at IS NULL").
		Order("t.last_message_at DESC, t.id DESC").
		Scan(&out).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return out, nil
}
