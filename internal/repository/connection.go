package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"alumnet/internal/models"

	"gorm.io/gorm"
)

// ConnectionRepository defines persistence operations for connection requests.
type ConnectionRepository interface {
	Create(ctx context.Context, conn *models.Connection) error
	GetBetween(ctx context.Context, userA, userB uint) (*models.Connection, error)
	ListPendingFor(ctx context.Context, receiverID uint) ([]models.PendingRequest, error)
	ListSentBy(ctx context.Context, requesterID uint) ([]models.SentRequest, error)
	Accept(ctx context.Context, receiverID, requesterID uint, reward int, now time.Time) (*models.Connection, error)
	Ignore(ctx context.Context, receiverID, requesterID uint, now time.Time) (*models.Connection, error)
	DeleteAccepted(ctx context.Context, userA, userB uint) (*models.Connection, error)
	ListConnections(ctx context.Context, userID uint) ([]models.ConnectionUser, error)
	ListSuggestions(ctx context.Context, userID uint, limit int) ([]models.ConnectionUser, error)
}

type connectionRepository struct {
	db *gorm.DB
}

// NewConnectionRepository returns a new ConnectionRepository implementation.
func NewConnectionRepository(db *gorm.DB) ConnectionRepository {
	return &connectionRepository{db: db}
}

// Create inserts a pending request. A concurrent request for the same pair, in
// either direction, loses on the pair index and gets ErrPairExists.
func (r *connectionRepository) Create(ctx context.Context, conn *models.Connection) error {
	if err := r.db.WithContext(ctx).Create(conn).Error; err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return err
		}
		if isUniqueConstraintError(err) {
			return ErrPairExists
		}
		return models.NewInternalError(err)
	}
	return nil
}

// GetBetween returns the record for the unordered pair, or nil when there is none.
func (r *connectionRepository) GetBetween(ctx context.Context, userA, userB uint) (*models.Connection, error) {
	pair := models.NewUserPair(userA, userB)
	var conn models.Connection
	if err := r.db.WithContext(ctx).
		Where("user_low_id = ? AND user_high_id = ?", pair.Low, pair.High).
		First(&conn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &conn, nil
}

func (r *connectionRepository) ListPendingFor(ctx context.Context, receiverID uint) ([]models.PendingRequest, error) {
	out := []models.PendingRequest{}
	if err := r.db.WithContext(ctx).
		Table("connections AS c").
		Select("c.requester_id, u.username AS requester_username, u.profession AS requester_profession, c.created_at AS requested_at").
		Joins("JOIN users u ON u.id = c.requester_id AND u.deleted_at IS NULL").
		Where("c.receiver_id = ? AND c.status = ?", receiverID, models.ConnectionStatusPending).
		Order("c.created_at DESC, c.id DESC").
		Scan(&out).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return out, nil
}

func (r *connectionRepository) ListSentBy(ctx context.Context, requesterID uint) ([]models.SentRequest, error) {
	out := []models.SentRequest{}
	if err := r.db.WithContext(ctx).
		Table("connections AS c").
		Select("c.receiver_id, u.username AS receiver_username, c.created_at AS requested_at").
		Joins("JOIN users u ON u.id = c.receiver_id AND u.deleted_at IS NULL").
		Where("c.requester_id = ? AND c.status = ?", requesterID, models.ConnectionStatusPending).
		Order("c.created_at DESC, c.id DESC").
		Scan(&out).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return out, nil
}

// Accept flips the exact pending request to accepted and rewards both users.
// The status update is conditioned on pending, so a repeated or concurrent
// accept affects no rows and reports NotFound.
func (r *connectionRepository) Accept(ctx context.Context, receiverID, requesterID uint, reward int, now time.Time) (*models.Connection, error) {
	var conn models.Connection
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Connection{}).
			Where("requester_id = ? AND receiver_id = ? AND status = ?", requesterID, receiverID, models.ConnectionStatusPending).
			Updates(map[string]interface{}{"status": models.ConnectionStatusAccepted, "updated_at": now})
		if res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Connection request from user", requesterID)
		}

		res = tx.Model(&models.User{}).
			Where("id IN ?", []uint{requesterID, receiverID}).
			UpdateColumn("alumni_gems", gorm.Expr("alumni_gems + ?", reward))
		if res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		if res.RowsAffected != 2 {
			return models.NewInternalError(fmt.Errorf("gem reward updated %d users, want 2", res.RowsAffected))
		}

		return tx.Where("requester_id = ? AND receiver_id = ?", requesterID, receiverID).First(&conn).Error
	})
	if err != nil {
		return nil, asAppError(err)
	}
	return &conn, nil
}

// Ignore flips the exact pending request to ignored.
func (r *connectionRepository) Ignore(ctx context.Context, receiverID, requesterID uint, now time.Time) (*models.Connection, error) {
	var conn models.Connection
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Connection{}).
			Where("requester_id = ? AND receiver_id = ? AND status = ?", requesterID, receiverID, models.ConnectionStatusPending).
			Updates(map[string]interface{}{"status": models.ConnectionStatusIgnored, "updated_at": now})
		if res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Connection request from user", requesterID)
		}
		return tx.Where("requester_id = ? AND receiver_id = ?", requesterID, receiverID).First(&conn).Error
	})
	if err != nil {
		return nil, asAppError(err)
	}
	return &conn, nil
}

// DeleteAccepted hard-deletes the accepted record for the pair.
func (r *connectionRepository) DeleteAccepted(ctx context.Context, userA, userB uint) (*models.Connection, error) {
	pair := models.NewUserPair(userA, userB)
	var conn models.Connection
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_low_id = ? AND user_high_id = ? AND status = ?", pair.Low, pair.High, models.ConnectionStatusAccepted).
			First(&conn).Error; err != nil {
			return notFoundOr(err, "Connection with user", pair.Other(userA))
		}
		res := tx.Where("id = ? AND status = ?", conn.ID, models.ConnectionStatusAccepted).Delete(&models.Connection{})
		if res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Connection with user", pair.Other(userA))
		}
		return nil
	})
	if err != nil {
		return nil, asAppError(err)
	}
	return &conn, nil
}

// ListConnections returns every user with an accepted record with userID, in either direction.
func (r *connectionRepository) ListConnections(ctx context.Context, userID uint) ([]models.ConnectionUser, error) {
	out := []models.ConnectionUser{}
	if err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select("users.id, users.username, users.profession, users.avatar_url").
		Joins("JOIN connections c ON (c.user_low_id = users.id AND c.user_high_id = ?) OR (c.user_high_id = users.id AND c.user_low_id = ?)", userID, userID).
		Where("c.status = ?", models.ConnectionStatusAccepted).
		Order("users.username ASC").
		Find(&out).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return out, nil
}

// ListSuggestions returns active users with no record of any status with userID.
func (r *connectionRepository) ListSuggestions(ctx context.Context, userID uint, limit int) ([]models.ConnectionUser, error) {
	db := r.db.WithContext(ctx)
	asLow := db.Model(&models.Connection{}).Select("user_high_id").Where("user_low_id = ?", userID)
	asHigh := db.Model(&models.Connection{}).Select("user_low_id").Where("user_high_id = ?", userID)

	out := []models.ConnectionUser{}
	if err := db.Model(&models.User{}).
		Select("id, username, profession, avatar_url").
		Where("id <> ? AND is_active = ?", userID, true).
		Where("id NOT IN (?)", asLow).
		Where("id NOT IN (?)", asHigh).
		Order("activity_score DESC, id ASC").
		Limit(clampLimit(limit, 10, 50)).
		Find(&out).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return out, nil
}

// asAppError passes AppErrors through and wraps anything else as Internal.
func asAppError(err error) error {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return models.NewInternalError(err)
}
