package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"alumnet/internal/models"
	"alumnet/internal/observability"
	"alumnet/internal/repository"
)

const notificationListLimit = 50

// NotificationService persists per-user notifications and pushes realtime events.
type NotificationService struct {
	notifRepo repository.NotificationRepository
	userRepo  repository.UserRepository
	publisher RealtimePublisher
}

// NewNotificationService returns a new NotificationService. publisher may be nil.
func NewNotificationService(notifRepo repository.NotificationRepository, userRepo repository.UserRepository, publisher RealtimePublisher) *NotificationService {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	return &NotificationService{
		notifRepo: notifRepo,
		userRepo:  userRepo,
		publisher: publisher,
	}
}

// Notify stores n and, once stored, pushes eventType to the recipient.
func (s *NotificationService) Notify(ctx context.Context, n *models.Notification, eventType string, payload interface{}) error {
	if err := s.notifRepo.Create(ctx, n); err != nil {
		return err
	}
	s.publisher.PublishUser(ctx, n.UserID, eventType, payload)
	return nil
}

// Publish pushes an event without persisting anything.
func (s *NotificationService) Publish(ctx context.Context, userID uint, eventType string, payload interface{}) {
	s.publisher.PublishUser(ctx, userID, eventType, payload)
}

// AnnounceItem tells every active non-admin user about a newly published item:
// one stored notification each, then one broadcast event.
func (s *NotificationService) AnnounceItem(ctx context.Context, item models.VerifiedItem) error {
	ids, err := s.userRepo.ActiveNonAdminIDs(ctx)
	if err != nil {
		observability.NotificationFanout.WithLabelValues("error").Inc()
		return err
	}

	t := item.ItemType()
	relatedID := item.ItemID()
	message := fmt.Sprintf("New %s posted: %s", strings.ReplaceAll(string(t), "_", " "), item.DisplayName())

	batch := make([]models.Notification, 0, len(ids))
	for _, id := range ids {
		batch = append(batch, models.Notification{
			UserID:    id,
			Message:   message,
			Type:      t.NotificationType(),
			RelatedID: &relatedID,
		})
	}
	if err := s.notifRepo.CreateBatch(ctx, batch); err != nil {
		observability.NotificationFanout.WithLabelValues("error").Inc()
		return err
	}
	observability.NotificationFanout.WithLabelValues("ok").Inc()

	s.publisher.PublishBroadcast(ctx, t.NotificationType(), map[string]interface{}{
		"type":    t,
		"id":      relatedID,
		"name":    item.DisplayName(),
		"message": message,
	})
	return nil
}

// announceBestEffort runs AnnounceItem and only logs a failure.
func (s *NotificationService) announceBestEffort(ctx context.Context, item models.VerifiedItem) {
	logBestEffort(ctx, "notification fan-out", s.AnnounceItem(ctx, item),
		slog.String("type", string(item.ItemType())),
		slog.Uint64("item_id", uint64(item.ItemID())),
	)
}

// List returns the newest notifications of a user.
func (s *NotificationService) List(ctx context.Context, userID uint, onlyUnread bool) ([]models.Notification, error) {
	return s.notifRepo.ListForUser(ctx, userID, onlyUnread, notificationListLimit)
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	return s.notifRepo.UnreadCount(ctx, userID)
}

// MarkRead flags the caller's notifications as read; ids owned by others are skipped.
func (s *NotificationService) MarkRead(ctx context.Context, userID uint, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, models.NewValidationError("notification_ids must not be empty")
	}
	return s.notifRepo.MarkRead(ctx, userID, ids)
}
