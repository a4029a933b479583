package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"alumnet/internal/cache"
	"alumnet/internal/models"
	"alumnet/internal/observability"
	"alumnet/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

const defaultSuggestionLimit = 10

// ConnectionService implements the connection request state machine:
// none -> pending -> accepted | ignored, and accepted -> none on removal.
type ConnectionService struct {
	connRepo      repository.ConnectionRepository
	userRepo      repository.UserRepository
	notifications *NotificationService
	reward        int
	now           Clock
}

// NewConnectionService returns a new ConnectionService awarding reward gems to
// both users when a request is accepted.
func NewConnectionService(connRepo repository.ConnectionRepository, userRepo repository.UserRepository, notifications *NotificationService, reward int) *ConnectionService {
	return &ConnectionService{
		connRepo:      connRepo,
		userRepo:      userRepo,
		notifications: notifications,
		reward:        reward,
		now:           systemClock,
	}
}

// SetClock replaces the time source.
func (s *ConnectionService) SetClock(now Clock) {
	s.now = now
}

// SendRequest creates a pending request from requesterID to the named user.
func (s *ConnectionService) SendRequest(ctx context.Context, requesterID uint, targetUsername string) (*models.Connection, error) {
	target, err := s.activeUser(ctx, targetUsername)
	if err != nil {
		return nil, err
	}
	if target.ID == requesterID {
		return nil, models.NewSelfRequestError()
	}

	existing, err := s.connRepo.GetBetween(ctx, requesterID, target.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, classifyExisting(existing, requesterID)
	}

	conn := &models.Connection{
		RequesterID: requesterID,
		ReceiverID:  target.ID,
		Status:      models.ConnectionStatusPending,
	}
	if err := s.connRepo.Create(ctx, conn); err != nil {
		if !errors.Is(err, repository.ErrPairExists) {
			return nil, err
		}
		// lost a race with a concurrent request for the same pair
		winner, getErr := s.connRepo.GetBetween(ctx, requesterID, target.ID)
		if getErr != nil {
			return nil, getErr
		}
		if winner == nil {
			return nil, models.NewInternalError(err)
		}
		return nil, classifyExisting(winner, requesterID)
	}
	observability.ConnectionTransitions.WithLabelValues(observability.TransitionRequested).Inc()

	requesterName := s.usernameOf(ctx, requesterID)
	logBestEffort(ctx, "connection request notification", s.notifications.Notify(ctx, &models.Notification{
		UserID:    target.ID,
		Message:   fmt.Sprintf("%s sent you a connection request", requesterName),
		Type:      models.NotificationConnectionRequest,
		RelatedID: &requesterID,
	}, EventConnectionRequestReceived, map[string]interface{}{
		"requester_id":       requesterID,
		"requester_username": requesterName,
	}), slog.Uint64("target_id", uint64(target.ID)))

	return conn, nil
}

// classifyExisting maps the existing record for a pair to the error a new
// request from requesterID gets.
func classifyExisting(existing *models.Connection, requesterID uint) error {
	switch existing.Status {
	case models.ConnectionStatusAccepted:
		return models.NewAlreadyConnectedError()
	case models.ConnectionStatusPending:
		if existing.RequesterID == requesterID {
			return models.NewDuplicateRequestError()
		}
		return models.NewReciprocalPendingError()
	default:
		return models.NewRequestClosedError()
	}
}

// ListPending returns inbound pending requests, newest first.
func (s *ConnectionService) ListPending(ctx context.Context, userID uint) ([]models.PendingRequest, error) {
	return s.connRepo.ListPendingFor(ctx, userID)
}

// ListSent returns outbound pending requests, newest first.
func (s *ConnectionService) ListSent(ctx context.Context, userID uint) ([]models.SentRequest, error) {
	return s.connRepo.ListSentBy(ctx, userID)
}

// Accept accepts the pending request requesterID sent to receiverID and
// awards the gem reward to both users in the same transaction.
func (s *ConnectionService) Accept(ctx context.Context, receiverID, requesterID uint) (conn *models.Connection, err error) {
	ctx, span := observability.StartSpan(ctx, "connection.accept",
		attribute.Int64("receiver_id", int64(receiverID)),
		attribute.Int64("requester_id", int64(requesterID)),
	)
	defer func() { observability.EndSpan(span, err) }()

	conn, err = s.connRepo.Accept(ctx, receiverID, requesterID, s.reward, s.now())
	if err != nil {
		return nil, err
	}
	observability.ConnectionTransitions.WithLabelValues(observability.TransitionAccepted).Inc()

	receiverName := s.usernameOf(ctx, receiverID)
	requesterName := s.usernameOf(ctx, requesterID)
	cache.InvalidateUser(ctx, receiverID, receiverName)
	cache.InvalidateUser(ctx, requesterID, requesterName)

	logBestEffort(ctx, "connection accepted notification", s.notifications.Notify(ctx, &models.Notification{
		UserID:    requesterID,
		Message:   fmt.Sprintf("%s accepted your connection request", receiverName),
		Type:      models.NotificationConnectionAccepted,
		RelatedID: &receiverID,
	}, EventConnectionAccepted, map[string]interface{}{
		"user_id":  receiverID,
		"username": receiverName,
		"gems":     s.reward,
	}), slog.Uint64("requester_id", uint64(requesterID)))

	return conn, nil
}

// Ignore declines the pending request. Ignored is terminal for the pair.
func (s *ConnectionService) Ignore(ctx context.Context, receiverID, requesterID uint) (*models.Connection, error) {
	conn, err := s.connRepo.Ignore(ctx, receiverID, requesterID, s.now())
	if err != nil {
		return nil, err
	}
	observability.ConnectionTransitions.WithLabelValues(observability.TransitionIgnored).Inc()
	return conn, nil
}

// Remove deletes the accepted connection between userID and the named user.
func (s *ConnectionService) Remove(ctx context.Context, userID uint, otherUsername string) error {
	other, err := s.userRepo.GetByUsername(ctx, otherUsername)
	if err != nil {
		return err
	}
	if other == nil {
		return models.NewNotFoundError("User", otherUsername)
	}
	if _, err := s.connRepo.DeleteAccepted(ctx, userID, other.ID); err != nil {
		return err
	}
	observability.ConnectionTransitions.WithLabelValues(observability.TransitionRemoved).Inc()

	s.notifications.Publish(ctx, other.ID, EventConnectionRemoved, map[string]interface{}{"user_id": userID})
	s.notifications.Publish(ctx, userID, EventConnectionRemoved, map[string]interface{}{"user_id": other.ID})
	return nil
}

// ListConnections returns the accepted connections of the named user.
func (s *ConnectionService) ListConnections(ctx context.Context, username string) ([]models.ConnectionUser, error) {
	user, err := s.activeUser(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.connRepo.ListConnections(ctx, user.ID)
}

// ListSuggestions returns users unrelated to the named user. Only the user
// themself or an admin may ask.
func (s *ConnectionService) ListSuggestions(ctx context.Context, caller *models.User, username string, limit int) ([]models.ConnectionUser, error) {
	user, err := s.activeUser(ctx, username)
	if err != nil {
		return nil, err
	}
	if user.ID != caller.ID && !caller.IsAdmin {
		return nil, models.NewForbiddenError("You can only view your own suggestions")
	}
	if limit <= 0 {
		limit = defaultSuggestionLimit
	}
	return s.connRepo.ListSuggestions(ctx, user.ID, limit)
}

// Status reports the relationship between userID and the named user from userID's side.
func (s *ConnectionService) Status(ctx context.Context, userID uint, otherUsername string) (string, error) {
	other, err := s.activeUser(ctx, otherUsername)
	if err != nil {
		return "", err
	}
	if other.ID == userID {
		return models.RelationshipNone, nil
	}
	conn, err := s.connRepo.GetBetween(ctx, userID, other.ID)
	if err != nil {
		return "", err
	}
	if conn == nil {
		return models.RelationshipNone, nil
	}
	switch conn.Status {
	case models.ConnectionStatusAccepted:
		return models.RelationshipConnected, nil
	case models.ConnectionStatusIgnored:
		return models.RelationshipIgnored, nil
	}
	if conn.RequesterID == userID {
		return models.RelationshipPendingSent, nil
	}
	return models.RelationshipPendingReceived, nil
}

func (s *ConnectionService) activeUser(ctx context.Context, username string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, models.NewNotFoundError("User", username)
	}
	return user, nil
}

func (s *ConnectionService) usernameOf(ctx context.Context, id uint) string {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return "Someone"
	}
	return user.Username
}
