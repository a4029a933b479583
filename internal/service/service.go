// Package service holds the business rules between the HTTP handlers and the repositories.
package service

import (
	"context"
	"log/slog"
	"time"

	"alumnet/internal/middleware"
)

// Realtime event types pushed to notification sockets.
const (
	EventConnectionRequestReceived = "connection_request_received"
	EventConnectionAccepted        = "connection_accepted"
	EventConnectionRemoved         = "connection_removed"
	EventChatMessage               = "chat_message"
)

// RealtimePublisher pushes events to connected clients. Delivery is best-effort.
type RealtimePublisher interface {
	PublishUser(ctx context.Context, userID uint, eventType string, payload interface{})
	PublishBroadcast(ctx context.Context, eventType string, payload interface{})
}

type nopPublisher struct{}

func (nopPublisher) PublishUser(context.Context, uint, string, interface{}) {}
func (nopPublisher) PublishBroadcast(context.Context, string, interface{}) {}

// Clock returns the current time.
type Clock func() time.Time

func systemClock() time.Time { return time.Now().UTC() }

// logBestEffort records a failed side effect that must not fail the request.
func logBestEffort(ctx context.Context, what string, err error, attrs ...any) {
	if err == nil {
		return
	}
	attrs = append(attrs, slog.String("error", err.Error()))
	middleware.Logger.WarnContext(ctx, what+" failed", attrs...)
}
