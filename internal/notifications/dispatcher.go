package notifications

import (
	"context"
	"encoding/json"
	"log/slog"

	"alumnet/internal/middleware"
)

// Event is the JSON frame written to notification sockets.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// Dispatcher delivers realtime events. With Redis available events go through
// pub/sub so every instance's hub sees them; otherwise they go straight to the
// local hub.
type Dispatcher struct {
	hub      *Hub
	notifier *Notifier
}

// NewDispatcher creates a dispatcher. notifier may be nil.
func NewDispatcher(hub *Hub, notifier *Notifier) *Dispatcher {
	return &Dispatcher{hub: hub, notifier: notifier}
}

// PublishUser sends an event to one user's sockets.
func (d *Dispatcher) PublishUser(ctx context.Context, userID uint, eventType string, payload interface{}) {
	msg, ok := encodeEvent(eventType, payload)
	if !ok {
		return
	}
	if d.notifier.Enabled() {
		err := d.notifier.PublishUser(ctx, userID, msg)
		if err == nil {
			return
		}
		middleware.RedisErrors.WithLabelValues("publish").Inc()
		middleware.Logger.WarnContext(ctx, "realtime publish failed, delivering locally",
			slog.String("event", eventType), slog.String("error", err.Error()))
	}
	if d.hub != nil {
		d.hub.Broadcast(userID, msg)
	}
}

// PublishBroadcast sends an event to every connected user.
func (d *Dispatcher) PublishBroadcast(ctx context.Context, eventType string, payload interface{}) {
	msg, ok := encodeEvent(eventType, payload)
	if !ok {
		return
	}
	if d.notifier.Enabled() {
		err := d.notifier.PublishBroadcast(ctx, msg)
		if err == nil {
			return
		}
		middleware.RedisErrors.WithLabelValues("publish").Inc()
		middleware.Logger.WarnContext(ctx, "realtime broadcast failed, delivering locally",
			slog.String("event", eventType), slog.String("error", err.Error()))
	}
	if d.hub != nil {
		d.hub.BroadcastAll(msg)
	}
}

func encodeEvent(eventType string, payload interface{}) (string, bool) {
	data, err := json.Marshal(Event{Type: eventType, Payload: payload})
	if err != nil {
		middleware.Logger.Error("failed to encode realtime event",
			slog.String("event", eventType), slog.String("error", err.Error()))
		return "", false
	}
	return string(data), true
}
