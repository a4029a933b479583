package notifications

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier_NilRedisIsNoop(t *testing.T) {
	n := NewNotifier(nil)
	assert.False(t, n.Enabled())
	assert.NoError(t, n.PublishUser(context.Background(), 1, "test payload"))
	assert.NoError(t, n.PublishBroadcast(context.Background(), "test payload"))
}

func TestUserChannel(t *testing.T) {
	t.Parallel()
	tests := []struct {
		userID   uint
		expected string
	}{
		{1, "notifications:user:1"},
		{100, "notifications:user:100"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, UserChannel(tt.userID))
		id, ok := parseUserChannel(tt.expected)
		assert.True(t, ok)
		assert.Equal(t, tt.userID, id)
	}

	for _, bad := range []string{"notifications:user:", "notifications:user:abc", "notifications:user:0", "chat:1"} {
		_, ok := parseUserChannel(bad)
		assert.False(t, ok, bad)
	}
}

func TestNotifier_SubscriberStopsOnCancel(t *testing.T) {
	rdb := newTestRedis(t)
	n := NewNotifier(rdb)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var received int32
	payloads := make(chan string, 4)
	require.NoError(t, n.StartPatternSubscriber(ctx, func(_ string, payload string) {
		atomic.AddInt32(&received, 1)
		payloads <- payload
	}))

	require.NoError(t, n.PublishUser(context.Background(), 9, "before-cancel"))
	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&received) >= 1
	}, time.Second, 10*time.Millisecond)
	<-payloads

	cancel()
	time.Sleep(20 * time.Millisecond)

	_ = n.PublishUser(context.Background(), 9, "after-cancel")
	assert.Never(t, func() bool {
		select {
		case payload := <-payloads:
			return payload == "after-cancel"
		default:
			return false
		}
	}, 200*time.Millisecond, 10*time.Millisecond)
}

func TestDispatcher_LocalDeliveryWithoutRedis(t *testing.T) {
	hub := NewHub()
	defer func() { _ = hub.Shutdown(context.Background()) }()
	client, err := hub.Register(5, nil)
	require.NoError(t, err)

	d := NewDispatcher(hub, NewNotifier(nil))
	d.PublishUser(context.Background(), 5, "connection_accepted", map[string]any{"user_id": 9})

	var ev struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(<-client.Send, &ev))
	assert.Equal(t, "connection_accepted", ev.Type)
	assert.Equal(t, float64(9), ev.Payload["user_id"])

	d.PublishUser(context.Background(), 6, "ignored", nil)
	assert.Empty(t, client.Send)
}

func TestDispatcher_RedisFanIn(t *testing.T) {
	rdb := newTestRedis(t)
	hub := NewHub(rdb)
	defer func() { _ = hub.Shutdown(context.Background()) }()

	notifier := NewNotifier(rdb)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, hub.StartWiring(ctx, notifier))

	alice, err := hub.Register(1, nil)
	require.NoError(t, err)
	bob, err := hub.Register(2, nil)
	require.NoError(t, err)

	d := NewDispatcher(hub, notifier)
	d.PublishBroadcast(ctx, "new_hackathon", map[string]any{"name": "AI Sprint"})

	for _, c := range []*Client{alice, bob} {
		select {
		case msg := <-c.Send:
			assert.Contains(t, string(msg), `"type":"new_hackathon"`)
		case <-time.After(time.Second):
			t.Fatalf("user %d did not receive broadcast", c.UserID)
		}
	}

	d.PublishUser(ctx, 2, "chat_message", map[string]any{"content": "hi"})
	select {
	case msg := <-bob.Send:
		assert.Contains(t, string(msg), "chat_message")
	case <-time.After(time.Second):
		t.Fatal("bob did not receive chat_message")
	}
	assert.Empty(t, alice.Send)
}

func TestClient_TrySendDropsWhenFull(t *testing.T) {
	hub := NewHub()
	defer func() { _ = hub.Shutdown(context.Background()) }()
	c, err := hub.Register(1, nil)
	require.NoError(t, err)

	for i := 0; i < sendBuffer+5; i++ {
		c.TrySend([]byte("x"))
	}
	assert.Len(t, c.Send, sendBuffer)
}
