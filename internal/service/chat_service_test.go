package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"alumnet/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChatFixture(status models.ConnectionStatus) (*ChatService, *chatRepoStub, *recordingPublisher) {
	users := usersByName(alice, bob, carol)
	chats := newChatRepoStub()
	pub := &recordingPublisher{}
	conns := &connRepoStub{
		getBetweenFn: func(_ context.Context, a, b uint) (*models.Connection, error) {
			if status == "" {
				return nil, nil
			}
			return &models.Connection{RequesterID: a, ReceiverID: b, Status: status}, nil
		},
	}
	svc := NewChatService(chats, conns, users, NewNotificationService(&notifRepoStub{}, users, pub))
	svc.SetClock(fixedClock(time.Date(2025, 3, 2, 8, 0, 0, 0, time.UTC)))
	return svc, chats, pub
}

func TestChatService_SendRequiresConnection(t *testing.T) {
	t.Parallel()
	for _, status := range []models.ConnectionStatus{"", models.ConnectionStatusPending, models.ConnectionStatusIgnored} {
		svc, chats, _ := newChatFixture(status)
		_, err := svc.Send(context.Background(), alice, "bob", "hi")
		assertCode(t, err, models.CodeForbidden)
		assert.Empty(t, chats.messages)
	}
}

func TestChatService_SendAndRead(t *testing.T) {
	t.Parallel()
	svc, chats, pub := newChatFixture(models.ConnectionStatusAccepted)
	ctx := context.Background()

	msg, err := svc.Send(ctx, alice, "bob", "  welcome aboard  ")
	require.NoError(t, err)
	assert.Equal(t, "welcome aboard", msg.Content)
	_, err = svc.Send(ctx, bob, "alice", "thanks!")
	require.NoError(t, err)
	assert.Len(t, chats.threads, 1)

	require.Len(t, pub.events, 2)
	assert.Equal(t, uint(2), pub.events[0].UserID)
	assert.Equal(t, EventChatMessage, pub.events[0].Type)
	ev, ok := pub.events[0].Payload.(ChatMessageEvent)
	require.True(t, ok)
	assert.Equal(t, "alice", ev.SenderUsername)

	msgs, err := svc.Messages(ctx, 2, "alice", 0, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "thanks!", msgs[0].Content)
}

func TestChatService_Validation(t *testing.T) {
	t.Parallel()
	svc, _, _ := newChatFixture(models.ConnectionStatusAccepted)
	ctx := context.Background()

	_, err := svc.Send(ctx, alice, "bob", " ")
	assertCode(t, err, models.CodeValidation)
	_, err = svc.Send(ctx, alice, "bob", strings.Repeat("x", 4001))
	assertCode(t, err, models.CodeValidation)
	_, err = svc.Send(ctx, alice, "alice", "me")
	assertCode(t, err, models.CodeValidation)
	_, err = svc.Send(ctx, alice, "carol", "inactive")
	assertCode(t, err, models.CodeNotFound)

	msgs, err := svc.Messages(ctx, 1, "bob", 10, 0)
	require.NoError(t, err)
	assert.NotNil(t, msgs)
	assert.Empty(t, msgs)
}
