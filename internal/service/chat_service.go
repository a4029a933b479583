package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"alumnet/internal/models"
	"alumnet/internal/repository"
)

const (
	maxChatMessageLength = 4000
	defaultChatPageSize  = 50
	maxChatPageSize      = 200
)

// ChatService provides direct messages between connected users.
type ChatService struct {
	chatRepo      repository.ChatRepository
	connRepo      repository.ConnectionRepository
	userRepo      repository.UserRepository
	notifications *NotificationService
	now           Clock
}

// NewChatService returns a new ChatService.
func NewChatService(chatRepo repository.ChatRepository, connRepo repository.ConnectionRepository, userRepo repository.UserRepository, notifications *NotificationService) *ChatService {
	return &ChatService{
		chatRepo:      chatRepo,
		connRepo:      connRepo,
		userRepo:      userRepo,
		notifications: notifications,
		now:           systemClock,
	}
}

func (s *ChatService) SetClock(now Clock) {
	s.now = now
}

// ChatMessageEvent is the realtime payload of a new message.
type ChatMessageEvent struct {
	ThreadID       uint      `json:"thread_id"`
	MessageID      uint      `json:"message_id"`
	SenderID       uint      `json:"sender_id"`
	SenderUsername string    `json:"sender_username"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

// Send delivers a message to a connection, creating the thread on first use.
func (s *ChatService) Send(ctx context.Context, sender *models.User, username, content string) (*models.ChatMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, models.NewValidationError("Message content is required")
	}
	if utf8.RuneCountInString(content) > maxChatMessageLength {
		return nil, models.NewValidationError("Message is too long (max 4000 characters)")
	}

	other, err := s.otherParty(ctx, sender.ID, username)
	if err != nil {
		return nil, err
	}
	conn, err := s.connRepo.GetBetween(ctx, sender.ID, other.ID)
	if err != nil {
		return nil, err
	}
	if conn == nil || conn.Status != models.ConnectionStatusAccepted {
		return nil, models.NewForbiddenError("You can only message your connections")
	}

	thread, err := s.chatRepo.EnsureThread(ctx, models.NewUserPair(sender.ID, other.ID))
	if err != nil {
		return nil, err
	}
	msg := &models.ChatMessage{
		ThreadID:  thread.ID,
		SenderID:  sender.ID,
		Content:   content,
		CreatedAt: s.now(),
	}
	if err := s.chatRepo.AddMessage(ctx, msg); err != nil {
		return nil, err
	}

	s.notifications.Publish(ctx, other.ID, EventChatMessage, ChatMessageEvent{
		ThreadID:       thread.ID,
		MessageID:      msg.ID,
		SenderID:       sender.ID,
		SenderUsername: sender.Username,
		Content:        msg.Content,
		CreatedAt:      msg.CreatedAt,
	})
	return msg, nil
}

// Messages returns the thread with the named user, newest first.
func (s *ChatService) Messages(ctx context.Context, userID uint, username string, limit, offset int) ([]models.ChatMessage, error) {
	other, err := s.otherParty(ctx, userID, username)
	if err != nil {
		return nil, err
	}
	thread, err := s.chatRepo.FindThread(ctx, models.NewUserPair(userID, other.ID))
	if err != nil {
		return nil, err
	}
	if thread == nil {
		return []models.ChatMessage{}, nil
	}
	if limit <= 0 {
		limit = defaultChatPageSize
	}
	if limit > maxChatPageSize {
		limit = maxChatPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return s.chatRepo.ListMessages(ctx, thread.ID, limit, offset)
}

// Contacts lists the caller's threads, most recent activity first.
func (s *ChatService) Contacts(ctx context.Context, userID uint) ([]models.ChatContact, error) {
	return s.chatRepo.Contacts(ctx, userID)
}

func (s *ChatService) otherParty(ctx context.Context, userID uint, username string) (*models.User, error) {
	other, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if other == nil || !other.IsActive {
		return nil, models.NewNotFoundError("User", username)
	}
	if other.ID == userID {
		return nil, models.NewValidationError("You cannot message yourself")
	}
	return other, nil
}
