package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/yukikurage/agency-hub/internal/models"
	"github.com/yukikurage/agency-hub/internal/policy"
	"github.com/yukikurage/agency-hub/internal/realtime"
	"github.com/yukikurage/agency-hub/internal/repository"
)

var (
	ErrChatPeerNotFound  = errors.New("chat user not found")
	ErrMessageRequired   = errors.New("receiver and content are required")
	ErrCannotMessageSelf = errors.New("you cannot send a message to yourself")
)

// ChatService handles direct messages between users of one agency.
type ChatService struct {
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
	emitter     realtime.Emitter
}

// NewChatService creates a new ChatService. emitter may be nil.
func NewChatService(messageRepo repository.MessageRepository, userRepo repository.UserRepository, emitter realtime.Emitter) *ChatService {
	return &ChatService{
		messageRepo: messageRepo,
		userRepo:    userRepo,
		emitter:     emitter,
	}
}

// ChatUser is a contact entry with the number of messages it sent that are still unread.
type ChatUser struct {
	ID          uint64      `json:"id"`
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	Role        models.Role `json:"role"`
	UnreadCount int64       `json:"unreadCount"`
}

// ChatUsers lists the contacts the principal's role may talk to.
func (s *ChatService) ChatUsers(p policy.Principal) ([]ChatUser, error) {
	agencyID, err := requireAgency(p)
	if err != nil {
		return nil, err
	}
	scope, err := scopeFor(p)
	if err != nil {
		return nil, err
	}

	users, err := s.userRepo.ListByRoles(agencyID, p.UserID, scope.ChatPeers())
	if err != nil {
		return nil, fmt.Errorf("failed to list chat users: %w", err)
	}
	unread, err := s.messageRepo.UnreadCounts(p.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to count unread messages: %w", err)
	}

	contacts := make([]ChatUser, 0, len(users))
	for _, u := range users {
		contacts = append(contacts, ChatUser{
			ID:          u.ID,
			Name:        u.Name,
			Email:       u.Email,
			Role:        u.Role,
			UnreadCount: unread[u.ID],
		})
	}
	return contacts, nil
}

// Conversation returns the messages exchanged with peerID, oldest first.
func (s *ChatService) Conversation(p policy.Principal, peerID uint64) ([]models.Message, error) {
	if _, err := s.peer(p, peerID); err != nil {
		return nil, err
	}
	messages, err := s.messageRepo.Conversation(p.UserID, peerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	return messages, nil
}

// SendMessageInput is the payload of both POST /chat and the send_message socket event.
type SendMessageInput struct {
	ReceiverID uint64 `json:"receiverId"`
	Content    string `json:"content"`
}

// Send persists the message and pushes receive_message to the receiver's room only.
func (s *ChatService) Send(ctx context.Context, p policy.Principal, input SendMessageInput) (*models.Message, error) {
	content := strings.TrimSpace(input.Content)
	if input.ReceiverID == 0 || content == "" {
		return nil, ErrMessageRequired
	}
	if input.ReceiverID == p.UserID {
		return nil, ErrCannotMessageSelf
	}
	if _, err := s.peer(p, input.ReceiverID); err != nil {
		return nil, err
	}

	message := &models.Message{
		SenderID:   p.UserID,
		ReceiverID: input.ReceiverID,
		Content:    content,
		AgencyID:   p.AgencyID,
	}
	if err := s.messageRepo.Create(message); err != nil {
		return nil, fmt.Errorf("failed to save message: %w", err)
	}

	if s.emitter != nil {
		if err := s.emitter.Emit(ctx, realtime.UserRoom(message.ReceiverID), realtime.EventReceiveMessage, message); err != nil {
			log.Warn().Err(err).Uint64("message_id", message.ID).Msg("Error emitting chat message")
		}
	}
	return message, nil
}

// MarkRead flags every unread message from senderID to the principal as read.
func (s *ChatService) MarkRead(p policy.Principal, senderID uint64) (int64, error) {
	n, err := s.messageRepo.MarkRead(senderID, p.UserID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark messages read: %w", err)
	}
	return n, nil
}

func (s *ChatService) peer(p policy.Principal, id uint64) (*models.User, error) {
	agencyID, err := requireAgency(p)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindInAgency(id, agencyID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrChatPeerNotFound
		}
		return nil, fmt.Errorf("failed to find chat user: %w", err)
	}
	return user, nil
}
