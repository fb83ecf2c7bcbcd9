package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/yukikurage/agency-hub/internal/models"
	"github.com/yukikurage/agency-hub/internal/realtime"
	"github.com/yukikurage/agency-hub/internal/repository"
	"github.com/yukikurage/agency-hub/internal/utils"
	"gorm.io/gorm"
)

var ErrNotificationNotFound = errors.New("notification not found")

// NotificationService persists notifications and pushes them to live connections.
type NotificationService struct {
	repo    repository.NotificationRepository
	emitter realtime.Emitter
}

// NewNotificationService creates a new NotificationService. emitter may be nil.
func NewNotificationService(repo repository.NotificationRepository, emitter realtime.Emitter) *NotificationService {
	return &NotificationService{
		repo:    repo,
		emitter: emitter,
	}
}

// NotifyInput describes one notification addressed to a single recipient.
type NotifyInput struct {
	RecipientID uint64
	SenderID    *uint64
	Type        models.NotificationType
	Title       string
	Message     string
	Entity      models.RelatedEntity
}

// Notify stores the notification and emits it to the recipient's room.
// Failures are logged and never returned to the caller.
func (s *NotificationService) Notify(ctx context.Context, input NotifyInput) *models.Notification {
	notification := &models.Notification{
		RecipientID:   input.RecipientID,
		SenderID:      input.SenderID,
		Type:          input.Type,
		Title:         input.Title,
		Message:       input.Message,
		RelatedEntity: input.Entity,
	}

	if err := s.repo.Create(notification); err != nil {
		log.Error().Err(err).
			Uint64("recipient_id", input.RecipientID).
			Str("type", string(input.Type)).
			Msg("Error creating notification")
		return nil
	}

	if s.emitter != nil {
		if err := s.emitter.Emit(ctx, realtime.UserRoom(input.RecipientID), realtime.EventNotification, notification); err != nil {
			log.Warn().Err(err).Uint64("notification_id", notification.ID).Msg("Error emitting notification")
		}
	}

	return notification
}

// BroadcastInput is an unpersisted notification pushed to a whole room.
type BroadcastInput struct {
	SenderID *uint64                 `json:"sender"`
	Type     models.NotificationType `json:"type"`
	Title    string                  `json:"title"`
	Message  string                  `json:"message"`
	Entity   models.RelatedEntity    `json:"relatedEntity"`
}

type broadcastPayload struct {
	BroadcastInput
	CreatedAt time.Time `json:"createdAt"`
}

// Broadcast emits an ephemeral notification to every member of room.
func (s *NotificationService) Broadcast(ctx context.Context, room string, input BroadcastInput) {
	if s.emitter == nil {
		return
	}
	payload := broadcastPayload{BroadcastInput: input, CreatedAt: time.Now().UTC()}
	if err := s.emitter.Emit(ctx, room, realtime.EventNotification, payload); err != nil {
		log.Warn().Err(err).Str("room", room).Msg("Error broadcasting notification")
	}
}

// List returns one page of the recipient's inbox, newest first.
func (s *NotificationService) List(recipientID uint64, params utils.PaginationParams) ([]models.Notification, int64, error) {
	notifications, total, err := s.repo.ListByRecipient(recipientID, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, total, nil
}

// MarkRead flags one of the recipient's notifications as read.
func (s *NotificationService) MarkRead(id, recipientID uint64) (*models.Notification, error) {
	notification, err := s.repo.MarkRead(id, recipientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, fmt.Errorf("failed to mark notification: %w", err)
	}
	return notification, nil
}

// MarkAllRead flags every notification of the recipient as read.
func (s *NotificationService) MarkAllRead(recipientID uint64) (int64, error) {
	n, err := s.repo.MarkAllRead(recipientID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications: %w", err)
	}
	return n, nil
}
