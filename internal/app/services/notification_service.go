package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Anandhu5Uthaman/College-mini/internal/app/models"
	"github.com/Anandhu5Uthaman/College-mini/internal/app/models/dto"
	"github.com/Anandhu5Uthaman/College-mini/internal/app/repositories"
	"github.com/Anandhu5Uthaman/College-mini/internal/pkg/events"
	"github.com/Anandhu5Uthaman/College-mini/internal/pkg/helpers"
)

// NotificationService persists comment and like notifications and serves a
// user's inbox. It receives events as a Publisher.
type NotificationService struct {
	notifications repositories.NotificationRepository
	queryTimeout  time.Duration
	logger        zerolog.Logger
	now           func() time.Time
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(
	notifications repositories.NotificationRepository,
	queryTimeout time.Duration,
	logger zerolog.Logger,
) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		queryTimeout:  queryTimeout,
		logger:        logger,
		now:           time.Now,
	}
}

var _ events.Publisher = (*NotificationService)(nil)

// Publish stores a notification for comment.created and blog.liked events.
// Other events are ignored.
func (s *NotificationService) Publish(ctx context.Context, evt events.Event) error {
	var (
		kind      models.NotificationType
		senderKey string
	)
	switch evt.Type {
	case events.CommentCreated:
		kind, senderKey = models.NotificationComment, "commented_by"
	case events.BlogLiked:
		kind, senderKey = models.NotificationLike, "liked_by"
	default:
		return nil
	}

	payload, ok := evt.Payload.(map[string]string)
	if !ok || evt.Key == "" || payload[senderKey] == "" || payload["blog_id"] == "" {
		return fmt.Errorf("notification event %s has an incomplete payload", evt.ID)
	}

	n := &models.Notification{
		ID:          uuid.NewString(),
		Type:        kind,
		RecipientID: evt.Key,
		SenderID:    payload[senderKey],
		BlogID:      payload["blog_id"],
		CommentID:   payload["comment_id"],
		CreatedAt:   s.now().UTC(),
	}

	ctx, cancel := withStoreTimeout(ctx, s.queryTimeout)
	defer cancel()
	if err := s.notifications.Create(ctx, n); err != nil {
		return err
	}
	s.logger.Debug().Str("notification_id", n.ID).Str("recipient_id", n.RecipientID).Str("type", string(kind)).Msg("Notification stored")
	return nil
}

// Close implements events.Publisher.
func (s *NotificationService) Close() error { return nil }

// List returns one page of userID's notifications, newest first, and marks
// the unread ones on it as read. The response carries the state before the
// read mark.
func (s *NotificationService) List(ctx context.Context, userID string, page, size int) ([]*dto.NotificationResponse, error) {
	offset, limit := helpers.CalculateOffsetLimit(page, size)

	ctx, cancel := withStoreTimeout(ctx, s.queryTimeout)
	defer cancel()
	list, err := s.notifications.ListByRecipient(ctx, userID, offset, limit)
	if err != nil {
		return nil, err
	}

	out := make([]*dto.NotificationResponse, 0, len(list))
	var unread []string
	for _, n := range list {
		out = append(out, dto.NewNotificationResponse(n))
		if !n.Read {
			unread = append(unread, n.ID)
		}
	}

	if len(unread) > 0 {
		if err := s.notifications.MarkRead(ctx, userID, unread); err != nil {
			s.logger.Warn().Err(err).Str("user_id", userID).Msg("Failed to mark notifications read")
		}
	}
	return out, nil
}

// Unread reports whether userID has unread notifications.
func (s *NotificationService) Unread(ctx context.Context, userID string) (*dto.NewNotificationsResponse, error) {
	ctx, cancel := withStoreTimeout(ctx, s.queryTimeout)
	defer cancel()
	count, err := s.notifications.CountUnread(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &dto.NewNotificationsResponse{HasNewNotifications: count > 0, Count: count}, nil
}
