package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/Anandhu5Uthaman/College-mini/internal/app/models"
	"github.com/Anandhu5Uthaman/College-mini/internal/app/repositories"
)

// NotificationRepository handles notification database operations
type NotificationRepository struct {
	db *sql.DB
	sb squirrel.StatementBuilderType
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{db: db, sb: newBuilder()}
}

var _ repositories.NotificationRepository = (*NotificationRepository)(nil)

// Create inserts n.
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	query, args, err := r.sb.Insert("notifications").
		Columns("id", "type", "recipient_id", "sender_id", "blog_id", "comment_id", "read", "created_at").
		Values(n.ID, string(n.Type), n.RecipientID, n.SenderID, nullable(n.BlogID), nullable(n.CommentID), n.Read, n.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create notification query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("error creating notification: %w", err)
	}
	return nil
}

// ListByRecipient returns a page of a user's notifications with sender and
// blog fields, newest first.
func (r *NotificationRepository) ListByRecipient(ctx context.Context, recipientID string, offset uint64, limit int) ([]*models.NotificationWithSender, error) {
	query, args, err := r.sb.Select(
		"n.id", "n.type", "n.recipient_id", "n.sender_id", "n.blog_id", "n.comment_id", "n.read", "n.created_at",
		"u.fullname", "u.username", "u.profile_img", "b.title",
	).
		From("notifications n").
		Join("users u ON u.id = n.sender_id").
		LeftJoin("blogs b ON b.id = n.blog_id").
		Where(squirrel.Eq{"n.recipient_id": recipientID}).
		OrderBy("n.created_at DESC").
		Limit(uint64(limit)).
		Offset(offset).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list notifications query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		if isMissing(err) {
			return []*models.NotificationWithSender{}, nil
		}
		return nil, fmt.Errorf("error querying notifications: %w", err)
	}
	defer rows.Close()

	out := []*models.NotificationWithSender{}
	for rows.Next() {
		var (
			n                 models.NotificationWithSender
			kind              string
			blogID, commentID sql.NullString
			blogTitle         sql.NullString
		)
		if err := rows.Scan(
			&n.ID, &kind, &n.RecipientID, &n.SenderID, &blogID, &commentID, &n.Read, &n.CreatedAt,
			&n.SenderFullname, &n.SenderUsername, &n.SenderProfileImg, &blogTitle,
		); err != nil {
			return nil, fmt.Errorf("error scanning notification row: %w", err)
		}
		n.Type = models.NotificationType(kind)
		n.BlogID = blogID.String
		n.CommentID = commentID.String
		n.BlogTitle = blogTitle.String
		out = append(out, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notification rows: %w", err)
	}
	return out, nil
}

// CountUnread returns the number of unread notifications of recipientID.
func (r *NotificationRepository) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	query, args, err := r.sb.Select("COUNT(*)").
		From("notifications").
		Where(squirrel.Eq{"recipient_id": recipientID, "read": false}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count notifications query: %w", err)
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("error counting notifications: %w", err)
	}
	return total, nil
}

// MarkRead flags the given notifications of recipientID as read.
func (r *NotificationRepository) MarkRead(ctx context.Context, recipientID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := r.sb.Update("notifications").
		Set("read", true).
		Where(squirrel.Eq{"recipient_id": recipientID, "id": ids}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build mark read query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("error marking notifications read: %w", err)
	}
	return nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
