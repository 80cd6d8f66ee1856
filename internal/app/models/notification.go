package models

import "time"

// NotificationType is the activity a notification reports.
type NotificationType string

const (
	NotificationComment NotificationType = "comment"
	NotificationLike    NotificationType = "like"
)

// Notification tells a user about activity on one of their blogs.
type Notification struct {
	ID          string
	Type        NotificationType
	RecipientID string
	SenderID    string
	BlogID      string
	CommentID   string
	Read        bool
	CreatedAt   time.Time
}

// NotificationWithSender is a notification joined with the sender's public
// fields and the blog title.
type NotificationWithSender struct {
	Notification
	SenderFullname   string
	SenderUsername   string
	SenderProfileImg string
	BlogTitle        string
}
