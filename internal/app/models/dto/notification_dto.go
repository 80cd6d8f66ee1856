package dto

import (
	"time"

	"github.com/Anandhu5Uthaman/College-mini/internal/app/models"
)

// NotificationSender is the sender block of a notification.
type NotificationSender struct {
	ID         string `json:"_id"`
	Fullname   string `json:"fullname"`
	Username   string `json:"username"`
	ProfileImg string `json:"profile_img"`
}

// NotificationBlog is the blog block of a notification.
type NotificationBlog struct {
	ID    string `json:"_id"`
	Title string `json:"title"`
}

// NotificationResponse is one entry of GET /notifications.
type NotificationResponse struct {
	ID        string              `json:"_id"`
	Type      string              `json:"type"`
	Sender    *NotificationSender `json:"sender"`
	Blog      *NotificationBlog   `json:"blog,omitempty"`
	CommentID string              `json:"comment,omitempty"`
	Read      bool                `json:"read"`
	CreatedAt time.Time           `json:"createdAt"`
}

// NewNotificationResponse builds the projection of n.
func NewNotificationResponse(n *models.NotificationWithSender) *NotificationResponse {
	resp := &NotificationResponse{
		ID:   n.ID,
		Type: string(n.Type),
		Sender: &NotificationSender{
			ID:         n.SenderID,
			Fullname:   n.SenderFullname,
			Username:   n.SenderUsername,
			ProfileImg: n.SenderProfileImg,
		},
		CommentID: n.CommentID,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
	if n.BlogID != "" {
		resp.Blog = &NotificationBlog{ID: n.BlogID, Title: n.BlogTitle}
	}
	return resp
}

// NewNotificationsResponse is returned by GET /new-notifications.
type NewNotificationsResponse struct {
	HasNewNotifications bool  `json:"hasNewNotifications"`
	Count               int64 `json:"count"`
}
