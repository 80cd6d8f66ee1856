package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Anandhu5Uthaman/College-mini/internal/app/models"
	"github.com/Anandhu5Uthaman/College-mini/internal/app/repositories"
)

type notificationDocument struct {
	ID        string    `bson:"_id"`
	Type      string    `bson:"type"`
	Recipient string    `bson:"recipient"`
	Sender    string    `bson:"sender"`
	Blog      string    `bson:"blog,omitempty"`
	Comment   string    `bson:"comment,omitempty"`
	Read      bool      `bson:"read"`
	CreatedAt time.Time `bson:"created_at"`
}

type notificationWithSenderDocument struct {
	Notification notificationDocument `bson:",inline"`
	SenderInfo   struct {
		Fullname   string `bson:"fullname"`
		Username   string `bson:"username"`
		ProfileImg string `bson:"profile_img"`
	} `bson:"sender_info"`
	BlogInfo struct {
		Title string `bson:"title"`
	} `bson:"blog_info"`
}

// NotificationRepository stores notifications in the "notifications" collection.
type NotificationRepository struct {
	collection *mongo.Collection
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *mongo.Database) *NotificationRepository {
	return &NotificationRepository{collection: db.Collection("notifications")}
}

var _ repositories.NotificationRepository = (*NotificationRepository)(nil)

// EnsureIndexes creates the index serving per-recipient listing and counts.
func (r *NotificationRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "recipient", Value: 1}, {Key: "read", Value: 1}, {Key: "created_at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create notification indexes: %w", err)
	}
	return nil
}

// Create inserts n.
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	doc := notificationDocument{
		ID:        n.ID,
		Type:      string(n.Type),
		Recipient: n.RecipientID,
		Sender:    n.SenderID,
		Blog:      n.BlogID,
		Comment:   n.CommentID,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// ListByRecipient returns a page of a user's notifications with sender and
// blog fields, newest first.
func (r *NotificationRepository) ListByRecipient(ctx context.Context, recipientID string, offset uint64, limit int) ([]*models.NotificationWithSender, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"recipient": recipientID}}},
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}}}},
		{{Key: "$skip", Value: int64(offset)}},
		{{Key: "$limit", Value: int64(limit)}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "users",
			"localField":   "sender",
			"foreignField": "_id",
			"as":           "sender_info",
		}}},
		{{Key: "$unwind", Value: "$sender_info"}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "blogs",
			"localField":   "blog",
			"foreignField": "_id",
			"as":           "blog_info",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$blog_info", "preserveNullAndEmptyArrays": true}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []notificationWithSenderDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode notifications: %w", err)
	}

	out := make([]*models.NotificationWithSender, 0, len(docs))
	for _, d := range docs {
		n := d.Notification
		out = append(out, &models.NotificationWithSender{
			Notification: models.Notification{
				ID:          n.ID,
				Type:        models.NotificationType(n.Type),
				RecipientID: n.Recipient,
				SenderID:    n.Sender,
				BlogID:      n.Blog,
				CommentID:   n.Comment,
				Read:        n.Read,
				CreatedAt:   n.CreatedAt,
			},
			SenderFullname:   d.SenderInfo.Fullname,
			SenderUsername:   d.SenderInfo.Username,
			SenderProfileImg: d.SenderInfo.ProfileImg,
			BlogTitle:        d.BlogInfo.Title,
		})
	}
	return out, nil
}

// CountUnread returns the number of unread notifications of recipientID.
func (r *NotificationRepository) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"recipient": recipientID, "read": false})
	if err != nil {
		return 0, fmt.Errorf("failed to count notifications: %w", err)
	}
	return n, nil
}

// MarkRead flags the given notifications of recipientID as read.
func (r *NotificationRepository) MarkRead(ctx context.Context, recipientID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.collection.UpdateMany(ctx,
		bson.M{"recipient": recipientID, "_id": bson.M{"$in": ids}},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}
