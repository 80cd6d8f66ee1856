package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Anandhu5Uthaman/College-mini/internal/app/models"
	"github.com/Anandhu5Uthaman/College-mini/internal/app/repositories"
	"github.com/Anandhu5Uthaman/College-mini/internal/pkg/apperrors"
	"github.com/Anandhu5Uthaman/College-mini/internal/pkg/logger"
)

type commentDocument struct {
	ID        string    `bson:"_id"`
	BlogID    string    `bson:"blog_id"`
	Author    string    `bson:"commented_by"`
	Content   string    `bson:"comment"`
	Edited    bool      `bson:"edited"`
	CreatedAt time.Time `bson:"commented_at"`
}

type commentWithAuthorDocument struct {
	Comment    commentDocument `bson:",inline"`
	AuthorInfo struct {
		Fullname   string `bson:"fullname"`
		Username   string `bson:"username"`
		ProfileImg string `bson:"profile_img"`
	} `bson:"author_info"`
}

func (d commentDocument) model() *models.Comment {
	return &models.Comment{
		ID:        d.ID,
		BlogID:    d.BlogID,
		AuthorID:  d.Author,
		Content:   d.Content,
		Edited:    d.Edited,
		CreatedAt: d.CreatedAt,
	}
}

// CommentRepository stores comments in the "comments" collection and keeps
// the counter on the parent blog document.
type CommentRepository struct {
	comments *mongo.Collection
	blogs    *mongo.Collection
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *mongo.Database) *CommentRepository {
	return &CommentRepository{
		comments: db.Collection("comments"),
		blogs:    db.Collection("blogs"),
	}
}

var _ repositories.CommentRepository = (*CommentRepository)(nil)

// EnsureIndexes creates the index serving per-blog listing.
func (r *CommentRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.comments.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "blog_id", Value: 1}, {Key: "commented_at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create comment indexes: %w", err)
	}
	return nil
}

// Create bumps the blog's comment counter and inserts comment. When the insert
// fails the counter is rolled back.
func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	res, err := r.blogs.UpdateOne(ctx,
		bson.M{"_id": comment.BlogID, "draft": false},
		bson.M{"$inc": bson.M{"activity.total_comments": 1}},
	)
	if err != nil {
		return fmt.Errorf("failed to update comment counter: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrBlogNotFound
	}

	doc := commentDocument{
		ID:        comment.ID,
		BlogID:    comment.BlogID,
		Author:    comment.AuthorID,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
	}
	if _, err := r.comments.InsertOne(ctx, doc); err != nil {
		r.decrement(ctx, comment.BlogID)
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

// FindByID retrieves a comment by ID
func (r *CommentRepository) FindByID(ctx context.Context, id string) (*models.Comment, error) {
	var doc commentDocument
	if err := r.comments.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrCommentNotFound
		}
		return nil, fmt.Errorf("failed to find comment: %w", err)
	}
	return doc.model(), nil
}

// UpdateContent replaces a comment's text and marks it edited.
func (r *CommentRepository) UpdateContent(ctx context.Context, id, content string) (*models.Comment, error) {
	var doc commentDocument
	err := r.comments.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"comment": content, "edited": true}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrCommentNotFound
		}
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}
	return doc.model(), nil
}

// ListByBlog returns a page of a blog's comments with author fields, newest first.
func (r *CommentRepository) ListByBlog(ctx context.Context, blogID string, offset uint64, limit int) ([]*models.CommentWithAuthor, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"blog_id": blogID}}},
		{{Key: "$sort", Value: bson.D{{Key: "commented_at", Value: -1}}}},
		{{Key: "$skip", Value: int64(offset)}},
		{{Key: "$limit", Value: int64(limit)}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "users",
			"localField":   "commented_by",
			"foreignField": "_id",
			"as":           "author_info",
		}}},
		{{Key: "$unwind", Value: "$author_info"}},
	}

	cursor, err := r.comments.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to query comments: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []commentWithAuthorDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode comments: %w", err)
	}

	out := make([]*models.CommentWithAuthor, 0, len(docs))
	for _, d := range docs {
		out = append(out, &models.CommentWithAuthor{
			Comment:          *d.Comment.model(),
			AuthorFullname:   d.AuthorInfo.Fullname,
			AuthorUsername:   d.AuthorInfo.Username,
			AuthorProfileImg: d.AuthorInfo.ProfileImg,
		})
	}
	return out, nil
}

// Delete removes comment and decrements the blog's comment counter.
func (r *CommentRepository) Delete(ctx context.Context, comment *models.Comment) error {
	res, err := r.comments.DeleteOne(ctx, bson.M{"_id": comment.ID})
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	if res.DeletedCount == 0 {
		return apperrors.ErrCommentNotFound
	}
	r.decrement(ctx, comment.BlogID)
	return nil
}

func (r *CommentRepository) decrement(ctx context.Context, blogID string) {
	_, err := r.blogs.UpdateOne(ctx,
		bson.M{"_id": blogID, "activity.total_comments": bson.M{"$gt": 0}},
		bson.M{"$inc": bson.M{"activity.total_comments": -1}},
	)
	if err != nil {
		logger.Warn().Err(err).Str("blog_id", blogID).Msg("Failed to decrement comment counter")
	}
}
