package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Anandhu5Uthaman/College-mini/internal/app/models"
	"github.com/Anandhu5Uthaman/College-mini/internal/app/repositories"
	"github.com/Anandhu5Uthaman/College-mini/internal/pkg/apperrors"
)

type activityDocument struct {
	TotalLikes    int64 `bson:"total_likes"`
	TotalComments int64 `bson:"total_comments"`
	TotalReads    int64 `bson:"total_reads"`
}

type blogDocument struct {
	ID        string           `bson:"_id"`
	Title     string           `bson:"title"`
	Des       string           `bson:"des"`
	Banner    string           `bson:"banner"`
	Content   string           `bson:"content"`
	Tags      []string         `bson:"tags"`
	Author    string           `bson:"author"`
	Draft     bool             `bson:"draft"`
	Likes     []string         `bson:"likes"`
	Activity  activityDocument `bson:"activity"`
	CreatedAt time.Time        `bson:"created_at"`
	UpdatedAt time.Time        `bson:"updated_at"`
}

func newBlogDocument(b *models.Blog) blogDocument {
	tags := b.Tags
	if tags == nil {
		tags = []string{}
	}
	return blogDocument{
		ID:      b.ID,
		Title:   b.Title,
		Des:     b.Des,
		Banner:  b.Banner,
		Content: b.Content,
		Tags:    tags,
		Author:  b.AuthorID,
		Draft:   b.Draft,
		Likes:   []string{},
		Activity: activityDocument{
			TotalLikes:    b.Activity.TotalLikes,
			TotalComments: b.Activity.TotalComments,
			TotalReads:    b.Activity.TotalReads,
		},
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

func (d blogDocument) model() *models.Blog {
	return &models.Blog{
		ID:       d.ID,
		Title:    d.Title,
		Des:      d.Des,
		Banner:   d.Banner,
		Content:  d.Content,
		Tags:     d.Tags,
		AuthorID: d.Author,
		Draft:    d.Draft,
		Activity: models.BlogActivity{
			TotalLikes:    d.Activity.TotalLikes,
			TotalComments: d.Activity.TotalComments,
			TotalReads:    d.Activity.TotalReads,
		},
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// BlogRepository stores blogs in the "blogs" collection.
type BlogRepository struct {
	collection *mongo.Collection
}

// NewBlogRepository creates a new BlogRepository
func NewBlogRepository(db *mongo.Database) *BlogRepository {
	return &BlogRepository{collection: db.Collection("blogs")}
}

var _ repositories.BlogRepository = (*BlogRepository)(nil)

// EnsureIndexes creates the index serving the trending query.
func (r *BlogRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "draft", Value: 1},
			{Key: "activity.total_reads", Value: -1},
			{Key: "activity.total_likes", Value: -1},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create blog indexes: %w", err)
	}
	return nil
}

// Create inserts blog.
func (r *BlogRepository) Create(ctx context.Context, blog *models.Blog) error {
	if _, err := r.collection.InsertOne(ctx, newBlogDocument(blog)); err != nil {
		return fmt.Errorf("failed to create blog: %w", err)
	}
	return nil
}

// FindByID retrieves a blog by ID, drafts included.
func (r *BlogRepository) FindByID(ctx context.Context, id string) (*models.Blog, error) {
	var doc blogDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrBlogNotFound
		}
		return nil, fmt.Errorf("failed to find blog: %w", err)
	}
	return doc.model(), nil
}

// IncrementReads bumps total_reads of a published blog and returns it.
func (r *BlogRepository) IncrementReads(ctx context.Context, id string) (*models.Blog, error) {
	var doc blogDocument
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "draft": false},
		bson.M{"$inc": bson.M{"activity.total_reads": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrBlogNotFound
		}
		return nil, fmt.Errorf("failed to increment reads: %w", err)
	}
	return doc.model(), nil
}

// Trending returns the most read published blogs.
func (r *BlogRepository) Trending(ctx context.Context, limit int) ([]*models.Blog, error) {
	opts := options.Find().
		SetSort(bson.D{
			{Key: "activity.total_reads", Value: -1},
			{Key: "activity.total_likes", Value: -1},
			{Key: "created_at", Value: -1},
		}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{"draft": false}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query trending blogs: %w", err)
	}
	return decodeBlogs(ctx, cursor)
}

// List returns published blogs matching filter, newest first.
func (r *BlogRepository) List(ctx context.Context, filter models.BlogFilter, offset uint64, limit int) ([]*models.Blog, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, blogQuery(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list blogs: %w", err)
	}
	return decodeBlogs(ctx, cursor)
}

// Count returns the number of published blogs matching filter.
func (r *BlogRepository) Count(ctx context.Context, filter models.BlogFilter) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, blogQuery(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count blogs: %w", err)
	}
	return n, nil
}

// blogQuery builds the filter document. User text is matched literally.
func blogQuery(f models.BlogFilter) bson.M {
	query := bson.M{"draft": false}
	if f.Tag != "" {
		query["tags"] = strings.ToLower(f.Tag)
	}
	if f.AuthorID != "" {
		query["author"] = f.AuthorID
	}

	var and bson.A
	if f.Search != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		and = append(and, bson.M{"$or": bson.A{bson.M{"title": re}, bson.M{"des": re}}})
	}
	if f.Query != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(f.Query), Options: "i"}
		and = append(and, bson.M{"$or": bson.A{bson.M{"title": re}, bson.M{"content": re}, bson.M{"tags": re}}})
	}
	if len(and) > 0 {
		query["$and"] = and
	}
	return query
}

// ToggleLike adds userID to the blog's likes, or pulls it when present. Each
// branch is a single conditional update, so the counter follows the set.
func (r *BlogRepository) ToggleLike(ctx context.Context, blogID, userID string) (*models.LikeResult, error) {
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"activity.total_likes": 1})

	var doc struct {
		Activity activityDocument `bson:"activity"`
	}
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": blogID, "draft": false, "likes": bson.M{"$ne": userID}},
		bson.M{"$addToSet": bson.M{"likes": userID}, "$inc": bson.M{"activity.total_likes": 1}},
		opts,
	).Decode(&doc)
	if err == nil {
		return &models.LikeResult{TotalLikes: doc.Activity.TotalLikes, Liked: true}, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to like blog: %w", err)
	}

	err = r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": blogID, "draft": false, "likes": userID},
		bson.M{"$pull": bson.M{"likes": userID}, "$inc": bson.M{"activity.total_likes": -1}},
		opts,
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrBlogNotFound
		}
		return nil, fmt.Errorf("failed to unlike blog: %w", err)
	}
	return &models.LikeResult{TotalLikes: doc.Activity.TotalLikes, Liked: false}, nil
}

func decodeBlogs(ctx context.Context, cursor *mongo.Cursor) ([]*models.Blog, error) {
	defer cursor.Close(ctx)

	var docs []blogDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode blogs: %w", err)
	}

	blogs := make([]*models.Blog, 0, len(docs))
	for _, d := range docs {
		blogs = append(blogs, d.model())
	}
	return blogs, nil
}
