package dto

import (
	"time"

	"github.com/Anandhu5Uthaman/College-mini/internal/app/models"
)

// CreateBlogRequest is the body of POST /create-blog.
type CreateBlogRequest struct {
	Title   string   `json:"title" validate:"required,min=3"`
	Des     string   `json:"des" validate:"required,min=10,max=200"`
	Banner  string   `json:"banner" validate:"omitempty,url"`
	Content string   `json:"content" validate:"required"`
	Tags    []string `json:"tags" validate:"max=10,dive,min=1,max=30"`
	Draft   bool     `json:"draft"`
}

// BlogActivityResponse mirrors models.BlogActivity.
type BlogActivityResponse struct {
	TotalLikes    int64 `json:"total_likes"`
	TotalComments int64 `json:"total_comments"`
	TotalReads    int64 `json:"total_reads"`
}

// BlogResponse is the public projection of a blog.
type BlogResponse struct {
	ID        string               `json:"blog_id"`
	Title     string               `json:"title"`
	Des       string               `json:"des"`
	Banner    string               `json:"banner"`
	Content   string               `json:"content"`
	Tags      []string             `json:"tags"`
	Author    string               `json:"author"`
	Draft     bool                 `json:"draft"`
	Activity  BlogActivityResponse `json:"activity"`
	CreatedAt time.Time            `json:"publishedAt"`
}

// NewBlogResponses builds the projections of blogs.
func NewBlogResponses(blogs []*models.Blog) []*BlogResponse {
	out := make([]*BlogResponse, 0, len(blogs))
	for _, b := range blogs {
		out = append(out, NewBlogResponse(b))
	}
	return out
}

// NewBlogResponse builds the projection of b.
func NewBlogResponse(b *models.Blog) *BlogResponse {
	tags := b.Tags
	if tags == nil {
		tags = []string{}
	}
	return &BlogResponse{
		ID:      b.ID,
		Title:   b.Title,
		Des:     b.Des,
		Banner:  b.Banner,
		Content: b.Content,
		Tags:    tags,
		Author:  b.AuthorID,
		Draft:   b.Draft,
		Activity: BlogActivityResponse{
			TotalLikes:    b.Activity.TotalLikes,
			TotalComments: b.Activity.TotalComments,
			TotalReads:    b.Activity.TotalReads,
		},
		CreatedAt: b.CreatedAt,
	}
}

// ListBlogsRequest is the body of POST /get-blogs. Page defaults to 1 and
// Limit to 10.
type ListBlogsRequest struct {
	Page   *int   `json:"page"`
	Limit  int    `json:"limit" validate:"omitempty,min=1,max=50"`
	Tag    string `json:"tag"`
	Author string `json:"author"`
	Search string `json:"search"`
}

// BlogListResponse is returned by POST /get-blogs.
type BlogListResponse struct {
	Blogs       []*BlogResponse `json:"blogs"`
	CurrentPage int             `json:"currentPage"`
	TotalPages  int             `json:"totalPages"`
	Total       int64           `json:"total"`
}

// SearchBlogsRequest is the body of POST /search-blogs.
type SearchBlogsRequest struct {
	Query string `json:"query"`
	Page  int    `json:"page"`
	Limit int    `json:"limit" validate:"omitempty,min=1,max=50"`
}

// SearchBlogsResponse is returned by POST /search-blogs.
type SearchBlogsResponse struct {
	Blogs   []*BlogResponse `json:"blogs"`
	Total   int64           `json:"total"`
	HasMore bool            `json:"hasMore"`
}

// BlogCountResponse is returned by POST /all-latest-blogs-count.
type BlogCountResponse struct {
	TotalDocs int64 `json:"totalDocs"`
}

// LikeResponse is returned by POST /like/:id.
type LikeResponse struct {
	Likes   int64 `json:"likes"`
	IsLiked bool  `json:"isLiked"`
}

// CreateCommentRequest is the body of POST /blogs/:blogId/comments and
// PUT /comments/:commentId.
type CreateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=500"`
}

// CommentAuthor is the author block embedded in a listed comment.
type CommentAuthor struct {
	ID         string `json:"_id"`
	Fullname   string `json:"fullname"`
	Username   string `json:"username"`
	ProfileImg string `json:"profile_img"`
}

// CommentResponse is the public projection of a comment.
type CommentResponse struct {
	ID        string         `json:"_id"`
	BlogID    string         `json:"blog_id"`
	Content   string         `json:"content"`
	Edited    bool           `json:"edited"`
	Author    *CommentAuthor `json:"author"`
	CreatedAt time.Time      `json:"createdAt"`
}

// NewCommentResponse builds the projection of c.
func NewCommentResponse(c *models.CommentWithAuthor) *CommentResponse {
	return &CommentResponse{
		ID:      c.ID,
		BlogID:  c.BlogID,
		Content: c.Content,
		Edited:  c.Edited,
		Author: &CommentAuthor{
			ID:         c.AuthorID,
			Fullname:   c.AuthorFullname,
			Username:   c.AuthorUsername,
			ProfileImg: c.AuthorProfileImg,
		},
		CreatedAt: c.CreatedAt,
	}
}
