package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Anandhu5Uthaman/College-mini/internal/app/models"
	"github.com/Anandhu5Uthaman/College-mini/internal/app/models/dto"
	"github.com/Anandhu5Uthaman/College-mini/internal/app/repositories"
	"github.com/Anandhu5Uthaman/College-mini/internal/pkg/apperrors"
	"github.com/Anandhu5Uthaman/College-mini/internal/pkg/events"
	"github.com/Anandhu5Uthaman/College-mini/internal/pkg/helpers"
	"github.com/Anandhu5Uthaman/College-mini/internal/pkg/validation"
)

// TrendingLimit is the number of blogs returned by Trending.
const TrendingLimit = 5

const (
	// MsgCommentForbidden is returned when someone other than the author deletes a comment.
	MsgCommentForbidden = "Not authorized to delete this comment"
	// MsgCommentUpdateForbidden is returned when someone other than the author edits a comment.
	MsgCommentUpdateForbidden = "Not authorized to update this comment"
	MsgInvalidPage            = "Invalid page number"
	MsgSearchQueryRequired    = "Search query is required"
)

// BlogService handles blog and comment operations
type BlogService struct {
	blogs        repositories.BlogRepository
	comments     repositories.CommentRepository
	users        repositories.UserRepository
	publisher    events.Publisher
	queryTimeout time.Duration
	logger       zerolog.Logger
	now          func() time.Time
}

// NewBlogService creates a new BlogService
func NewBlogService(
	blogs repositories.BlogRepository,
	comments repositories.CommentRepository,
	users repositories.UserRepository,
	publisher events.Publisher,
	queryTimeout time.Duration,
	logger zerolog.Logger,
) *BlogService {
	return &BlogService{
		blogs:        blogs,
		comments:     comments,
		users:        users,
		publisher:    publisher,
		queryTimeout: queryTimeout,
		logger:       logger,
		now:          time.Now,
	}
}

// Create stores a new blog written by authorID. Tags are trimmed, lower-cased
// and de-duplicated.
func (s *BlogService) Create(ctx context.Context, authorID string, req dto.CreateBlogRequest) (*dto.BlogResponse, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Des = strings.TrimSpace(req.Des)
	req.Tags = normalizeTags(req.Tags)
	if violations := validation.Struct(req); len(violations) > 0 {
		return nil, apperrors.NewValidationError(violations)
	}

	now := s.now().UTC()
	blog := &models.Blog{
		ID:        uuid.NewString(),
		Title:     req.Title,
		Des:       req.Des,
		Banner:    req.Banner,
		Content:   req.Content,
		Tags:      req.Tags,
		AuthorID:  authorID,
		Draft:     req.Draft,
		CreatedAt: now,
		UpdatedAt: now,
	}

	ctx, cancel := withStoreTimeout(ctx, s.queryTimeout)
	defer cancel()
	if err := s.blogs.Create(ctx, blog); err != nil {
		return nil, err
	}

	s.logger.Info().Str("blog_id", blog.ID).Str("author_id", authorID).Bool("draft", blog.Draft).Msg("Blog created")
	return dto.NewBlogResponse(blog), nil
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// Get returns a published blog and counts the read. Drafts are not found.
func (s *BlogService) Get(ctx context.Context, id string) (*dto.BlogResponse, error) {
	ctx, cancel := withStoreTimeout(ctx, s.queryTimeout)
	defer cancel()
	blog, err := s.blogs.IncrementReads(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewBlogResponse(blog), nil
}

// Trending returns the most read published blogs.
func (s *BlogService) Trending(ctx context.Context) ([]*dto.BlogResponse, error) {
	ctx, cancel := withStoreTimeout(ctx, s.queryTimeout)
	defer cancel()
	blogs, err := s.blogs.Trending(ctx, TrendingLimit)
	if err != nil {
		return nil, err
	}
	return dto.NewBlogResponses(blogs), nil
}

// List returns one page of published blogs, newest first, optionally
// narrowed by tag, author or a title/description search.
func (s *BlogService) List(ctx context.Context, req dto.ListBlogsRequest) (*dto.BlogListResponse, error) {
	page := 1
	if req.Page != nil {
		if *req.Page < 0 {
			return nil, apperrors.NewBadRequestError(MsgInvalidPage)
		}
		if *req.Page > 0 {
			page = *req.Page
		}
	}
	if violations := validation.Struct(req); len(violations) > 0 {
		return nil, apperrors.NewValidationError(violations)
	}

	filter := models.BlogFilter{
		Tag:      strings.ToLower(strings.TrimSpace(req.Tag)),
		AuthorID: strings.TrimSpace(req.Author),
		Search:   strings.TrimSpace(req.Search),
	}
	offset, limit := helpers.CalculateOffsetLimit(page, req.Limit)

	ctx, cancel := withStoreTimeout(ctx, s.queryTimeout)
	defer cancel()
	blogs, err := s.blogs.List(ctx, filter, offset, limit)
	if err != nil {
		return nil, err
	}
	total, err := s.blogs.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &dto.BlogListResponse{
		Blogs:       dto.NewBlogResponses(blogs),
		CurrentPage: page,
		TotalPages:  int((total + int64(limit) - 1) / int64(limit)),
		Total:       total,
	}, nil
}

// Search matches published blogs whose title, content or tags contain the
// query.
func (s *BlogService) Search(ctx context.Context, req dto.SearchBlogsRequest) (*dto.SearchBlogsResponse, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, apperrors.NewBadRequestError(MsgSearchQueryRequired)
	}
	if violations := validation.Struct(req); len(violations) > 0 {
		return nil, apperrors.NewValidationError(violations)
	}

	filter := models.BlogFilter{Query: query}
	offset, limit := helpers.CalculateOffsetLimit(req.Page, req.Limit)

	ctx, cancel := withStoreTimeout(ctx, s.queryTimeout)
	defer cancel()
	blogs, err := s.blogs.List(ctx, filter, offset, limit)
	if err != nil {
		return nil, err
	}
	total, err := s.blogs.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &dto.SearchBlogsResponse{
		Blogs:   dto.NewBlogResponses(blogs),
		Total:   total,
		HasMore: int64(offset)+int64(len(blogs)) < total,
	}, nil
}

// CountPublished returns the number of published blogs.
func (s *BlogService) CountPublished(ctx context.Context) (*dto.BlogCountResponse, error) {
	ctx, cancel := withStoreTimeout(ctx, s.queryTimeout)
	defer cancel()
	total, err := s.blogs.Count(ctx, models.BlogFilter{})
	if err != nil {
		return nil, err
	}
	return &dto.BlogCountResponse{TotalDocs: total}, nil
}

// ToggleLike likes a published blog for userID, or removes the like when one
// exists. The author is notified of new likes by others.
func (s *BlogService) ToggleLike(ctx context.Context, userID, blogID string) (*dto.LikeResponse, error) {
	storeCtx, cancel := withStoreTimeout(ctx, s.queryTimeout)
	defer cancel()

	blog, err := s.blogs.FindByID(storeCtx, blogID)
	if err != nil {
		return nil, err
	}
	if blog.Draft {
		return nil, apperrors.ErrBlogNotFound
	}

	res, err := s.blogs.ToggleLike(storeCtx, blogID, userID)
	if err != nil {
		return nil, err
	}

	if res.Liked && blog.AuthorID != userID {
		publish(ctx, s.publisher, s.logger, events.New(events.BlogLiked, blog.AuthorID, map[string]string{
			"blog_id":  blogID,
			"liked_by": userID,
			"notify":   blog.AuthorID,
		}))
	}

	s.logger.Debug().Str("blog_id", blogID).Str("user_id", userID).Bool("liked", res.Liked).Msg("Blog like toggled")
	return &dto.LikeResponse{Likes: res.TotalLikes, IsLiked: res.Liked}, nil
}

// AddComment stores a comment by userID on a published blog and notifies the
// blog's author.
func (s *BlogService) AddComment(ctx context.Context, userID, blogID string, req dto.CreateCommentRequest) (*dto.CommentResponse, error) {
	req.Content = strings.TrimSpace(req.Content)
	if violations := validation.Struct(req); len(violations) > 0 {
		return nil, apperrors.NewValidationError(violations)
	}

	storeCtx, cancel := withStoreTimeout(ctx, s.queryTimeout)
	defer cancel()

	blog, err := s.blogs.FindByID(storeCtx, blogID)
	if err != nil {
		return nil, err
	}
	if blog.Draft {
		return nil, apperrors.ErrBlogNotFound
	}

	author, err := s.users.FindByID(storeCtx, userID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		ID:        uuid.NewString(),
		BlogID:    blogID,
		AuthorID:  userID,
		Content:   req.Content,
		CreatedAt: s.now().UTC(),
	}
	if err := s.comments.Create(storeCtx, comment); err != nil {
		return nil, err
	}

	if blog.AuthorID != userID {
		publish(ctx, s.publisher, s.logger, events.New(events.CommentCreated, blog.AuthorID, map[string]string{
			"blog_id":      blogID,
			"comment_id":   comment.ID,
			"commented_by": userID,
			"notify":       blog.AuthorID,
		}))
	}

	return dto.NewCommentResponse(&models.CommentWithAuthor{
		Comment:          *comment,
		AuthorFullname:   author.Fullname,
		AuthorUsername:   author.Username,
		AuthorProfileImg: author.ProfileImg,
	}), nil
}

// ListComments returns one page of a blog's comments, newest first.
func (s *BlogService) ListComments(ctx context.Context, blogID string, page, size int) ([]*dto.CommentResponse, error) {
	offset, limit := helpers.CalculateOffsetLimit(page, size)

	ctx, cancel := withStoreTimeout(ctx, s.queryTimeout)
	defer cancel()
	comments, err := s.comments.ListByBlog(ctx, blogID, offset, limit)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.CommentResponse, 0, len(comments))
	for _, c := range comments {
		out = append(out, dto.NewCommentResponse(c))
	}
	return out, nil
}

// UpdateComment replaces the text of a comment. Only its author may do so.
func (s *BlogService) UpdateComment(ctx context.Context, userID, commentID string, req dto.CreateCommentRequest) (*dto.CommentResponse, error) {
	req.Content = strings.TrimSpace(req.Content)
	if violations := validation.Struct(req); len(violations) > 0 {
		return nil, apperrors.NewValidationError(violations)
	}

	ctx, cancel := withStoreTimeout(ctx, s.queryTimeout)
	defer cancel()

	comment, err := s.comments.FindByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.AuthorID != userID {
		return nil, apperrors.NewForbiddenError(MsgCommentUpdateForbidden)
	}

	updated, err := s.comments.UpdateContent(ctx, commentID, req.Content)
	if err != nil {
		return nil, err
	}
	author, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("comment_id", commentID).Str("blog_id", comment.BlogID).Msg("Comment updated")
	return dto.NewCommentResponse(&models.CommentWithAuthor{
		Comment:          *updated,
		AuthorFullname:   author.Fullname,
		AuthorUsername:   author.Username,
		AuthorProfileImg: author.ProfileImg,
	}), nil
}

// DeleteComment removes a comment. Only its author may do so.
func (s *BlogService) DeleteComment(ctx context.Context, userID, commentID string) error {
	ctx, cancel := withStoreTimeout(ctx, s.queryTimeout)
	defer cancel()

	comment, err := s.comments.FindByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.AuthorID != userID {
		return apperrors.NewForbiddenError(MsgCommentForbidden)
	}

	if err := s.comments.Delete(ctx, comment); err != nil {
		return err
	}
	s.logger.Info().Str("comment_id", commentID).Str("blog_id", comment.BlogID).Msg("Comment deleted")
	return nil
}
