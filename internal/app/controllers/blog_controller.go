package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Anandhu5Uthaman/College-mini/internal/app/models/dto"
	"github.com/Anandhu5Uthaman/College-mini/internal/app/services"
	"github.com/Anandhu5Uthaman/College-mini/internal/middleware"
	"github.com/Anandhu5Uthaman/College-mini/internal/pkg/helpers"
)

// BlogController handles blog and comment endpoints
type BlogController struct {
	blogService *services.BlogService
}

// NewBlogController creates a new BlogController
func NewBlogController(blogService *services.BlogService) *BlogController {
	return &BlogController{blogService: blogService}
}

// CreateBlog publishes or drafts a blog
// @Summary Create a blog
// @Tags blogs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateBlogRequest true "Blog"
// @Success 201 {object} dto.BlogResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /create-blog [post]
func (c *BlogController) CreateBlog(ctx *gin.Context) {
	userID, ok := callerID(ctx)
	if !ok {
		return
	}

	var req dto.CreateBlogRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	blog, err := c.blogService.Create(ctx.Request.Context(), userID, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, blog)
}

// GetBlog returns a published blog and counts the read
// @Summary Get a blog
// @Tags blogs
// @Produce json
// @Param id path string true "Blog ID"
// @Success 200 {object} dto.BlogResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /blog/{id} [get]
func (c *BlogController) GetBlog(ctx *gin.Context) {
	blog, err := c.blogService.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, blog)
}

// TrendingBlogs lists the most read blogs
// @Summary Trending blogs
// @Tags blogs
// @Produce json
// @Success 200 {array} dto.BlogResponse
// @Router /trending-blogs [get]
func (c *BlogController) TrendingBlogs(ctx *gin.Context) {
	blogs, err := c.blogService.Trending(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, blogs)
}

// AddComment comments on a blog
// @Summary Comment on a blog
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param blogId path string true "Blog ID"
// @Param request body dto.CreateCommentRequest true "Comment"
// @Success 201 {object} dto.StatusResponse{data=dto.CommentResponse}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /blogs/{blogId}/comments [post]
func (c *BlogController) AddComment(ctx *gin.Context) {
	userID, ok := callerID(ctx)
	if !ok {
		return
	}

	var req dto.CreateCommentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	comment, err := c.blogService.AddComment(ctx.Request.Context(), userID, ctx.Param("blogId"), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewStatusResponse(comment))
}

// ListComments lists a blog's comments, newest first
// @Summary List comments
// @Tags comments
// @Produce json
// @Param blogId path string true "Blog ID"
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Success 200 {object} dto.StatusResponse{data=[]dto.CommentResponse}
// @Router /blogs/{blogId}/comments [get]
func (c *BlogController) ListComments(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)
	comments, err := c.blogService.ListComments(ctx.Request.Context(), ctx.Param("blogId"), page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewStatusResponse(comments))
}

// DeleteComment removes the caller's own comment
// @Summary Delete a comment
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param commentId path string true "Comment ID"
// @Success 200 {object} dto.SuccessResponse
// @Failure 403 {object} dto.ErrorResponse "Not authorized to delete this comment"
// @Failure 404 {object} dto.ErrorResponse
// @Router /comments/{commentId} [delete]
func (c *BlogController) DeleteComment(ctx *gin.Context) {
	userID, ok := callerID(ctx)
	if !ok {
		return
	}

	if err := c.blogService.DeleteComment(ctx.Request.Context(), userID, ctx.Param("commentId")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.SuccessResponse{Message: "Comment deleted successfully"})
}

// UpdateComment replaces the text of the caller's own comment
// @Summary Edit a comment
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param commentId path string true "Comment ID"
// @Param request body dto.CreateCommentRequest true "Comment"
// @Success 200 {object} dto.StatusResponse{data=dto.CommentResponse}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse "Not authorized to update this comment"
// @Failure 404 {object} dto.ErrorResponse
// @Router /comments/{commentId} [put]
func (c *BlogController) UpdateComment(ctx *gin.Context) {
	userID, ok := callerID(ctx)
	if !ok {
		return
	}

	var req dto.CreateCommentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	comment, err := c.blogService.UpdateComment(ctx.Request.Context(), userID, ctx.Param("commentId"), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewStatusResponse(comment))
}

// ListBlogs lists published blogs, newest first
// @Summary List blogs
// @Tags blogs
// @Accept json
// @Produce json
// @Param request body dto.ListBlogsRequest false "Filters"
// @Success 200 {object} dto.BlogListResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid page number"
// @Router /get-blogs [post]
func (c *BlogController) ListBlogs(ctx *gin.Context) {
	var req dto.ListBlogsRequest
	if !bindOptionalJSON(ctx, &req) {
		return
	}

	resp, err := c.blogService.List(ctx.Request.Context(), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// SearchBlogs matches published blogs by title, content or tag
// @Summary Search blogs
// @Tags blogs
// @Accept json
// @Produce json
// @Param request body dto.SearchBlogsRequest true "Query"
// @Success 200 {object} dto.SearchBlogsResponse
// @Failure 400 {object} dto.ErrorResponse "Search query is required"
// @Router /search-blogs [post]
func (c *BlogController) SearchBlogs(ctx *gin.Context) {
	var req dto.SearchBlogsRequest
	if !bindOptionalJSON(ctx, &req) {
		return
	}

	resp, err := c.blogService.Search(ctx.Request.Context(), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// CountBlogs returns the number of published blogs
// @Summary Count published blogs
// @Tags blogs
// @Produce json
// @Success 200 {object} dto.BlogCountResponse
// @Router /all-latest-blogs-count [post]
func (c *BlogController) CountBlogs(ctx *gin.Context) {
	resp, err := c.blogService.CountPublished(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// LikeBlog toggles the caller's like on a blog
// @Summary Like or unlike a blog
// @Tags blogs
// @Produce json
// @Security BearerAuth
// @Param id path string true "Blog ID"
// @Success 200 {object} dto.LikeResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /like/{id} [post]
func (c *BlogController) LikeBlog(ctx *gin.Context) {
	userID, ok := callerID(ctx)
	if !ok {
		return
	}

	resp, err := c.blogService.ToggleLike(ctx.Request.Context(), userID, ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// bindOptionalJSON binds the body when one is sent; an empty body keeps the
// zero request.
func bindOptionalJSON(ctx *gin.Context, obj interface{}) bool {
	if ctx.Request.ContentLength == 0 {
		return true
	}
	return middleware.BindJSON(ctx, obj)
}
