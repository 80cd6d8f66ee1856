package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Anandhu5Uthaman/College-mini/internal/app/controllers"
	"github.com/Anandhu5Uthaman/College-mini/internal/app/models/dto"
	"github.com/Anandhu5Uthaman/College-mini/internal/middleware"
)

// Limiters holds one rate limiter per route group.
type Limiters struct {
	General  *middleware.RateLimiter
	Auth     *middleware.RateLimiter
	Content  *middleware.RateLimiter
	Comments *middleware.RateLimiter
}

// Close stops every limiter's sweeper.
func (l Limiters) Close() {
	for _, rl := range []*middleware.RateLimiter{l.General, l.Auth, l.Content, l.Comments} {
		if rl != nil {
			rl.Close()
		}
	}
}

// Controllers groups the HTTP handlers mounted by SetupRouter.
type Controllers struct {
	Auth *controllers.AuthController
	User *controllers.UserController
	Blog *controllers.BlogController
	// Notification is optional; the inbox and stream are not mounted when nil.
	Notification *controllers.NotificationController
}

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	ctrl Controllers,
	authMiddleware *middleware.AuthMiddleware,
	limiters Limiters,
) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.HealthResponse{Status: "ok"})
	})

	// Everything below counts against the general limit.
	api := router.Group("")
	api.Use(limiters.General.Handler())

	// --- Public auth routes ---
	authRoutes := api.Group("")
	authRoutes.Use(limiters.Auth.Handler())
	{
		authRoutes.POST("/signup", ctrl.Auth.Signup)
		authRoutes.POST("/signin", ctrl.Auth.Signin)
	}

	// --- Public read routes ---
	api.GET("/profile/:username", ctrl.User.GetPublicProfile)
	api.GET("/blog/:id", ctrl.Blog.GetBlog)
	api.GET("/trending-blogs", ctrl.Blog.TrendingBlogs)
	api.GET("/blogs/:blogId/comments", ctrl.Blog.ListComments)
	api.POST("/get-blogs", ctrl.Blog.ListBlogs)
	api.POST("/search-blogs", ctrl.Blog.SearchBlogs)
	api.POST("/all-latest-blogs-count", ctrl.Blog.CountBlogs)

	// --- Authenticated routes ---
	authenticated := api.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		authenticated.GET("/profile", ctrl.User.GetProfile)
		authenticated.PUT("/profile", ctrl.User.UpdateProfile)
		authenticated.POST("/change-password", ctrl.User.ChangePassword)
		authenticated.POST("/upload-profile-image", ctrl.User.UploadProfileImage)

		authenticated.POST("/create-blog", limiters.Content.Handler(), ctrl.Blog.CreateBlog)
		authenticated.POST("/blogs/:blogId/comments", limiters.Comments.Handler(), ctrl.Blog.AddComment)
		authenticated.PUT("/comments/:commentId", limiters.Comments.Handler(), ctrl.Blog.UpdateComment)
		authenticated.DELETE("/comments/:commentId", ctrl.Blog.DeleteComment)
		authenticated.POST("/like/:id", ctrl.Blog.LikeBlog)

		if ctrl.Notification != nil {
			authenticated.GET("/notifications", ctrl.Notification.List)
			authenticated.GET("/new-notifications", ctrl.Notification.Unread)
			authenticated.GET("/notifications/ws", ctrl.Notification.Connect)
		}
	}
}
