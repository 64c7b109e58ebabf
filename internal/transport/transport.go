package transport

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xifanezz/medium-clone-sub000/internal/service"
	"github.com/xifanezz/medium-clone-sub000/internal/transport/middleware"
)

func InitRoutes(commentService service.CommentService, jwtSecret []byte) *gin.Engine {
	handler := NewCommentHandler(commentService)

	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Timeout(30 * time.Second))

	auth := middleware.Auth(jwtSecret)

	// Reads are public; mutations carry the verified user id from the token
	router.POST("/comment/:postId", auth, handler.CreateComment)
	router.GET("/comments/:postId", handler.GetComments)
	router.PUT("/comment/:commentId", auth, handler.UpdateComment)
	router.DELETE("/comment/:commentId", auth, handler.DeleteComment)

	router.GET("/posts/popular", handler.GetPopularPosts)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "comment-service",
		})
	})

	return router
}
