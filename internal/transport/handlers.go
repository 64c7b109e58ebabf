package transport

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xifanezz/medium-clone-sub000/internal/entity"
	"github.com/xifanezz/medium-clone-sub000/internal/service"
)

type CommentHandler struct {
	service service.CommentService
}

func NewCommentHandler(service service.CommentService) *CommentHandler {
	return &CommentHandler{
		service: service,
	}
}

// respondError maps service errors onto the wire taxonomy. Anything not
// classified is a 500 with the fixed internal message.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, entity.ErrEmptyContent),
		errors.Is(err, entity.ErrParentNotFound),
		errors.Is(err, entity.ErrParentPostMismatch),
		errors.Is(err, entity.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, entity.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, entity.ErrPostNotFound),
		errors.Is(err, entity.ErrCommentNotFound),
		errors.Is(err, entity.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": entity.ErrInternal.Error()})
	}
}
