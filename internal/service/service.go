package service

import (
	"context"

	"github.com/xifanezz/medium-clone-sub000/internal/entity"
)

type CommentService interface {
	// Core operations
	CreateComment(ctx context.Context, postID, authorID int64, req *entity.CreateCommentRequest) (*entity.Comment, error)
	ListTopLevelComments(ctx context.Context, postID int64, page, limit int) (*entity.CommentsPage, error)
	UpdateComment(ctx context.Context, commentID, requesterID int64, req *entity.UpdateCommentRequest) (*entity.Comment, error)
	DeleteComment(ctx context.Context, commentID, requesterID int64) error

	// Engagement ranking
	MostDiscussedPosts(ctx context.Context, limit int) ([]int64, error)
	RebuildActivityRanking(ctx context.Context) error
}

// CommentCache is the Redis-backed read cache and activity ranking.
// A nil cache disables both without changing behavior.
type CommentCache interface {
	GetCommentsPage(ctx context.Context, postID int64, page, limit int) (*entity.CommentsPage, error)
	SetCommentsPage(ctx context.Context, postID int64, page, limit int, value *entity.CommentsPage) error
	InvalidatePost(ctx context.Context, postID int64) error
	IncrementPostActivity(ctx context.Context, postID int64) error
	GetMostDiscussed(ctx context.Context, count int) ([]string, error)
	ReplaceActivityRanking(ctx context.Context, activity []*entity.PostActivity) error
}

// EventPublisher pushes comment events to the notification broker
type EventPublisher interface {
	Publish(ctx context.Context, message interface{}) error
}
