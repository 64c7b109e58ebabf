package repository

import (
	"context"

	"github.com/xifanezz/medium-clone-sub000/internal/entity"
)

type CommentRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, comment *entity.Comment) error
	GetByID(ctx context.Context, id int64) (*entity.Comment, error)
	UpdateContent(ctx context.Context, id int64, content string) (*entity.Comment, error)
	Delete(ctx context.Context, id int64) error

	// Query operations
	GetTopLevelByPost(ctx context.Context, postID int64, limit, offset int) ([]*entity.Comment, error)
	GetFirstReplies(ctx context.Context, parentIDs []int64, perParent int) (map[int64][]*entity.Comment, error)
	CountReplies(ctx context.Context, parentIDs []int64) (map[int64]int64, error)

	// Statistical operations
	CountByPost(ctx context.Context) ([]*entity.PostActivity, error)
}

type PostRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.Post, error)
	Exists(ctx context.Context, id int64) (bool, error)
}

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
}
