package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/xifanezz/medium-clone-sub000/internal/entity"
)

type postRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) PostRepository {
	return &postRepository{db: db}
}

// GetByID retrieves a post by its ID
func (r *postRepository) GetByID(ctx context.Context, id int64) (*entity.Post, error) {
	query := `SELECT id, author_id, title, created_at FROM posts WHERE id = $1`

	var post entity.Post
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&post.ID,
		&post.AuthorID,
		&post.Title,
		&post.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, entity.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %v", err)
	}

	return &post, nil
}

// Exists reports whether the post is present without loading the row
func (r *postRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM posts WHERE id = $1)`

	if err := r.db.QueryRowContext(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check post existence: %v", err)
	}

	return exists, nil
}
