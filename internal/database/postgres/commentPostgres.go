package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/xifanezz/medium-clone-sub000/internal/entity"
)

type commentRepository struct {
	db *sql.DB
}

func NewCommentRepository(db *sql.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Create inserts a comment and fills the server-assigned fields.
// The author display fields are loaded in the same transaction so the
// response carries a consistent snapshot.
func (r *commentRepository) Create(ctx context.Context, comment *entity.Comment) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelReadCommitted,
	})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	now := time.Now()
	query := `
		INSERT INTO comments (post_id, author_id, parent_id, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err = tx.QueryRowContext(ctx, query,
		comment.PostID,
		comment.AuthorID,
		comment.ParentID,
		comment.Content,
		now,
		now,
	).Scan(&comment.ID)
	if err != nil {
		return fmt.Errorf("failed to create comment: %v", err)
	}

	query = `SELECT username, display_name, avatar FROM users WHERE id = $1`
	err = tx.QueryRowContext(ctx, query, comment.AuthorID).Scan(
		&comment.User.Username,
		&comment.User.DisplayName,
		&comment.User.Avatar,
	)
	if err == sql.ErrNoRows {
		return entity.ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load comment author: %v", err)
	}

	comment.CreatedAt = now
	comment.UpdatedAt = now
	comment.RepliesCount = 0

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %v", err)
	}

	return nil
}

// GetByID retrieves a comment by its ID
func (r *commentRepository) GetByID(ctx context.Context, id int64) (*entity.Comment, error) {
	query := `
		SELECT
			c.id, c.post_id, c.author_id, c.parent_id, c.content,
			c.created_at, c.updated_at,
			u.username, u.display_name, u.avatar
		FROM comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.id = $1
	`

	var comment entity.Comment
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&comment.ID,
		&comment.PostID,
		&comment.AuthorID,
		&comment.ParentID,
		&comment.Content,
		&comment.CreatedAt,
		&comment.UpdatedAt,
		&comment.User.Username,
		&comment.User.DisplayName,
		&comment.User.Avatar,
	)

	if err == sql.ErrNoRows {
		return nil, entity.ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get comment: %v", err)
	}

	return &comment, nil
}

// UpdateContent replaces the comment body and refreshes updated_at
func (r *commentRepository) UpdateContent(ctx context.Context, id int64, content string) (*entity.Comment, error) {
	query := `
		UPDATE comments c SET content = $1, updated_at = $2
		FROM users u
		WHERE c.id = $3 AND u.id = c.author_id
		RETURNING
			c.id, c.post_id, c.author_id, c.parent_id, c.content,
			c.created_at, c.updated_at,
			u.username, u.display_name, u.avatar
	`

	var comment entity.Comment
	err := r.db.QueryRowContext(ctx, query, content, time.Now(), id).Scan(
		&comment.ID,
		&comment.PostID,
		&comment.AuthorID,
		&comment.ParentID,
		&comment.Content,
		&comment.CreatedAt,
		&comment.UpdatedAt,
		&comment.User.Username,
		&comment.User.DisplayName,
		&comment.User.Avatar,
	)

	if err == sql.ErrNoRows {
		return nil, entity.ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update comment: %v", err)
	}

	return &comment, nil
}

// Delete removes a comment; descendants go with it through the
// ON DELETE CASCADE constraint on parent_id.
func (r *commentRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %v", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %v", err)
	}
	if affected == 0 {
		return entity.ErrCommentNotFound
	}

	return nil
}

// GetTopLevelByPost returns top-level comments newest-first with their
// direct reply counts.
func (r *commentRepository) GetTopLevelByPost(ctx context.Context, postID int64, limit, offset int) ([]*entity.Comment, error) {
	query := `
		SELECT
			c.id, c.post_id, c.author_id, c.parent_id, c.content,
			c.created_at, c.updated_at,
			u.username, u.display_name, u.avatar,
			(SELECT COUNT(*) FROM comments r WHERE r.parent_id = c.id) AS replies_count
		FROM comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.post_id = $1 AND c.parent_id IS NULL
		ORDER BY c.created_at DESC, c.id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, postID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query top-level comments: %v", err)
	}
	defer rows.Close()

	comments := make([]*entity.Comment, 0, limit)
	for rows.Next() {
		var comment entity.Comment
		err := rows.Scan(
			&comment.ID,
			&comment.PostID,
			&comment.AuthorID,
			&comment.ParentID,
			&comment.Content,
			&comment.CreatedAt,
			&comment.UpdatedAt,
			&comment.User.Username,
			&comment.User.DisplayName,
			&comment.User.Avatar,
			&comment.RepliesCount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment: %v", err)
		}
		comments = append(comments, &comment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate comments: %v", err)
	}

	return comments, nil
}

// GetFirstReplies returns up to perParent oldest replies for each parent,
// in conversation order. A single window query covers the whole page.
func (r *commentRepository) GetFirstReplies(ctx context.Context, parentIDs []int64, perParent int) (map[int64][]*entity.Comment, error) {
	replies := make(map[int64][]*entity.Comment, len(parentIDs))
	if len(parentIDs) == 0 {
		return replies, nil
	}

	query := `
		SELECT id, post_id, author_id, parent_id, content, created_at, updated_at,
			username, display_name, avatar, replies_count
		FROM (
			SELECT
				c.id, c.post_id, c.author_id, c.parent_id, c.content,
				c.created_at, c.updated_at,
				u.username, u.display_name, u.avatar,
				(SELECT COUNT(*) FROM comments r WHERE r.parent_id = c.id) AS replies_count,
				ROW_NUMBER() OVER (PARTITION BY c.parent_id ORDER BY c.created_at ASC, c.id ASC) AS rn
			FROM comments c
			JOIN users u ON u.id = c.author_id
			WHERE c.parent_id = ANY($1)
		) ranked
		WHERE rn <= $2
		ORDER BY parent_id, created_at ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(parentIDs), perParent)
	if err != nil {
		return nil, fmt.Errorf("failed to query replies: %v", err)
	}
	defer rows.Close()

	for rows.Next() {
		var reply entity.Comment
		err := rows.Scan(
			&reply.ID,
			&reply.PostID,
			&reply.AuthorID,
			&reply.ParentID,
			&reply.Content,
			&reply.CreatedAt,
			&reply.UpdatedAt,
			&reply.User.Username,
			&reply.User.DisplayName,
			&reply.User.Avatar,
			&reply.RepliesCount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reply: %v", err)
		}
		replies[*reply.ParentID] = append(replies[*reply.ParentID], &reply)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate replies: %v", err)
	}

	return replies, nil
}

// CountReplies returns the direct-children counts for the given parents
func (r *commentRepository) CountReplies(ctx context.Context, parentIDs []int64) (map[int64]int64, error) {
	counts := make(map[int64]int64, len(parentIDs))
	if len(parentIDs) == 0 {
		return counts, nil
	}

	query := `
		SELECT parent_id, COUNT(*)
		FROM comments
		WHERE parent_id = ANY($1)
		GROUP BY parent_id
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(parentIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to count replies: %v", err)
	}
	defer rows.Close()

	for rows.Next() {
		var parentID, count int64
		if err := rows.Scan(&parentID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan reply count: %v", err)
		}
		counts[parentID] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reply counts: %v", err)
	}

	return counts, nil
}

// CountByPost returns per-post comment totals for the ranking rebuild
func (r *commentRepository) CountByPost(ctx context.Context) ([]*entity.PostActivity, error) {
	query := `
		SELECT post_id, COUNT(*)
		FROM comments
		GROUP BY post_id
		ORDER BY COUNT(*) DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count comments by post: %v", err)
	}
	defer rows.Close()

	var activity []*entity.PostActivity
	for rows.Next() {
		var a entity.PostActivity
		if err := rows.Scan(&a.PostID, &a.Comments); err != nil {
			return nil, fmt.Errorf("failed to scan post activity: %v", err)
		}
		activity = append(activity, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate post activity: %v", err)
	}

	return activity, nil
}
