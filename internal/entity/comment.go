package entity

import (
	"time"
)

// CommentAuthor carries the display fields joined from the users table.
type CommentAuthor struct {
	Username    string `json:"username" db:"username"`
	DisplayName string `json:"displayName" db:"display_name"`
	Avatar      string `json:"avatar" db:"avatar"`
}

type Comment struct {
	ID           int64         `json:"id" db:"id"`
	PostID       int64         `json:"postId" db:"post_id"`
	AuthorID     int64         `json:"-" db:"author_id"`
	ParentID     *int64        `json:"parentId,omitempty" db:"parent_id"`
	Content      string        `json:"content" db:"content"`
	CreatedAt    time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time     `json:"updatedAt" db:"updated_at"`
	User         CommentAuthor `json:"user"`
	RepliesCount int64         `json:"repliesCount"`
	Replies      []*Comment    `json:"replies,omitempty"`
}

type CreateCommentRequest struct {
	Content  string `json:"content" binding:"required"`
	ParentID *int64 `json:"parentId"`
}

type UpdateCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

type Pagination struct {
	Page    int  `json:"page"`
	Limit   int  `json:"limit"`
	HasMore bool `json:"hasMore"`
}

type CommentsPage struct {
	Data       []*Comment `json:"data"`
	Pagination Pagination `json:"pagination"`
}
