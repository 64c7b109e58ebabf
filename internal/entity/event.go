package entity

import (
	"time"
)

type CommentEventType string

const (
	CommentEventCreated CommentEventType = "comment.created"
	CommentEventDeleted CommentEventType = "comment.deleted"
)

// CommentEvent is the message published to the broker on comment mutations.
type CommentEvent struct {
	Type      CommentEventType `json:"type"`
	CommentID int64            `json:"comment_id"`
	PostID    int64            `json:"post_id"`
	AuthorID  int64            `json:"author_id"`
	ParentID  *int64           `json:"parent_id,omitempty"`
	Content   string           `json:"content,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}
