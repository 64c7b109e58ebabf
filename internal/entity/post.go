package entity

import (
	"time"
)

type Post struct {
	ID        int64     `json:"id" db:"id"`
	AuthorID  int64     `json:"author_id" db:"author_id"`
	Title     string    `json:"title" db:"title"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// PostActivity pairs a post with its comment count for the ranking rebuild.
type PostActivity struct {
	PostID   int64 `json:"post_id"`
	Comments int64 `json:"comments"`
}
