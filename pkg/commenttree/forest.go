// Package commenttree is the client SDK for the comment API: an HTTP
// client plus a controller that owns the visible comment forest for one
// post view and keeps it consistent across optimistic mutations.
package commenttree

import (
	"github.com/xifanezz/medium-clone-sub000/internal/entity"
)

// Forest is the visible comment tree for one post view. Transforms never
// mutate nodes in place; every change produces a new forest so earlier
// snapshots stay valid for rollback.
type Forest []*entity.Comment

func cloneNode(node *entity.Comment) *entity.Comment {
	copied := *node
	if node.Replies != nil {
		copied.Replies = make([]*entity.Comment, len(node.Replies))
		copy(copied.Replies, node.Replies)
	}
	return &copied
}

// updateNode returns a new forest with the matched node replaced by
// fn(node). Unmatched subtrees are shared, the path to the match is
// copied. fn receives a clone and may return it modified.
func updateNode(forest Forest, id int64, fn func(node *entity.Comment) *entity.Comment) (Forest, bool) {
	for i, node := range forest {
		if node.ID == id {
			next := make(Forest, len(forest))
			copy(next, forest)
			next[i] = fn(cloneNode(node))
			return next, true
		}

		if len(node.Replies) == 0 {
			continue
		}
		if replies, ok := updateNode(node.Replies, id, fn); ok {
			next := make(Forest, len(forest))
			copy(next, forest)
			parent := cloneNode(node)
			parent.Replies = replies
			next[i] = parent
			return next, true
		}
	}
	return forest, false
}

// removeNode returns a new forest without the matched node, at any depth.
func removeNode(forest Forest, id int64) (Forest, bool) {
	for i, node := range forest {
		if node.ID == id {
			next := make(Forest, 0, len(forest)-1)
			next = append(next, forest[:i]...)
			next = append(next, forest[i+1:]...)
			return next, true
		}

		if len(node.Replies) == 0 {
			continue
		}
		if replies, ok := removeNode(node.Replies, id); ok {
			next := make(Forest, len(forest))
			copy(next, forest)
			parent := cloneNode(node)
			parent.Replies = replies
			next[i] = parent
			return next, true
		}
	}
	return forest, false
}

// prependNode puts a node at the front of the forest.
func prependNode(forest Forest, node *entity.Comment) Forest {
	next := make(Forest, 0, len(forest)+1)
	next = append(next, node)
	next = append(next, forest...)
	return next
}

// appendReply attaches a reply to the matched parent and bumps its count.
func appendReply(forest Forest, parentID int64, reply *entity.Comment) (Forest, bool) {
	return updateNode(forest, parentID, func(parent *entity.Comment) *entity.Comment {
		parent.Replies = append(parent.Replies, reply)
		parent.RepliesCount++
		return parent
	})
}

// findNode returns the matched node without copying. Callers must treat
// the result as read-only.
func findNode(forest Forest, id int64) *entity.Comment {
	for _, node := range forest {
		if node.ID == id {
			return node
		}
		if found := findNode(node.Replies, id); found != nil {
			return found
		}
	}
	return nil
}
