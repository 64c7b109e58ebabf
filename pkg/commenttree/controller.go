package commenttree

import (
	"context"
	"sync"
	"time"

	"github.com/xifanezz/medium-clone-sub000/internal/entity"
)

// Controller owns the comment forest for one post view. Mutations are
// applied optimistically where the UI benefits from latency hiding and
// rolled back when the service rejects them; a failed request never
// clears previously loaded data.
//
// The controller does not deduplicate concurrent fetches and does not
// order concurrent mutations beyond last-response-wins per node id. The
// caller is expected to disable "load more" while a fetch is outstanding.
type Controller struct {
	api    API
	postID int64
	limit  int

	mu       sync.Mutex
	forest   Forest
	page     int
	hasMore  bool
	expanded map[int64]bool
	errMsg   string
	tempSeq  int64
}

func NewController(api API, postID int64, limit int) *Controller {
	if limit < 1 {
		limit = 10
	}
	return &Controller{
		api:      api,
		postID:   postID,
		limit:    limit,
		page:     1,
		expanded: make(map[int64]bool),
	}
}

// Comments returns the current forest snapshot. The snapshot is immutable;
// later mutations produce new forests and never touch returned nodes.
func (c *Controller) Comments() Forest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.forest
}

func (c *Controller) Page() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

func (c *Controller) HasMore() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hasMore
}

// ErrorMessage returns the message from the last failed operation, or "".
func (c *Controller) ErrorMessage() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errMsg
}

func (c *Controller) ClearError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errMsg = ""
}

func (c *Controller) IsExpanded(commentID int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.expanded[commentID]
}

// FetchComments loads a page of top-level comments. With reset the forest
// is replaced, otherwise the page is appended.
func (c *Controller) FetchComments(ctx context.Context, page int, reset bool) error {
	result, err := c.api.ListComments(ctx, c.postID, page, c.limit)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.errMsg = err.Error()
		return err
	}

	if reset {
		c.forest = Forest(result.Data)
	} else {
		next := make(Forest, 0, len(c.forest)+len(result.Data))
		next = append(next, c.forest...)
		next = append(next, result.Data...)
		c.forest = next
	}
	c.page = result.Pagination.Page
	c.hasMore = result.Pagination.HasMore
	c.errMsg = ""
	return nil
}

// FetchMore loads the page after the last loaded one.
func (c *Controller) FetchMore(ctx context.Context) error {
	c.mu.Lock()
	next := c.page + 1
	c.mu.Unlock()
	return c.FetchComments(ctx, next, false)
}

// nextTempID generates a client-side id for an optimistic node. Negative
// so it can never collide with a server-assigned id.
func (c *Controller) nextTempID() int64 {
	c.tempSeq--
	return -time.Now().UnixNano() + c.tempSeq
}

// SubmitTopLevelComment inserts an optimistic node at the front of the
// forest, then confirms it with the service. On success the optimistic
// node is replaced in place; on failure it is removed, restoring the
// pre-submission shape exactly.
func (c *Controller) SubmitTopLevelComment(ctx context.Context, content string) (*entity.Comment, error) {
	c.mu.Lock()
	tempID := c.nextTempID()
	now := time.Now()
	optimistic := &entity.Comment{
		ID:        tempID,
		PostID:    c.postID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	c.forest = prependNode(c.forest, optimistic)
	c.mu.Unlock()

	created, err := c.api.CreateComment(ctx, c.postID, &entity.CreateCommentRequest{Content: content})

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.forest, _ = removeNode(c.forest, tempID)
		c.errMsg = err.Error()
		return nil, err
	}

	c.forest, _ = updateNode(c.forest, tempID, func(*entity.Comment) *entity.Comment {
		return created
	})
	c.errMsg = ""
	return created, nil
}

// SubmitReply creates a reply without an optimistic placeholder, then
// appends the confirmed node to its parent and expands the thread.
func (c *Controller) SubmitReply(ctx context.Context, parentID int64, content string) (*entity.Comment, error) {
	created, err := c.api.CreateComment(ctx, c.postID, &entity.CreateCommentRequest{
		Content:  content,
		ParentID: &parentID,
	})

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.errMsg = err.Error()
		return nil, err
	}

	c.forest, _ = appendReply(c.forest, parentID, created)
	c.expanded[parentID] = true
	c.errMsg = ""
	return created, nil
}

// EditComment confirms the edit with the service first, then replaces the
// node in place, keeping its loaded replies.
func (c *Controller) EditComment(ctx context.Context, commentID int64, content string) (*entity.Comment, error) {
	updated, err := c.api.UpdateComment(ctx, commentID, &entity.UpdateCommentRequest{Content: content})

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.errMsg = err.Error()
		return nil, err
	}

	c.forest, _ = updateNode(c.forest, commentID, func(node *entity.Comment) *entity.Comment {
		replies := node.Replies
		count := node.RepliesCount
		merged := *updated
		merged.Replies = replies
		merged.RepliesCount = count
		return &merged
	})
	c.errMsg = ""
	return updated, nil
}

// DeleteComment removes the node optimistically and restores the whole
// pre-deletion snapshot if the service rejects the delete.
func (c *Controller) DeleteComment(ctx context.Context, commentID int64) error {
	c.mu.Lock()
	snapshot := c.forest
	c.forest, _ = removeNode(c.forest, commentID)
	c.mu.Unlock()

	err := c.api.DeleteComment(ctx, commentID)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.forest = snapshot
		c.errMsg = err.Error()
		return err
	}

	delete(c.expanded, commentID)
	c.errMsg = ""
	return nil
}

// ToggleReplyExpansion flips the visibility of a thread's loaded replies.
// Pure view state; no network call, no fetch of replies beyond the ones
// already present.
func (c *Controller) ToggleReplyExpansion(commentID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.expanded[commentID] = !c.expanded[commentID]
}
