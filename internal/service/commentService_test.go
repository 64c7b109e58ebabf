package service

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xifanezz/medium-clone-sub000/internal/entity"
)

// In-memory fakes standing in for the PostgreSQL repositories.

type memCommentRepo struct {
	nextID   int64
	comments map[int64]*entity.Comment
	users    map[int64]*entity.User
	failWith error
}

func newMemCommentRepo(users map[int64]*entity.User) *memCommentRepo {
	return &memCommentRepo{
		nextID:   1,
		comments: make(map[int64]*entity.Comment),
		users:    users,
	}
}

func (m *memCommentRepo) author(id int64) entity.CommentAuthor {
	if u, ok := m.users[id]; ok {
		return entity.CommentAuthor{Username: u.Username, DisplayName: u.DisplayName, Avatar: u.Avatar}
	}
	return entity.CommentAuthor{}
}

func (m *memCommentRepo) Create(ctx context.Context, comment *entity.Comment) error {
	if m.failWith != nil {
		return m.failWith
	}
	if _, ok := m.users[comment.AuthorID]; !ok {
		return entity.ErrUserNotFound
	}
	comment.ID = m.nextID
	m.nextID++
	comment.CreatedAt = time.Now()
	comment.UpdatedAt = comment.CreatedAt
	comment.User = m.author(comment.AuthorID)
	stored := *comment
	m.comments[comment.ID] = &stored
	return nil
}

func (m *memCommentRepo) GetByID(ctx context.Context, id int64) (*entity.Comment, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	c, ok := m.comments[id]
	if !ok {
		return nil, entity.ErrCommentNotFound
	}
	copied := *c
	copied.User = m.author(c.AuthorID)
	return &copied, nil
}

func (m *memCommentRepo) UpdateContent(ctx context.Context, id int64, content string) (*entity.Comment, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	c, ok := m.comments[id]
	if !ok {
		return nil, entity.ErrCommentNotFound
	}
	c.Content = content
	c.UpdatedAt = time.Now()
	copied := *c
	copied.User = m.author(c.AuthorID)
	return &copied, nil
}

func (m *memCommentRepo) Delete(ctx context.Context, id int64) error {
	if m.failWith != nil {
		return m.failWith
	}
	if _, ok := m.comments[id]; !ok {
		return entity.ErrCommentNotFound
	}
	// cascade the way the FK constraint would
	victims := []int64{id}
	for len(victims) > 0 {
		victim := victims[0]
		victims = victims[1:]
		delete(m.comments, victim)
		for cid, c := range m.comments {
			if c.ParentID != nil && *c.ParentID == victim {
				victims = append(victims, cid)
			}
		}
	}
	return nil
}

func (m *memCommentRepo) GetTopLevelByPost(ctx context.Context, postID int64, limit, offset int) ([]*entity.Comment, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	var top []*entity.Comment
	for _, c := range m.comments {
		if c.PostID == postID && c.ParentID == nil {
			copied := *c
			copied.User = m.author(c.AuthorID)
			copied.RepliesCount = m.countChildren(c.ID)
			top = append(top, &copied)
		}
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].CreatedAt.Equal(top[j].CreatedAt) {
			return top[i].ID > top[j].ID
		}
		return top[i].CreatedAt.After(top[j].CreatedAt)
	})
	if offset >= len(top) {
		return []*entity.Comment{}, nil
	}
	top = top[offset:]
	if len(top) > limit {
		top = top[:limit]
	}
	return top, nil
}

func (m *memCommentRepo) countChildren(parentID int64) int64 {
	var n int64
	for _, c := range m.comments {
		if c.ParentID != nil && *c.ParentID == parentID {
			n++
		}
	}
	return n
}

func (m *memCommentRepo) GetFirstReplies(ctx context.Context, parentIDs []int64, perParent int) (map[int64][]*entity.Comment, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	replies := make(map[int64][]*entity.Comment)
	for _, pid := range parentIDs {
		var children []*entity.Comment
		for _, c := range m.comments {
			if c.ParentID != nil && *c.ParentID == pid {
				copied := *c
				copied.User = m.author(c.AuthorID)
				children = append(children, &copied)
			}
		}
		sort.Slice(children, func(i, j int) bool {
			if children[i].CreatedAt.Equal(children[j].CreatedAt) {
				return children[i].ID < children[j].ID
			}
			return children[i].CreatedAt.Before(children[j].CreatedAt)
		})
		if len(children) > perParent {
			children = children[:perParent]
		}
		if len(children) > 0 {
			replies[pid] = children
		}
	}
	return replies, nil
}

func (m *memCommentRepo) CountReplies(ctx context.Context, parentIDs []int64) (map[int64]int64, error) {
	counts := make(map[int64]int64)
	for _, pid := range parentIDs {
		if n := m.countChildren(pid); n > 0 {
			counts[pid] = n
		}
	}
	return counts, nil
}

func (m *memCommentRepo) CountByPost(ctx context.Context) ([]*entity.PostActivity, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	byPost := make(map[int64]int64)
	for _, c := range m.comments {
		byPost[c.PostID]++
	}
	var activity []*entity.PostActivity
	for pid, n := range byPost {
		activity = append(activity, &entity.PostActivity{PostID: pid, Comments: n})
	}
	return activity, nil
}

type memPostRepo struct {
	posts map[int64]*entity.Post
}

func (m *memPostRepo) GetByID(ctx context.Context, id int64) (*entity.Post, error) {
	p, ok := m.posts[id]
	if !ok {
		return nil, entity.ErrPostNotFound
	}
	return p, nil
}

func (m *memPostRepo) Exists(ctx context.Context, id int64) (bool, error) {
	_, ok := m.posts[id]
	return ok, nil
}

type memUserRepo struct {
	users map[int64]*entity.User
}

func (m *memUserRepo) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, entity.ErrUserNotFound
	}
	return u, nil
}

func (m *memUserRepo) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, entity.ErrUserNotFound
}

type recordingPublisher struct {
	events []interface{}
}

func (p *recordingPublisher) Publish(ctx context.Context, message interface{}) error {
	p.events = append(p.events, message)
	return nil
}

type fixture struct {
	service     CommentService
	commentRepo *memCommentRepo
	publisher   *recordingPublisher
}

func newFixture() *fixture {
	users := map[int64]*entity.User{
		1: {ID: 1, Username: "alice", DisplayName: "Alice"},
		2: {ID: 2, Username: "bob", DisplayName: "Bob"},
	}
	posts := map[int64]*entity.Post{
		10: {ID: 10, AuthorID: 1, Title: "first post"},
		20: {ID: 20, AuthorID: 2, Title: "second post"},
	}
	commentRepo := newMemCommentRepo(users)
	publisher := &recordingPublisher{}
	svc := NewCommentService(commentRepo, &memPostRepo{posts: posts}, &memUserRepo{users: users}, nil, publisher)
	return &fixture{service: svc, commentRepo: commentRepo, publisher: publisher}
}

func TestCreateComment(t *testing.T) {
	ctx := context.Background()

	t.Run("top-level comment", func(t *testing.T) {
		f := newFixture()
		comment, err := f.service.CreateComment(ctx, 10, 1, &entity.CreateCommentRequest{Content: "hello"})

		require.NoError(t, err)
		assert.Nil(t, comment.ParentID)
		assert.Equal(t, int64(0), comment.RepliesCount)
		assert.Equal(t, "alice", comment.User.Username)
		require.Len(t, f.publisher.events, 1)
	})

	t.Run("content is trimmed", func(t *testing.T) {
		f := newFixture()
		comment, err := f.service.CreateComment(ctx, 10, 1, &entity.CreateCommentRequest{Content: "  hello  "})

		require.NoError(t, err)
		assert.Equal(t, "hello", comment.Content)
	})

	t.Run("empty content after trim", func(t *testing.T) {
		f := newFixture()
		_, err := f.service.CreateComment(ctx, 10, 1, &entity.CreateCommentRequest{Content: "   "})

		assert.ErrorIs(t, err, entity.ErrEmptyContent)
	})

	t.Run("missing post", func(t *testing.T) {
		f := newFixture()
		_, err := f.service.CreateComment(ctx, 999, 1, &entity.CreateCommentRequest{Content: "hello"})

		assert.ErrorIs(t, err, entity.ErrPostNotFound)
	})

	t.Run("missing parent", func(t *testing.T) {
		f := newFixture()
		missing := int64(404)
		_, err := f.service.CreateComment(ctx, 10, 1, &entity.CreateCommentRequest{Content: "hello", ParentID: &missing})

		assert.ErrorIs(t, err, entity.ErrParentNotFound)
	})

	t.Run("parent on a different post", func(t *testing.T) {
		f := newFixture()
		parent, err := f.service.CreateComment(ctx, 20, 2, &entity.CreateCommentRequest{Content: "other thread"})
		require.NoError(t, err)

		_, err = f.service.CreateComment(ctx, 10, 1, &entity.CreateCommentRequest{Content: "hello", ParentID: &parent.ID})
		assert.ErrorIs(t, err, entity.ErrParentPostMismatch)
	})

	t.Run("reply to same-post parent", func(t *testing.T) {
		f := newFixture()
		parent, err := f.service.CreateComment(ctx, 10, 1, &entity.CreateCommentRequest{Content: "hello"})
		require.NoError(t, err)

		reply, err := f.service.CreateComment(ctx, 10, 2, &entity.CreateCommentRequest{Content: "nice!", ParentID: &parent.ID})
		require.NoError(t, err)
		require.NotNil(t, reply.ParentID)
		assert.Equal(t, parent.ID, *reply.ParentID)
	})
}

func TestListTopLevelComments(t *testing.T) {
	ctx := context.Background()

	t.Run("replies are pre-fetched oldest-first", func(t *testing.T) {
		f := newFixture()
		parent, err := f.service.CreateComment(ctx, 10, 1, &entity.CreateCommentRequest{Content: "hello"})
		require.NoError(t, err)
		reply, err := f.service.CreateComment(ctx, 10, 2, &entity.CreateCommentRequest{Content: "nice!", ParentID: &parent.ID})
		require.NoError(t, err)

		page, err := f.service.ListTopLevelComments(ctx, 10, 1, 10)
		require.NoError(t, err)
		require.Len(t, page.Data, 1)
		assert.Equal(t, parent.ID, page.Data[0].ID)
		assert.Equal(t, int64(1), page.Data[0].RepliesCount)
		require.Len(t, page.Data[0].Replies, 1)
		assert.Equal(t, reply.ID, page.Data[0].Replies[0].ID)
	})

	t.Run("reply preview is capped", func(t *testing.T) {
		f := newFixture()
		parent, err := f.service.CreateComment(ctx, 10, 1, &entity.CreateCommentRequest{Content: "hello"})
		require.NoError(t, err)
		for i := 0; i < 5; i++ {
			_, err := f.service.CreateComment(ctx, 10, 2, &entity.CreateCommentRequest{Content: "reply", ParentID: &parent.ID})
			require.NoError(t, err)
		}

		page, err := f.service.ListTopLevelComments(ctx, 10, 1, 10)
		require.NoError(t, err)
		require.Len(t, page.Data, 1)
		assert.Len(t, page.Data[0].Replies, RepliesPreview)
		assert.Equal(t, int64(5), page.Data[0].RepliesCount)
	})

	t.Run("hasMore boundary", func(t *testing.T) {
		f := newFixture()
		for i := 0; i < 3; i++ {
			_, err := f.service.CreateComment(ctx, 10, 1, &entity.CreateCommentRequest{Content: "hello"})
			require.NoError(t, err)
		}

		page, err := f.service.ListTopLevelComments(ctx, 10, 1, 3)
		require.NoError(t, err)
		assert.Len(t, page.Data, 3)
		assert.True(t, page.Pagination.HasMore)

		page, err = f.service.ListTopLevelComments(ctx, 10, 2, 3)
		require.NoError(t, err)
		assert.Empty(t, page.Data)
		assert.False(t, page.Pagination.HasMore)
	})

	t.Run("defaults applied to bad paging input", func(t *testing.T) {
		f := newFixture()
		page, err := f.service.ListTopLevelComments(ctx, 10, 0, -5)
		require.NoError(t, err)
		assert.Equal(t, DefaultPage, page.Pagination.Page)
		assert.Equal(t, DefaultLimit, page.Pagination.Limit)
	})

	t.Run("read is idempotent", func(t *testing.T) {
		f := newFixture()
		_, err := f.service.CreateComment(ctx, 10, 1, &entity.CreateCommentRequest{Content: "hello"})
		require.NoError(t, err)

		first, err := f.service.ListTopLevelComments(ctx, 10, 1, 10)
		require.NoError(t, err)
		second, err := f.service.ListTopLevelComments(ctx, 10, 1, 10)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
}

func TestUpdateComment(t *testing.T) {
	ctx := context.Background()

	t.Run("author edits own comment", func(t *testing.T) {
		f := newFixture()
		comment, err := f.service.CreateComment(ctx, 10, 1, &entity.CreateCommentRequest{Content: "hello"})
		require.NoError(t, err)

		updated, err := f.service.UpdateComment(ctx, comment.ID, 1, &entity.UpdateCommentRequest{Content: "edited"})
		require.NoError(t, err)
		assert.Equal(t, "edited", updated.Content)
	})

	t.Run("non-author is rejected", func(t *testing.T) {
		f := newFixture()
		comment, err := f.service.CreateComment(ctx, 10, 1, &entity.CreateCommentRequest{Content: "hello"})
		require.NoError(t, err)

		_, err = f.service.UpdateComment(ctx, comment.ID, 2, &entity.UpdateCommentRequest{Content: "edited"})
		assert.ErrorIs(t, err, entity.ErrForbidden)

		// content unchanged
		unchanged, err := f.commentRepo.GetByID(ctx, comment.ID)
		require.NoError(t, err)
		assert.Equal(t, "hello", unchanged.Content)
	})

	t.Run("missing comment", func(t *testing.T) {
		f := newFixture()
		_, err := f.service.UpdateComment(ctx, 404, 1, &entity.UpdateCommentRequest{Content: "edited"})
		assert.ErrorIs(t, err, entity.ErrCommentNotFound)
	})

	t.Run("empty content", func(t *testing.T) {
		f := newFixture()
		comment, err := f.service.CreateComment(ctx, 10, 1, &entity.CreateCommentRequest{Content: "hello"})
		require.NoError(t, err)

		_, err = f.service.UpdateComment(ctx, comment.ID, 1, &entity.UpdateCommentRequest{Content: " "})
		assert.ErrorIs(t, err, entity.ErrEmptyContent)
	})
}

func TestDeleteComment(t *testing.T) {
	ctx := context.Background()

	t.Run("cascade removes descendants", func(t *testing.T) {
		f := newFixture()
		parent, err := f.service.CreateComment(ctx, 10, 1, &entity.CreateCommentRequest{Content: "hello"})
		require.NoError(t, err)
		_, err = f.service.CreateComment(ctx, 10, 2, &entity.CreateCommentRequest{Content: "nice!", ParentID: &parent.ID})
		require.NoError(t, err)

		require.NoError(t, f.service.DeleteComment(ctx, parent.ID, 1))

		page, err := f.service.ListTopLevelComments(ctx, 10, 1, 10)
		require.NoError(t, err)
		assert.Empty(t, page.Data)
		assert.Empty(t, f.commentRepo.comments)
	})

	t.Run("non-author is rejected", func(t *testing.T) {
		f := newFixture()
		comment, err := f.service.CreateComment(ctx, 10, 1, &entity.CreateCommentRequest{Content: "hello"})
		require.NoError(t, err)

		err = f.service.DeleteComment(ctx, comment.ID, 2)
		assert.ErrorIs(t, err, entity.ErrForbidden)
		assert.Len(t, f.commentRepo.comments, 1)
	})

	t.Run("missing comment", func(t *testing.T) {
		f := newFixture()
		err := f.service.DeleteComment(ctx, 404, 1)
		assert.ErrorIs(t, err, entity.ErrCommentNotFound)
	})
}

func TestPersistenceErrorsAreReclassified(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.commentRepo.failWith = errors.New("pq: connection refused")

	_, err := f.service.ListTopLevelComments(ctx, 10, 1, 10)
	assert.ErrorIs(t, err, entity.ErrInternal)

	_, err = f.service.UpdateComment(ctx, 1, 1, &entity.UpdateCommentRequest{Content: "x"})
	assert.ErrorIs(t, err, entity.ErrInternal)

	err = f.service.DeleteComment(ctx, 1, 1)
	assert.ErrorIs(t, err, entity.ErrInternal)
}
