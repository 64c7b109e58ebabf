package commenttree

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xifanezz/medium-clone-sub000/internal/entity"
)

// fakeAPI is a scripted API implementation for controller tests.
type fakeAPI struct {
	listResult   *entity.CommentsPage
	listErr      error
	createResult *entity.Comment
	createErr    error
	updateResult *entity.Comment
	updateErr    error
	deleteErr    error

	lastCreateReq *entity.CreateCommentRequest
}

func (f *fakeAPI) ListComments(ctx context.Context, postID int64, page, limit int) (*entity.CommentsPage, error) {
	return f.listResult, f.listErr
}

func (f *fakeAPI) CreateComment(ctx context.Context, postID int64, req *entity.CreateCommentRequest) (*entity.Comment, error) {
	f.lastCreateReq = req
	return f.createResult, f.createErr
}

func (f *fakeAPI) UpdateComment(ctx context.Context, commentID int64, req *entity.UpdateCommentRequest) (*entity.Comment, error) {
	return f.updateResult, f.updateErr
}

func (f *fakeAPI) DeleteComment(ctx context.Context, commentID int64) error {
	return f.deleteErr
}

func loadedController(t *testing.T, api *fakeAPI) *Controller {
	t.Helper()

	api.listResult = &entity.CommentsPage{
		Data: []*entity.Comment{
			{ID: 1, Content: "first", RepliesCount: 1, Replies: []*entity.Comment{
				{ID: 11, ParentID: ptr(int64(1)), Content: "reply"},
			}},
			{ID: 2, Content: "second"},
		},
		Pagination: entity.Pagination{Page: 1, Limit: 10, HasMore: false},
	}

	ctrl := NewController(api, 42, 10)
	require.NoError(t, ctrl.FetchComments(context.Background(), 1, true))
	return ctrl
}

func TestFetchCommentsReset(t *testing.T) {
	api := &fakeAPI{}
	ctrl := loadedController(t, api)

	assert.Len(t, ctrl.Comments(), 2)
	assert.Equal(t, 1, ctrl.Page())
	assert.False(t, ctrl.HasMore())
	assert.Empty(t, ctrl.ErrorMessage())
}

func TestFetchCommentsAppend(t *testing.T) {
	api := &fakeAPI{}
	ctrl := loadedController(t, api)

	api.listResult = &entity.CommentsPage{
		Data:       []*entity.Comment{{ID: 3, Content: "third"}},
		Pagination: entity.Pagination{Page: 2, Limit: 10, HasMore: true},
	}

	require.NoError(t, ctrl.FetchMore(context.Background()))

	forest := ctrl.Comments()
	require.Len(t, forest, 3)
	assert.Equal(t, int64(3), forest[2].ID)
	assert.Equal(t, 2, ctrl.Page())
	assert.True(t, ctrl.HasMore())
}

func TestFetchCommentsFailureKeepsData(t *testing.T) {
	api := &fakeAPI{}
	ctrl := loadedController(t, api)

	api.listErr = errors.New("network down")
	err := ctrl.FetchMore(context.Background())

	require.Error(t, err)
	assert.Len(t, ctrl.Comments(), 2)
	assert.Equal(t, "network down", ctrl.ErrorMessage())
}

func TestSubmitTopLevelCommentSuccess(t *testing.T) {
	api := &fakeAPI{}
	ctrl := loadedController(t, api)

	api.createResult = &entity.Comment{ID: 100, Content: "hello"}

	created, err := ctrl.SubmitTopLevelComment(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, int64(100), created.ID)

	// confirmed node sits where the optimistic one was inserted
	forest := ctrl.Comments()
	require.Len(t, forest, 3)
	assert.Equal(t, int64(100), forest[0].ID)
	assert.Nil(t, api.lastCreateReq.ParentID)
}

func TestSubmitTopLevelCommentRollback(t *testing.T) {
	api := &fakeAPI{}
	ctrl := loadedController(t, api)
	before := ctrl.Comments()

	api.createErr = errors.New("service unavailable")

	_, err := ctrl.SubmitTopLevelComment(context.Background(), "hello")
	require.Error(t, err)

	// forest reverts to its pre-submission shape exactly
	assert.Equal(t, before, ctrl.Comments())
	assert.Equal(t, "service unavailable", ctrl.ErrorMessage())
}

func TestSubmitReplySuccess(t *testing.T) {
	api := &fakeAPI{}
	ctrl := loadedController(t, api)

	api.createResult = &entity.Comment{ID: 101, ParentID: ptr(int64(1)), Content: "nice"}

	created, err := ctrl.SubmitReply(context.Background(), 1, "nice")
	require.NoError(t, err)
	assert.Equal(t, int64(101), created.ID)

	forest := ctrl.Comments()
	require.Len(t, forest[0].Replies, 2)
	assert.Equal(t, int64(101), forest[0].Replies[1].ID)
	assert.Equal(t, int64(2), forest[0].RepliesCount)
	assert.True(t, ctrl.IsExpanded(1))
	require.NotNil(t, api.lastCreateReq.ParentID)
	assert.Equal(t, int64(1), *api.lastCreateReq.ParentID)
}

func TestSubmitReplyFailureLeavesTreeUntouched(t *testing.T) {
	api := &fakeAPI{}
	ctrl := loadedController(t, api)
	before := ctrl.Comments()

	api.createErr = errors.New("rejected")

	_, err := ctrl.SubmitReply(context.Background(), 1, "nice")
	require.Error(t, err)
	assert.Equal(t, before, ctrl.Comments())
	assert.False(t, ctrl.IsExpanded(1))
}

func TestEditCommentPreservesChildren(t *testing.T) {
	api := &fakeAPI{}
	ctrl := loadedController(t, api)

	api.updateResult = &entity.Comment{ID: 1, Content: "edited"}

	_, err := ctrl.EditComment(context.Background(), 1, "edited")
	require.NoError(t, err)

	forest := ctrl.Comments()
	assert.Equal(t, "edited", forest[0].Content)
	require.Len(t, forest[0].Replies, 1)
	assert.Equal(t, int64(11), forest[0].Replies[0].ID)
	assert.Equal(t, int64(1), forest[0].RepliesCount)
}

func TestEditCommentFailureLeavesTreeUntouched(t *testing.T) {
	api := &fakeAPI{}
	ctrl := loadedController(t, api)
	before := ctrl.Comments()

	api.updateErr = errors.New("forbidden operation")

	_, err := ctrl.EditComment(context.Background(), 1, "edited")
	require.Error(t, err)
	assert.Equal(t, before, ctrl.Comments())
	assert.Equal(t, "forbidden operation", ctrl.ErrorMessage())
}

func TestDeleteCommentOptimistic(t *testing.T) {
	api := &fakeAPI{}
	ctrl := loadedController(t, api)

	require.NoError(t, ctrl.DeleteComment(context.Background(), 2))

	forest := ctrl.Comments()
	require.Len(t, forest, 1)
	assert.Equal(t, int64(1), forest[0].ID)
}

func TestDeleteCommentRollback(t *testing.T) {
	api := &fakeAPI{}
	ctrl := loadedController(t, api)
	before := ctrl.Comments()

	api.deleteErr = errors.New("service unavailable")

	err := ctrl.DeleteComment(context.Background(), 2)
	require.Error(t, err)

	// full snapshot restore, not a partial re-insertion
	assert.Equal(t, before, ctrl.Comments())
	assert.Equal(t, "service unavailable", ctrl.ErrorMessage())
}

func TestDeleteNestedReply(t *testing.T) {
	api := &fakeAPI{}
	ctrl := loadedController(t, api)

	require.NoError(t, ctrl.DeleteComment(context.Background(), 11))

	forest := ctrl.Comments()
	assert.Empty(t, forest[0].Replies)
}

func TestToggleReplyExpansion(t *testing.T) {
	api := &fakeAPI{}
	ctrl := loadedController(t, api)

	assert.False(t, ctrl.IsExpanded(1))
	ctrl.ToggleReplyExpansion(1)
	assert.True(t, ctrl.IsExpanded(1))
	ctrl.ToggleReplyExpansion(1)
	assert.False(t, ctrl.IsExpanded(1))
}
