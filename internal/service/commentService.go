package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	repository "github.com/xifanezz/medium-clone-sub000/internal/database/postgres"
	"github.com/xifanezz/medium-clone-sub000/internal/entity"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10

	// RepliesPreview is how many oldest replies each top-level comment
	// carries in a listing. There is no load-more-replies endpoint; the
	// client shows at most this many per thread.
	RepliesPreview = 3
)

type commentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	userRepo    repository.UserRepository
	cache       CommentCache
	publisher   EventPublisher
}

// NewCommentService creates a new CommentService. Cache and publisher
// may be nil; the service degrades to direct store access.
func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	cache CommentCache,
	publisher EventPublisher,
) CommentService {
	return &commentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		userRepo:    userRepo,
		cache:       cache,
		publisher:   publisher,
	}
}

// internalError hides raw persistence failures behind a fixed message
func internalError(op string, err error) error {
	logrus.WithFields(logrus.Fields{"op": op}).Errorf("persistence failure: %v", err)
	return entity.ErrInternal
}

func (s *commentService) CreateComment(ctx context.Context, postID, authorID int64, req *entity.CreateCommentRequest) (*entity.Comment, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, entity.ErrEmptyContent
	}

	exists, err := s.postRepo.Exists(ctx, postID)
	if err != nil {
		return nil, internalError("create_comment", err)
	}
	if !exists {
		return nil, entity.ErrPostNotFound
	}

	if req.ParentID != nil {
		parent, err := s.commentRepo.GetByID(ctx, *req.ParentID)
		if errors.Is(err, entity.ErrCommentNotFound) {
			return nil, entity.ErrParentNotFound
		}
		if err != nil {
			return nil, internalError("create_comment", err)
		}
		if parent.PostID != postID {
			return nil, entity.ErrParentPostMismatch
		}
	}

	comment := &entity.Comment{
		PostID:   postID,
		AuthorID: authorID,
		ParentID: req.ParentID,
		Content:  content,
	}

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		if errors.Is(err, entity.ErrUserNotFound) {
			return nil, err
		}
		return nil, internalError("create_comment", err)
	}

	s.invalidate(ctx, postID)
	s.bumpActivity(ctx, postID)
	s.publish(ctx, &entity.CommentEvent{
		Type:      entity.CommentEventCreated,
		CommentID: comment.ID,
		PostID:    comment.PostID,
		AuthorID:  comment.AuthorID,
		ParentID:  comment.ParentID,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
	})

	return comment, nil
}

func (s *commentService) ListTopLevelComments(ctx context.Context, postID int64, page, limit int) (*entity.CommentsPage, error) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}

	if s.cache != nil {
		if cached, err := s.cache.GetCommentsPage(ctx, postID, page, limit); err == nil {
			return cached, nil
		}
	}

	offset := (page - 1) * limit
	comments, err := s.commentRepo.GetTopLevelByPost(ctx, postID, limit, offset)
	if err != nil {
		return nil, internalError("list_comments", err)
	}

	parentIDs := make([]int64, 0, len(comments))
	for _, c := range comments {
		if c.RepliesCount > 0 {
			parentIDs = append(parentIDs, c.ID)
		}
	}

	replies, err := s.commentRepo.GetFirstReplies(ctx, parentIDs, RepliesPreview)
	if err != nil {
		return nil, internalError("list_comments", err)
	}
	for _, c := range comments {
		c.Replies = replies[c.ID]
	}

	result := &entity.CommentsPage{
		Data: comments,
		Pagination: entity.Pagination{
			Page:    page,
			Limit:   limit,
			HasMore: len(comments) == limit,
		},
	}

	if s.cache != nil {
		if err := s.cache.SetCommentsPage(ctx, postID, page, limit, result); err != nil {
			logrus.Warnf("Failed to cache comments page: %v", err)
		}
	}

	return result, nil
}

func (s *commentService) UpdateComment(ctx context.Context, commentID, requesterID int64, req *entity.UpdateCommentRequest) (*entity.Comment, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, entity.ErrEmptyContent
	}

	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if errors.Is(err, entity.ErrCommentNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, internalError("update_comment", err)
	}

	if comment.AuthorID != requesterID {
		return nil, entity.ErrForbidden
	}

	updated, err := s.commentRepo.UpdateContent(ctx, commentID, content)
	if errors.Is(err, entity.ErrCommentNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, internalError("update_comment", err)
	}

	s.invalidate(ctx, updated.PostID)
	return updated, nil
}

func (s *commentService) DeleteComment(ctx context.Context, commentID, requesterID int64) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if errors.Is(err, entity.ErrCommentNotFound) {
		return err
	}
	if err != nil {
		return internalError("delete_comment", err)
	}

	if comment.AuthorID != requesterID {
		return entity.ErrForbidden
	}

	if err := s.commentRepo.Delete(ctx, commentID); err != nil {
		if errors.Is(err, entity.ErrCommentNotFound) {
			return err
		}
		return internalError("delete_comment", err)
	}

	s.invalidate(ctx, comment.PostID)
	s.publish(ctx, &entity.CommentEvent{
		Type:      entity.CommentEventDeleted,
		CommentID: comment.ID,
		PostID:    comment.PostID,
		AuthorID:  comment.AuthorID,
		ParentID:  comment.ParentID,
		CreatedAt: time.Now(),
	})

	return nil
}

func (s *commentService) MostDiscussedPosts(ctx context.Context, limit int) ([]int64, error) {
	if limit < 1 {
		limit = DefaultLimit
	}

	if s.cache == nil {
		return []int64{}, nil
	}

	members, err := s.cache.GetMostDiscussed(ctx, limit)
	if err != nil {
		return nil, internalError("most_discussed", err)
	}

	ids := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			logrus.Warnf("Skipping malformed ranking member %q", m)
			continue
		}
		ids = append(ids, id)
	}

	return ids, nil
}

// RebuildActivityRanking reconciles the Redis ranking with store counts.
// Incremental ZIncrBy bumps drift when comments are deleted; the
// scheduler calls this to correct it.
func (s *commentService) RebuildActivityRanking(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}

	activity, err := s.commentRepo.CountByPost(ctx)
	if err != nil {
		return internalError("rebuild_ranking", err)
	}

	if err := s.cache.ReplaceActivityRanking(ctx, activity); err != nil {
		return internalError("rebuild_ranking", err)
	}

	logrus.Debugf("Activity ranking rebuilt for %d posts", len(activity))
	return nil
}

func (s *commentService) invalidate(ctx context.Context, postID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidatePost(ctx, postID); err != nil {
		logrus.Warnf("Failed to invalidate comments cache for post %d: %v", postID, err)
	}
}

func (s *commentService) bumpActivity(ctx context.Context, postID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.IncrementPostActivity(ctx, postID); err != nil {
		logrus.Warnf("Failed to bump activity for post %d: %v", postID, err)
	}
}

func (s *commentService) publish(ctx context.Context, event *entity.CommentEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		logrus.Warnf("Failed to publish %s event for comment %d: %v", event.Type, event.CommentID, err)
	}
}
