package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/xifanezz/medium-clone-sub000/internal/entity"
)

type CacheRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCacheRepository(client *redis.Client, ttl time.Duration) *CacheRepository {
	return &CacheRepository{
		client: client,
		ttl:    ttl,
	}
}

// Cached pages carry a per-post generation counter in their key; bumping
// the counter on any mutation makes stale pages unreachable and lets the
// TTL reap them.
func (r *CacheRepository) pageKey(ctx context.Context, postID int64, page, limit int) (string, error) {
	gen, err := r.client.Get(ctx, fmt.Sprintf("comments:%d:gen", postID)).Int64()
	if err != nil && err != redis.Nil {
		return "", err
	}
	return fmt.Sprintf("comments:%d:g%d:p%d:l%d", postID, gen, page, limit), nil
}

func (r *CacheRepository) GetCommentsPage(ctx context.Context, postID int64, page, limit int) (*entity.CommentsPage, error) {
	key, err := r.pageKey(ctx, postID, page, limit)
	if err != nil {
		return nil, err
	}

	data, err := r.client.Get(ctx, key).Result()
	if err != nil {
		return nil, err
	}

	var result entity.CommentsPage
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *CacheRepository) SetCommentsPage(ctx context.Context, postID int64, page, limit int, value *entity.CommentsPage) error {
	key, err := r.pageKey(ctx, postID, page, limit)
	if err != nil {
		return err
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return r.client.Set(ctx, key, data, r.ttl).Err()
}

// InvalidatePost advances the post's cache generation
func (r *CacheRepository) InvalidatePost(ctx context.Context, postID int64) error {
	return r.client.Incr(ctx, fmt.Sprintf("comments:%d:gen", postID)).Err()
}

// IncrementPostActivity bumps the post in the most-discussed ranking
func (r *CacheRepository) IncrementPostActivity(ctx context.Context, postID int64) error {
	return r.client.ZIncrBy(ctx, "popular_posts", 1, fmt.Sprintf("%d", postID)).Err()
}

// GetMostDiscussed returns post ids ordered by comment activity
func (r *CacheRepository) GetMostDiscussed(ctx context.Context, count int) ([]string, error) {
	result, err := r.client.ZRevRange(ctx, "popular_posts", 0, int64(count-1)).Result()
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ReplaceActivityRanking atomically rebuilds the ranking from store counts
func (r *CacheRepository) ReplaceActivityRanking(ctx context.Context, activity []*entity.PostActivity) error {
	members := make([]redis.Z, 0, len(activity))
	for _, a := range activity {
		members = append(members, redis.Z{
			Score:  float64(a.Comments),
			Member: fmt.Sprintf("%d", a.PostID),
		})
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, "popular_posts")
	if len(members) > 0 {
		pipe.ZAdd(ctx, "popular_posts", members...)
	}
	_, err := pipe.Exec(ctx)
	return err
}
