package commenttree

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/xifanezz/medium-clone-sub000/internal/entity"
)

// API is the slice of the comment service the controller talks to.
type API interface {
	ListComments(ctx context.Context, postID int64, page, limit int) (*entity.CommentsPage, error)
	CreateComment(ctx context.Context, postID int64, req *entity.CreateCommentRequest) (*entity.Comment, error)
	UpdateComment(ctx context.Context, commentID int64, req *entity.UpdateCommentRequest) (*entity.Comment, error)
	DeleteComment(ctx context.Context, commentID int64) error
}

// Client implements API over the service's HTTP contract.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

type dataEnvelope struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var envelope dataEnvelope
		if json.Unmarshal(raw, &envelope) == nil && envelope.Error != "" {
			return fmt.Errorf("%s", envelope.Error)
		}
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

func (c *Client) ListComments(ctx context.Context, postID int64, page, limit int) (*entity.CommentsPage, error) {
	path := fmt.Sprintf("/comments/%d?page=%d&limit=%d", postID, page, limit)

	var result entity.CommentsPage
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) CreateComment(ctx context.Context, postID int64, req *entity.CreateCommentRequest) (*entity.Comment, error) {
	var envelope struct {
		Data *entity.Comment `json:"data"`
	}
	path := fmt.Sprintf("/comment/%d", postID)
	if err := c.do(ctx, http.MethodPost, path, req, &envelope); err != nil {
		return nil, err
	}
	return envelope.Data, nil
}

func (c *Client) UpdateComment(ctx context.Context, commentID int64, req *entity.UpdateCommentRequest) (*entity.Comment, error) {
	var envelope struct {
		Data *entity.Comment `json:"data"`
	}
	path := fmt.Sprintf("/comment/%d", commentID)
	if err := c.do(ctx, http.MethodPut, path, req, &envelope); err != nil {
		return nil, err
	}
	return envelope.Data, nil
}

func (c *Client) DeleteComment(ctx context.Context, commentID int64) error {
	path := fmt.Sprintf("/comment/%d", commentID)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}
