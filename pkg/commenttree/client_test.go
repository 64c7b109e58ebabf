package commenttree

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xifanezz/medium-clone-sub000/internal/entity"
)

func TestClientListComments(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/comments/42", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))

		json.NewEncoder(w).Encode(entity.CommentsPage{
			Data:       []*entity.Comment{{ID: 1, Content: "hello"}},
			Pagination: entity.Pagination{Page: 2, Limit: 10, HasMore: true},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	page, err := client.ListComments(context.Background(), 42, 2, 10)

	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.True(t, page.Pagination.HasMore)
}

func TestClientCreateComment(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/comment/42", r.URL.Path)
		assert.Equal(t, "Bearer token-123", r.Header.Get("Authorization"))

		var req entity.CreateCommentRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "hello", req.Content)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": entity.Comment{ID: 100, Content: req.Content},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "token-123")
	created, err := client.CreateComment(context.Background(), 42, &entity.CreateCommentRequest{Content: "hello"})

	require.NoError(t, err)
	assert.Equal(t, int64(100), created.ID)
}

func TestClientSurfacesErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]string{"error": "forbidden operation"})
	}))
	defer server.Close()

	client := NewClient(server.URL, "token-123")
	err := client.DeleteComment(context.Background(), 5)

	require.Error(t, err)
	assert.Equal(t, "forbidden operation", err.Error())
}

func TestClientUnexpectedStatusWithoutBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	_, err := client.ListComments(context.Background(), 42, 1, 10)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}
