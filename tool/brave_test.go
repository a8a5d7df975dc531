package tool

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBraveSearch_Call(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "golang graphs", r.URL.Query().Get("q"))
		assert.Equal(t, "test-key", r.Header.Get("X-Subscription-Token"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"web": {
				"results": [
					{"title": "Result One", "url": "https://one.example", "description": "first"},
					{"title": "Result Two", "url": "https://two.example", "description": "second"}
				]
			}
		}`))
	}))
	defer server.Close()

	b, err := NewBraveSearch("test-key", WithBraveBaseURL(server.URL), WithBraveCount(5))
	require.NoError(t, err)

	out, err := b.Call(context.Background(), "golang graphs")
	require.NoError(t, err)
	assert.Contains(t, out, "1. Title: Result One")
	assert.Contains(t, out, "https://two.example")
	assert.Contains(t, out, "Description: second")
}

func TestBraveSearch_NoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"web": {"results": []}}`))
	}))
	defer server.Close()

	b, err := NewBraveSearch("test-key", WithBraveBaseURL(server.URL))
	require.NoError(t, err)

	out, err := b.Call(context.Background(), "nothing")
	require.NoError(t, err)
	assert.Equal(t, "No results found", out)
}

func TestBraveSearch_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	b, err := NewBraveSearch("test-key", WithBraveBaseURL(server.URL))
	require.NoError(t, err)

	_, err = b.Call(context.Background(), "query")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestBraveSearch_MissingKey(t *testing.T) {
	t.Setenv("BRAVE_API_KEY", "")
	_, err := NewBraveSearch("")
	assert.Error(t, err)
}

func TestBraveSearch_CountClamping(t *testing.T) {
	b, err := NewBraveSearch("k", WithBraveCount(100))
	require.NoError(t, err)
	assert.Equal(t, 20, b.count)

	b, err = NewBraveSearch("k", WithBraveCount(-1))
	require.NoError(t, err)
	assert.Equal(t, 1, b.count)
}
