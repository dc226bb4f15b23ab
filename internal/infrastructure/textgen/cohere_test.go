package textgen

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitos/coin_dashboard/internal/domain"
)

func TestCohereAdapter_Generate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer key-123", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "command-a-03-2025", req.Model)
		assert.Equal(t, "Analyze Bitcoin", req.Message)
		assert.Equal(t, 1024, req.MaxTokens)
		assert.Equal(t, 0.1, req.Temperature)
		require.Len(t, req.ChatHistory, 1)
		assert.Equal(t, "SYSTEM", req.ChatHistory[0].Role)
		assert.Equal(t, "be concise", req.ChatHistory[0].Message)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"text":"  Bitcoin looks strong.\n"}`))
	}))
	defer server.Close()

	adapter := NewCohereAdapter(Options{BaseURL: server.URL, APIKey: "key-123", Temperature: 0.1}, nil, nil)
	text, err := adapter.Generate(context.Background(), "be concise", "Analyze Bitcoin")
	require.NoError(t, err)
	assert.Equal(t, "Bitcoin looks strong.", text)
}

func TestNewCohereAdapter_DefaultTimeout(t *testing.T) {
	adapter := NewCohereAdapter(Options{}, nil, nil)
	assert.Equal(t, 15*time.Second, adapter.client.Timeout)
	assert.Equal(t, CohereBaseURL, adapter.opts.BaseURL)
}

func TestCohereAdapter_Generate_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"invalid api token"}`))
	}))
	defer server.Close()

	adapter := NewCohereAdapter(Options{BaseURL: server.URL, APIKey: "bad"}, nil, nil)
	_, err := adapter.Generate(context.Background(), "", "hello")

	var statusErr *domain.UpstreamStatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
	assert.Equal(t, "invalid api token", statusErr.Body)
}

func TestCohereAdapter_Generate_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := server.URL
	server.Close()

	adapter := NewCohereAdapter(Options{BaseURL: base, APIKey: "k"}, nil, nil)
	_, err := adapter.Generate(context.Background(), "", "hello")
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}
