package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianshen/doclink/internal/provider"
)

func TestComplete(t *testing.T) {
	var gotReq apiRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		json.NewEncoder(w).Encode(apiResponse{
			Message:         apiMessage{Role: "assistant", Content: `{"concepts": []}`},
			PromptEvalCount: 20,
			EvalCount:       8,
		})
	}))
	defer server.Close()

	p := New(server.URL)
	temp := 0.1
	completion, err := p.Complete(context.Background(), provider.CompletionRequest{
		Model:       "llama3.2",
		System:      "respond with JSON",
		Prompt:      "link this",
		MaxTokens:   256,
		Temperature: &temp,
	})
	require.NoError(t, err)

	assert.Equal(t, `{"concepts": []}`, completion.Content)
	assert.Equal(t, 20, completion.Usage.InputTokens)
	assert.Equal(t, 8, completion.Usage.OutputTokens)

	assert.False(t, gotReq.Stream)
	assert.Equal(t, "llama3.2", gotReq.Model)
	require.Len(t, gotReq.Messages, 2)
	assert.Equal(t, "system", gotReq.Messages[0].Role)
	require.NotNil(t, gotReq.Options)
	assert.Equal(t, 256, gotReq.Options.NumPredict)
	require.NotNil(t, gotReq.Options.Temperature)
	assert.InDelta(t, 0.1, *gotReq.Options.Temperature, 1e-9)
}

func TestCompleteNoOptionsWhenUnset(t *testing.T) {
	var gotReq apiRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode(apiResponse{Message: apiMessage{Content: "ok"}})
	}))
	defer server.Close()

	p := New(server.URL)
	_, err := p.Complete(context.Background(), provider.CompletionRequest{Model: "llama3.2", Prompt: "hi"})
	require.NoError(t, err)
	assert.Nil(t, gotReq.Options)
}

func TestDefaultBaseURL(t *testing.T) {
	p := New("")
	assert.Equal(t, DefaultBaseURL, p.baseURL)
}

func TestCompleteAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"model not found"}`, http.StatusNotFound)
	}))
	defer server.Close()

	p := New(server.URL)
	_, err := p.Complete(context.Background(), provider.CompletionRequest{Model: "missing", Prompt: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}
