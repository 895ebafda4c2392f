// Package ollama implements the Reasoning Service against a local Ollama
// server's chat API with streaming disabled.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/julianshen/doclink/internal/provider"
)

func init() {
	provider.Register("ollama", func(baseURL, _ string, _ map[string]string) provider.ReasoningService {
		return New(baseURL)
	})
}

// DefaultBaseURL is the conventional local Ollama address.
const DefaultBaseURL = "http://localhost:11434"

// Provider implements provider.ReasoningService for Ollama.
type Provider struct {
	baseURL string
	client  *http.Client
}

// New creates a new Ollama provider.
func New(baseURL string) *Provider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Provider{
		baseURL: baseURL,
		client:  &http.Client{},
	}
}

// apiRequest is the request body sent to /api/chat.
type apiRequest struct {
	Model    string       `json:"model"`
	Messages []apiMessage `json:"messages"`
	Stream   bool         `json:"stream"`
	Options  *apiOptions  `json:"options,omitempty"`
}

type apiOptions struct {
	NumPredict  int      `json:"num_predict,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
}

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// apiResponse is the non-streaming chat response. Ollama reports usage as
// prompt_eval_count / eval_count.
type apiResponse struct {
	Message         apiMessage `json:"message"`
	PromptEvalCount int        `json:"prompt_eval_count"`
	EvalCount       int        `json:"eval_count"`
}

// Complete sends one chat request with stream disabled.
func (p *Provider) Complete(ctx context.Context, req provider.CompletionRequest) (*provider.Completion, error) {
	apiReq := apiRequest{
		Model:  req.Model,
		Stream: false,
	}
	if req.System != "" {
		apiReq.Messages = append(apiReq.Messages, apiMessage{Role: "system", Content: req.System})
	}
	apiReq.Messages = append(apiReq.Messages, apiMessage{Role: "user", Content: req.Prompt})

	if req.MaxTokens > 0 || req.Temperature != nil {
		opts := &apiOptions{}
		if req.MaxTokens > 0 {
			opts.NumPredict = req.MaxTokens
		}
		if req.Temperature != nil {
			temp := *req.Temperature
			opts.Temperature = &temp
		}
		apiReq.Options = opts
	}

	body, err := json.Marshal(apiReq)
	if err != nil {
		return nil, fmt.Errorf("building request body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("API error %d: %s", resp.StatusCode, string(respBody))
	}

	var apiResp apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return &provider.Completion{
		Content: apiResp.Message.Content,
		Usage: provider.Usage{
			InputTokens:  apiResp.PromptEvalCount,
			OutputTokens: apiResp.EvalCount,
		},
	}, nil
}
