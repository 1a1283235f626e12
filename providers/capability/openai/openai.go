// Package openai implements the capability interfaces against an
// OpenAI-compatible API surface: chat completions for the language tasks,
// the embeddings endpoint for vectors, and Whisper-style audio endpoints
// for transcription and speech. Speech can be pointed at a different base
// URL than the language tasks, since compatible speech providers expose the
// same surface under their own host.
package openai

import (
	"context"
	"fmt"
	"net/http"

	"github.com/saharlajmi1/recmooc4all/internal/utils"
)

const (
	// DefaultBaseURL is the OpenAI API root used when no override is given.
	DefaultBaseURL = "https://api.openai.com/v1"

	// DefaultChatModel is used for all language tasks.
	DefaultChatModel = "gpt-4o-mini"

	// DefaultEmbeddingModel is used for cache and catalog vectors.
	DefaultEmbeddingModel = "text-embedding-3-small"

	// DefaultTranscriptionModel decodes audio turns.
	DefaultTranscriptionModel = "whisper-1"

	// DefaultSpeechModel synthesizes spoken answers.
	DefaultSpeechModel = "tts-1"
)

// Client talks to an OpenAI-compatible API. It implements every interface in
// the capability package; construct it once and hand the relevant subsets to
// the orchestrator.
type Client struct {
	httpClient *http.Client

	baseURL string
	apiKey  string

	speechBaseURL string
	speechAPIKey  string

	chatModel          string
	embeddingModel     string
	transcriptionModel string
	speechModel        string
}

// Option customizes a [Client].
type Option func(*Client)

// WithHTTPClient overrides the HTTP client, e.g. to set timeouts or inject a
// test transport.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithBaseURL points the language and embedding endpoints at a different
// API root.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithChatModel overrides the model used for language tasks.
func WithChatModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.chatModel = model
		}
	}
}

// WithEmbeddingModel overrides the embedding model.
func WithEmbeddingModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.embeddingModel = model
		}
	}
}

// WithSpeechEndpoint points the audio endpoints (transcription and speech)
// at a different OpenAI-compatible host with its own key.
func WithSpeechEndpoint(baseURL, apiKey string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.speechBaseURL = baseURL
		}
		if apiKey != "" {
			c.speechAPIKey = apiKey
		}
	}
}

// WithSpeechModels overrides the transcription and speech models.
func WithSpeechModels(transcriptionModel, speechModel string) Option {
	return func(c *Client) {
		if transcriptionModel != "" {
			c.transcriptionModel = transcriptionModel
		}
		if speechModel != "" {
			c.speechModel = speechModel
		}
	}
}

// New returns a Client for the given API key with default endpoints and
// models, adjusted by the given options.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		httpClient:         http.DefaultClient,
		baseURL:            DefaultBaseURL,
		apiKey:             apiKey,
		chatModel:          DefaultChatModel,
		embeddingModel:     DefaultEmbeddingModel,
		transcriptionModel: DefaultTranscriptionModel,
		speechModel:        DefaultSpeechModel,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.speechBaseURL == "" {
		c.speechBaseURL = c.baseURL
	}
	if c.speechAPIKey == "" {
		c.speechAPIKey = c.apiKey
	}
	return c
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// complete runs a single system+user chat completion and returns the raw
// assistant text.
func (c *Client) complete(ctx context.Context, system, user string) (string, error) {
	request := chatRequest{
		Model: c.chatModel,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	}

	response, err := utils.DoPostSync[chatResponse](ctx, c.httpClient, c.baseURL+"/chat/completions", c.apiKey, request)
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return response.Choices[0].Message.Content, nil
}
