package embedding

import (
	"context"
	"errors"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"support-rag/domain"
)

// maxInputRunes caps embedding input length. The backend tokenizer limit is
// hidden behind this conservative cut: overlong text is truncated, never
// rejected, so Embed stays total over any UTF-8 string.
const maxInputRunes = 24000

const (
	embedMaxRetries = 3
	embedBaseDelay  = 100 * time.Millisecond

	// defaultTimeout bounds each backend call. A stalled backend must fail
	// the attempt, never hang the caller.
	defaultTimeout = 30 * time.Second
)

// modelDimensions maps known embedding models to their vector dimensions.
var modelDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
}

// OpenAIEmbeddingClient implements domain.EmbeddingClient against any
// OpenAI-compatible embeddings endpoint, including a locally hosted one.
type OpenAIEmbeddingClient struct {
	client    *openai.Client
	model     openai.EmbeddingModel
	dimension int
	timeout   time.Duration
}

// Config configures the embedding client. BaseURL may point at a local
// OpenAI-compatible server; Dimension overrides the model lookup for models
// not in the built-in table; Timeout bounds each backend call and defaults
// to 30 seconds when unset.
type Config struct {
	APIKey    string
	BaseURL   string
	Model     string
	Dimension int
	Timeout   time.Duration
}

// NewOpenAIEmbeddingClient creates a new embedding client.
func NewOpenAIEmbeddingClient(cfg Config) (*OpenAIEmbeddingClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("embedding API key not set")
	}
	dimension := cfg.Dimension
	if dimension == 0 {
		dimension = modelDimensions[cfg.Model]
	}
	if dimension == 0 {
		return nil, errors.New("unknown embedding model dimension; set EMBEDDING_DIMENSION")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	clientConfig.HTTPClient = &http.Client{Timeout: timeout}
	return &OpenAIEmbeddingClient{
		client:    openai.NewClientWithConfig(clientConfig),
		model:     openai.EmbeddingModel(cfg.Model),
		dimension: dimension,
		timeout:   timeout,
	}, nil
}

// Dimension returns the fixed vector dimension of the configured model.
func (c *OpenAIEmbeddingClient) Dimension() int {
	return c.dimension
}

// Embed generates the embedding for one text. Input is truncated to the
// backend limit, empty text is substituted with a single space so the call
// still produces a vector, and transient failures are retried with
// exponential backoff before reporting the backend unavailable. Each attempt
// carries its own deadline, so a stalled backend fails the call instead of
// hanging callers without one.
func (c *OpenAIEmbeddingClient) Embed(ctx context.Context, text string) (domain.Embedding, error) {
	text = truncate(text)
	if text == "" {
		text = " "
	}

	req := openai.EmbeddingRequest{
		Input: []string{text},
		Model: c.model,
	}

	var lastErr error
	delay := embedBaseDelay
	for attempt := 0; attempt < embedMaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
		attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
		resp, err := c.client.CreateEmbeddings(attemptCtx, req)
		cancel()
		if err != nil {
			lastErr = err
			continue
		}
		if len(resp.Data) == 0 {
			lastErr = errors.New("embedding response contained no data")
			continue
		}
		return domain.Embedding(resp.Data[0].Embedding), nil
	}
	return nil, &domain.EmbeddingUnavailableError{Err: lastErr}
}

// Ping verifies the backend is reachable. Called once at startup, where an
// unreachable backend is fatal.
func (c *OpenAIEmbeddingClient) Ping(ctx context.Context) error {
	_, err := c.Embed(ctx, "ping")
	return err
}

// truncate cuts text to maxInputRunes on a rune boundary.
func truncate(text string) string {
	runes := []rune(text)
	if len(runes) <= maxInputRunes {
		return text
	}
	return string(runes[:maxInputRunes])
}
