package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"golang.org/x/time/rate"

	"github.com/Aryan4717/media-mind-ai/internal/domain"
)

// Defaults matching the provider's documented limits; a batch pause of
// ~100ms keeps well under the request-per-minute quota.
const (
	defaultBaseURL   = "https://api.openai.com/v1"
	defaultBatchSize = 100
	defaultTimeout   = 60 * time.Second
	batchRate        = rate.Limit(10) // provider calls per second
)

// OpenAIEmbedder is the gateway to an OpenAI-compatible embeddings
// endpoint. It is the only component that knows provider failure modes
// and the embedding dimension for a given model.
type OpenAIEmbedder struct {
	apiKey    string
	model     string
	baseURL   string
	dimension int
	batchSize int
	limiter   *rate.Limiter
	client    *http.Client
}

type embeddingRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

type embeddingResponse struct {
	Data  []embeddingData `json:"data"`
	Error *apiError       `json:"error,omitempty"`
}

type embeddingData struct {
	Embedding []float32 `json:"embedding"`
	Index     int       `json:"index"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// NewOpenAIEmbedder reads the provider credential from the named
// environment variable. An absent credential is a configuration error
// reported here, before any network call.
func NewOpenAIEmbedder(apiKeyEnv, model string, batchSize int) (*OpenAIEmbedder, error) {
	apiKey := os.Getenv(apiKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("environment variable %s is empty: %w", apiKeyEnv, domain.ErrMissingCredential)
	}
	return newEmbedder(apiKey, model, defaultBaseURL, batchSize), nil
}

// NewOpenAICompatibleEmbedder targets a non-default base URL, e.g. a
// local Ollama endpoint exposing the OpenAI embeddings API.
func NewOpenAICompatibleEmbedder(apiKey, model, baseURL string, batchSize int) (*OpenAIEmbedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key is empty: %w", domain.ErrMissingCredential)
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return newEmbedder(apiKey, model, baseURL, batchSize), nil
}

func newEmbedder(apiKey, model, baseURL string, batchSize int) *OpenAIEmbedder {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	dimension := 1536
	switch model {
	case "text-embedding-ada-002", "text-embedding-3-small":
		dimension = 1536
	case "text-embedding-3-large":
		dimension = 3072
	case "nomic-embed-text":
		dimension = 768
	case "mxbai-embed-large":
		dimension = 1024
	case "all-minilm":
		dimension = 384
	}

	return &OpenAIEmbedder{
		apiKey:    apiKey,
		model:     model,
		baseURL:   baseURL,
		dimension: dimension,
		batchSize: batchSize,
		limiter:   rate.NewLimiter(batchRate, 1),
		client:    &http.Client{Timeout: defaultTimeout},
	}
}

// Embed splits texts into consecutive groups of at most the configured
// batch size and issues one provider call per group, paced by a fixed
// rate limiter. A failure in any group aborts the whole call.
func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	all := make([][]float32, 0, len(texts))
	for i := 0; i < len(texts); i += e.batchSize {
		end := i + e.batchSize
		if end > len(texts) {
			end = len(texts)
		}

		if err := e.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		vectors, err := e.call(ctx, texts[i:end])
		if err != nil {
			return nil, fmt.Errorf("batch %d-%d: %w", i, end, err)
		}
		all = append(all, vectors...)
	}
	return all, nil
}

// EmbedQuery generates an embedding for a single query text.
func (e *OpenAIEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("provider returned no embedding: %w", domain.ErrProviderUnavailable)
	}
	return vectors[0], nil
}

func (e *OpenAIEmbedder) call(ctx context.Context, texts []string) ([][]float32, error) {
	payload, err := json.Marshal(embeddingRequest{Input: texts, Model: e.model})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/embeddings", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("provider rejected credential (status %d): %w", resp.StatusCode, domain.ErrMissingCredential)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: status %d: %s", domain.ErrProviderUnavailable, resp.StatusCode, truncate(body, 200))
	}

	var parsed embeddingResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse response (body: %s): %w", truncate(body, 200), err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrProviderUnavailable, parsed.Error.Message)
	}

	vectors := make([][]float32, len(texts))
	for _, data := range parsed.Data {
		if data.Index >= 0 && data.Index < len(vectors) {
			vectors[data.Index] = data.Embedding
		}
	}
	for i, v := range vectors {
		if v == nil {
			return nil, fmt.Errorf("%w: missing embedding for input %d", domain.ErrProviderUnavailable, i)
		}
	}
	return vectors, nil
}

// Dimension returns the embedding vector dimension for the configured
// model.
func (e *OpenAIEmbedder) Dimension() int {
	return e.dimension
}

// ModelName returns the name of the embedding model.
func (e *OpenAIEmbedder) ModelName() string {
	return e.model
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n])
}
