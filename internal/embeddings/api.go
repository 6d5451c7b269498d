package embeddings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultAPITimeout = 30 * time.Second

// ApiEmbedder talks to a text-embeddings-inference style /embed_all endpoint,
// which returns the unpooled hidden state for every token.
type ApiEmbedder struct {
	url    string
	model  string
	client *http.Client
}

type ApiOption func(*ApiEmbedder)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) ApiOption {
	return func(e *ApiEmbedder) {
		if c != nil {
			e.client = c
		}
	}
}

// WithTimeout sets the per-request timeout of the default client.
func WithTimeout(d time.Duration) ApiOption {
	return func(e *ApiEmbedder) {
		if d > 0 {
			e.client.Timeout = d
		}
	}
}

func NewApi(url, model string, opts ...ApiOption) *ApiEmbedder {
	e := &ApiEmbedder{
		url:    strings.TrimRight(url, "/"),
		model:  model,
		client: &http.Client{Timeout: defaultAPITimeout},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *ApiEmbedder) ModelName() string { return e.model }

type embedAllRequest struct {
	Inputs   string `json:"inputs"`
	Truncate bool   `json:"truncate"`
}

type errorResponse struct {
	Error     string `json:"error"`
	ErrorType string `json:"error_type"`
}

// EmbedTokens never asks the provider to truncate; over-long input is
// reported back as ErrInputTooLong or ErrInvalidInput.
func (e *ApiEmbedder) EmbedTokens(ctx context.Context, text string) ([][]float32, error) {
	body, err := json.Marshal(&embedAllRequest{Inputs: text, Truncate: false})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w: %w", ErrProviderUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeProviderError(resp)
	}

	// batch x tokens x hidden; a single input yields a batch of one
	var out [][][]float32
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w: %w", ErrProviderUnavailable, err)
	}
	if len(out) != 1 {
		return nil, fmt.Errorf(
			"%w: provider returned %d sequences for 1 input",
			ErrProviderUnavailable, len(out),
		)
	}
	return out[0], nil
}

func decodeProviderError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	perr := &ProviderError{StatusCode: resp.StatusCode}
	var er errorResponse
	if err := json.Unmarshal(data, &er); err == nil && er.Error != "" {
		perr.Type = er.ErrorType
		perr.Message = er.Error
	} else {
		perr.Message = strings.TrimSpace(string(data))
		if perr.Message == "" {
			perr.Message = resp.Status
		}
	}
	return perr
}
