package reasoning

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/consilium-ai/consilium-go/internal/config"
)

// Client talks to the external reasoning/summarization sidecar. Both of its
// operations are fallible and possibly slow; callers contain every failure.
type Client struct {
	httpClient *http.Client
	baseURL    string
	model      string
}

func NewClient(cfg *config.ReasoningConfig) *Client {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout == 0 {
		timeout = 45 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimSuffix(cfg.ServiceURL, "/"),
		model:      cfg.Model,
	}
}

// Refine submits a peer-refinement request and returns the validated
// structured response. Any transport, decoding, or schema failure is an
// error; the caller keeps the agent's decision unchanged in that case.
func (c *Client) Refine(ctx context.Context, req *RefineRequest) (*RefineResponse, error) {
	if req.Model == "" {
		req.Model = c.model
	}
	var resp RefineResponse
	if err := c.post(ctx, "/v1/refine", req, &resp); err != nil {
		return nil, err
	}
	if err := resp.Validate(); err != nil {
		return nil, fmt.Errorf("malformed refine response: %w", err)
	}
	return &resp, nil
}

// Synthesize submits the weighted decision set and returns the validated
// structured consensus. The caller falls back to the deterministic weighted
// average on any error.
func (c *Client) Synthesize(ctx context.Context, req *SynthesizeRequest) (*SynthesizeResponse, error) {
	if req.Model == "" {
		req.Model = c.model
	}
	var resp SynthesizeResponse
	if err := c.post(ctx, "/v1/synthesize", req, &resp); err != nil {
		return nil, err
	}
	if err := resp.Validate(); err != nil {
		return nil, fmt.Errorf("malformed synthesize response: %w", err)
	}
	return &resp, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding reasoning request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building reasoning request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("reasoning request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading reasoning response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("reasoning service returned status %d: %s", resp.StatusCode, string(respBody))
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decoding reasoning response: %w", err)
	}
	return nil
}
