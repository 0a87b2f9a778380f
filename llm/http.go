package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/deckforge/deckforge/telemetry"
)

// HTTPProvider is a generic JSON-over-HTTP Provider: POST a prompt
// body, Bearer-authenticated, expecting a JSON response containing the
// generated text at ResponseField (dotted-path not supported; this
// targets APIs with a flat `{"<field>": "..."}` shape, matching the
// teacher's provider adapters' common denominator). Concrete vendor
// wire formats (OpenAI, Anthropic, Gemini-shaped request/response
// envelopes) are intentionally out of scope here; production
// deployments provide their own Provider wrapping their SDK of choice,
// the same role the teacher's ai/providers/* packages play.
type HTTPProvider struct {
	Endpoint      string
	APIKey        string
	Model         string
	ResponseField string
	HTTPClient    *http.Client
}

func NewHTTPProvider(endpoint, apiKey, model string) *HTTPProvider {
	client := telemetry.NewTracedHTTPClient(nil)
	client.Timeout = 90 * time.Second
	return &HTTPProvider{
		Endpoint:      endpoint,
		APIKey:        apiKey,
		Model:         model,
		ResponseField: "text",
		HTTPClient:    client,
	}
}

type httpRequestBody struct {
	Model        string  `json:"model"`
	Prompt       string  `json:"prompt"`
	SystemPrompt string  `json:"system_prompt,omitempty"`
	Temperature  float32 `json:"temperature,omitempty"`
	MaxTokens    int     `json:"max_tokens,omitempty"`
}

// httpTemporaryError marks 429/5xx responses and network failures as
// retryable, matching the Client's TemporaryError convention.
type httpTemporaryError struct {
	msg       string
	temporary bool
}

func (e *httpTemporaryError) Error() string   { return e.msg }
func (e *httpTemporaryError) Temporary() bool { return e.temporary }

func (p *HTTPProvider) Generate(ctx context.Context, prompt string, opts Options) (Response, error) {
	model := opts.Model
	if model == "" {
		model = p.Model
	}

	body, err := json.Marshal(httpRequestBody{
		Model:        model,
		Prompt:       prompt,
		SystemPrompt: opts.SystemPrompt,
		Temperature:  opts.Temperature,
		MaxTokens:    opts.MaxTokens,
	})
	if err != nil {
		return Response{}, &httpTemporaryError{msg: fmt.Sprintf("encode request: %v", err), temporary: false}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.Endpoint, bytes.NewReader(body))
	if err != nil {
		return Response{}, &httpTemporaryError{msg: fmt.Sprintf("build request: %v", err), temporary: false}
	}
	req.Header.Set("Content-Type", "application/json")
	if p.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.APIKey)
	}

	resp, err := p.HTTPClient.Do(req)
	if err != nil {
		return Response{}, &httpTemporaryError{msg: fmt.Sprintf("request failed: %v", err), temporary: true}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, &httpTemporaryError{msg: fmt.Sprintf("read response: %v", err), temporary: true}
	}

	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return Response{}, &httpTemporaryError{msg: fmt.Sprintf("upstream status %d: %s", resp.StatusCode, payload), temporary: true}
	}
	if resp.StatusCode >= 400 {
		return Response{}, &httpTemporaryError{msg: fmt.Sprintf("upstream status %d: %s", resp.StatusCode, payload), temporary: false}
	}

	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return Response{}, &httpTemporaryError{msg: fmt.Sprintf("decode response: %v", err), temporary: false}
	}

	raw, ok := decoded[p.ResponseField]
	if !ok {
		return Response{}, &httpTemporaryError{msg: fmt.Sprintf("response missing field %q", p.ResponseField), temporary: false}
	}
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return Response{}, &httpTemporaryError{msg: fmt.Sprintf("decode field %q: %v", p.ResponseField, err), temporary: false}
	}

	return Response{Content: text, Model: model}, nil
}
