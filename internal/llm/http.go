package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/gnegDev/path/internal/common"
)

// Client implements Gateway over plain net/http. It issues exactly one
// POST per call and returns the raw response body unmodified; envelope
// interpretation belongs to the normalizer.
type Client struct {
	http *http.Client
	log  *slog.Logger
}

func NewClient(timeout time.Duration, log *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		http: &http.Client{Timeout: timeout},
		log:  log,
	}
}

func (c *Client) Call(ctx context.Context, req CallRequest) ([]byte, error) {
	reqID := uuid.New().String()
	start := time.Now()

	body, err := buildBody(req)
	if err != nil {
		c.log.Error("llm.http.encode_error", "req_id", reqID, "error", err)
		return nil, &common.GatewayError{Cause: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.URL, bytes.NewReader(body))
	if err != nil {
		c.log.Error("llm.http.build_request_error", "req_id", reqID, "error", err)
		return nil, &common.GatewayError{Cause: err}
	}
	httpReq.Header.Set("Authorization", "Bearer "+req.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")
	if req.Project != "" {
		httpReq.Header.Set("OpenAI-Project", req.Project)
	}

	c.log.Info("llm.http.request",
		"req_id", reqID,
		"url", req.URL,
		"input_chars", len(req.Input),
	)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.log.Error("llm.http.send_error", "req_id", reqID, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return nil, &common.GatewayError{Cause: err}
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.log.Warn("llm.http.response_body_close_error", "req_id", reqID, "error", cerr)
		}
	}()

	raw, _ := io.ReadAll(resp.Body)

	c.log.Info("llm.http.response",
		"req_id", reqID,
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode/100 != 2 {
		return nil, &common.GatewayError{
			Status: resp.StatusCode,
			Cause:  fmt.Errorf("non-2xx status: %s", snippet(raw, 512)),
		}
	}
	return raw, nil
}

// buildBody maps the request onto the endpoint family's wire shape: a
// prompt id selects the responses form, a model the chat-completion form.
func buildBody(req CallRequest) ([]byte, error) {
	var body map[string]any
	if req.PromptID != "" {
		body = map[string]any{
			"prompt": map[string]any{"id": req.PromptID},
			"input":  req.Input,
		}
	} else {
		body = map[string]any{
			"model": req.Model,
			"messages": []map[string]any{
				{"role": "user", "content": req.Input},
			},
		}
	}
	return json.Marshal(body)
}

func snippet(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "…"
	}
	return string(b)
}
