// Package ragclient talks to the local article summarization and chat
// service over its JSON HTTP API.
package ragclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultBaseURL is where the service listens unless configured otherwise.
const DefaultBaseURL = "http://127.0.0.1:7860"

// Client calls the service. The zero value talks to DefaultBaseURL.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	UserAgent  string // optional
}

// Health is the service's /health payload.
type Health struct {
	Status             string `json:"status"`
	APIKeyConfigured   bool   `json:"api_key_configured"`
	GeminiAPIAvailable bool   `json:"gemini_api_available"`
	Timestamp          string `json:"timestamp"`
	ActiveChatSessions int    `json:"active_chat_sessions"`
}

type SummarizeRequest struct {
	Text        string `json:"text"`
	SummaryType string `json:"summary_type"`
	APIKey      string `json:"api_key,omitempty"`
}

type SummaryResponse struct {
	Summary        string  `json:"summary"`
	TextLength     int     `json:"text_length"`
	ProcessingTime float64 `json:"processing_time"`
	Timestamp      string  `json:"timestamp"`
	Status         string  `json:"status"`
}

// ChatRequest asks a question about an article. A nil SessionID starts a
// new session; the service returns its ID in the response.
type ChatRequest struct {
	ArticleText string  `json:"article_text"`
	Question    string  `json:"question"`
	SessionID   *string `json:"session_id"`
	APIKey      string  `json:"api_key,omitempty"`
}

type ChatResponse struct {
	Answer         string  `json:"answer"`
	SessionID      string  `json:"session_id"`
	ProcessingTime float64 `json:"processing_time"`
	Timestamp      string  `json:"timestamp"`
	Status         string  `json:"status"`
}

type ChatMessage struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

type ChatHistory struct {
	SessionID      string        `json:"session_id"`
	Messages       []ChatMessage `json:"messages"`
	ArticleSummary string        `json:"article_summary"`
}

// APIError is a non-2xx reply. Detail is the service's message, or
// "Server error: <status>" when the body carried none.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string { return e.Detail }

func (c *Client) Health(ctx context.Context) (Health, error) {
	var out Health
	err := c.do(ctx, http.MethodGet, "/health", nil, &out)
	return out, err
}

func (c *Client) Summarize(ctx context.Context, req SummarizeRequest) (SummaryResponse, error) {
	var out SummaryResponse
	err := c.do(ctx, http.MethodPost, "/summarize", req, &out)
	return out, err
}

func (c *Client) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	var out ChatResponse
	err := c.do(ctx, http.MethodPost, "/chat", req, &out)
	return out, err
}

func (c *Client) History(ctx context.Context, sessionID string) (ChatHistory, error) {
	var out ChatHistory
	err := c.do(ctx, http.MethodGet, "/chat/"+url.PathEscape(sessionID)+"/history", nil, &out)
	return out, err
}

// ClearSession tears down a chat session on a best-effort basis. Failures
// are logged and otherwise ignored.
func (c *Client) ClearSession(ctx context.Context, sessionID string) {
	if strings.TrimSpace(sessionID) == "" {
		return
	}
	if err := c.do(ctx, http.MethodDelete, "/chat/"+url.PathEscape(sessionID), nil, nil); err != nil {
		log.Warn().Err(err).Str("session", sessionID).Msg("clearing chat session failed")
	}
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	u, err := url.Parse(strings.TrimRight(base, "/") + path)
	if err != nil {
		return fmt.Errorf("service url: %w", err)
	}
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	hc := c.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 120 * time.Second}
	}
	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	log.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).Dur("took", time.Since(start)).Msg("service call")
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode, Detail: fmt.Sprintf("Server error: %d", resp.StatusCode)}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return apiErr
	}
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if json.Unmarshal(raw, &payload) != nil || len(payload.Detail) == 0 {
		return apiErr
	}
	var s string
	if json.Unmarshal(payload.Detail, &s) == nil {
		if strings.TrimSpace(s) != "" {
			apiErr.Detail = s
		}
		return apiErr
	}
	// Validation failures carry a structured detail; keep it readable.
	if string(payload.Detail) != "null" {
		apiErr.Detail = string(payload.Detail)
	}
	return apiErr
}
