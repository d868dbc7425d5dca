package summarize

import (
	"context"
	"fmt"
	"time"

	"github.com/hyperifyio/pagedigest/internal/ragclient"
)

// Remote delegates to the summarization service.
type Remote struct {
	Client *ragclient.Client
	// APIKey is forwarded in request bodies; empty lets the service use its own.
	APIKey string
}

func (r *Remote) Name() string { return "remote" }

func (r *Remote) Health(ctx context.Context) (Health, error) {
	h, err := r.Client.Health(ctx)
	if err != nil {
		return Health{}, err
	}
	out := Health{Ready: h.APIKeyConfigured || r.APIKey != "", ActiveSessions: h.ActiveChatSessions}
	out.Detail = "service and API key ready"
	if !out.Ready {
		out.Detail = "service running but API key needed"
	}
	return out, nil
}

func (r *Remote) Summarize(ctx context.Context, text string, kind Kind) (Summary, error) {
	resp, err := r.Client.Summarize(ctx, ragclient.SummarizeRequest{Text: text, SummaryType: string(kind), APIKey: r.APIKey})
	if err != nil {
		return Summary{}, fmt.Errorf("summarize: %w", err)
	}
	return Summary{
		Text:       resp.Summary,
		TextLength: resp.TextLength,
		Took:       time.Duration(resp.ProcessingTime * float64(time.Second)),
	}, nil
}

// Chat sends the question with the session's ID, or null on the first
// question, and adopts the ID the service returns.
func (r *Remote) Chat(ctx context.Context, s *Session, question string) (string, error) {
	req := ragclient.ChatRequest{ArticleText: s.ArticleText, Question: question, APIKey: r.APIKey}
	if s.ID != "" {
		id := s.ID
		req.SessionID = &id
	}
	resp, err := r.Client.Chat(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat: %w", err)
	}
	s.ID = resp.SessionID
	s.record(RoleUser, question)
	s.record(RoleAssistant, resp.Answer)
	return resp.Answer, nil
}

func (r *Remote) EndSession(ctx context.Context, s *Session) {
	if s == nil || s.ID == "" {
		return
	}
	r.Client.ClearSession(ctx, s.ID)
	s.ID = ""
	s.Messages = nil
}
