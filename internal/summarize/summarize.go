// Package summarize produces article summaries and answers questions about
// an article, either through the summarization service or by calling an
// OpenAI-compatible model directly.
package summarize

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Kind selects the summary style.
type Kind string

const (
	Brief    Kind = "brief"
	Detailed Kind = "detailed"
	Bullets  Kind = "bullets"
)

// Kinds lists the accepted summary kinds in display order.
var Kinds = []Kind{Brief, Detailed, Bullets}

// ParseKind maps a user value to a Kind. Unknown values select Brief.
func ParseKind(s string) Kind {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case Detailed:
		return Detailed
	case Bullets:
		return Bullets
	default:
		return Brief
	}
}

var (
	// ErrNoSubstantiveBody indicates the model produced no usable text.
	ErrNoSubstantiveBody = errors.New("no substantive body")
	// ErrTextTooShort rejects articles with too little text to summarize.
	ErrTextTooShort = errors.New("text content is too short or empty")
	// ErrQuestionTooShort rejects empty or near-empty chat questions.
	ErrQuestionTooShort = errors.New("question is too short or empty")
	// ErrNotConfigured is returned when a backend lacks its model or client.
	ErrNotConfigured = errors.New("summarizer not configured")
)

// Summary is the result of one summarization.
type Summary struct {
	Text string
	// TextLength is the character count of the input before truncation.
	TextLength int
	Took       time.Duration
}

// Health describes whether a backend can serve requests.
type Health struct {
	Ready          bool
	Detail         string
	ActiveSessions int
}

// Message is one transcript entry.
type Message struct {
	Role    string
	Content string
	At      time.Time
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Session is caller-owned chat state. Backends fill in ID and Summary on
// the first question and append to Messages on every exchange.
type Session struct {
	ID          string
	ArticleText string
	// Summary is the condensed article used as chat context by Direct.
	Summary  string
	Messages []Message
}

// NewSession starts a chat about articleText.
func NewSession(articleText string) *Session {
	return &Session{ArticleText: articleText}
}

func (s *Session) record(role, content string) {
	s.Messages = append(s.Messages, Message{Role: role, Content: content, At: time.Now()})
}

// Backend is implemented by Remote and Direct.
type Backend interface {
	Name() string
	Health(ctx context.Context) (Health, error)
	Summarize(ctx context.Context, text string, kind Kind) (Summary, error)
	Chat(ctx context.Context, s *Session, question string) (string, error)
	// EndSession releases any state held for s. It never fails.
	EndSession(ctx context.Context, s *Session)
}
