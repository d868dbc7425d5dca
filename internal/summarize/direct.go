package summarize

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperifyio/pagedigest/internal/budget"
	"github.com/hyperifyio/pagedigest/internal/cache"
	"github.com/hyperifyio/pagedigest/internal/llm"
)

// Direct summarizes by calling an OpenAI-compatible chat endpoint itself,
// using the same prompts and limits as the summarization service.
type Direct struct {
	Client llm.Client
	Model  string
	// Cache, when set, stores summaries keyed by model, kind and prompt.
	Cache *cache.ResponseCache
	// LanguageHint, when set, asks for output in that language.
	LanguageHint string
	// CacheOnly returns cached summaries and fails fast on a miss.
	CacheOnly   bool
	Temperature float32
	MaxTokens   int

	mu     sync.Mutex
	active map[string]struct{}
}

func (d *Direct) Name() string { return "direct" }

// Health checks the configured model is listed when the client can list
// models; otherwise a configured client counts as ready.
func (d *Direct) Health(ctx context.Context) (Health, error) {
	if d.Client == nil || strings.TrimSpace(d.Model) == "" {
		return Health{Detail: "LLM model or endpoint not configured"}, nil
	}
	h := Health{Ready: true, Detail: "model " + d.Model, ActiveSessions: d.sessions()}
	lister, ok := d.Client.(llm.ModelLister)
	if !ok {
		return h, nil
	}
	models, err := lister.ListModels(ctx)
	if err != nil {
		return Health{}, fmt.Errorf("list models: %w", err)
	}
	for _, m := range models.Models {
		if m.ID == d.Model {
			return h, nil
		}
	}
	h.Ready = false
	h.Detail = fmt.Sprintf("model %q not offered by endpoint (%d models)", d.Model, len(models.Models))
	return h, nil
}

func (d *Direct) Summarize(ctx context.Context, text string, kind Kind) (Summary, error) {
	if d.Client == nil || strings.TrimSpace(d.Model) == "" {
		return Summary{}, ErrNotConfigured
	}
	if utf8.RuneCountInString(strings.TrimSpace(text)) < minArticleChars {
		return Summary{}, ErrTextTooShort
	}
	start := time.Now()
	length := utf8.RuneCountInString(text)
	input := text
	if limit := d.inputLimit(maxSummaryInput, summaryPrompt(kind, "")); length > limit {
		input = truncateRunes(text, limit) + "..."
		log.Info().Int("from", length).Int("to", limit).Msg("truncated article text")
	}
	prompt := withLanguage(summaryPrompt(kind, input), d.LanguageHint)

	key := cache.KeyFrom(d.Name(), d.Model, string(kind), prompt)
	if d.Cache != nil {
		if raw, ok, _ := d.Cache.Get(ctx, key); ok {
			var cached struct {
				Summary string `json:"summary"`
			}
			if err := json.Unmarshal(raw, &cached); err == nil && strings.TrimSpace(cached.Summary) != "" {
				log.Debug().Str("kind", string(kind)).Msg("summary served from cache")
				return Summary{Text: cached.Summary, TextLength: length, Took: time.Since(start)}, nil
			}
		}
	}
	if d.CacheOnly {
		return Summary{}, ErrNoSubstantiveBody
	}

	out, err := d.complete(ctx, prompt)
	if err != nil {
		return Summary{}, fmt.Errorf("summarize: %w", err)
	}
	if d.Cache != nil {
		payload, _ := json.Marshal(map[string]string{"summary": out})
		if err := d.Cache.Save(ctx, key, payload); err != nil {
			log.Warn().Err(err).Msg("summary cache save failed")
		}
	}
	took := time.Since(start)
	log.Info().Str("kind", string(kind)).Dur("took", took).Msg("generated summary")
	return Summary{Text: out, TextLength: length, Took: took}, nil
}

// Chat answers question about the session's article. The first question
// assigns a session ID and condenses the article for later prompts.
func (d *Direct) Chat(ctx context.Context, s *Session, question string) (string, error) {
	if d.Client == nil || strings.TrimSpace(d.Model) == "" {
		return "", ErrNotConfigured
	}
	if utf8.RuneCountInString(strings.TrimSpace(s.ArticleText)) < minArticleChars {
		return "", ErrTextTooShort
	}
	if utf8.RuneCountInString(strings.TrimSpace(question)) < minQuestionChars {
		return "", ErrQuestionTooShort
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
		d.track(s.ID)
		log.Debug().Str("session", s.ID).Msg("created chat session")
	}
	if s.Summary == "" {
		sum, err := d.complete(ctx, chatSummaryPrompt(s.ArticleText, d.inputLimit(maxChatSummaryInput, chatSummaryPrompt("", 0))))
		if err != nil {
			log.Error().Err(err).Msg("chat context summary failed")
			sum = summaryUnavailable
		}
		s.Summary = sum
	}
	s.record(RoleUser, question)
	answer, err := d.complete(ctx, withLanguage(chatPrompt(s, question), d.LanguageHint))
	if err != nil {
		return "", fmt.Errorf("chat: %w", err)
	}
	s.record(RoleAssistant, answer)
	return answer, nil
}

func (d *Direct) EndSession(_ context.Context, s *Session) {
	if s == nil || s.ID == "" {
		return
	}
	d.mu.Lock()
	delete(d.active, s.ID)
	d.mu.Unlock()
	s.ID = ""
	s.Summary = ""
	s.Messages = nil
}

func (d *Direct) track(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.active == nil {
		d.active = make(map[string]struct{})
	}
	d.active[id] = struct{}{}
}

func (d *Direct) sessions() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.active)
}

func (d *Direct) complete(ctx context.Context, prompt string) (string, error) {
	temp := d.Temperature
	if temp == 0 {
		temp = 0.3
	}
	req := openai.ChatCompletionRequest{
		Model: d.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: temp,
		TopP:        0.8,
		MaxTokens:   d.maxTokens(),
		N:           1,
	}
	resp, err := d.Client.CreateChatCompletion(ctx, req)
	if err != nil {
		// One short retry for transient failures; ctx still bounds it.
		sleepFunc(ctx, 100*time.Millisecond)
		resp, err = d.Client.CreateChatCompletion(ctx, req)
		if err != nil {
			return "", fmt.Errorf("model call (after retry): %w", err)
		}
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoSubstantiveBody
	}
	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	if out == "" {
		return "", ErrNoSubstantiveBody
	}
	return out, nil
}

func (d *Direct) maxTokens() int {
	if d.MaxTokens == 0 {
		return 1000
	}
	return d.MaxTokens
}

// inputLimit is max, or less when the model's context window cannot hold
// that much article text next to the prompt and the reserved answer.
func (d *Direct) inputLimit(max int, prompt string) int {
	fit := budget.MaxInputChars(d.Model, d.maxTokens(), systemPrompt+prompt)
	if fit >= max {
		return max
	}
	if fit < minArticleChars {
		log.Warn().Str("model", d.Model).Msg("model context window barely fits the prompt")
		return minArticleChars
	}
	return fit
}

// sleepFunc is swapped out by tests.
var sleepFunc = func(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
