package llm

import (
    "context"
    "net/http"

    openai "github.com/sashabaranov/go-openai"
)

// Client is the minimal interface the summarizer needs to call a chat model.
// Any OpenAI-compatible or local backend can be adapted to it.
type Client interface {
    CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// ModelLister is an optional capability used by health checks. Callers
// detect it with a type assertion.
type ModelLister interface {
    ListModels(ctx context.Context) (openai.ModelsList, error)
}

// OpenAIProvider adapts *openai.Client to the Client/ModelLister interfaces.
type OpenAIProvider struct {
    Inner *openai.Client
}

// NewOpenAIProvider builds a provider for an OpenAI-compatible endpoint.
// An empty baseURL keeps the library default; a nil httpClient too.
func NewOpenAIProvider(baseURL, apiKey string, httpClient *http.Client) *OpenAIProvider {
    cfg := openai.DefaultConfig(apiKey)
    if baseURL != "" {
        cfg.BaseURL = baseURL
    }
    if httpClient != nil {
        cfg.HTTPClient = httpClient
    }
    return &OpenAIProvider{Inner: openai.NewClientWithConfig(cfg)}
}

func (p *OpenAIProvider) CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
    return p.Inner.CreateChatCompletion(ctx, request)
}

func (p *OpenAIProvider) ListModels(ctx context.Context) (openai.ModelsList, error) {
    return p.Inner.ListModels(ctx)
}
