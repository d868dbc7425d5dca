// Command openai-stub is a deterministic OpenAI-compatible server for
// exercising the direct summarization backend without a real model.
package main

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	model := os.Getenv("MODEL_ID")
	if strings.TrimSpace(model) == "" {
		model = "test-model"
	}
	addr := os.Getenv("ADDR")
	if strings.TrimSpace(addr) == "" {
		addr = ":8081"
	}
	log.Info().Str("addr", addr).Str("model", model).Msg("openai-stub listening")
	if err := http.ListenAndServe(addr, newMux(model)); err != nil {
		log.Fatal().Err(err).Msg("serve")
	}
}

func newMux(model string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/models", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   []map[string]any{{"id": model, "object": "model"}},
		})
	})
	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request body", http.StatusBadRequest)
			return
		}
		user := ""
		for _, m := range req.Messages {
			if m.Role == "user" {
				user = m.Content
			}
		}
		content, ok := reply(user)
		if !ok {
			http.Error(w, "unexpected prompt", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "stub-1",
			"object": "chat.completion",
			"model":  model,
			"choices": []map[string]any{
				{"index": 0, "finish_reason": "stop", "message": map[string]string{"role": "assistant", "content": content}},
			},
		})
	})
	return mux
}

// reply picks a canned answer by the kind of prompt it is given.
func reply(prompt string) (string, bool) {
	switch {
	case strings.Contains(prompt, "USER'S CURRENT QUESTION:"):
		q := prompt[strings.Index(prompt, "USER'S CURRENT QUESTION:")+len("USER'S CURRENT QUESTION:"):]
		if i := strings.Index(q, "\n"); i >= 0 {
			q = q[:i]
		}
		return "The article answers: " + strings.TrimSpace(q), true
	case strings.Contains(prompt, "used as context for answering questions"):
		return "Context summary of the article.", true
	case strings.Contains(prompt, "bullet points"):
		return "• First point\n• Second point\n• Third point", true
	case strings.Contains(prompt, "comprehensive and detailed summary"):
		return "A detailed summary covering the key points of the article.", true
	case strings.Contains(prompt, "brief, clear summary"):
		return "A brief summary of the article.", true
	}
	return "", false
}
