package main

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hyperifyio/pagedigest/internal/llm"
	"github.com/hyperifyio/pagedigest/internal/summarize"
)

const article = "The museum will open a new wing for modern sculpture next year, doubling its exhibition space and adding a public reading room."

func newDirect(t *testing.T) *summarize.Direct {
	t.Helper()
	srv := httptest.NewServer(newMux("stub-model"))
	t.Cleanup(srv.Close)
	return &summarize.Direct{
		Client: llm.NewOpenAIProvider(srv.URL+"/v1", "sk-stub", srv.Client()),
		Model:  "stub-model",
	}
}

func TestStub_ServesDirectBackend(t *testing.T) {
	d := newDirect(t)
	ctx := context.Background()

	h, err := d.Health(ctx)
	if err != nil || !h.Ready {
		t.Fatalf("health=%+v err=%v", h, err)
	}
	want := map[summarize.Kind]string{
		summarize.Brief:    "A brief summary of the article.",
		summarize.Detailed: "A detailed summary covering the key points of the article.",
		summarize.Bullets:  "• First point",
	}
	for kind, prefix := range want {
		sum, err := d.Summarize(ctx, article, kind)
		if err != nil {
			t.Fatalf("%s: %v", kind, err)
		}
		if !strings.HasPrefix(sum.Text, prefix) {
			t.Fatalf("%s: got %q", kind, sum.Text)
		}
	}

	s := summarize.NewSession(article)
	answer, err := d.Chat(ctx, s, "When does it open?")
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if answer != "The article answers: When does it open?" {
		t.Fatalf("answer=%q", answer)
	}
	if s.Summary != "Context summary of the article." || len(s.Messages) != 2 {
		t.Fatalf("session=%+v", s)
	}
}

func TestReply_UnknownPrompt(t *testing.T) {
	if _, ok := reply("hello"); ok {
		t.Fatalf("unexpected prompt should not be answered")
	}
}
