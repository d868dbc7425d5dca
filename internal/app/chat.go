package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/pagedigest/internal/summarize"
)

const chatHelp = "Ask a question about the article. Commands: /history, /clear, /quit"

// Chat extracts source and runs a question/answer loop over in and out
// until in closes or the user types /quit. Backend errors are shown and
// the loop continues.
func (a *App) Chat(ctx context.Context, source string, in io.Reader, out io.Writer) error {
	page, err := a.Extract(ctx, source)
	if err != nil {
		return err
	}
	s := summarize.NewSession(page.Text)
	defer func() { a.backend.EndSession(context.WithoutCancel(ctx), s) }()

	title := page.Title
	if title == "" {
		title = page.Source
	}
	fmt.Fprintf(out, "Chat initialized for %q (%d characters).\n%s\n", title, page.Length, chatHelp)

	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for {
		fmt.Fprint(out, "> ")
		if !sc.Scan() {
			fmt.Fprintln(out)
			return sc.Err()
		}
		line := strings.TrimSpace(sc.Text())
		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/help":
			fmt.Fprintln(out, chatHelp)
			continue
		case "/history":
			for _, m := range s.Messages {
				fmt.Fprintf(out, "%s: %s\n", roleLabel(m.Role), m.Content)
			}
			continue
		case "/clear":
			a.backend.EndSession(ctx, s)
			s = summarize.NewSession(page.Text)
			fmt.Fprintln(out, "Chat cleared.")
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		answer, err := a.backend.Chat(ctx, s, line)
		if err != nil {
			log.Debug().Err(err).Msg("chat turn failed")
			fmt.Fprintf(out, "Error: %v\n", err)
			continue
		}
		fmt.Fprintf(out, "%s\n", answer)
	}
}

func roleLabel(role string) string {
	if role == summarize.RoleUser {
		return "You"
	}
	return "Assistant"
}
