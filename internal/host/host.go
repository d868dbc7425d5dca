// Package host answers extraction requests from a browser extension over
// the native messaging protocol on stdin/stdout.
package host

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/pagedigest/internal/extract"
)

// TypeGetArticleText asks the host to extract article text from a page.
const TypeGetArticleText = "GET_ARTICLE_TEXT"

// NotEnoughContentMessage is the error text sent when a page fails the
// readable-content gate.
const NotEnoughContentMessage = "Page doesn't contain enough readable text content"

// Request is an inbound message. HTML carries the serialized page; when it
// is empty and URL is set, the page is loaded through the handler's Loader.
type Request struct {
	Type string `json:"type"`
	HTML string `json:"html,omitempty"`
	URL  string `json:"url,omitempty"`
}

// Response is the reply to a Request. Text is always present; Error is set
// on failure and Length only on success.
type Response struct {
	Text   string `json:"text"`
	Method string `json:"method,omitempty"`
	Length int    `json:"length,omitempty"`
	Error  string `json:"error,omitempty"`
}

// PageLoader fetches a page body. fetch.Client and fetch.Renderer satisfy it.
type PageLoader interface {
	Get(ctx context.Context, url string) ([]byte, string, error)
}

// Handler turns requests into responses.
type Handler struct {
	Extractor extract.Extractor
	// Loader is optional; without it requests must carry HTML.
	Loader PageLoader
}

// Handle answers one request. It never panics; a panic during extraction
// becomes an error response carrying the panic message.
func (h *Handler) Handle(ctx context.Context, req Request) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("extraction panicked")
			resp = Response{Error: fmt.Sprint(r)}
		}
	}()
	if req.Type != TypeGetArticleText {
		return Response{Error: "unknown message type: " + req.Type}
	}
	page := []byte(req.HTML)
	if len(page) == 0 && strings.TrimSpace(req.URL) != "" {
		if h.Loader == nil {
			return Response{Error: "no html in request"}
		}
		body, _, err := h.Loader.Get(ctx, req.URL)
		if err != nil {
			return Response{Error: err.Error()}
		}
		page = body
	}
	ex := h.Extractor
	if ex == nil {
		ex = extract.HeuristicExtractor{}
	}
	doc := ex.Extract(page, req.URL)
	text, err := extract.Readable(extract.Result{Text: doc.Text, Method: doc.Method})
	if err != nil {
		return Response{Error: NotEnoughContentMessage, Method: doc.Method}
	}
	return Response{Text: text, Method: doc.Method, Length: utf8.RuneCountInString(text)}
}

// Serve reads requests from r and writes one response per request to w
// until r reaches EOF or ctx is cancelled. Requests are handled one at a
// time in arrival order.
func Serve(ctx context.Context, r io.Reader, w io.Writer, h *Handler) error {
	br := bufio.NewReader(r)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		var req Request
		err := ReadMessage(br, &req)
		var decErr *DecodeError
		switch {
		case errors.Is(err, io.EOF):
			return nil
		case errors.As(err, &decErr):
			log.Warn().Err(err).Msg("dropping malformed message")
			if werr := WriteMessage(w, Response{Error: decErr.Error()}); werr != nil {
				return werr
			}
			continue
		case err != nil:
			return err
		}
		resp := h.Handle(ctx, req)
		log.Debug().Str("type", req.Type).Str("method", resp.Method).Int("length", resp.Length).Msg("handled message")
		err = WriteMessage(w, resp)
		if errors.Is(err, ErrMessageTooLarge) {
			err = WriteMessage(w, Response{Error: "extracted text exceeds the native messaging limit", Method: resp.Method})
		}
		if err != nil {
			return err
		}
	}
}
