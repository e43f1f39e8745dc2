package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/docubase-ai/docubase/internal/api"
	"github.com/docubase-ai/docubase/internal/domain"
)

// AnswerComposer produces the answer event stream for a question.
type AnswerComposer interface {
	Compose(ctx context.Context, question string) <-chan domain.AnswerEvent
}

type AskHandler struct {
	composer AnswerComposer
}

func NewAskHandler(composer AnswerComposer) *AskHandler {
	return &AskHandler{composer: composer}
}

// Ask streams answer events as newline-delimited JSON. Each event is
// flushed as soon as it is produced so first-token latency, not full-answer
// latency, is what the caller perceives. A client disconnect cancels the
// request context and with it the in-flight generation.
func (h *AskHandler) Ask(w http.ResponseWriter, r *http.Request) {
	question := strings.TrimSpace(r.URL.Query().Get("question"))
	if question == "" {
		api.Error(w, http.StatusBadRequest, "question is required")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		api.Error(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	// Keeps nginx and similar proxies from buffering the stream.
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	encoder := json.NewEncoder(w)
	for event := range h.composer.Compose(r.Context(), question) {
		if err := encoder.Encode(event); err != nil {
			log.Printf("ask: failed to write event: %v", err)
			return
		}
		flusher.Flush()
	}
}
