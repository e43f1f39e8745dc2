package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/docubase-ai/docubase/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubComposer replays a fixed event sequence.
type stubComposer struct {
	events []domain.AnswerEvent
}

func (s *stubComposer) Compose(ctx context.Context, question string) <-chan domain.AnswerEvent {
	out := make(chan domain.AnswerEvent)
	go func() {
		defer close(out)
		for _, event := range s.events {
			select {
			case out <- event:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func decodeEvents(t *testing.T, body string) []domain.AnswerEvent {
	t.Helper()
	var events []domain.AnswerEvent
	scanner := bufio.NewScanner(strings.NewReader(body))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var event domain.AnswerEvent
		require.NoError(t, json.Unmarshal([]byte(line), &event), "line: %s", line)
		events = append(events, event)
	}
	return events
}

func TestAskHandler_Ask(t *testing.T) {
	t.Run("streams events as NDJSON", func(t *testing.T) {
		composer := &stubComposer{events: []domain.AnswerEvent{
			domain.NewSourcesEvent([]string{"a.pdf", "b.txt"}),
			domain.NewTokenEvent("Hello"),
			domain.NewTokenEvent(" world"),
			domain.NewDoneEvent(),
		}}
		handler := NewAskHandler(composer)

		req := httptest.NewRequest("GET", "/ask?question=hello", nil)
		rec := httptest.NewRecorder()

		handler.Ask(rec, req)

		assert.Equal(t, 200, rec.Code)
		assert.Equal(t, "application/x-ndjson", rec.Header().Get("Content-Type"))
		assert.Equal(t, "no", rec.Header().Get("X-Accel-Buffering"))

		events := decodeEvents(t, rec.Body.String())
		require.Len(t, events, 4)
		assert.Equal(t, domain.AnswerEventSources, events[0].Type)
		assert.Equal(t, []string{"a.pdf", "b.txt"}, events[0].Sources)
		assert.Equal(t, "Hello", events[1].Content)
		assert.Equal(t, " world", events[2].Content)
		assert.Equal(t, domain.AnswerEventDone, events[3].Type)
	})

	t.Run("error events pass through unchanged", func(t *testing.T) {
		composer := &stubComposer{events: []domain.AnswerEvent{
			domain.NewErrorEvent("No relevant documents found. Please upload some files first."),
		}}
		handler := NewAskHandler(composer)

		req := httptest.NewRequest("GET", "/ask?question=hello", nil)
		rec := httptest.NewRecorder()

		handler.Ask(rec, req)

		events := decodeEvents(t, rec.Body.String())
		require.Len(t, events, 1)
		assert.Equal(t, domain.AnswerEventError, events[0].Type)
		assert.Contains(t, events[0].Content, "No relevant documents found")
	})

	t.Run("rejects a missing question before streaming", func(t *testing.T) {
		handler := NewAskHandler(&stubComposer{})

		req := httptest.NewRequest("GET", "/ask", nil)
		rec := httptest.NewRecorder()

		handler.Ask(rec, req)

		assert.Equal(t, 400, rec.Code)
		assert.Contains(t, rec.Body.String(), "question is required")
	})

	t.Run("rejects a blank question", func(t *testing.T) {
		handler := NewAskHandler(&stubComposer{})

		req := httptest.NewRequest("GET", "/ask?question=%20%20", nil)
		rec := httptest.NewRecorder()

		handler.Ask(rec, req)

		assert.Equal(t, 400, rec.Code)
	})

	t.Run("token events omit empty fields on the wire", func(t *testing.T) {
		composer := &stubComposer{events: []domain.AnswerEvent{
			domain.NewTokenEvent("hi"),
			domain.NewDoneEvent(),
		}}
		handler := NewAskHandler(composer)

		req := httptest.NewRequest("GET", "/ask?question=hello", nil)
		rec := httptest.NewRecorder()

		handler.Ask(rec, req)

		lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
		require.Len(t, lines, 2)
		assert.JSONEq(t, `{"type":"token","content":"hi"}`, lines[0])
		assert.JSONEq(t, `{"type":"done"}`, lines[1])
	})
}
