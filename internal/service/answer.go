package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/docubase-ai/docubase/internal/domain"
)

// TokenStream is an incremental sequence of generated text fragments. Recv
// returns io.EOF on normal completion.
type TokenStream interface {
	Recv() (string, error)
	Close() error
}

// GenerationClient opens a streaming completion for a grounded prompt.
type GenerationClient interface {
	StreamCompletion(ctx context.Context, prompt string) (TokenStream, error)
}

// PassageRetriever is the slice of Retriever the composer needs.
type PassageRetriever interface {
	Retrieve(ctx context.Context, question string, threshold float64, k int) ([]*domain.RetrievedPassage, error)
}

// ComposerConfig carries the retrieval parameters used for answering.
type ComposerConfig struct {
	SimilarityThreshold float64
	TopK                int
}

// Composer turns a question into a caller-facing answer event stream:
// retrieve passages, cite their sources, then relay generated tokens.
type Composer struct {
	retriever PassageRetriever
	generator GenerationClient
	cfg       ComposerConfig
}

func NewComposer(retriever PassageRetriever, generator GenerationClient, cfg ComposerConfig) *Composer {
	if cfg.TopK <= 0 {
		cfg.TopK = 3
	}
	return &Composer{retriever: retriever, generator: generator, cfg: cfg}
}

// Compose answers the question over a channel of answer events.
//
// The stream always opens with one sources event before any token, and
// always closes the channel after one terminal event: done on normal
// completion, error on any failure. When no passage meets the threshold a
// single error event is emitted. Cancelling ctx stops generation at the
// next fragment.
func (c *Composer) Compose(ctx context.Context, question string) <-chan domain.AnswerEvent {
	events := make(chan domain.AnswerEvent)
	go func() {
		defer close(events)
		c.compose(ctx, question, events)
	}()
	return events
}

func (c *Composer) compose(ctx context.Context, question string, events chan<- domain.AnswerEvent) {
	passages, err := c.retriever.Retrieve(ctx, question, c.cfg.SimilarityThreshold, c.cfg.TopK)
	if err != nil {
		emit(ctx, events, domain.NewErrorEvent(fmt.Sprintf("retrieval failed: %v", err)))
		return
	}
	if len(passages) == 0 {
		emit(ctx, events, domain.NewErrorEvent("No relevant documents found. Please upload some files first."))
		return
	}

	if !emit(ctx, events, domain.NewSourcesEvent(sourceNames(passages))) {
		return
	}

	stream, err := c.generator.StreamCompletion(ctx, BuildPrompt(question, passages))
	if err != nil {
		emit(ctx, events, domain.NewErrorEvent(fmt.Sprintf("generation failed: %v", err)))
		return
	}
	defer stream.Close()

	for {
		token, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			emit(ctx, events, domain.NewDoneEvent())
			return
		}
		if err != nil {
			emit(ctx, events, domain.NewErrorEvent(fmt.Sprintf("generation failed: %v", err)))
			return
		}
		if token == "" {
			continue
		}
		if !emit(ctx, events, domain.NewTokenEvent(token)) {
			return
		}
	}
}

// emit delivers one event unless the caller has gone away.
func emit(ctx context.Context, events chan<- domain.AnswerEvent, event domain.AnswerEvent) bool {
	select {
	case events <- event:
		return true
	case <-ctx.Done():
		return false
	}
}

// sourceNames deduplicates source document names preserving first-seen
// order. Two distinct documents sharing a name merge into one citation.
func sourceNames(passages []*domain.RetrievedPassage) []string {
	seen := make(map[string]struct{}, len(passages))
	names := make([]string, 0, len(passages))
	for _, p := range passages {
		name := p.Source
		if name == "" {
			name = "Unknown"
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

// BuildPrompt embeds the retrieved passages as grounding context for the
// generation model.
func BuildPrompt(question string, passages []*domain.RetrievedPassage) string {
	contents := make([]string, len(passages))
	for i, p := range passages {
		contents[i] = p.Content
	}

	var b strings.Builder
	b.WriteString("You are an assistant. Use the following context to answer the question.\n")
	b.WriteString("If the answer is not in the context, say you don't know.\n\n")
	b.WriteString("Context:\n")
	b.WriteString(strings.Join(contents, "\n\n"))
	b.WriteString("\n\nQuestion: ")
	b.WriteString(question)
	b.WriteString("\n\nAnswer concisely, and include citations if possible.")
	return b.String()
}
