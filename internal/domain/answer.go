package domain

// AnswerEventType tags the variants of the answer event stream.
type AnswerEventType string

const (
	AnswerEventSources AnswerEventType = "sources"
	AnswerEventToken   AnswerEventType = "token"
	AnswerEventDone    AnswerEventType = "done"
	AnswerEventError   AnswerEventType = "error"
)

// AnswerEvent is one element of the caller-facing answer stream.
//
// A well-formed stream is: one sources event, zero or more token events,
// then exactly one done or error event. The empty-retrieval path is a single
// error event. Nothing follows a terminal event.
type AnswerEvent struct {
	Type    AnswerEventType `json:"type"`
	Content string          `json:"content,omitempty"`
	Sources []string        `json:"sources,omitempty"`
}

// NewSourcesEvent builds the citation event sent before any tokens.
func NewSourcesEvent(sources []string) AnswerEvent {
	return AnswerEvent{Type: AnswerEventSources, Sources: sources}
}

// NewTokenEvent wraps one generated text fragment.
func NewTokenEvent(token string) AnswerEvent {
	return AnswerEvent{Type: AnswerEventToken, Content: token}
}

// NewDoneEvent marks normal completion of the stream.
func NewDoneEvent() AnswerEvent {
	return AnswerEvent{Type: AnswerEventDone}
}

// NewErrorEvent marks abnormal termination of the stream.
func NewErrorEvent(message string) AnswerEvent {
	return AnswerEvent{Type: AnswerEventError, Content: message}
}

// Terminal reports whether the event closes the stream.
func (e AnswerEvent) Terminal() bool {
	return e.Type == AnswerEventDone || e.Type == AnswerEventError
}
