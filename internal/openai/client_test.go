package openai

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockEmbeddingAPI is a mock implementation of EmbeddingAPI
type MockEmbeddingAPI struct {
	mock.Mock
}

func (m *MockEmbeddingAPI) CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	args := m.Called(ctx, texts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]float32), args.Error(1)
}

// MockCompletionAPI is a mock implementation of CompletionAPI
type MockCompletionAPI struct {
	mock.Mock
}

func (m *MockCompletionAPI) CreateCompletionStream(ctx context.Context, prompt string) (TokenStream, error) {
	args := m.Called(ctx, prompt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(TokenStream), args.Error(1)
}

// fakeStream replays tokens, then io.EOF.
type fakeStream struct {
	tokens []string
	pos    int
	closed bool
}

func (f *fakeStream) Recv() (string, error) {
	if f.pos < len(f.tokens) {
		token := f.tokens[f.pos]
		f.pos++
		return token, nil
	}
	return "", io.EOF
}

func (f *fakeStream) Close() error {
	f.closed = true
	return nil
}

func newTestClient(embeddings EmbeddingAPI, completions CompletionAPI, dimensions int) *Client {
	return &Client{
		embeddings:  embeddings,
		completions: completions,
		dimensions:  dimensions,
	}
}

func TestClient_GenerateEmbeddings(t *testing.T) {
	ctx := context.Background()

	t.Run("returns vectors in input order", func(t *testing.T) {
		api := new(MockEmbeddingAPI)
		client := newTestClient(api, nil, 3)

		api.On("CreateEmbeddings", mock.Anything, []string{"a", "b"}).
			Return([][]float32{{1, 2, 3}, {4, 5, 6}}, nil)

		vectors, err := client.GenerateEmbeddings(ctx, []string{"a", "b"})

		require.NoError(t, err)
		require.Len(t, vectors, 2)
		assert.Equal(t, []float32{1, 2, 3}, vectors[0])
		assert.Equal(t, []float32{4, 5, 6}, vectors[1])
	})

	t.Run("rejects empty input", func(t *testing.T) {
		client := newTestClient(new(MockEmbeddingAPI), nil, 3)

		_, err := client.GenerateEmbeddings(ctx, nil)
		assert.ErrorIs(t, err, ErrEmptyText)

		_, err = client.GenerateEmbeddings(ctx, []string{"ok", ""})
		assert.ErrorIs(t, err, ErrEmptyText)
	})

	t.Run("rejects vectors with the wrong dimension", func(t *testing.T) {
		api := new(MockEmbeddingAPI)
		client := newTestClient(api, nil, 3)

		api.On("CreateEmbeddings", mock.Anything, []string{"a"}).
			Return([][]float32{{1, 2}}, nil)

		_, err := client.GenerateEmbeddings(ctx, []string{"a"})

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrWrongDimensions)
	})

	t.Run("wraps API failures", func(t *testing.T) {
		api := new(MockEmbeddingAPI)
		client := newTestClient(api, nil, 3)

		apiErr := errors.New("rate limited")
		api.On("CreateEmbeddings", mock.Anything, []string{"a"}).Return(nil, apiErr)

		_, err := client.GenerateEmbeddings(ctx, []string{"a"})

		require.Error(t, err)
		assert.ErrorIs(t, err, apiErr)
	})
}

func TestClient_GenerateEmbedding(t *testing.T) {
	ctx := context.Background()

	t.Run("embeds a single text", func(t *testing.T) {
		api := new(MockEmbeddingAPI)
		client := newTestClient(api, nil, 2)

		api.On("CreateEmbeddings", mock.Anything, []string{"question"}).
			Return([][]float32{{0.1, 0.2}}, nil)

		vector, err := client.GenerateEmbedding(ctx, "question")

		require.NoError(t, err)
		assert.Equal(t, []float32{0.1, 0.2}, vector)
	})

	t.Run("rejects empty text", func(t *testing.T) {
		client := newTestClient(new(MockEmbeddingAPI), nil, 2)

		_, err := client.GenerateEmbedding(ctx, "")
		assert.ErrorIs(t, err, ErrEmptyText)
	})
}

func TestClient_StreamCompletion(t *testing.T) {
	ctx := context.Background()

	t.Run("relays the token stream", func(t *testing.T) {
		api := new(MockCompletionAPI)
		client := newTestClient(nil, api, 2)

		stream := &fakeStream{tokens: []string{"Hello", " there"}}
		api.On("CreateCompletionStream", mock.Anything, "prompt").Return(stream, nil)

		got, err := client.StreamCompletion(ctx, "prompt")
		require.NoError(t, err)

		token, err := got.Recv()
		require.NoError(t, err)
		assert.Equal(t, "Hello", token)

		token, err = got.Recv()
		require.NoError(t, err)
		assert.Equal(t, " there", token)

		_, err = got.Recv()
		assert.True(t, IsStreamEnd(err))
	})

	t.Run("rejects an empty prompt", func(t *testing.T) {
		client := newTestClient(nil, new(MockCompletionAPI), 2)

		_, err := client.StreamCompletion(ctx, "")
		assert.ErrorIs(t, err, ErrEmptyText)
	})

	t.Run("wraps open failures", func(t *testing.T) {
		api := new(MockCompletionAPI)
		client := newTestClient(nil, api, 2)

		api.On("CreateCompletionStream", mock.Anything, "prompt").
			Return(nil, errors.New("model unavailable"))

		_, err := client.StreamCompletion(ctx, "prompt")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to open completion stream")
	})
}

func TestNewClientWithConfig(t *testing.T) {
	t.Run("defaults dimensions when unset", func(t *testing.T) {
		client := NewClientWithConfig(Config{APIKey: "sk-test"})
		assert.Equal(t, DefaultEmbeddingDimensions, client.Dimensions())
	})

	t.Run("honors configured dimensions", func(t *testing.T) {
		client := NewClientWithConfig(Config{APIKey: "sk-test", EmbeddingDimensions: 256})
		assert.Equal(t, 256, client.Dimensions())
	})
}

func TestIsStreamEnd(t *testing.T) {
	assert.True(t, IsStreamEnd(io.EOF))
	assert.False(t, IsStreamEnd(errors.New("boom")))
	assert.False(t, IsStreamEnd(nil))
}
