package embeddings

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanonone/kektorindex/pkg/config"
)

func TestOllamaEmbed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embeddings", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "nomic-embed-text", body["model"])
		assert.Equal(t, "ciao mondo", body["prompt"])

		_, _ = w.Write([]byte(`{"embedding":[0.1,0.2,0.3]}`))
	}))
	defer srv.Close()

	e, err := New(config.EmbedderConfig{Type: "ollama", URL: srv.URL, Model: "nomic-embed-text"})
	require.NoError(t, err)

	vec, err := e.Embed(context.Background(), "ciao mondo")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
}

func TestOpenAIEmbed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "hello", body["input"])

		_, _ = w.Write([]byte(`{"data":[{"embedding":[1,0]}]}`))
	}))
	defer srv.Close()

	e, err := New(config.EmbedderConfig{Type: "openai", URL: srv.URL + "/", Model: "m", APIKey: "sk-test"})
	require.NoError(t, err)

	vec, err := e.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0}, vec)
}

func TestEmbedErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `{}`},
		{name: "bad json", status: http.StatusOK, body: `{not json`},
		{name: "empty vector", status: http.StatusOK, body: `{"embedding":[],"data":[]}`, wantErr: ErrEmptyEmbedding},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			for _, typ := range []string{"ollama", "openai"} {
				e, err := New(config.EmbedderConfig{Type: typ, URL: srv.URL})
				require.NoError(t, err)
				_, err = e.Embed(context.Background(), "x")
				require.Error(t, err, typ)
				if tt.wantErr != nil {
					assert.ErrorIs(t, err, tt.wantErr, typ)
				}
			}
		})
	}
}

func TestEmbedHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	e := NewOllamaEmbedder(srv.URL, "m", 0)
	_, err := e.Embed(ctx, "slow")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewUnknownType(t *testing.T) {
	_, err := New(config.EmbedderConfig{Type: "cohere"})
	assert.Error(t, err)
}

func TestEndpoint(t *testing.T) {
	assert.Equal(t, "http://localhost:11434/api/embeddings", endpoint("", "http://localhost:11434", "/api/embeddings"))
	assert.Equal(t, "http://h/api/embeddings", endpoint("http://h/api/embeddings", "x", "/api/embeddings"))
	assert.Equal(t, "http://h/v1/embeddings", endpoint("http://h/", "x", "/v1/embeddings"))
}
