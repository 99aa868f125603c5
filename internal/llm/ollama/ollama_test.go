package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_SendsSystemAndUserMessages(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"message": map[string]string{"role": "assistant", "content": "  You slept well.\n"},
			"done":    true,
		})
	}))
	defer srv.Close()

	b := New("", "llama3.2", 0)
	b.client.SetBaseURL(srv.URL)

	out, err := b.Generate(context.Background(), "sys", "body")
	require.NoError(t, err)
	assert.Equal(t, "  You slept well.\n", out, "backend returns raw text")
	assert.Equal(t, "llama3.2", got.Model)
	assert.False(t, got.Stream)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, chatMessage{Role: "system", Content: "sys"}, got.Messages[0])
	assert.Equal(t, chatMessage{Role: "user", Content: "body"}, got.Messages[1])
}

func TestGenerate_Non200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"model 'nope' not found"}`))
	}))
	defer srv.Close()

	b := New(srv.URL, "nope", 0)
	_, err := b.Generate(context.Background(), "s", "u")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
	assert.Contains(t, err.Error(), "model 'nope' not found")
}

func TestGenerate_OKWithNonJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>proxy error</html>"))
	}))
	defer srv.Close()

	out, err := New(srv.URL, "llama3.2", 0).Generate(context.Background(), "s", "u")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ollama decode")
	assert.Empty(t, out)
}

func TestGenerate_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url, "m", 0).Generate(context.Background(), "s", "u")
	assert.Error(t, err)
}

func TestHealthPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		_, _ = w.Write([]byte(`{"models":[{"name":"llama3.2:latest"},{"name":"mistral:7b"}]}`))
	}))
	defer srv.Close()

	assert.NoError(t, New(srv.URL, "llama3.2", 0).HealthPing(context.Background()))
	assert.NoError(t, New(srv.URL, "mistral", 0).HealthPing(context.Background()))
	assert.EqualError(t, New(srv.URL, "phi3", 0).HealthPing(context.Background()), "model phi3 not found")
}

func TestNew_AddsScheme(t *testing.T) {
	b := New("localhost:11434", "m", 0)
	assert.Equal(t, "http://localhost:11434", b.client.BaseURL)
}
