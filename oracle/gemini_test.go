package oracle

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeminiGenerate(t *testing.T) {
	t.Run("Successful generation", func(t *testing.T) {
		var body map[string]interface{}
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/models/test-model:generateContent", r.URL.Path)
			assert.Equal(t, "secret", r.URL.Query().Get("key"))

			raw, err := io.ReadAll(r.Body)
			assert.NoError(t, err)
			assert.NoError(t, json.Unmarshal(raw, &body))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"{\"ok\":true}"}]},"finishReason":"STOP"}],"modelVersion":"test-model-001"}`))
		}))
		defer server.Close()

		g := NewGemini("secret", "test-model", server.URL, time.Second, nil)
		resp, err := g.Generate(context.Background(), Request{SystemPrompt: "be terse", UserPrompt: "hello", MaxTokens: 64})
		require.NoError(t, err)
		assert.Equal(t, `{"ok":true}`, resp.Content)
		assert.Equal(t, "test-model-001", resp.Model)
		assert.NotEmpty(t, resp.RawResponse)

		assert.Contains(t, body, "systemInstruction", "Expected system prompt to be sent")
		config := body["generationConfig"].(map[string]interface{})
		assert.Equal(t, float64(64), config["maxOutputTokens"])
	})

	t.Run("API error status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"quota"}`))
		}))
		defer server.Close()

		g := NewGemini("secret", "", server.URL, time.Second, nil)
		_, err := g.Generate(context.Background(), Request{UserPrompt: "hello"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 429")
	})

	t.Run("Empty candidates", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"candidates":[]}`))
		}))
		defer server.Close()

		g := NewGemini("secret", "", server.URL, time.Second, nil)
		_, err := g.Generate(context.Background(), Request{UserPrompt: "hello"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "empty response")
	})

	t.Run("Not configured without key", func(t *testing.T) {
		g := NewGemini("", "", "", 0, nil)
		assert.False(t, g.Available())
		_, err := g.Generate(context.Background(), Request{UserPrompt: "hello"})
		assert.Error(t, err)
	})

	t.Run("Timeout from context", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
		defer server.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		g := NewGemini("secret", "", server.URL, 5*time.Second, nil)
		_, err := g.Generate(ctx, Request{UserPrompt: "hello"})
		require.Error(t, err)
		assert.True(t, strings.Contains(err.Error(), "deadline") || strings.Contains(err.Error(), "canceled"))
	})
}
