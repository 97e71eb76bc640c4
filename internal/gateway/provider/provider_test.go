package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RachelGanonNew/AIDA-Project/internal/apperr"
	"github.com/RachelGanonNew/AIDA-Project/internal/config"
)

func chatResponse(content string) map[string]any {
	return map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	}
}

func TestOpenAIChatClient_CallWithMessages(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		var gotPath, gotAuth string
		var gotBody map[string]any
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotAuth = r.Header.Get("Authorization")
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			_ = json.NewEncoder(w).Encode(chatResponse("positive"))
		}))
		defer srv.Close()

		client := &OpenAIChatClient{BaseURL: srv.URL + "/v1/", APIKey: "sk-test-1234", Model: "gpt-4o-mini"}
		out, err := client.CallWithMessages(context.Background(), "You are terse.", "Classify this.", 10, 0.1)
		require.NoError(t, err)
		assert.Equal(t, "positive", out)
		assert.Equal(t, "/v1/chat/completions", gotPath)
		assert.Equal(t, "Bearer sk-test-1234", gotAuth)
		assert.Equal(t, "gpt-4o-mini", gotBody["model"])
		assert.EqualValues(t, 10, gotBody["max_tokens"])
		assert.InDelta(t, 0.1, gotBody["temperature"].(float64), 1e-9)
	})

	t.Run("Normalizes Completion Suffix", func(t *testing.T) {
		var gotPath string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			_ = json.NewEncoder(w).Encode(chatResponse("ok"))
		}))
		defer srv.Close()

		client := &OpenAIChatClient{BaseURL: srv.URL + "/v1/chat/completions"}
		_, err := client.CallWithMessages(context.Background(), "", "hi", 0, 0)
		require.NoError(t, err)
		assert.Equal(t, "/v1/chat/completions", gotPath)
	})

	t.Run("Retries On 429", func(t *testing.T) {
		var calls int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&calls, 1) == 1 {
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			_ = json.NewEncoder(w).Encode(chatResponse("recovered"))
		}))
		defer srv.Close()

		client := &OpenAIChatClient{BaseURL: srv.URL, MaxRetries: 1}
		out, err := client.CallWithMessages(context.Background(), "", "hi", 0, 0)
		require.NoError(t, err)
		assert.Equal(t, "recovered", out)
		assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
	})

	t.Run("No Retry On Bad Request", func(t *testing.T) {
		var calls int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"message": "model gone"}})
		}))
		defer srv.Close()

		client := &OpenAIChatClient{BaseURL: srv.URL, MaxRetries: 2}
		_, err := client.CallWithMessages(context.Background(), "", "hi", 0, 0)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "model gone")
		assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
	})

	t.Run("Empty Choices", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
		}))
		defer srv.Close()

		client := &OpenAIChatClient{BaseURL: srv.URL}
		_, err := client.CallWithMessages(context.Background(), "", "hi", 0, 0)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "empty choices")
	})

	t.Run("Zero Retries Means Single Attempt", func(t *testing.T) {
		var calls int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		client := &OpenAIChatClient{BaseURL: srv.URL, MaxRetries: 0}
		_, err := client.CallWithMessages(context.Background(), "", "hi", 0, 0)
		require.Error(t, err)
		assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
	})
}

func TestOpenAIGenerator_Generate(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(chatResponse("0.6"))
		}))
		defer srv.Close()

		gen := NewOpenAIGenerator("primary", true, false, &OpenAIChatClient{BaseURL: srv.URL}, 600)
		out, err := gen.Generate(context.Background(), GenRequest{Op: "sentiment", User: "Rate this.", MaxTokens: 10, Temperature: 0.1})
		require.NoError(t, err)
		assert.Equal(t, "0.6", out)
		assert.Equal(t, "primary", gen.ID())
		assert.True(t, gen.Enabled())
		assert.False(t, gen.ExpectsJSON())
	})

	t.Run("Disabled", func(t *testing.T) {
		gen := NewOpenAIGenerator("off", false, false, nil, 600)
		_, err := gen.Generate(context.Background(), GenRequest{Op: "summary", User: "x"})
		require.Error(t, err)
		assert.Equal(t, apperr.KindExternalService, apperr.KindOf(err))
	})

	t.Run("Circuit Opens After Repeated Failures", func(t *testing.T) {
		var calls int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer srv.Close()

		gen := NewOpenAIGenerator("flaky", true, false, &OpenAIChatClient{BaseURL: srv.URL, MaxRetries: 0}, 600)
		for i := 0; i < 5; i++ {
			_, err := gen.Generate(context.Background(), GenRequest{Op: "risk", User: "x"})
			require.Error(t, err)
		}
		// The breaker is open now, so the next call never reaches the server.
		_, err := gen.Generate(context.Background(), GenRequest{Op: "risk", User: "x"})
		require.Error(t, err)
		assert.Equal(t, apperr.KindExternalService, apperr.KindOf(err))
		assert.EqualValues(t, 5, atomic.LoadInt32(&calls))
	})
}

func TestBuildGenerators(t *testing.T) {
	cfg := &config.AIConfig{
		Enabled:               true,
		RequestTimeoutSeconds: 5,
		MaxRetries:            1,
		RateLimitPerMin:       60,
		Models: []config.AIModelConfig{
			{ID: "primary", Provider: "openai", Enabled: true, APIURL: "https://example.com/v1", Model: "gpt-4o"},
			{ID: "standby", Provider: "openai", Enabled: false, APIURL: "https://example.com/v1", Model: "gpt-4o-mini"},
		},
	}
	gens := BuildGenerators(cfg)
	require.Len(t, gens, 1)
	assert.Equal(t, "primary", gens[0].ID())
	assert.True(t, gens[0].Enabled())

	assert.Nil(t, BuildGenerators(nil))
	assert.Nil(t, BuildGenerators(&config.AIConfig{Enabled: false}))
}
