package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/RachelGanonNew/AIDA-Project/internal/apperr"
	"github.com/RachelGanonNew/AIDA-Project/internal/logger"
	"github.com/RachelGanonNew/AIDA-Project/internal/pkg/circuit"
)

// OpenAIChatClient speaks the OpenAI-compatible chat completion protocol
// (/v1/chat/completions), which also covers DeepSeek, Qwen and most hosted
// open-model gateways.
type OpenAIChatClient struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
	// Retries apply to 429/5xx responses only. Zero means a single attempt.
	MaxRetries   int
	ExtraHeaders map[string]string
}

func (c *OpenAIChatClient) CallWithMessages(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, temperature float64) (string, error) {
	timeout := c.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	maxRetries := c.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	// Normalize BaseURL so a configured ".../chat/completions" does not end up
	// with a duplicated path segment.
	url := c.BaseURL
	if url == "" {
		url = "https://api.openai.com/v1"
	}
	url = strings.TrimRight(url, "/")
	if strings.HasSuffix(url, "/chat/completions") {
		url = strings.TrimSuffix(url, "/chat/completions")
	}
	url = url + "/chat/completions"

	messages := []map[string]string{}
	if systemPrompt != "" {
		messages = append(messages, map[string]string{"role": "system", "content": systemPrompt})
	}
	messages = append(messages, map[string]string{"role": "user", "content": userPrompt})

	body := map[string]any{"model": c.Model, "messages": messages, "temperature": temperature}
	if maxTokens > 0 {
		body["max_tokens"] = maxTokens
	}
	b, _ := json.Marshal(body)

	httpc := &http.Client{Timeout: timeout}
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		// Log the outgoing request once per call, with auth material masked.
		if attempt == 0 {
			hlog := map[string]string{"Content-Type": "application/json"}
			if c.APIKey != "" {
				tail := c.APIKey
				if len(c.APIKey) > 4 {
					tail = c.APIKey[len(c.APIKey)-4:]
				}
				hlog["Authorization"] = fmt.Sprintf("Bearer ****%s", tail)
			}
			for k, v := range c.ExtraHeaders {
				lk := strings.ToLower(k)
				mv := v
				if strings.Contains(lk, "key") || strings.Contains(lk, "token") || strings.Contains(lk, "auth") {
					if len(v) > 4 {
						mv = "****" + v[len(v)-4:]
					} else {
						mv = "****"
					}
				}
				hlog[k] = mv
			}
			logger.Debugf("[AI] request: POST %s, headers=%v", url, hlog)
			logger.LogLLMPayload(c.Model, string(b))
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
		if err != nil {
			return "", err
		}
		req.Header.Set("Content-Type", "application/json")
		if c.APIKey != "" {
			req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.APIKey))
		}
		for k, v := range c.ExtraHeaders {
			req.Header.Set(k, v)
		}

		resp, err := httpc.Do(req)
		if err != nil {
			lastErr = err
			break
		}
		if resp.StatusCode/100 == 2 {
			var r struct {
				Choices []struct {
					Message struct {
						Content string `json:"content"`
					} `json:"message"`
				} `json:"choices"`
			}
			derr := json.NewDecoder(resp.Body).Decode(&r)
			resp.Body.Close()
			if derr != nil {
				lastErr = derr
				break
			}
			if len(r.Choices) == 0 {
				lastErr = fmt.Errorf("empty choices")
				break
			}
			return r.Choices[0].Message.Content, nil
		}
		var eresp struct {
			Error struct {
				Message string      `json:"message"`
				Type    string      `json:"type"`
				Param   string      `json:"param"`
				Code    interface{} `json:"code"`
			} `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&eresp)
		resp.Body.Close()
		msg := strings.TrimSpace(eresp.Error.Message)
		if msg == "" {
			msg = resp.Status
		}
		if (resp.StatusCode == 429 || resp.StatusCode == 500 || resp.StatusCode == 502 || resp.StatusCode == 503 || resp.StatusCode == 504) && attempt < maxRetries {
			wait := time.Duration(0)
			if ra := resp.Header.Get("Retry-After"); ra != "" {
				if secs, perr := strconv.Atoi(ra); perr == nil {
					wait = time.Duration(secs) * time.Second
				}
			}
			if wait == 0 {
				// Exponential backoff: 0.8s, 1.6s, 3.2s ...
				base := 800 * time.Millisecond
				wait = base << attempt
				if wait > 8*time.Second {
					wait = 8 * time.Second
				}
			}
			lastErr = fmt.Errorf("status=%d: %s", resp.StatusCode, msg)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(wait):
			}
			continue
		}
		lastErr = fmt.Errorf("status=%d: %s", resp.StatusCode, msg)
		break
	}
	return "", lastErr
}

// OpenAIGenerator wraps a chat client with the guard rails shared by every
// outbound AI call: a circuit breaker, a client-side rate limit and the LLM
// conversation log.
type OpenAIGenerator struct {
	id         string
	enabled    bool
	expectJSON bool
	client     *OpenAIChatClient
	breaker    *circuit.CircuitBreaker
	limiter    *rate.Limiter
}

func NewOpenAIGenerator(id string, enabled, expectJSON bool, client *OpenAIChatClient, ratePerMin int) *OpenAIGenerator {
	if ratePerMin <= 0 {
		ratePerMin = 60
	}
	return &OpenAIGenerator{
		id:         id,
		enabled:    enabled,
		expectJSON: expectJSON,
		client:     client,
		breaker:    circuit.NewCircuitBreaker("ai:"+id, 5, 2*time.Minute),
		// One analysis run fans out several prompts at once, so allow a burst.
		limiter: rate.NewLimiter(rate.Limit(float64(ratePerMin)/60.0), 5),
	}
}

func (g *OpenAIGenerator) ID() string        { return g.id }
func (g *OpenAIGenerator) Enabled() bool     { return g.enabled }
func (g *OpenAIGenerator) ExpectsJSON() bool { return g.expectJSON }

func (g *OpenAIGenerator) Generate(ctx context.Context, req GenRequest) (string, error) {
	if !g.enabled {
		return "", apperr.ExternalService("ai:"+g.id, fmt.Errorf("model disabled"))
	}
	if !g.breaker.Allow() {
		return "", apperr.ExternalService("ai:"+g.id, fmt.Errorf("circuit open"))
	}
	if err := g.limiter.Wait(ctx); err != nil {
		return "", apperr.ExternalService("ai:"+g.id, err)
	}
	logger.LogLLMRequest("analysis", g.id, req.Op, req.System, req.User, "")
	raw, err := g.client.CallWithMessages(ctx, req.System, req.User, req.MaxTokens, req.Temperature)
	if err != nil {
		g.breaker.RecordFailure()
		return "", apperr.ExternalService("ai:"+g.id, err)
	}
	g.breaker.RecordSuccess()
	logger.LogLLMResponse("analysis", g.id, req.Op, raw)
	return raw, nil
}
