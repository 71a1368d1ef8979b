package llm

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"
)

// pairsSchema is the shape word-pair generation asks for.
func pairsSchema() *Schema {
	return &Schema{
		Name: "test_word_pairs",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"pairs": map[string]any{
					"type":     "array",
					"minItems": 1,
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"cue":    map[string]any{"type": "string"},
							"target": map[string]any{"type": "string"},
						},
						"required":             []string{"cue", "target"},
						"additionalProperties": false,
					},
				},
			},
			"required":             []string{"pairs"},
			"additionalProperties": false,
		},
	}
}

type testPairs struct {
	Pairs []struct {
		Cue    string `json:"cue"`
		Target string `json:"target"`
	} `json:"pairs"`
}

func TestMockProvider_ReplaysInOrder(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"pairs":[{"cue":"cat","target":"dog"}]}`)},
		MockResponse{Content: json.RawMessage(`{"pairs":[{"cue":"sun","target":"moon"}]}`)},
	)

	for _, want := range []string{"cat", "sun"} {
		resp, err := mock.Generate(context.Background(), Prompt("", "pairs", pairsSchema(), 100))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var got testPairs
		if err := resp.Decode(&got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got.Pairs[0].Cue != want {
			t.Errorf("cue = %q, want %q", got.Pairs[0].Cue, want)
		}
		if resp.Model != "mock" || resp.StopReason != StopEnd {
			t.Errorf("model/stop = %q/%q", resp.Model, resp.StopReason)
		}
	}
	if mock.CallCount() != 2 {
		t.Errorf("calls = %d, want 2", mock.CallCount())
	}
}

func TestMockProvider_EmptyQueue(t *testing.T) {
	mock := NewMockProvider()
	_, err := mock.Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got %T (%v)", err, err)
	}
	if err.Error() != "LLM provider unavailable" {
		t.Errorf("message = %q", err.Error())
	}
}

func TestMockProvider_ValidatesSchema(t *testing.T) {
	mock := NewMockProvider(MockJSON(map[string]any{"pairs": []any{}}))
	_, err := mock.Generate(context.Background(), Prompt("", "pairs", pairsSchema(), 100))
	var inv *ErrInvalidResponse
	if !errors.As(err, &inv) {
		t.Fatalf("expected ErrInvalidResponse for empty pairs, got %v", err)
	}
}

func TestMockProvider_RecordsCallsAndErrors(t *testing.T) {
	boom := errors.New("boom")
	mock := NewMockProvider(MockResponse{Err: boom})
	mock.AddResponse(MockJSON("ok"))

	if _, err := mock.Generate(context.Background(), Prompt("sys", "first", nil, 10)); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if _, err := mock.Generate(context.Background(), Prompt("sys", "second", nil, 10)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := mock.Calls[1].Messages[0].Content; got != "second" {
		t.Errorf("recorded content = %q", got)
	}
	if mock.Calls[0].System != "sys" {
		t.Errorf("recorded system = %q", mock.Calls[0].System)
	}
}

func TestResponse_Decode(t *testing.T) {
	resp := &Response{Content: json.RawMessage(`not json`)}
	var v map[string]any
	err := resp.Decode(&v)
	var inv *ErrInvalidResponse
	if !errors.As(err, &inv) {
		t.Fatalf("expected ErrInvalidResponse, got %v", err)
	}
	if string(inv.Content) != "not json" {
		t.Errorf("content = %q", inv.Content)
	}
}

func TestPurpose(t *testing.T) {
	if got := PurposeFrom(context.Background()); got != PurposeUnknown {
		t.Errorf("PurposeFrom(empty) = %q, want %q", got, PurposeUnknown)
	}
	ctx := WithPurpose(context.Background(), PurposeWordPairs)
	if got := PurposeFrom(ctx); got != PurposeWordPairs {
		t.Errorf("PurposeFrom = %q, want %q", got, PurposeWordPairs)
	}
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"unavailable", &ErrProviderUnavailable{}, true},
		{"rate limit", &ErrRateLimit{}, true},
		{"invalid", &ErrInvalidResponse{}, true},
		{"max tokens", &ErrMaxTokensExceeded{}, false},
		{"canceled", context.Canceled, false},
		{"deadline", context.DeadlineExceeded, false},
	}
	for _, tt := range tests {
		if got := Retryable(tt.err); got != tt.want {
			t.Errorf("Retryable(%s) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"anthropic without key", func(c *Config) {}, "NEUROGYM_ANTHROPIC_API_KEY is required for the anthropic provider"},
		{"anthropic with key", func(c *Config) { c.Anthropic.APIKey = "k" }, ""},
		{"openai without key", func(c *Config) { c.Provider = ProviderOpenAI }, "NEUROGYM_OPENAI_API_KEY is required for the openai provider"},
		{"gemini with key", func(c *Config) { c.Provider = ProviderGemini; c.Gemini.APIKey = "k" }, ""},
		{"openrouter without key", func(c *Config) { c.Provider = ProviderOpenRouter }, "NEUROGYM_OPENROUTER_API_KEY is required for the openrouter provider"},
		{"mock", func(c *Config) { c.Provider = ProviderMock }, ""},
		{"unknown", func(c *Config) { c.Provider = "llama" }, `unknown LLM provider: "llama"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || err.Error() != tt.wantErr {
				t.Fatalf("err = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func clearProviderEnv(t *testing.T) {
	t.Helper()
	for _, v := range envVars {
		t.Setenv(v.name, "")
	}
	for _, name := range []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY"} {
		t.Setenv(name, "")
	}
}

func TestConfigFromEnv(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("NEUROGYM_LLM_PROVIDER", "openrouter")
	t.Setenv("NEUROGYM_OPENROUTER_API_KEY", "sk-or")
	t.Setenv("NEUROGYM_OPENROUTER_MODEL", "meta-llama/llama-3.1-8b-instruct")

	cfg := ConfigFromEnv()
	if cfg.Provider != ProviderOpenRouter || cfg.OpenRouter.APIKey != "sk-or" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.OpenRouter.Model != "meta-llama/llama-3.1-8b-instruct" {
		t.Errorf("model = %q", cfg.OpenRouter.Model)
	}
	if cfg.Anthropic.Model != "claude-haiku" {
		t.Errorf("untouched default changed: %q", cfg.Anthropic.Model)
	}
}

func TestResolve(t *testing.T) {
	t.Run("nothing configured", func(t *testing.T) {
		clearProviderEnv(t)
		if _, ok := Resolve(); ok {
			t.Fatal("expected no provider")
		}
	})

	t.Run("discovered vendor key", func(t *testing.T) {
		clearProviderEnv(t)
		t.Setenv("OPENAI_API_KEY", "sk-openai")
		t.Setenv("ANTHROPIC_API_KEY", "sk-ant")
		cfg, ok := Resolve()
		if !ok || cfg.Provider != ProviderOpenAI || cfg.OpenAI.APIKey != "sk-openai" {
			t.Fatalf("cfg = %+v ok = %v, want openai first", cfg, ok)
		}
	})

	t.Run("explicit config wins", func(t *testing.T) {
		clearProviderEnv(t)
		t.Setenv("GEMINI_API_KEY", "g")
		t.Setenv("NEUROGYM_ANTHROPIC_API_KEY", "sk-ant")
		cfg, ok := Resolve()
		if !ok || cfg.Provider != ProviderAnthropic {
			t.Fatalf("cfg = %+v ok = %v, want anthropic", cfg, ok)
		}
	})
}

func TestNewProvider(t *testing.T) {
	t.Run("invalid config", func(t *testing.T) {
		if _, err := NewProvider(context.Background(), DefaultConfig(), nil, nil); err == nil {
			t.Fatal("expected error without API key")
		}
	})

	t.Run("mock", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Provider = ProviderMock
		p, err := NewProvider(context.Background(), cfg, nil, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := p.(*MockProvider); !ok {
			t.Fatalf("provider = %T, want *MockProvider", p)
		}
	})

	t.Run("decorated backend", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Provider = ProviderOpenRouter
		cfg.OpenRouter.APIKey = "sk-or"
		p, err := NewProvider(context.Background(), cfg, nil, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := p.(*timeoutProvider); !ok {
			t.Fatalf("provider = %T, want *timeoutProvider", p)
		}
		if p.ModelID() != "google/gemini-2.0-flash-exp" {
			t.Errorf("model = %q", p.ModelID())
		}
	})
}

func TestLookupCost(t *testing.T) {
	c := LookupCost("gpt-4o-mini")
	if c == nil {
		t.Fatal("gpt-4o-mini should be priced")
	}
	if got := c.Cost(1_000_000, 1_000_000); math.Abs(got-0.75) > 1e-9 {
		t.Errorf("cost = %v, want 0.75", got)
	}
	if LookupCost("google/gemini-2.0-flash-exp") == nil {
		t.Error("OpenRouter slug should fall back to the bare model")
	}
	if LookupCost("mock") != nil {
		t.Error("mock should be unpriced")
	}
}
