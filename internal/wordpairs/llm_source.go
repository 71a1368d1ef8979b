package wordpairs

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/abhisek/neurogym/internal/llm"
)

// LLMSource generates pairs with a language model. Any generation or
// validation failure falls back to another source.
type LLMSource struct {
	provider llm.Provider
	fallback Source
	config   Config
	logger   *zap.Logger

	mu     sync.Mutex
	recent []string
}

// NewLLMSource creates an LLMSource. fallback is required; logger may be nil.
func NewLLMSource(provider llm.Provider, fallback Source, cfg Config, logger *zap.Logger) *LLMSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LLMSource{provider: provider, fallback: fallback, config: cfg, logger: logger}
}

// Pairs generates n pairs, or returns the fallback's pairs when generation
// fails. Only a fallback failure is returned as an error.
func (s *LLMSource) Pairs(ctx context.Context, n int) ([]Pair, error) {
	pairs, err := s.Generate(ctx, n)
	if err == nil {
		return pairs, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	s.logger.Warn("word pair generation failed, using static list",
		zap.Int("pairs", n),
		zap.String("theme", s.config.Theme),
		zap.Error(err))
	return s.fallback.Pairs(ctx, n)
}

// Generate asks the model for n pairs without falling back.
func (s *LLMSource) Generate(ctx context.Context, n int) ([]Pair, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeWordPairs)

	req := llm.Prompt(systemPrompt, buildUserMessage(n, s.config.Theme, s.recentCues(), s.config.MaxAvoid),
		PairsSchema, s.config.MaxTokens)
	req.Temperature = s.config.Temperature

	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("generate word pairs: %w", err)
	}
	var out pairsOutput
	if err := resp.Decode(&out); err != nil {
		return nil, fmt.Errorf("generate word pairs: %w", err)
	}
	if err := Validate(out.Pairs, n); err != nil {
		return nil, err
	}

	pairs := make([]Pair, n)
	for i, p := range out.Pairs[:n] {
		pairs[i] = Pair{
			Cue:    strings.ToLower(strings.TrimSpace(p.Cue)),
			Target: strings.ToLower(strings.TrimSpace(p.Target)),
		}
	}
	s.remember(pairs)
	return pairs, nil
}

func (s *LLMSource) recentCues() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.recent...)
}

func (s *LLMSource) remember(pairs []Pair) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range pairs {
		s.recent = append(s.recent, p.Cue)
	}
	if limit := s.config.MaxAvoid; limit > 0 && len(s.recent) > limit {
		s.recent = s.recent[len(s.recent)-limit:]
	}
}
