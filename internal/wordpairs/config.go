package wordpairs

// Config controls the behavior of the LLMSource.
type Config struct {
	// Theme steers the vocabulary, e.g. "kitchen" or "ocean". Empty lets
	// the model choose.
	Theme string

	// MaxTokens is the token budget for one response.
	MaxTokens int

	// Temperature controls randomness (0.0-1.0).
	Temperature float64

	// MaxAvoid is the number of recently used cues listed in the prompt so
	// the model does not repeat them.
	MaxAvoid int
}

// DefaultConfig returns the recommended LLMSource settings.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   1024,
		Temperature: 0.9,
		MaxAvoid:    40,
	}
}
