package wordpairs

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
)

// StaticSource samples pairs from a fixed list.
type StaticSource struct {
	mu    sync.Mutex
	rng   *rand.Rand
	pairs []Pair
}

// NewStaticSource samples the built-in list with rng. A nil rng uses a
// randomly seeded generator.
func NewStaticSource(rng *rand.Rand) *StaticSource {
	return NewStaticSourceFrom(builtin, rng)
}

// NewStaticSourceFrom samples the given pairs.
func NewStaticSourceFrom(pairs []Pair, rng *rand.Rand) *StaticSource {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &StaticSource{rng: rng, pairs: pairs}
}

// Pairs returns n distinct pairs in random order.
func (s *StaticSource) Pairs(_ context.Context, n int) ([]Pair, error) {
	if n > len(s.pairs) {
		return nil, fmt.Errorf("sample %d of %d: %w", n, len(s.pairs), ErrNotEnoughPairs)
	}
	s.mu.Lock()
	perm := s.rng.Perm(len(s.pairs))
	s.mu.Unlock()

	out := make([]Pair, 0, n)
	for _, i := range perm[:max(n, 0)] {
		out = append(out, s.pairs[i])
	}
	return out, nil
}

// Len returns the number of pairs available.
func (s *StaticSource) Len() int {
	return len(s.pairs)
}

var builtin = []Pair{
	{"apple", "river"}, {"candle", "mountain"}, {"piano", "garden"},
	{"window", "tiger"}, {"bottle", "cloud"}, {"pencil", "ocean"},
	{"blanket", "rocket"}, {"mirror", "forest"}, {"ladder", "violin"},
	{"basket", "thunder"}, {"helmet", "meadow"}, {"anchor", "feather"},
	{"lantern", "desert"}, {"button", "castle"}, {"saddle", "comet"},
	{"kettle", "island"}, {"wallet", "glacier"}, {"hammer", "orchid"},
	{"pillow", "canyon"}, {"compass", "lemon"}, {"trumpet", "valley"},
	{"carpet", "dolphin"}, {"zipper", "volcano"}, {"marble", "sparrow"},
	{"chimney", "banana"}, {"needle", "harbor"}, {"tunnel", "peacock"},
	{"jacket", "lagoon"}, {"whistle", "cactus"}, {"ribbon", "engine"},
	{"shovel", "balloon"}, {"napkin", "falcon"}, {"bucket", "prairie"},
	{"curtain", "walrus"}, {"saucer", "cathedral"}, {"goblet", "tractor"},
	{"magnet", "jungle"}, {"teapot", "lighthouse"}, {"scissors", "rainbow"},
	{"pebble", "airplane"}, {"spoon", "avalanche"}, {"cradle", "penguin"},
}
