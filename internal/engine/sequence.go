package engine

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand"
	"strings"
	"sync"
	"unicode/utf8"
)

// DefaultAlphabet is the fruit and animal symbol set tokens are drawn from.
const DefaultAlphabet = "🍎🍊🍌🍇🦁🐘🐒🦋🍓🍍🦊🐻🦉🐠🥭🍐🥝🦓🦒🐅"

// DefaultSequenceLength is the canonical token length in symbols.
const DefaultSequenceLength = 5

// Generator produces random symbol sequences.
type Generator interface {
	Generate(length int, alphabet []rune) string
}

// RandomGenerator draws each symbol independently and uniformly.
// It is safe for concurrent use.
type RandomGenerator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRandomGenerator creates a generator seeded from crypto/rand.
func NewRandomGenerator() *RandomGenerator {
	var seed [8]byte
	if _, err := crand.Read(seed[:]); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	return NewSeededGenerator(int64(binary.LittleEndian.Uint64(seed[:])))
}

// NewSeededGenerator creates a deterministic generator, mainly for tests.
func NewSeededGenerator(seed int64) *RandomGenerator {
	return &RandomGenerator{rnd: rand.New(rand.NewSource(seed))}
}

// Generate returns length symbols sampled from alphabet with repetition.
// alphabet must be non-empty and length positive.
func (g *RandomGenerator) Generate(length int, alphabet []rune) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	var b strings.Builder
	b.Grow(length * utf8.UTFMax)
	for i := 0; i < length; i++ {
		b.WriteRune(alphabet[g.rnd.Intn(len(alphabet))])
	}
	return b.String()
}

// SequenceLength returns the length of s in symbols.
func SequenceLength(s string) int {
	return utf8.RuneCountInString(s)
}
