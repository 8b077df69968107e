// Package generator picks target characters for new objects.
package generator

import (
	"math/rand"
	"time"

	"github.com/verte-zerg/typer/internal/layout"
)

// Generator produces randomized target characters.
type Generator struct {
	rnd      *rand.Rand
	alphabet []layout.Character
	weights  []float64
	total    float64
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewWithSeed(time.Now().UnixNano())
}

// NewWithSeed returns a deterministic Generator.
func NewWithSeed(seed int64) *Generator {
	return &Generator{
		rnd:      rand.New(rand.NewSource(seed)),
		alphabet: layout.Alphabet(),
	}
}

// WithWeakChars biases selection toward weak characters. Runes outside the
// alphabet are ignored. A nil or empty set restores uniform selection.
func (g *Generator) WithWeakChars(weakSet map[rune]struct{}, factor float64) *Generator {
	g.weights = nil
	g.total = 0
	if len(weakSet) == 0 || factor <= 0 {
		return g
	}
	weights := make([]float64, len(g.alphabet))
	total := 0.0
	for i, c := range g.alphabet {
		w := 1.0
		if _, ok := weakSet[rune(c)]; ok {
			w += factor
		}
		weights[i] = w
		total += w
	}
	g.weights = weights
	g.total = total
	return g
}

// NextAlphabetSymbol selects one target, uniformly unless weak characters are set.
func (g *Generator) NextAlphabetSymbol() layout.Character {
	if len(g.weights) == 0 {
		return g.alphabet[g.rnd.Intn(len(g.alphabet))]
	}
	r := g.rnd.Float64() * g.total
	acc := 0.0
	for i, w := range g.weights {
		acc += w
		if r <= acc {
			return g.alphabet[i]
		}
	}
	return g.alphabet[len(g.alphabet)-1]
}
