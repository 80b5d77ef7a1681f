// Package uid generates the 16-bit identifiers that tag installed plugin
// instances.
package uid

import "math/rand/v2"

// Generator draws candidate identifiers from a uniform source and rejects
// any that are already in use. The identifier space (65536) dwarfs the
// slot count, so the retry loop terminates after a negligible number of
// draws in practice. Random draws keep identifiers non-sequential, which
// stops operators from guessing instance URIs.
type Generator struct {
	source func() uint16
}

// New returns a Generator backed by math/rand.
func New() *Generator {
	return &Generator{source: func() uint16 { return uint16(rand.Uint32()) }}
}

// NewWithSource returns a Generator drawing from the provided source.
// Tests use it to make the draw sequence deterministic.
func NewWithSource(source func() uint16) *Generator {
	return &Generator{source: source}
}

// Generate returns an identifier for which taken reports false. It retries
// until it finds one, so taken must not cover the whole identifier space.
func (g *Generator) Generate(taken func(uint16) bool) uint16 {
	for {
		candidate := g.source()
		if !taken(candidate) {
			return candidate
		}
	}
}
