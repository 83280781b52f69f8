// internal/workers/application/tracking-code/generator.go
package trackingcode

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"time"
)

const (
	DefaultPrefix = "AAMOI"

	suffixMin  = 1000
	suffixSpan = 9000
)

var codePattern = regexp.MustCompile(`^[A-Z0-9]+-\d{8}-\d{4}$`)

// Generator produces PREFIX-YYYYMMDD-NNNN codes. The date is the UTC
// calendar date and NNNN is uniform in [1000, 9999].
type Generator struct {
	prefix string
	now    func() time.Time
	intn   func(n int) int
}

type Option func(*Generator)

// WithClock freezes or shifts the time source.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// WithRandom replaces the suffix source. intn must return a value in [0, n).
func WithRandom(intn func(n int) int) Option {
	return func(g *Generator) { g.intn = intn }
}

func NewGenerator(prefix string, opts ...Option) *Generator {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	g := &Generator{
		prefix: prefix,
		now:    time.Now,
		intn:   rand.IntN,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Generator) Generate() string {
	date := g.now().UTC().Format("20060102")
	return fmt.Sprintf("%s-%s-%04d", g.prefix, date, suffixMin+g.intn(suffixSpan))
}

// Valid reports whether code has the tracking code shape.
func Valid(code string) bool {
	return codePattern.MatchString(code)
}
