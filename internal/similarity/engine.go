package similarity

import (
	"math"
	"strings"

	"go.uber.org/zap"
)

// Cosine returns dot(a, b) / (|a| * |b|), or 0 when either vector has zero
// length. The result is clamped into [0, 1]; weights are never negative so
// this only absorbs rounding error.
func Cosine(a, b Vector) float64 {
	normA, normB := a.Norm(), b.Norm()
	if normA == 0 || normB == 0 {
		return 0
	}

	var dot float64
	for _, term := range a.Terms() {
		dot += a[term] * b[term]
	}

	score := dot / (normA * normB)
	return math.Max(0, math.Min(1, score))
}

// Engine scores candidate feature texts against a student feature text.
type Engine struct {
	logger *zap.Logger
}

func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger}
}

// Score returns one similarity per candidate, in candidate order. It returns
// nil when the corpus carries no signal: every text is blank or no token can
// be extracted at all.
func (e *Engine) Score(student string, candidates []string) []float64 {
	corpus := make([]string, 0, len(candidates)+1)
	corpus = append(corpus, student)
	corpus = append(corpus, candidates...)

	if allBlank(corpus) {
		e.logger.Debug("skipping vectorization", zap.String("reason", "every feature text is empty"))
		return nil
	}

	space := Fit(corpus)
	if len(space.Vocabulary) == 0 {
		e.logger.Debug("skipping scoring", zap.String("reason", "empty vocabulary"))
		return nil
	}

	e.logger.Debug("vector space fitted",
		zap.Int("documents", len(corpus)),
		zap.Int("vocabulary", len(space.Vocabulary)),
	)

	scores := make([]float64, len(candidates))
	for i := range candidates {
		scores[i] = Cosine(space.Vectors[0], space.Vectors[i+1])
	}
	return scores
}

func allBlank(texts []string) bool {
	for _, t := range texts {
		if strings.TrimSpace(t) != "" {
			return false
		}
	}
	return true
}
