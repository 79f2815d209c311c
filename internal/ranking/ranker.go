// Package ranking turns a student and a pool of alumni into an ordered list
// of recommendations.
package ranking

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/A-zanke/alumni-matcher/internal/department"
	"github.com/A-zanke/alumni-matcher/internal/filtering"
	"github.com/A-zanke/alumni-matcher/internal/profile"
	"github.com/A-zanke/alumni-matcher/internal/similarity"
)

// Scorer returns one similarity per candidate text, in order, or nil when
// the texts carry no signal.
type Scorer interface {
	Score(student string, candidates []string) []float64
}

type Ranker struct {
	scorer   Scorer
	canon    *department.Canonicalizer
	filters  []filtering.Filter
	disabled []string
	logger   *zap.Logger
}

type Option func(*Ranker)

func WithScorer(s Scorer) Option {
	return func(r *Ranker) { r.scorer = s }
}

func WithCanonicalizer(c *department.Canonicalizer) Option {
	return func(r *Ranker) { r.canon = c }
}

// WithFilters adds candidate filters that run before the department gate.
func WithFilters(filters ...filtering.Filter) Option {
	return func(r *Ranker) { r.filters = append(r.filters, filters...) }
}

// WithDisabledFilters switches off pipeline steps by name, the department
// gate included. Unknown names are ignored.
func WithDisabledFilters(names ...string) Option {
	return func(r *Ranker) { r.disabled = append(r.disabled, names...) }
}

func WithLogger(l *zap.Logger) Option {
	return func(r *Ranker) {
		if l != nil {
			r.logger = l
		}
	}
}

func New(opts ...Option) *Ranker {
	r := &Ranker{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	if r.canon == nil {
		r.canon = department.Default()
	}
	if r.scorer == nil {
		r.scorer = similarity.NewEngine(r.logger)
	}
	return r
}

// Rank ranks candidates for student with the default scorer and department table.
func Rank(student *profile.Profile, candidates *profile.Profiles, topK int, threshold float64) []MatchResult {
	// Without extra filters nothing in the pipeline can fail.
	results, _ := New().Rank(context.Background(), student, candidates, topK, threshold)
	return results
}

// Rank keeps the candidates related to the student's department, scores
// them, drops scores under threshold and returns the rest by descending
// score. Equal scores keep the order in which candidates were supplied.
// topK > 0 caps the result length; topK <= 0 returns everything.
//
// A missing student, an empty pool or a pool without any usable text yields
// an empty list, not an error. Errors only come from the extra filters.
func (r *Ranker) Rank(ctx context.Context, student *profile.Profile, candidates *profile.Profiles, topK int, threshold float64) ([]MatchResult, error) {
	results := []MatchResult{}

	if student == nil {
		r.logger.Debug("nothing to rank", zap.String("reason", "student not found"))
		return results, nil
	}
	if candidates.Len() == 0 {
		r.logger.Debug("nothing to rank", zap.String("reason", "no candidates"))
		return results, nil
	}

	steps := make([]filtering.Filter, 0, len(r.filters)+1)
	steps = append(steps, r.filters...)
	steps = append(steps, filtering.NewDepartment(r.canon))

	// The pipeline works on a copy so the caller's list stays untouched.
	pool := &profile.Profiles{Items: slices.Clone(candidates.Items)}
	pipeline := filtering.New(steps, r.logger)
	for _, name := range r.disabled {
		pipeline.DisableByName(strings.TrimSpace(name), "disabled by configuration")
	}
	for _, status := range pipeline.Describe() {
		r.logger.Debug("filter",
			zap.String("name", status.Name),
			zap.Bool("enabled", status.Enabled),
			zap.String("reason", status.Reason),
			zap.Any("details", status.Details),
		)
	}

	eligible, err := pipeline.RunFilters(ctx, student, pool)
	if err != nil {
		return nil, fmt.Errorf("filtering candidates: %w", err)
	}
	if eligible.Len() == 0 {
		r.logger.Debug("nothing to rank", zap.String("reason", "no eligible candidates"))
		return results, nil
	}

	studentText := student.FeatureText()
	texts := make([]string, eligible.Len())
	blank := strings.TrimSpace(studentText) == ""
	for i, p := range eligible.Items {
		texts[i] = p.FeatureText()
		if strings.TrimSpace(texts[i]) != "" {
			blank = false
		}
	}
	if blank {
		r.logger.Debug("nothing to rank", zap.String("reason", "every feature text is empty"))
		return results, nil
	}

	scores := r.scorer.Score(studentText, texts)
	if scores == nil {
		r.logger.Debug("nothing to rank", zap.String("reason", "no similarity signal"))
		return results, nil
	}
	if len(scores) != len(texts) {
		return nil, fmt.Errorf("scorer returned %d scores for %d candidates", len(scores), len(texts))
	}

	for i, p := range eligible.Items {
		if scores[i] < threshold {
			continue
		}
		results = append(results, newResult(p, scores[i]))
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})

	r.logger.Debug("ranking",
		zap.Int("eligible", eligible.Len()),
		zap.Int("above_threshold", len(results)),
		zap.Float64("threshold", threshold),
		zap.Int("top_k", topK),
	)

	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}

	return results, nil
}
