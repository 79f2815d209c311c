package ai

import (
	"context"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/A-zanke/alumni-matcher/internal/profile"
	"github.com/A-zanke/alumni-matcher/internal/ranking"
)

type Introduction struct {
	Message string
	Reason  string
	// Raw is the provider answer as received; it is only logged.
	Raw string
}

type Introducer interface {
	Introduce(ctx context.Context, student *profile.Profile, match ranking.MatchResult) (*Introduction, error)
}

// Enrich asks the introducer about every result in order and returns copies
// carrying the outcome. A failed call is recorded on its result.
func Enrich(ctx context.Context, introducer Introducer, student *profile.Profile, results []ranking.MatchResult, logger *zap.Logger) []ranking.MatchResult {
	if logger == nil {
		logger = zap.NewNop()
	}

	out := make([]ranking.MatchResult, len(results))
	copy(out, results)

	if introducer == nil {
		return out
	}

	for i := range out {
		intro, err := introducer.Introduce(ctx, student, out[i])
		if err != nil {
			logger.Warn("ai introduction failed",
				zap.String("alumni_id", out[i].ID),
				zap.Error(err),
			)
			out[i].Introduction = &ranking.Introduction{Error: err.Error()}
			continue
		}

		out[i].Introduction = &ranking.Introduction{
			Message: intro.Message,
			Reason:  intro.Reason,
		}
		logger.Debug("ai introduction ready",
			zap.String("alumni_id", out[i].ID),
			zap.Int("response_length", utf8.RuneCountInString(intro.Raw)),
		)
	}

	return out
}
