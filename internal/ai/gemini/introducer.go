package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/A-zanke/alumni-matcher/internal/ai"
	"github.com/A-zanke/alumni-matcher/internal/logger"
	"github.com/A-zanke/alumni-matcher/internal/profile"
	"github.com/A-zanke/alumni-matcher/internal/ranking"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
}

//go:embed prompt.md
var systemTemplate string

const (
	defaultMaxLogLength = 200
	defaultTone         = "Friendly and respectful"
)

type Introducer struct {
	generator contentGenerator
	tone      string
	logger    *zap.Logger
	maxLogLen int
}

func NewIntroducer(generator contentGenerator, tone string, maxLogLength int, logger *zap.Logger) *Introducer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Introducer{
		generator: generator,
		tone:      singleLine(tone),
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

func (i *Introducer) Introduce(ctx context.Context, student *profile.Profile, match ranking.MatchResult) (*ai.Introduction, error) {
	if student == nil {
		return nil, errors.New("student profile is required")
	}

	message, err := buildMessage(student, match)
	if err != nil {
		return nil, err
	}
	system := buildSystem(i.tone)

	i.logger.Debug("gemini introduction request",
		zap.String("alumni_id", match.ID),
		zap.Int("message_length", utf8.RuneCountInString(message)),
		zap.String("message_preview", logger.Preview(message, i.maxLogLen)),
	)

	raw, err := i.generator.GenerateContent(ctx, system, message)
	if err != nil {
		return nil, err
	}

	i.logger.Debug("gemini introduction response",
		zap.String("alumni_id", match.ID),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.Preview(raw, i.maxLogLen)),
	)

	intro, err := parseResponse(raw)
	if err != nil {
		return nil, err
	}
	intro.Raw = raw

	return intro, nil
}

func buildSystem(tone string) string {
	if tone == "" {
		tone = defaultTone
	}
	template := systemTemplate
	if strings.TrimSpace(template) == "" {
		template = "Write a short introduction message as JSON {\"message\", \"reason\"}. Tone: {{TONE}}"
	}
	return strings.ReplaceAll(template, "{{TONE}}", tone)
}

func buildMessage(student *profile.Profile, match ranking.MatchResult) (string, error) {
	studentJSON, err := json.MarshalIndent(map[string]any{
		"name":            student.Name,
		"department":      student.Department,
		"graduationYear":  student.GraduationYear,
		"industry":        student.Industry,
		"skills":          student.Skills,
		"careerInterests": student.CareerInterests,
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal student payload: %w", err)
	}

	alumnus := map[string]any{
		"name":           match.Name,
		"department":     match.Department,
		"graduationYear": match.GraduationYear,
		"company":        match.Company,
		"industry":       match.Industry,
		"skills":         match.Skills,
		"similarity":     match.Similarity,
	}
	if match.Details != nil {
		alumnus["sharedSkills"] = match.Details.SharedSkills
		alumnus["matchedInterests"] = match.Details.MatchedInterests
	}
	alumnusJSON, err := json.MarshalIndent(alumnus, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal alumnus payload: %w", err)
	}

	return fmt.Sprintf("Student:\n%s\n\nAlumnus:\n%s", studentJSON, alumnusJSON), nil
}

func parseResponse(raw string) (*ai.Introduction, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	intro := &ai.Introduction{
		Message: coerceString(data["message"]),
		Reason:  coerceString(data["reason"]),
	}
	if intro.Message == "" {
		return nil, errors.New("gemini response has no message")
	}

	return intro, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}

func singleLine(s string) string {
	s = strings.NewReplacer("[", "(", "]", ")").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}
