package ranking

import (
	"reflect"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/A-zanke/alumni-matcher/internal/profile"
)

func TestResolveThreshold(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		raw    string
		expect float64
		warned bool
	}{
		{name: "unset", raw: "", expect: DefaultThreshold},
		{name: "valid", raw: "0.35", expect: 0.35},
		{name: "padded", raw: " 0.8 ", expect: 0.8},
		{name: "zero", raw: "0", expect: 0},
		{name: "garbage", raw: "high", expect: DefaultThreshold, warned: true},
		{name: "negative", raw: "-0.2", expect: DefaultThreshold, warned: true},
		{name: "nan", raw: "NaN", expect: DefaultThreshold, warned: true},
		{name: "infinite", raw: "+Inf", expect: DefaultThreshold, warned: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			core, observed := observer.New(zapcore.WarnLevel)

			if got := ResolveThreshold(tt.raw, zap.New(core)); got != tt.expect {
				t.Fatalf("expected %v, got %v", tt.expect, got)
			}
			if warned := observed.Len() > 0; warned != tt.warned {
				t.Fatalf("expected warned=%v, got %v", tt.warned, warned)
			}
		})
	}
}

func TestResolveTopK(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw    string
		expect int
	}{
		{raw: "", expect: DefaultTopK},
		{raw: "5", expect: 5},
		{raw: "0", expect: 0},
		{raw: "-3", expect: -3},
		{raw: "ten", expect: DefaultTopK},
		{raw: "2.5", expect: DefaultTopK},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			t.Parallel()
			if got := ResolveTopK(tt.raw, nil); got != tt.expect {
				t.Fatalf("expected %d, got %d", tt.expect, got)
			}
		})
	}
}

func TestExplain(t *testing.T) {
	student := &profile.Profile{
		Department:      "Computer Science",
		Industry:        "FinTech",
		GraduationYear:  "2024",
		Skills:          []string{"Go", " python ", "go", "SQL"},
		CareerInterests: []string{"Kubernetes", "Design"},
	}
	match := MatchResult{
		Department:     "CSE",
		Industry:       "fintech ",
		GraduationYear: "2022",
		Skills:         []string{"golang", "Python", "GO", "kubernetes"},
	}

	d := Explain(nil, student, match)

	if !reflect.DeepEqual(d.SharedSkills, []string{"Go", "python"}) {
		t.Fatalf("unexpected shared skills: %v", d.SharedSkills)
	}
	if !reflect.DeepEqual(d.MatchedInterests, []string{"Kubernetes"}) {
		t.Fatalf("unexpected matched interests: %v", d.MatchedInterests)
	}
	if !d.DepartmentMatch || !d.IndustryMatch {
		t.Fatalf("expected department and industry to match: %+v", d)
	}
	if d.YearGap == nil || *d.YearGap != 2 {
		t.Fatalf("unexpected year gap: %v", d.YearGap)
	}
	// 2 skills * 5 + 1 interest * 4 + department 8 + industry 3 + close year 2
	if d.Affinity != 27 {
		t.Fatalf("unexpected affinity: %d", d.Affinity)
	}
}

func TestExplainWithoutOverlap(t *testing.T) {
	d := Explain(nil, &profile.Profile{GraduationYear: "soon"}, MatchResult{GraduationYear: "2020"})

	if d.SharedSkills == nil || len(d.SharedSkills) != 0 {
		t.Fatalf("expected an empty, non-nil shared skill list")
	}
	if d.DepartmentMatch || d.IndustryMatch {
		t.Fatalf("empty fields must not count as a match: %+v", d)
	}
	if d.YearGap != nil || d.Affinity != 0 {
		t.Fatalf("unexpected details: %+v", d)
	}
}

func TestWithDetailsDoesNotModifyInput(t *testing.T) {
	results := []MatchResult{{ID: "a"}, {ID: "b"}}
	out := WithDetails(nil, &profile.Profile{}, results)

	if results[0].Details != nil {
		t.Fatalf("input results must stay untouched")
	}
	if out[0].Details == nil || out[1].Details == nil {
		t.Fatalf("expected details on every result")
	}
}
