package ranking

import (
	"math"
	"strconv"
	"strings"

	"github.com/A-zanke/alumni-matcher/internal/department"
	"github.com/A-zanke/alumni-matcher/internal/profile"
)

// Affinity weights, kept from the platform's earlier rule based matcher.
const (
	pointsPerSkill    = 5
	pointsDepartment  = 8
	pointsPerInterest = 4
	pointsIndustry    = 3
	pointsCloseYear   = 2
	closeYearGap      = 3
)

// MatchDetails explains what a student and a recommended alumnus have in common.
type MatchDetails struct {
	SharedSkills     []string `json:"sharedSkills"`
	MatchedInterests []string `json:"matchedInterests"`
	DepartmentMatch  bool     `json:"departmentMatch"`
	IndustryMatch    bool     `json:"industryMatch"`
	YearGap          *int     `json:"yearGap,omitempty"`
	Affinity         int      `json:"affinity"`
}

// Explain compares the student with one result. Skills and interests are
// compared case-insensitively and reported in the student's order.
func Explain(canon *department.Canonicalizer, student *profile.Profile, m MatchResult) *MatchDetails {
	if canon == nil {
		canon = department.Default()
	}

	alumniSkills := make(map[string]struct{}, len(m.Skills))
	for _, s := range m.Skills {
		if key := foldKey(s); key != "" {
			alumniSkills[key] = struct{}{}
		}
	}

	d := &MatchDetails{
		SharedSkills:     matching(student.Skills, alumniSkills),
		MatchedInterests: matching(student.CareerInterests, alumniSkills),
	}

	sd, md := canon.Canonicalize(student.Department), canon.Canonicalize(m.Department)
	d.DepartmentMatch = sd != "" && sd == md

	si, mi := foldKey(student.Industry), foldKey(m.Industry)
	d.IndustryMatch = si != "" && si == mi

	if sy, ok := parseYear(student.GraduationYear); ok {
		if my, ok := parseYear(m.GraduationYear); ok {
			gap := sy - my
			if gap < 0 {
				gap = -gap
			}
			d.YearGap = &gap
		}
	}

	d.Affinity = pointsPerSkill*len(d.SharedSkills) + pointsPerInterest*len(d.MatchedInterests)
	if d.DepartmentMatch {
		d.Affinity += pointsDepartment
	}
	if d.IndustryMatch {
		d.Affinity += pointsIndustry
	}
	if d.YearGap != nil && *d.YearGap <= closeYearGap {
		d.Affinity += pointsCloseYear
	}

	return d
}

// WithDetails returns a copy of results with details attached.
func WithDetails(canon *department.Canonicalizer, student *profile.Profile, results []MatchResult) []MatchResult {
	out := make([]MatchResult, len(results))
	for i, m := range results {
		m.Details = Explain(canon, student, m)
		out[i] = m
	}
	return out
}

func matching(values []string, set map[string]struct{}) []string {
	matched := []string{}
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		key := foldKey(v)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		if _, ok := set[key]; ok {
			matched = append(matched, strings.TrimSpace(v))
		}
	}
	return matched
}

func foldKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func parseYear(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if y, err := strconv.Atoi(s); err == nil {
		return y, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(f), true
}
