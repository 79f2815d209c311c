package ranking

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/A-zanke/alumni-matcher/internal/filtering"
	"github.com/A-zanke/alumni-matcher/internal/profile"
)

// MatchResult is one recommended alumnus.
type MatchResult struct {
	ID             string        `json:"_id"`
	Name           string        `json:"name"`
	Username       string        `json:"username"`
	AvatarURL      string        `json:"avatarUrl"`
	Department     string        `json:"department"`
	GraduationYear string        `json:"graduationYear"`
	Company        string        `json:"company"`
	Industry       string        `json:"industry"`
	Skills         []string      `json:"skills"`
	Similarity     float64       `json:"similarity"`
	Details        *MatchDetails `json:"details,omitempty"`
	Introduction   *Introduction `json:"introduction,omitempty"`
}

// Introduction is an AI written opener for contacting the alumnus.
type Introduction struct {
	Message string `json:"message,omitempty"`
	Reason  string `json:"reason,omitempty"`
	Error   string `json:"error,omitempty"`
}

func newResult(p *profile.Profile, score float64) MatchResult {
	skills := make([]string, len(p.Skills))
	copy(skills, p.Skills)

	return MatchResult{
		ID:             p.ID,
		Name:           p.Name,
		Username:       p.Username,
		AvatarURL:      p.AvatarURL,
		Department:     p.Department,
		GraduationYear: p.GraduationYear,
		Company:        p.Company,
		Industry:       p.Industry,
		Skills:         skills,
		Similarity:     score,
	}
}

type Results struct {
	Items []MatchResult
}

func (r *Results) Len() int {
	return len(r.Items)
}

// ReportByDepartment groups results under their department as written in the profile.
func (r *Results) ReportByDepartment() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, m := range r.Items {
		key := m.Department
		if key == "" {
			key = "(no department)"
		}
		entry := map[string]string{
			"id":         m.ID,
			"name":       m.Name,
			"company":    m.Company,
			"industry":   m.Industry,
			"year":       m.GraduationYear,
			"similarity": fmt.Sprintf("%.3f", m.Similarity),
		}
		if m.Introduction != nil {
			if m.Introduction.Error != "" {
				entry["ai_error"] = m.Introduction.Error
			} else {
				entry["ai_message"] = m.Introduction.Message
			}
		}
		report[key] = append(report[key], entry)
	}
	return report
}

// DumpToTmpFile writes the results as indented JSON to a new temporary file
// and returns its name.
func (r *Results) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "recommendations_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r.Items); err != nil {
		return "", err
	}
	return file.Name(), nil
}

// ToExcluded converts the results into exclude file entries.
func (r *Results) ToExcluded(reason string) []*filtering.ExcludedAlumnus {
	now := time.Now().UTC()
	excluded := make([]*filtering.ExcludedAlumnus, 0, len(r.Items))
	for _, m := range r.Items {
		excluded = append(excluded, &filtering.ExcludedAlumnus{
			ID:         m.ID,
			Name:       m.Name,
			Reason:     reason,
			ExcludedAt: now,
		})
	}
	return excluded
}
