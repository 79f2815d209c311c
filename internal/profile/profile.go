package profile

import (
	"strings"
)

const (
	RoleAlumni  = "alumni"
	RoleStudent = "student"
)

type Profiles struct {
	Items []*Profile
}

type Profile struct {
	ID              string   `mapstructure:"_id" json:"_id"`
	Name            string   `mapstructure:"name" json:"name"`
	Username        string   `mapstructure:"username" json:"username"`
	AvatarURL       string   `mapstructure:"avatarUrl" json:"avatarUrl"`
	Department      string   `mapstructure:"department" json:"department"`
	GraduationYear  string   `mapstructure:"graduationYear" json:"graduationYear"`
	Company         string   `mapstructure:"company" json:"company"`
	Industry        string   `mapstructure:"industry" json:"industry"`
	Skills          []string `mapstructure:"skills" json:"skills"`
	CareerInterests []string `mapstructure:"careerInterests" json:"careerInterests"`
	Role            string   `mapstructure:"role" json:"role"`
}

// IsAlumni reports whether the profile carries the alumni role, ignoring case.
func (p *Profile) IsAlumni() bool {
	return strings.EqualFold(strings.TrimSpace(p.Role), RoleAlumni)
}

// Label is a one-line human readable description used by prompts and logs.
func (p *Profile) Label() string {
	parts := []string{p.ID}
	if p.Name != "" {
		parts = append(parts, p.Name)
	}
	if p.Username != "" {
		parts = append(parts, "@"+p.Username)
	}
	if p.Department != "" {
		parts = append(parts, p.Department)
	}
	return strings.Join(parts, " / ")
}

func (ps *Profiles) Len() int {
	if ps == nil {
		return 0
	}
	return len(ps.Items)
}

func (ps *Profiles) IDs() []string {
	ids := make([]string, 0, ps.Len())
	if ps == nil {
		return ids
	}
	for _, p := range ps.Items {
		ids = append(ids, p.ID)
	}
	return ids
}

func (ps *Profiles) FindByID(id string) *Profile {
	if ps == nil {
		return nil
	}
	for _, p := range ps.Items {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Alumni returns the profiles whose role is alumni, in their original order.
func (ps *Profiles) Alumni() *Profiles {
	return ps.Keep(func(p *Profile) bool { return p.IsAlumni() })
}

// Students returns every profile that is not an alumnus.
func (ps *Profiles) Students() *Profiles {
	return ps.Keep(func(p *Profile) bool { return !p.IsAlumni() })
}

// Keep returns a new list holding the profiles accepted by keep. Order is preserved.
func (ps *Profiles) Keep(keep func(*Profile) bool) *Profiles {
	kept := &Profiles{Items: make([]*Profile, 0, ps.Len())}
	if ps == nil {
		return kept
	}
	for _, p := range ps.Items {
		if p != nil && keep(p) {
			kept.Items = append(kept.Items, p)
		}
	}
	return kept
}

// Exclude removes profiles with the given ids and returns the removed ids.
// Unlike a swap-remove it keeps the relative order of the survivors, which the
// ranking relies on for tie-breaking.
func (ps *Profiles) Exclude(ids []string) []string {
	if ps == nil || len(ids) == 0 {
		return nil
	}

	targets := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		targets[id] = struct{}{}
	}

	var excluded []string
	kept := ps.Items[:0]
	for _, p := range ps.Items {
		if _, ok := targets[p.ID]; ok {
			excluded = append(excluded, p.ID)
			continue
		}
		kept = append(kept, p)
	}
	// Clear the tail so removed profiles can be collected.
	for i := len(kept); i < len(ps.Items); i++ {
		ps.Items[i] = nil
	}
	ps.Items = kept

	return excluded
}
