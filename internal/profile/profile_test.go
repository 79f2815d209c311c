package profile

import (
	"errors"
	"reflect"
	"testing"
)

func TestFeatureText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		profile *Profile
		expect  string
	}{
		{
			name: "fields in fixed order",
			profile: &Profile{
				Department:      "Computer Science",
				Industry:        "FinTech",
				GraduationYear:  "2021",
				Skills:          []string{"Machine Learning", "Go"},
				CareerInterests: []string{"Data Engineering"},
			},
			expect: "computer_science fintech 2021 machine_learning go data_engineering",
		},
		{
			name: "empty values are dropped",
			profile: &Profile{
				Department: "  ",
				Industry:   "",
				Skills:     []string{"", " Python ", "   "},
			},
			expect: "python",
		},
		{
			name:    "all empty profile",
			profile: &Profile{},
			expect:  "",
		},
		{
			name:    "nil profile",
			profile: nil,
			expect:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.profile.FeatureText(); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}

func TestDecodeWeakTypes(t *testing.T) {
	p, err := Decode(map[string]any{
		"_id":             "64f0",
		"name":            "Asha",
		"graduationYear":  2019,
		"skills":          []any{"Go", nil, 42},
		"careerInterests": "not a list",
		"role":            "Alumni",
		"unknownField":    true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p.ID != "64f0" {
		t.Fatalf("unexpected id: %q", p.ID)
	}
	if p.GraduationYear != "2019" {
		t.Fatalf("expected graduation year to be stringified, got %q", p.GraduationYear)
	}
	if !reflect.DeepEqual(p.Skills, []string{"Go", "", "42"}) {
		t.Fatalf("unexpected skills: %#v", p.Skills)
	}
	if len(p.CareerInterests) != 0 {
		t.Fatalf("expected non-list interests to be treated as absent, got %#v", p.CareerInterests)
	}
	if !p.IsAlumni() {
		t.Fatalf("expected role to match alumni case-insensitively")
	}
}

type namedDoc map[string]interface{}

func TestDecodeIDFallbackAndNamedMaps(t *testing.T) {
	doc := namedDoc{"id": "abc", "department": "CSE"}
	p, err := Decode(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID != "abc" || p.Department != "CSE" {
		t.Fatalf("unexpected profile: %+v", p)
	}
	if _, ok := doc["_id"]; ok {
		t.Fatalf("decode must not mutate the source document")
	}
}

func TestDecodeAllReportsOrigin(t *testing.T) {
	docs := []any{
		map[string]any{"_id": "1"},
		map[string]any{"_id": "2", "skills": []any{map[string]any{"name": "Go"}}},
	}

	_, err := DecodeAll("json:profiles.json", docs)
	if err == nil {
		t.Fatalf("expected an error for a skill that is an object")
	}

	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected DecodeError, got %T", err)
	}
	if decodeErr.Index != 1 || decodeErr.ID != "2" || decodeErr.Origin != "json:profiles.json" {
		t.Fatalf("unexpected error details: %+v", decodeErr)
	}

	if _, err := DecodeAll("test", []any{"just a string"}); err == nil {
		t.Fatalf("expected an error for a record that is not a mapping")
	}
}

func TestProfilesExcludeKeepsOrder(t *testing.T) {
	ps := &Profiles{Items: []*Profile{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}}}

	excluded := ps.Exclude([]string{"b", "x"})
	if !reflect.DeepEqual(excluded, []string{"b"}) {
		t.Fatalf("unexpected excluded ids: %v", excluded)
	}
	if !reflect.DeepEqual(ps.IDs(), []string{"a", "c", "d"}) {
		t.Fatalf("expected order to be preserved, got %v", ps.IDs())
	}
}

func TestProfilesRoles(t *testing.T) {
	ps := &Profiles{Items: []*Profile{
		{ID: "1", Role: "student"},
		{ID: "2", Role: "ALUMNI"},
		{ID: "3", Role: " alumni "},
		{ID: "4"},
	}}

	if got := ps.Alumni().IDs(); !reflect.DeepEqual(got, []string{"2", "3"}) {
		t.Fatalf("unexpected alumni: %v", got)
	}
	if got := ps.Students().IDs(); !reflect.DeepEqual(got, []string{"1", "4"}) {
		t.Fatalf("unexpected students: %v", got)
	}
	if ps.FindByID("3") == nil || ps.FindByID("nope") != nil {
		t.Fatalf("unexpected FindByID behaviour")
	}
}
