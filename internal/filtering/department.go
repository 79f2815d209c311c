package filtering

import (
	"context"

	"github.com/A-zanke/alumni-matcher/internal/department"
	"github.com/A-zanke/alumni-matcher/internal/profile"
)

type departmentFilter struct {
	toggle
	canon *department.Canonicalizer
}

// NewDepartment creates a filter that keeps candidates whose department is
// related to the student's one.
func NewDepartment(canon *department.Canonicalizer) Filter {
	return &departmentFilter{canon: canon}
}

func (f *departmentFilter) Name() string { return "department" }

func (f *departmentFilter) Validate() error {
	if f.canon == nil {
		f.canon = department.Default()
	}
	return nil
}

func (f *departmentFilter) Apply(_ context.Context, student *profile.Profile, candidates *profile.Profiles) (*profile.Profiles, Step, error) {
	initial := candidates.Len()
	kept := candidates.Keep(func(p *profile.Profile) bool {
		return f.canon.Related(student.Department, p.Department)
	})

	return kept, Step{Initial: initial, Dropped: initial - kept.Len(), Left: kept.Len()}, nil
}

func (f *departmentFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason}
}
