package filtering

import (
	"context"
	"strings"

	"github.com/A-zanke/alumni-matcher/internal/profile"
)

type companiesFilter struct {
	toggle
	companies []string
}

// NewExcludedCompanies creates a filter that removes alumni working at the
// listed companies. Names compare case-insensitively.
func NewExcludedCompanies(companies []string) Filter {
	return &companiesFilter{
		companies: companies,
	}
}

func (f *companiesFilter) Name() string { return "exclude_companies" }

func (f *companiesFilter) Validate() error { return nil }

func (f *companiesFilter) Apply(_ context.Context, _ *profile.Profile, candidates *profile.Profiles) (*profile.Profiles, Step, error) {
	initial := candidates.Len()

	targets := make(map[string]struct{}, len(f.companies))
	for _, c := range f.companies {
		if key := companyKey(c); key != "" {
			targets[key] = struct{}{}
		}
	}
	if len(targets) == 0 {
		return candidates, Step{Initial: initial, Dropped: 0, Left: initial}, nil
	}

	kept := candidates.Keep(func(p *profile.Profile) bool {
		_, excluded := targets[companyKey(p.Company)]
		return !excluded
	})

	return kept, Step{Initial: initial, Dropped: initial - kept.Len(), Left: kept.Len()}, nil
}

func (f *companiesFilter) Status() Status {
	details := map[string]string{}
	if len(f.companies) > 0 {
		details["companies"] = strings.Join(f.companies, ",")
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}

func companyKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
