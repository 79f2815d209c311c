package filtering

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/A-zanke/alumni-matcher/internal/profile"
)

// ExcludedAlumni is the content of an exclude file.
type ExcludedAlumni struct {
	Items []*ExcludedAlumnus
}

type ExcludedAlumnus struct {
	ID         string
	Name       string
	Reason     string `json:",omitempty"`
	ExcludedAt time.Time
}

// LoadExcludeFile reads an exclude file. A missing or empty file holds no entries.
func LoadExcludeFile(path string) (*ExcludedAlumni, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &ExcludedAlumni{}, nil
	}
	if err != nil {
		return nil, err
	}

	if len(strings.TrimSpace(string(data))) == 0 {
		return &ExcludedAlumni{}, nil
	}

	var excluded ExcludedAlumni
	if err := json.Unmarshal(data, &excluded); err != nil {
		return nil, fmt.Errorf("decode exclude file %q: %w", path, err)
	}
	return &excluded, nil
}

func (e *ExcludedAlumni) Append(items ...*ExcludedAlumnus) {
	e.Items = append(e.Items, items...)
}

func (e *ExcludedAlumni) IDs() []string {
	ids := make([]string, 0, len(e.Items))
	for _, item := range e.Items {
		ids = append(ids, item.ID)
	}
	return ids
}

// ToFile overwrites path with the current entries.
func (e *ExcludedAlumni) ToFile(path string) error {
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func dropIDs(candidates *profile.Profiles, ids []string) (*profile.Profiles, []string) {
	targets := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		targets[id] = struct{}{}
	}

	var dropped []string
	kept := candidates.Keep(func(p *profile.Profile) bool {
		if _, ok := targets[p.ID]; ok {
			dropped = append(dropped, p.ID)
			return false
		}
		return true
	})
	return kept, dropped
}

type excludeIDsFilter struct {
	toggle
	ids []string
}

// NewExcludeIDs creates a filter that removes the listed alumni.
func NewExcludeIDs(ids []string) Filter {
	return &excludeIDsFilter{ids: ids}
}

func (f *excludeIDsFilter) Name() string { return "exclude_ids" }

func (f *excludeIDsFilter) Validate() error { return nil }

func (f *excludeIDsFilter) Apply(_ context.Context, _ *profile.Profile, candidates *profile.Profiles) (*profile.Profiles, Step, error) {
	initial := candidates.Len()
	if len(f.ids) == 0 {
		return candidates, Step{Initial: initial, Dropped: 0, Left: initial}, nil
	}

	kept, dropped := dropIDs(candidates, f.ids)
	return kept, Step{Initial: initial, Dropped: len(dropped), Left: kept.Len()}, nil
}

func (f *excludeIDsFilter) Status() Status {
	details := map[string]string{}
	if len(f.ids) > 0 {
		details["ids"] = strings.Join(f.ids, ",")
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}

type excludeFileFilter struct {
	toggle
	path string
}

// NewExcludeFile creates a filter that removes alumni listed in an exclude file.
func NewExcludeFile(path string) Filter {
	return &excludeFileFilter{path: strings.TrimSpace(path)}
}

func (f *excludeFileFilter) Name() string { return "exclude_file" }

func (f *excludeFileFilter) Validate() error { return nil }

func (f *excludeFileFilter) Apply(_ context.Context, _ *profile.Profile, candidates *profile.Profiles) (*profile.Profiles, Step, error) {
	initial := candidates.Len()
	if f.path == "" {
		return candidates, Step{Initial: initial, Dropped: 0, Left: initial}, nil
	}

	excluded, err := LoadExcludeFile(f.path)
	if err != nil {
		return candidates, Step{}, fmt.Errorf("getting excluded alumni from file: %w", err)
	}

	kept, dropped := dropIDs(candidates, excluded.IDs())
	return kept, Step{Initial: initial, Dropped: len(dropped), Left: kept.Len()}, nil
}

func (f *excludeFileFilter) Status() Status {
	details := map[string]string{}
	if f.path != "" {
		details["path"] = f.path
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
