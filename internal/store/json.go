package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/A-zanke/alumni-matcher/internal/profile"
)

// JSONStore serves profiles from a JSON export held in memory.
type JSONStore struct {
	path     string
	profiles *profile.Profiles
}

// OpenJSON reads a file that holds either an array of profile documents or
// an object with a "users" array.
func OpenJSON(path string) (*JSONStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("json store path is not configured")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profiles file: %w", err)
	}

	docs, err := ParseDocuments(data)
	if err != nil {
		return nil, fmt.Errorf("profiles file %q: %w", path, err)
	}

	profiles, err := profile.DecodeAll("json:"+path, docs)
	if err != nil {
		return nil, err
	}

	return &JSONStore{path: path, profiles: profiles}, nil
}

// ParseDocuments extracts the raw profile documents from a JSON export.
func ParseDocuments(data []byte) ([]any, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}

	switch v := raw.(type) {
	case []any:
		return v, nil
	case map[string]any:
		users, ok := v["users"].([]any)
		if !ok {
			return nil, errors.New(`expected an array or an object with a "users" array`)
		}
		return users, nil
	default:
		return nil, fmt.Errorf("unexpected top-level json value %T", raw)
	}
}

func (s *JSONStore) Name() string { return "json:" + s.path }

func (s *JSONStore) Student(_ context.Context, id string) (*profile.Profile, error) {
	return s.profiles.FindByID(id), nil
}

func (s *JSONStore) Alumni(context.Context) (*profile.Profiles, error) {
	return s.profiles.Alumni(), nil
}

func (s *JSONStore) Students(context.Context) (*profile.Profiles, error) {
	return s.profiles.Students(), nil
}

// All returns every profile in file order.
func (s *JSONStore) All() *profile.Profiles {
	return s.profiles.Keep(func(*profile.Profile) bool { return true })
}

func (s *JSONStore) Close() error { return nil }
