package profile

import (
	"fmt"
	"reflect"

	"github.com/mitchellh/mapstructure"
)

// DecodeError reports a record that does not satisfy the profile contract.
// Origin names where the record came from (store, file) so the failure can be
// traced back by whoever runs the command.
type DecodeError struct {
	Origin string
	Index  int
	ID     string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("decode profile #%d (id %q) from %s: %v", e.Index, e.ID, e.Origin, e.Err)
	}
	return fmt.Sprintf("decode profile #%d from %s: %v", e.Index, e.Origin, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

var stringSliceType = reflect.TypeOf([]string{})

// dropNonSequence makes list fields that hold a scalar decode as absent
// instead of being wrapped into a one-element slice by weak typing.
func dropNonSequence(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != stringSliceType || data == nil {
		return data, nil
	}
	switch from.Kind() {
	case reflect.Slice, reflect.Array:
		return data, nil
	default:
		return []string{}, nil
	}
}

// Decode converts one loosely typed document into a Profile. Documents may
// carry the identifier under "_id" or "id".
func Decode(raw any) (*Profile, error) {
	doc, ok := asMap(raw)
	if !ok {
		return nil, fmt.Errorf("expected a mapping, got %T", raw)
	}

	if _, ok := doc["_id"]; !ok {
		if id, ok := doc["id"]; ok {
			doc["_id"] = id
		}
	}

	var p Profile
	cfg := &mapstructure.DecoderConfig{
		DecodeHook:       dropNonSequence,
		WeaklyTypedInput: true,
		Result:           &p,
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(doc); err != nil {
		return nil, err
	}

	return &p, nil
}

// DecodeAll decodes every document, stopping at the first contract violation.
func DecodeAll(origin string, docs []any) (*Profiles, error) {
	profiles := &Profiles{Items: make([]*Profile, 0, len(docs))}
	for idx, raw := range docs {
		p, err := Decode(raw)
		if err != nil {
			return nil, &DecodeError{Origin: origin, Index: idx, ID: rawID(raw), Err: err}
		}
		profiles.Items = append(profiles.Items, p)
	}
	return profiles, nil
}

// asMap copies any string-keyed map (including named map types such as
// bson.M) into a fresh map[string]any so decoding never mutates the caller's
// document.
func asMap(raw any) (map[string]any, bool) {
	if raw == nil {
		return nil, false
	}
	v := reflect.ValueOf(raw)
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, false
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Map || v.Type().Key().Kind() != reflect.String {
		return nil, false
	}

	doc := make(map[string]any, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		doc[iter.Key().String()] = iter.Value().Interface()
	}
	return doc, true
}

func rawID(raw any) string {
	doc, ok := asMap(raw)
	if !ok {
		return ""
	}
	for _, key := range []string{"_id", "id"} {
		if v, ok := doc[key]; ok && v != nil {
			return fmt.Sprintf("%v", v)
		}
	}
	return ""
}
