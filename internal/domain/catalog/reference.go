package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ReferenceKind tells which variant a Reference holds
type ReferenceKind int

const (
	// ReferenceNone is an absent reference
	ReferenceNone ReferenceKind = iota
	// ReferenceID is a bare numeric id
	ReferenceID
	// ReferenceInline carries a display name, with the id when known
	ReferenceInline
)

// Reference points at a brand or category. Upstream payloads send it as a
// number, a plain name string, or an object with id and name; ParseReference
// folds all three into this one shape so nothing downstream branches on the
// wire form.
type Reference struct {
	Kind ReferenceKind
	ID   int64
	Name string
}

// IDRef returns an id-only reference
func IDRef(id int64) Reference {
	if id <= 0 {
		return Reference{}
	}
	return Reference{Kind: ReferenceID, ID: id}
}

// InlineRef returns a reference carrying a name
func InlineRef(id int64, name string) Reference {
	name = strings.TrimSpace(name)
	if name == "" {
		return IDRef(id)
	}
	return Reference{Kind: ReferenceInline, ID: id, Name: name}
}

// ParseReference normalizes a raw JSON brand/category value
func ParseReference(raw []byte) (Reference, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return Reference{}, nil
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return Reference{}, err
		}
		if id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
			return IDRef(id), nil
		}
		return InlineRef(0, s), nil
	case '{':
		var obj struct {
			ID   json.Number `json:"id"`
			Name string      `json:"name"`
		}
		if err := json.Unmarshal(raw, &obj); err != nil {
			return Reference{}, err
		}
		var id int64
		if obj.ID != "" {
			parsed, err := obj.ID.Int64()
			if err != nil {
				return Reference{}, fmt.Errorf("invalid reference id %q: %w", obj.ID, err)
			}
			id = parsed
		}
		return InlineRef(id, obj.Name), nil
	default:
		var id int64
		if err := json.Unmarshal(raw, &id); err != nil {
			return Reference{}, fmt.Errorf("unsupported reference %s: %w", raw, err)
		}
		return IDRef(id), nil
	}
}

// IsZero reports whether the reference is absent
func (r Reference) IsZero() bool {
	return r.Kind == ReferenceNone
}

// DisplayName returns the name, or "#<id>" for id-only references
func (r Reference) DisplayName() string {
	switch r.Kind {
	case ReferenceInline:
		return r.Name
	case ReferenceID:
		return "#" + strconv.FormatInt(r.ID, 10)
	}
	return ""
}

// MarshalJSON writes id-only references as a number and inline ones as an object
func (r Reference) MarshalJSON() ([]byte, error) {
	switch r.Kind {
	case ReferenceID:
		return []byte(strconv.FormatInt(r.ID, 10)), nil
	case ReferenceInline:
		return json.Marshal(struct {
			ID   int64  `json:"id,omitempty"`
			Name string `json:"name"`
		}{r.ID, r.Name})
	}
	return []byte("null"), nil
}

// UnmarshalJSON accepts every wire form ParseReference accepts
func (r *Reference) UnmarshalJSON(data []byte) error {
	ref, err := ParseReference(data)
	if err != nil {
		return err
	}
	*r = ref
	return nil
}
