package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

var null = []byte("null")

// Optional distinguishes an absent key, an explicit null and a value.
type Optional[T any] struct {
	Set   bool
	Valid bool
	Value T
}

func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if bytes.Equal(b, null) {
		o.Valid = false
		return nil
	}
	if err := json.Unmarshal(b, &o.Value); err != nil {
		return err
	}
	o.Valid = true
	return nil
}

// Ptr returns the value when present and non-null.
func (o Optional[T]) Ptr() *T {
	if !o.Valid {
		return nil
	}
	v := o.Value
	return &v
}

// Cleared reports an explicit null.
func (o Optional[T]) Cleared() bool {
	return o.Set && !o.Valid
}

// Timestamp accepts RFC 3339 timestamps and plain YYYY-MM-DD dates.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		t.Time = parsed
		return nil
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return fmt.Errorf("invalid timestamp %q", raw)
	}
	t.Time = parsed
	return nil
}

// TimePtr converts an optional timestamp into the model form.
func TimePtr(o Optional[Timestamp]) *time.Time {
	if !o.Valid {
		return nil
	}
	v := o.Value.Time
	return &v
}

// Relation is a to-one reference given as 3, "3", {"id": 3} or null.
type Relation struct {
	Set bool
	ID  *uint64
}

func (r *Relation) UnmarshalJSON(b []byte) error {
	r.Set = true
	if bytes.Equal(b, null) {
		r.ID = nil
		return nil
	}
	id, err := parseID(b)
	if err != nil {
		return err
	}
	r.ID = &id
	return nil
}

// RelationList is a to-many reference given as an array of ids or {"id": n}.
type RelationList struct {
	Set bool
	IDs []uint64
}

func (r *RelationList) UnmarshalJSON(b []byte) error {
	r.Set = true
	if bytes.Equal(b, null) {
		r.IDs = []uint64{}
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(b, &items); err != nil {
		return fmt.Errorf("relation list must be an array: %w", err)
	}
	r.IDs = make([]uint64, 0, len(items))
	for _, item := range items {
		id, err := parseID(item)
		if err != nil {
			return err
		}
		r.IDs = append(r.IDs, id)
	}
	return nil
}

func parseID(b []byte) (uint64, error) {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '{' {
		var ref struct {
			ID json.RawMessage `json:"id"`
		}
		if err := json.Unmarshal(b, &ref); err != nil {
			return 0, err
		}
		if ref.ID == nil {
			return 0, fmt.Errorf("relation object needs an id")
		}
		b = ref.ID
	}

	var raw string
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &raw); err != nil {
			return 0, err
		}
	} else {
		raw = string(b)
	}

	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid relation id %s", raw)
	}
	return id, nil
}
