package models

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// TagList is a small comma-joined string set stored as plain text, avoiding a
// separate join table for a field the engine never queries by (§9: dynamic field
// bags are opaque at the persistence layer).
type TagList []string

func (t TagList) Value() (driver.Value, error) {
	return strings.Join(t, ","), nil
}

func (t *TagList) Scan(v any) error {
	if v == nil {
		*t = nil
		return nil
	}
	var s string
	switch val := v.(type) {
	case string:
		s = val
	case []byte:
		s = string(val)
	default:
		return fmt.Errorf("models: cannot scan %T into TagList", v)
	}
	if s == "" {
		*t = nil
		return nil
	}
	*t = strings.Split(s, ",")
	return nil
}

// UUIDList is a small comma-joined uuid set, used for timeslot whitelists (§3) whose
// empty state ("no restriction") is far more common than a populated one.
type UUIDList []uuid.UUID

func (l UUIDList) Value() (driver.Value, error) {
	parts := make([]string, len(l))
	for i, id := range l {
		parts[i] = id.String()
	}
	return strings.Join(parts, ","), nil
}

func (l *UUIDList) Scan(v any) error {
	if v == nil {
		*l = nil
		return nil
	}
	var s string
	switch val := v.(type) {
	case string:
		s = val
	case []byte:
		s = string(val)
	default:
		return fmt.Errorf("models: cannot scan %T into UUIDList", v)
	}
	if s == "" {
		*l = nil
		return nil
	}
	parts := strings.Split(s, ",")
	out := make(UUIDList, 0, len(parts))
	for _, p := range parts {
		id, err := uuid.Parse(p)
		if err != nil {
			return err
		}
		out = append(out, id)
	}
	*l = out
	return nil
}

// Contains reports whether id is present in the list.
func (l UUIDList) Contains(id uuid.UUID) bool {
	for _, v := range l {
		if v == id {
			return true
		}
	}
	return false
}

// EventTypeSet is a small comma-joined set of subscribed event names.
type EventTypeSet []EventType

func (s EventTypeSet) Value() (driver.Value, error) {
	parts := make([]string, len(s))
	for i, e := range s {
		parts[i] = string(e)
	}
	return strings.Join(parts, ","), nil
}

func (s *EventTypeSet) Scan(v any) error {
	if v == nil {
		*s = nil
		return nil
	}
	var raw string
	switch val := v.(type) {
	case string:
		raw = val
	case []byte:
		raw = string(val)
	default:
		return fmt.Errorf("models: cannot scan %T into EventTypeSet", v)
	}
	if raw == "" {
		*s = nil
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make(EventTypeSet, len(parts))
	for i, p := range parts {
		out[i] = EventType(p)
	}
	*s = out
	return nil
}

// Contains reports whether evt is present in the set.
func (s EventTypeSet) Contains(evt EventType) bool {
	for _, e := range s {
		if e == evt {
			return true
		}
	}
	return false
}
