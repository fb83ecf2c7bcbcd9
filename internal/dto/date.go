package dto

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04", "2006-01-02"}

// Date accepts RFC 3339 timestamps as well as the bare dates sent by HTML date inputs.
// An explicit null or empty string is remembered so updates can clear a field.
type Date struct {
	Time *time.Time
	Set  bool
}

func (d *Date) UnmarshalJSON(b []byte) error {
	d.Set = true
	var raw *string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw == nil || strings.TrimSpace(*raw) == "" {
		d.Time = nil
		return nil
	}
	t, err := ParseDate(*raw)
	if err != nil {
		return err
	}
	d.Time = &t
	return nil
}

// Cleared reports whether the client sent null or "".
func (d Date) Cleared() bool {
	return d.Set && d.Time == nil
}

// ParseDate parses one of the accepted layouts and returns it in UTC.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", value)
}
