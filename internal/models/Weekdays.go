package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// AllWeekdays is the default operating schedule.
var AllWeekdays = Weekdays{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// Weekdays is stored as a JSON array in a text column.
type Weekdays []string

func (Weekdays) GormDataType() string { return "text" }

func (w Weekdays) Value() (driver.Value, error) {
	if w == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(w))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (w *Weekdays) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*w = nil
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("weekdays: unsupported scan type %T", src)
	}
	var days []string
	if err := json.Unmarshal(raw, &days); err != nil {
		return err
	}
	*w = days
	return nil
}
