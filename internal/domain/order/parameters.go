package order

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// EventParameters holds the structured payload of a narrative entry
type EventParameters map[string]string

// Value implements driver.Valuer for jsonb storage
func (p EventParameters) Value() (driver.Value, error) {
	if p == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(p)
}

// Scan implements sql.Scanner for jsonb storage
func (p *EventParameters) Scan(value interface{}) error {
	if value == nil {
		*p = EventParameters{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		if s, ok := value.(string); ok {
			bytes = []byte(s)
		} else {
			return fmt.Errorf("cannot scan %T into EventParameters", value)
		}
	}
	if len(bytes) == 0 {
		*p = EventParameters{}
		return nil
	}
	return json.Unmarshal(bytes, p)
}
