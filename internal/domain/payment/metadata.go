package payment

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// MetadataEntry is a single key/value pair in a metadata collection
type MetadataEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Metadata is an ordered mapping of string keys to string values.
// Insertion order is preserved; setting an existing key updates it in place.
type Metadata []MetadataEntry

// Get returns the value for key and whether it is present
func (m Metadata) Get(key string) (string, bool) {
	for _, entry := range m {
		if entry.Key == key {
			return entry.Value, true
		}
	}
	return "", false
}

// Set stores value under key, updating an existing entry in place or
// appending a new one. Empty keys are rejected by the aggregate, not here.
func (m *Metadata) Set(key, value string) {
	for i, entry := range *m {
		if entry.Key == key {
			(*m)[i].Value = value
			return
		}
	}
	*m = append(*m, MetadataEntry{Key: key, Value: value})
}

// Value implements driver.Valuer for jsonb storage
func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return "[]", nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata: %w", err)
	}
	return string(data), nil
}

// Scan implements sql.Scanner for jsonb storage
func (m *Metadata) Scan(value interface{}) error {
	if value == nil {
		*m = Metadata{}
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("unsupported type for metadata scan")
	}

	if len(data) == 0 {
		*m = Metadata{}
		return nil
	}
	return json.Unmarshal(data, m)
}
