package models

import (
	"database/sql/driver"
	"encoding/json"
)

// JSON stores free-form metadata as a JSON column.
type JSON map[string]interface{}

// Value implements driver.Valuer.
func (j JSON) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner.
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = make(JSON)
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		if s, ok := value.(string); ok {
			bytes = []byte(s)
		} else {
			return nil
		}
	}
	return json.Unmarshal(bytes, j)
}

// String reads a string field from the metadata, empty when absent.
func (j JSON) String(key string) string {
	if j == nil {
		return ""
	}
	if v, ok := j[key].(string); ok {
		return v
	}
	return ""
}

// Map reads a nested object from the metadata, nil when absent.
func (j JSON) Map(key string) JSON {
	if j == nil {
		return nil
	}
	switch v := j[key].(type) {
	case JSON:
		return v
	case map[string]interface{}:
		return JSON(v)
	default:
		return nil
	}
}
