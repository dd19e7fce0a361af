package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONBStringArray stores an ordered string list as a JSON array column
type JSONBStringArray []string

// Value implements the driver.Valuer interface
func (a JSONBStringArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal([]string(a))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface
func (a *JSONBStringArray) Scan(value interface{}) error {
	if value == nil {
		*a = JSONBStringArray{}
		return nil
	}

	raw, err := jsonBytes(value)
	if err != nil {
		return err
	}
	out := JSONBStringArray{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("failed to scan string array: %w", err)
	}
	*a = out
	return nil
}

// JSONBStringMap stores an open-ended string to string mapping as a JSON object column
type JSONBStringMap map[string]string

// Value implements the driver.Valuer interface
func (m JSONBStringMap) Value() (driver.Value, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(map[string]string(m))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface
func (m *JSONBStringMap) Scan(value interface{}) error {
	if value == nil {
		*m = JSONBStringMap{}
		return nil
	}

	raw, err := jsonBytes(value)
	if err != nil {
		return err
	}
	out := JSONBStringMap{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("failed to scan string map: %w", err)
	}
	*m = out
	return nil
}

func jsonBytes(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported JSON column type %T", value)
	}
}
