package postgres

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONColumn stores an arbitrary Go value as a jsonb column. GORM's
// postgres driver has no native support for slices/maps/nested
// structs the way the teacher's bare `gorm:"type:json"` tag on a
// []string assumed; this Scanner/Valuer pair is what makes that
// assumption actually hold at runtime.
type JSONColumn[T any] struct {
	Value T
}

func (j *JSONColumn[T]) Scan(src interface{}) error {
	if src == nil {
		return nil
	}
	var bytes []byte
	switch v := src.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("unsupported Scan type for JSONColumn: %T", src)
	}
	if len(bytes) == 0 {
		return nil
	}
	return json.Unmarshal(bytes, &j.Value)
}

func (j JSONColumn[T]) Value() (driver.Value, error) {
	b, err := json.Marshal(j.Value)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (JSONColumn[T]) GormDataType() string {
	return "jsonb"
}
