package database

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
)

// PgVector holds an embedding for a PostgreSQL VECTOR column. It implements
// sql.Scanner and driver.Valuer against the pgvector text literal
// "[1.0,2.0,3.0]".
type PgVector struct {
	values []float64
}

// NewPgVector creates a PgVector. The slice is copied, so the caller may
// reuse it.
func NewPgVector(values []float64) PgVector {
	cp := make([]float64, len(values))
	copy(cp, values)
	return PgVector{values: cp}
}

// Floats returns a copy of the vector elements. A vector scanned from SQL
// NULL returns nil.
func (v PgVector) Floats() []float64 {
	if v.values == nil {
		return nil
	}
	cp := make([]float64, len(v.values))
	copy(cp, v.values)
	return cp
}

// Dimension returns the number of elements in the vector.
func (v PgVector) Dimension() int {
	return len(v.values)
}

// Scan implements sql.Scanner for string and []byte column values.
func (v *PgVector) Scan(src any) error {
	if src == nil {
		v.values = nil
		return nil
	}

	var raw string
	switch s := src.(type) {
	case string:
		raw = s
	case []byte:
		raw = string(s)
	default:
		return fmt.Errorf("cannot scan %T into PgVector", src)
	}

	raw = strings.Trim(strings.TrimSpace(raw), "[]")
	if raw == "" {
		v.values = []float64{}
		return nil
	}

	fields := strings.Split(raw, ",")
	values := make([]float64, len(fields))
	for i, field := range fields {
		f, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return fmt.Errorf("parse element %d: %w", i, err)
		}
		values[i] = f
	}

	v.values = values
	return nil
}

// Value implements driver.Valuer.
func (v PgVector) Value() (driver.Value, error) {
	return v.String(), nil
}

// String returns the pgvector literal "[1.0,2.0,3.0]".
func (v PgVector) String() string {
	elems := make([]string, len(v.values))
	for i, f := range v.values {
		elems[i] = strconv.FormatFloat(f, 'f', -1, 64)
	}
	return "[" + strings.Join(elems, ",") + "]"
}
