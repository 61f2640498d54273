package domain

import (
	"encoding/json"
	"math"
)

// Metric is an optional float64. A metric is either defined with a
// value or undefined; undefined is distinct from zero everywhere in
// the pipeline. Calculators propagate undefined instead of
// substituting zero, and JSON renders undefined as null.
type Metric struct {
	value   float64
	defined bool
}

// DefinedMetric returns a defined metric. NaN and infinities are
// rejected and collapse to undefined.
func DefinedMetric(v float64) Metric {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Metric{}
	}
	return Metric{value: v, defined: true}
}

// UndefinedMetric returns the undefined metric.
func UndefinedMetric() Metric {
	return Metric{}
}

// Defined reports whether the metric carries a value.
func (m Metric) Defined() bool {
	return m.defined
}

// Value returns the metric's value. Only meaningful when Defined.
func (m Metric) Value() float64 {
	return m.value
}

// Get returns the value and whether it is defined, comma-ok style.
func (m Metric) Get() (float64, bool) {
	return m.value, m.defined
}

// ValueOr returns the value, or fallback when undefined.
func (m Metric) ValueOr(fallback float64) float64 {
	if m.defined {
		return m.value
	}
	return fallback
}

// Ptr returns a pointer to the value, or nil when undefined.
// Used by the store for NULL-able columns.
func (m Metric) Ptr() *float64 {
	if !m.defined {
		return nil
	}
	v := m.value
	return &v
}

// MetricFromPtr builds a Metric from a nullable pointer.
func MetricFromPtr(p *float64) Metric {
	if p == nil {
		return Metric{}
	}
	return DefinedMetric(*p)
}

// MarshalJSON renders undefined as null.
func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.defined {
		return []byte("null"), nil
	}
	return json.Marshal(m.value)
}

// UnmarshalJSON accepts null as undefined.
func (m *Metric) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*m = Metric{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*m = DefinedMetric(v)
	return nil
}
