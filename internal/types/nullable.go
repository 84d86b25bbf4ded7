package types

import (
	"encoding/json"
)

// The analysis pipeline is best-effort: any derived indicator can be
// unavailable when the trace is missing the data it needs. These types are
// the single sentinel used for every such field. An invalid value marshals
// to JSON null so "not available" is never confused with zero.
type (
	Float64 struct {
		Value float64
		Valid bool
	}

	Int64 struct {
		Value int64
		Valid bool
	}

	String struct {
		Value string
		Valid bool
	}
)

func NewFloat64(v float64) Float64 {
	return Float64{Value: v, Valid: true}
}

func NewInt64(v int64) Int64 {
	return Int64{Value: v, Valid: true}
}

func NewString(v string) String {
	return String{Value: v, Valid: true}
}

func (f Float64) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return json.Marshal(nil)
	}
	return json.Marshal(f.Value)
}

func (f *Float64) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = Float64{}
		return nil
	}
	if err := json.Unmarshal(b, &f.Value); err != nil {
		return err
	}
	f.Valid = true
	return nil
}

func (i Int64) MarshalJSON() ([]byte, error) {
	if !i.Valid {
		return json.Marshal(nil)
	}
	return json.Marshal(i.Value)
}

func (i *Int64) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*i = Int64{}
		return nil
	}
	if err := json.Unmarshal(b, &i.Value); err != nil {
		return err
	}
	i.Valid = true
	return nil
}

func (s String) MarshalJSON() ([]byte, error) {
	if !s.Valid {
		return json.Marshal(nil)
	}
	return json.Marshal(s.Value)
}

func (s *String) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*s = String{}
		return nil
	}
	if err := json.Unmarshal(b, &s.Value); err != nil {
		return err
	}
	s.Valid = true
	return nil
}
