package types

import (
	"testing"

	"github.com/goccy/go-json"
)

func TestNullableMarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  string
	}{
		{
			name:  "valid float",
			value: NewFloat64(201.4),
			want:  "201.4",
		},
		{
			name:  "invalid float",
			value: Float64{},
			want:  "null",
		},
		{
			name:  "valid int",
			value: NewInt64(1234),
			want:  "1234",
		},
		{
			name:  "invalid int",
			value: Int64{},
			want:  "null",
		},
		{
			name:  "valid string",
			value: NewString("app"),
			want:  `"app"`,
		},
		{
			name:  "invalid string",
			value: String{},
			want:  "null",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			b, err := json.Marshal(test.value)
			if err != nil {
				t.Fatal(err)
			}
			if string(b) != test.want {
				t.Fatalf("expected %q but was %q", test.want, string(b))
			}
		})
	}
}

func TestNullableUnmarshalJSON(t *testing.T) {
	var f Float64
	if err := json.Unmarshal([]byte("null"), &f); err != nil {
		t.Fatal(err)
	}
	if f.Valid {
		t.Fatal("expected null to unmarshal as invalid")
	}
	if err := json.Unmarshal([]byte("15000"), &f); err != nil {
		t.Fatal(err)
	}
	if !f.Valid || f.Value != 15000 {
		t.Fatalf("expected valid 15000 but was %+v", f)
	}
}
