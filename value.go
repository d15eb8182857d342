package indices

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// Kind is the kind of a Value.
type Kind int

const (
	// KindEmpty is the "failed" marker, stored as "".
	KindEmpty Kind = iota
	// KindNull is an explicit JSON null.
	KindNull
	// KindNumber is a float.
	KindNumber
	// KindText is any non empty string, including dates.
	KindText
)

// fullPrecision marks numbers that are serialized without rounding.
const fullPrecision = -1

// Value is a field value in a Record.
//
// Numbers are kept at full precision, rounding happens only when they are serialized.
// The zero Value is empty.
type Value struct {
	kind   Kind
	num    float64
	text   string
	places int32
}

// Empty is the failed or missing value.
var Empty = Value{}

// Null is the explicit null value.
var Null = Value{kind: KindNull}

// Number returns a number serialized with full precision.
func Number(f float64) Value { return Value{kind: KindNumber, num: f, places: fullPrecision} }

// Rounded returns a number serialized with the given number of decimal places.
func Rounded(f float64, places int32) Value {
	return Value{kind: KindNumber, num: f, places: places}
}

// Text returns a text value. The empty string is the Empty value.
func Text(s string) Value {
	if s == "" {
		return Empty
	}
	return Value{kind: KindText, text: s}
}

// MonthValue returns the canonical text value of m.
func MonthValue(m Month) Value { return Text(m.String()) }

// Kind returns the kind of v.
func (v Value) Kind() Kind { return v.kind }

// IsEmpty reports whether v is the failed marker or null.
func (v Value) IsEmpty() bool { return v.kind == KindEmpty || v.kind == KindNull }

// Float returns the number in v.
//
// Text values holding a number are accepted, ledgers written by hand often quote them.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, true
	case KindText:
		f, err := strconv.ParseFloat(v.text, 64)
		return f, err == nil
	}
	return 0, false
}

// Places returns the serialization decimal places of a number, or -1.
func (v Value) Places() int32 {
	if v.kind != KindNumber {
		return fullPrecision
	}
	return v.places
}

// Decimal returns the number as it will be serialized.
func (v Value) Decimal() (decimal.Decimal, bool) {
	f, ok := v.Float()
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, false
	}
	d := decimal.NewFromFloat(f)
	if v.kind == KindNumber && v.places >= 0 {
		d = d.Round(v.places)
	}
	return d, true
}

// String returns the value as it appears in a ledger, without quotes.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindText:
		return v.text
	case KindNumber:
		if d, ok := v.Decimal(); ok {
			return d.String()
		}
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	}
	return ""
}

// Equal reports whether v and x serialize identically.
func (v Value) Equal(x Value) bool {
	if v.kind != x.kind {
		return false
	}
	return v.String() == x.String()
}

// MarshalJSON implements the json.Marshaler interface.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindEmpty:
		return []byte(`""`), nil
	case KindNull:
		return []byte(`null`), nil
	case KindText:
		return json.Marshal(v.text)
	}
	d, ok := v.Decimal()
	if !ok {
		return nil, fmt.Errorf("cannot serialize number %v", v.num)
	}
	return []byte(d.String()), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = Null
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Text(s)
		return nil
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("invalid field value %s: expecting a number, a string or null", data)
	}
	*v = Number(f)
	return nil
}
