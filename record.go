package indices

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
)

// Record is a monthly record: a flat mapping of field names to values that keeps
// the order of its keys, on read and on write.
//
// The zero value is an empty record ready to use.
type Record struct {
	keys   []string
	values map[string]Value
}

// NewRecord returns a record with the given key/value pairs. It panics if kv is not made of
// (string, Value) pairs.
func NewRecord(kv ...any) *Record {
	if len(kv)%2 != 0 {
		panic("NewRecord: odd number of arguments")
	}
	r := new(Record)
	for i := 0; i < len(kv); i += 2 {
		key := kv[i].(string)
		switch v := kv[i+1].(type) {
		case Value:
			r.Set(key, v)
		case float64:
			r.Set(key, Number(v))
		case int:
			r.Set(key, Number(float64(v)))
		case string:
			r.Set(key, Text(v))
		case Month:
			r.Set(key, MonthValue(v))
		default:
			panic(fmt.Sprintf("NewRecord: unsupported value %T for key %q", v, key))
		}
	}
	return r
}

// Len returns the number of fields.
func (r *Record) Len() int { return len(r.keys) }

// Keys returns the field names in order.
func (r *Record) Keys() []string { return slices.Clone(r.keys) }

// Get returns the value of a field and whether it exists.
func (r *Record) Get(key string) (Value, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Value returns the value of a field, Empty if it does not exist.
func (r *Record) Value(key string) Value { return r.values[key] }

// Float returns the numeric value of a field.
func (r *Record) Float(key string) (float64, bool) { return r.values[key].Float() }

// Month parses the field key as a month.
func (r *Record) Month(key string) (Month, error) {
	v, ok := r.values[key]
	if !ok || v.IsEmpty() {
		return Month{}, fmt.Errorf("record has no month field %q", key)
	}
	return ParseMonth(v.String())
}

// Set sets a field. New fields are added after the existing ones.
func (r *Record) Set(key string, v Value) *Record {
	if r.values == nil {
		r.values = make(map[string]Value)
	}
	if _, exists := r.values[key]; !exists {
		r.keys = append(r.keys, key)
	}
	r.values[key] = v
	return r
}

// Delete removes a field.
func (r *Record) Delete(key string) {
	if _, exists := r.values[key]; !exists {
		return
	}
	delete(r.values, key)
	r.keys = slices.DeleteFunc(r.keys, func(k string) bool { return k == key })
}

// Merge sets every field of x in r, and returns the keys whose value changed.
func (r *Record) Merge(x *Record) (changed []string) {
	for _, k := range x.keys {
		v := x.values[k]
		if old, exists := r.values[k]; exists && old.Equal(v) {
			continue
		}
		changed = append(changed, k)
		r.Set(k, v)
	}
	return changed
}

// Clone returns a deep copy of r.
func (r *Record) Clone() *Record {
	c := &Record{keys: slices.Clone(r.keys), values: make(map[string]Value, len(r.values))}
	for k, v := range r.values {
		c.values[k] = v
	}
	return c
}

// Project returns a new record with only the given fields, in the given order.
// Missing fields are omitted.
func (r *Record) Project(fields ...string) *Record {
	p := new(Record)
	for _, k := range fields {
		if v, ok := r.values[k]; ok {
			p.Set(k, v)
		}
	}
	return p
}

// Equal reports whether r and x have the same fields in the same order with equal values.
func (r *Record) Equal(x *Record) bool {
	if !slices.Equal(r.keys, x.keys) {
		return false
	}
	for _, k := range r.keys {
		if !r.values[k].Equal(x.values[k]) {
			return false
		}
	}
	return true
}

// String returns the JSON form of r.
func (r *Record) String() string {
	b, err := r.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("!(%v)", err)
	}
	return string(b)
}

// MarshalJSON implements the json.Marshaler interface, fields are written in order.
func (r *Record) MarshalJSON() ([]byte, error) {
	var w objectWriter
	for _, k := range r.keys {
		w.Field(k, r.values[k])
	}
	return w.MarshalJSON()
}

// UnmarshalJSON implements the json.Unmarshaler interface, the order of fields is preserved.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("record must be a JSON object, got %s", data)
	}
	*r = Record{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("invalid record key %v", tok)
		}
		var v Value
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
		r.Set(key, v)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// Field is a named value, used where the order of fields matters.
type Field struct {
	Key   string
	Value Value
}
