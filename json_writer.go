package indices

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// objectWriter writes a JSON object field by field, in order.
// Its zero value is ready to use.
type objectWriter struct {
	buf bytes.Buffer
	err error
}

// Field appends a field. The first error is kept and stops the writing.
func (w *objectWriter) Field(key string, v Value) *objectWriter {
	if w.err != nil {
		return w
	}
	k, err := json.Marshal(key)
	if err != nil {
		w.err = fmt.Errorf("invalid key %q: %w", key, err)
		return w
	}
	b, err := v.MarshalJSON()
	if err != nil {
		w.err = fmt.Errorf("field %q: %w", key, err)
		return w
	}
	if w.buf.Len() > 0 {
		w.buf.WriteByte(',')
	}
	w.buf.Write(k)
	w.buf.WriteByte(':')
	w.buf.Write(b)
	return w
}

// MarshalJSON returns the object.
func (w *objectWriter) MarshalJSON() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	out := make([]byte, 0, w.buf.Len()+2)
	out = append(out, '{')
	out = append(out, w.buf.Bytes()...)
	return append(out, '}'), nil
}
