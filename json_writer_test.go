package indices

import (
	"math"
	"testing"
)

func TestObjectWriter(t *testing.T) {
	t.Run("empty object", func(t *testing.T) {
		var w objectWriter
		got, err := w.MarshalJSON()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if want := "{}"; string(got) != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("ordered fields", func(t *testing.T) {
		var w objectWriter
		w.Field("z", Number(1)).Field("a", Text("x")).Field(`q"uote`, Null).Field("e", Empty)
		got, err := w.MarshalJSON()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if want := `{"z":1,"a":"x","q\"uote":null,"e":""}`; string(got) != want {
			t.Errorf("got %s, want %s", got, want)
		}
	})

	t.Run("error is kept", func(t *testing.T) {
		var w objectWriter
		w.Field("nan", Number(math.NaN())).Field("a", Number(1))
		if _, err := w.MarshalJSON(); err == nil {
			t.Errorf("expected an error for NaN")
		}
	})
}
