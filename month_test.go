package indices

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"
)

func TestParseMonth(t *testing.T) {
	this := ThisMonth()

	tests := []struct {
		input    string
		expected Month
		err      bool
	}{
		// ISO formats
		{"2024-02-01", NewMonth(2024, time.February), false},
		{"2024-2-15", NewMonth(2024, time.February), false},
		{"2024-02", NewMonth(2024, time.February), false},
		{"2024-13-01", Month{}, true},
		{"2024-02-32", Month{}, true},

		// Brazilian formats
		{"01/02/2024", NewMonth(2024, time.February), false},
		{"15/12/2023", NewMonth(2023, time.December), false},
		{"02/2024", NewMonth(2024, time.February), false},
		{"2/2024", NewMonth(2024, time.February), false},

		// Relative formats
		{"0m", this, false},
		{"-1m", this.AddMonth(-1), false},
		{"+2m", this.AddMonth(2), false},
		{"1m", Month{}, true},

		{"invalid-month", Month{}, true},
		{"", Month{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseMonth(tt.input)
			if (err != nil) != tt.err {
				t.Errorf("ParseMonth(%q) error = %v, wantErr %v", tt.input, err, tt.err)
				return
			}
			if !tt.err && got != tt.expected {
				t.Errorf("ParseMonth(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestMonth_Arithmetic(t *testing.T) {
	m := NewMonth(2024, time.January)
	tests := []struct {
		name string
		got  Month
		want string
	}{
		{"AddMonth(1)", m.AddMonth(1), "2024-02-01"},
		{"AddMonth(-1)", m.AddMonth(-1), "2023-12-01"},
		{"AddMonth(24)", m.AddMonth(24), "2026-01-01"},
		{"Previous", m.Previous(), "2023-12-01"},
		{"PreviousDecember", NewMonth(2024, time.July).PreviousDecember(), "2023-12-01"},
		{"normalized", NewMonth(2024, 13), "2025-01-01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got.String() != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}

	if got := NewMonth(2025, time.March).Since(NewMonth(2024, time.December)); got != 3 {
		t.Errorf("Since() = %d, want 3", got)
	}
	if !m.Before(m.Next()) || m.After(m.Next()) {
		t.Errorf("%v should be before %v", m, m.Next())
	}
	if got := m.End().Day(); got != 31 {
		t.Errorf("End().Day() = %d, want 31", got)
	}
}

func TestMonth_JSON(t *testing.T) {
	m := NewMonth(2024, time.March)
	b, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal() unexpected error: %v", err)
	}
	if string(b) != `"2024-03-01"` {
		t.Errorf("Marshal() = %s, want %q", b, "2024-03-01")
	}

	for _, input := range []string{`"2024-03-01"`, `"01/03/2024"`, `"2024-03"`} {
		var got Month
		if err := json.Unmarshal([]byte(input), &got); err != nil {
			t.Errorf("Unmarshal(%s) unexpected error: %v", input, err)
			continue
		}
		if got != m {
			t.Errorf("Unmarshal(%s) = %v, want %v", input, got, m)
		}
	}

	var got Month
	if err := json.Unmarshal([]byte(`20240301`), &got); err == nil {
		t.Errorf("Unmarshal(20240301) expected an error, got %v", got)
	}
}

func ExampleParseMonth() {
	m, _ := ParseMonth("15/02/2024")
	fmt.Println(m, m.Next(), m.PreviousDecember())
	// Output: 2024-02-01 2024-03-01 2023-12-01
}
