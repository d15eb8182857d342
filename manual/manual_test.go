package manual

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/etnz/indices"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		input string
		want  string
		err   bool
	}{
		{"1.234,56", "1234.56", false},
		{"1234.56", "1234.56", false},
		{"0,83", "0.83", false},
		{" -0,12 ", "-0.12", false},
		{"0,5%", "0.5", false},
		{"1.234.567,8", "1234567.8", false},
		{"abc", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseNumber(tt.input)
			if (err != nil) != tt.err {
				t.Fatalf("ParseNumber(%q) error = %v, wantErr %v", tt.input, err, tt.err)
			}
			if !tt.err && got.String() != tt.want {
				t.Errorf("ParseNumber(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestDir_Fetch(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	write("INCC.csv", "Período;Valor\n12/2023;1.100,10\n2024-01;1.105,52\n01/02/2024;\n")
	write("SINDUSCON-SP.csv", "Período;R-16-N SP;R-8-N SP\n01/2024;2.000,00;1.900,5\n02/2024;2.012,35\n")

	src := Dir(dir)
	ctx := context.Background()
	tests := []struct {
		id      string
		month   indices.Month
		want    float64
		wantErr error
	}{
		{"CSV-INCC", indices.NewMonth(2023, time.December), 1100.10, nil},
		{"CSV-INCC", indices.NewMonth(2024, time.January), 1105.52, nil},
		{"CSV-INCC", indices.NewMonth(2024, time.February), 0, indices.ErrNotYetPublished},
		{"CSV-INCC", indices.NewMonth(2024, time.March), 0, indices.ErrNotYetPublished},
		{"CSV-SINDUSCON-SP/R-16-N SP", indices.NewMonth(2024, time.February), 2012.35, nil},
		{"CSV-SINDUSCON-SP/R-8-N SP", indices.NewMonth(2024, time.February), 0, indices.ErrNotYetPublished},
		{"CSV-INPC", indices.NewMonth(2024, time.January), 0, indices.ErrNotYetPublished},
	}
	for _, tt := range tests {
		t.Run(tt.id+"@"+tt.month.String(), func(t *testing.T) {
			got, err := src.Fetch(ctx, tt.id, tt.month)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Fetch() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Fetch() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Fetch() = %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := src.Fetch(ctx, "CSV-SINDUSCON-SP/R-99", indices.NewMonth(2024, time.January)); err == nil {
		t.Errorf("Fetch() of an unknown column expected an error")
	}
	if _, err := src.Fetch(ctx, "BCB-433", indices.NewMonth(2024, time.January)); err == nil {
		t.Errorf("Fetch() of a non CSV series expected an error")
	}
}

func TestParseTable_Errors(t *testing.T) {
	for name, input := range map[string]string{
		"header":    "Data;Valor\n01/2024;1\n",
		"period":    "Período;Valor\nJan 2024;1\n",
		"duplicate": "Período;Valor\n01/2024;1\n2024-01-01;2\n",
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseTable(strings.NewReader(input)); err == nil {
				t.Errorf("ParseTable() expected an error")
			}
		})
	}
}
