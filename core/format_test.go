package core

import "testing"

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{105, "105.0"},
		{0, "0.0"},
		{52.5, "52.5"},
		{-3, "-3.0"},
		{0.0001, "0.0001"},
		{0.00001, "1e-05"},
		{1234567.5, "1234567.5"},
		{-9876543.25, "-9876543.25"},
		{1e15, "1000000000000000.0"},
		{1e20, "1e+20"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.in); got != tt.want {
			t.Errorf("FormatNumber(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
