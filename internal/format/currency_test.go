package format

import (
	"errors"
	"math"
	"testing"
)

func TestCurrency(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "R$ 0,00"},
		{1, "R$ 1,00"},
		{30.15, "R$ 30,15"},
		{2.675, "R$ 2,68"},
		{26.5 / 77 * 7.7, "R$ 2,65"},
		{999.999, "R$ 1.000,00"},
		{1234.5, "R$ 1.234,50"},
		{1234567.891, "R$ 1.234.567,89"},
		{-12.3, "-R$ 12,30"},
		{-0.001, "R$ 0,00"},
		{math.NaN(), "R$ 0,00"},
		{math.Inf(1), "R$ 0,00"},
		{math.Inf(-1), "R$ 0,00"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := Currency(tt.in); got != tt.want {
				t.Errorf("Currency(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{10, "10%"},
		{12.5, "12,5%"},
		{0, "0%"},
		{math.NaN(), "0%"},
	}
	for _, tt := range tests {
		if got := Percent(tt.in); got != tt.want {
			t.Errorf("Percent(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"12,50", 12.5, false},
		{"12.50", 12.5, false},
		{"R$ 7", 7, false},
		{"1.234,56", 1234.56, false},
		{"1.234", 1234, false},
		{"R$ 1.234.567", 1234567, false},
		{"12.5", 12.5, false},
		{"0.500", 0.5, false},
		{"1.2345", 1.2345, false},
		{"1e3", 0, true},
		{"1,5e2", 0, true},
		{"1E-2", 0, true},
		{"+5", 0, true},
		{"  45 ", 45, false},
		{"0", 0, false},
		{"", 0, true},
		{"abc", 0, true},
		{"-3,00", 0, true},
		{"R$", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseAmount(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidAmount) {
					t.Errorf("expected ErrInvalidAmount, got %v", err)
				}
				return
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ParseAmount(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
