package notation

import (
	"errors"
	"math/big"
	"testing"
)

func TestTicks(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{"w", 4096},
		{"1", 4096},
		{"h", 2048},
		{"q", 1024},
		{"4", 1024},
		{"qr", 1024},
		{"8", 512},
		{"8r", 512},
		{"16", 256},
		{"32", 128},
		{"64", 64},
		{"qd", 1536},
		{"hdr", 3072},
		{"8d", 768},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			got, err := Ticks(tt.code)
			if err != nil {
				t.Fatalf("Ticks(%q) error = %v", tt.code, err)
			}
			if got != tt.want {
				t.Errorf("Ticks(%q) = %d, want %d", tt.code, got, tt.want)
			}
		})
	}
}

func TestTicksInvalid(t *testing.T) {
	for _, code := range []string{"", "r", "3", "qq", "qrr", "rq", "128", "x", "Q", "dq"} {
		t.Run(code, func(t *testing.T) {
			_, err := Ticks(code)
			if !errors.Is(err, ErrInvalidDurationCode) {
				t.Errorf("Ticks(%q) error = %v, want ErrInvalidDurationCode", code, err)
			}
		})
	}
}

func TestIsRestCode(t *testing.T) {
	tests := map[string]bool{
		"qr":  true,
		"q":   false,
		"8dr": true,
		"8d":  false,
		"w":   false,
	}
	for code, want := range tests {
		if got := IsRestCode(code); got != want {
			t.Errorf("IsRestCode(%q) = %v, want %v", code, got, want)
		}
	}
}

func TestBaseAndRestCode(t *testing.T) {
	tests := []struct {
		code, base, rest string
	}{
		{"q", "q", "qr"},
		{"qr", "q", "qr"},
		{"8dr", "8d", "8dr"},
		{"16", "16", "16r"},
	}
	for _, tt := range tests {
		if got := BaseCode(tt.code); got != tt.base {
			t.Errorf("BaseCode(%q) = %q, want %q", tt.code, got, tt.base)
		}
		if got := RestCode(tt.code); got != tt.rest {
			t.Errorf("RestCode(%q) = %q, want %q", tt.code, got, tt.rest)
		}
	}
}

func TestSplitRatio(t *testing.T) {
	tests := []struct {
		oldCode, newCode string
		want             *big.Rat
	}{
		{"q", "8", big.NewRat(2, 1)},
		{"w", "16", big.NewRat(16, 1)},
		{"q", "qr", big.NewRat(1, 1)},
		{"q", "8d", big.NewRat(4, 3)},
		{"8", "q", big.NewRat(1, 2)},
	}

	for _, tt := range tests {
		got, err := SplitRatio(tt.oldCode, tt.newCode)
		if err != nil {
			t.Fatalf("SplitRatio(%q, %q) error = %v", tt.oldCode, tt.newCode, err)
		}
		if got.Cmp(tt.want) != 0 {
			t.Errorf("SplitRatio(%q, %q) = %v, want %v", tt.oldCode, tt.newCode, got, tt.want)
		}
	}

	if _, err := SplitRatio("q", "7"); !errors.Is(err, ErrInvalidDurationCode) {
		t.Errorf("SplitRatio with bad code error = %v", err)
	}
}

func TestDurationCode(t *testing.T) {
	tests := map[string]string{
		"4":   "q",
		"2r":  "hr",
		"1d":  "wd",
		"16r": "16r",
		"qdr": "qdr",
	}
	for in, want := range tests {
		d, err := ParseDuration(in)
		if err != nil {
			t.Fatalf("ParseDuration(%q) error = %v", in, err)
		}
		if d.Code() != want {
			t.Errorf("ParseDuration(%q).Code() = %q, want %q", in, d.Code(), want)
		}
	}
}

func TestCodeForBeatUnit(t *testing.T) {
	if code, _ := CodeForBeatUnit(8); code != "8" {
		t.Errorf("CodeForBeatUnit(8) = %q, want 8", code)
	}
	if code, _ := CodeForBeatUnit(2); code != "h" {
		t.Errorf("CodeForBeatUnit(2) = %q, want h", code)
	}
	if _, err := CodeForBeatUnit(3); !errors.Is(err, ErrInvalidTimeSignature) {
		t.Errorf("CodeForBeatUnit(3) error = %v", err)
	}
}
