package util

import (
	"strconv"
	"testing"
	"time"
)

func TestParseTime(t *testing.T) {
	ref := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC)
	cases := []struct {
		in string
		ok bool
	}{
		{"2024-10-10T10:10:10Z", true},
		{"2024-10-10T10:10:10.000000001Z", true},
		{strconv.FormatInt(ref.Unix(), 10), true},
		{"", false},
		{"yesterday", false},
		{"-5", false},
	}
	for _, tc := range cases {
		got, ok := ParseTime(tc.in)
		if ok != tc.ok {
			t.Fatalf("ParseTime(%q) ok=%v", tc.in, ok)
		}
		if ok && got.Unix() != ref.Unix() {
			t.Fatalf("ParseTime(%q) = %v", tc.in, got)
		}
	}
}

func TestNormalizeTicker(t *testing.T) {
	for in, want := range map[string]string{" aapl ": "AAPL", "Spy": "SPY", "": ""} {
		if got := NormalizeTicker(in); got != want {
			t.Fatalf("NormalizeTicker(%q) = %q", in, got)
		}
	}
}
