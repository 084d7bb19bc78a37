package core

import "testing"

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"1.23", "1.23", true},
		{"1,23", "1.23", true},
		{"12,5", "12.5", true},
		{"1,234.50", "1234.5", true},
		{"1,234", "1234", true},
		{"£20", "20", true},
		{" 2.50 ", "2.5", true},
		{"abc", "", false},
		{"1.2.3", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got.String() != tc.out {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestSumAmountsIsExact(t *testing.T) {
	if got := SumAmounts(0.1, 0.2); got != 0.3 {
		t.Fatalf("0.1+0.2 = %v", got)
	}
	if got := SumAmounts(); got != 0 {
		t.Fatalf("empty sum = %v", got)
	}
}

func TestPercent(t *testing.T) {
	cases := []struct {
		part, whole float64
		want        int
	}{
		{50, 200, 25},
		{300, 200, 100},
		{10, 0, 0},
		{-5, 100, 0},
		{1, 3, 33},
	}
	for _, tc := range cases {
		if got := Percent(tc.part, tc.whole); got != tc.want {
			t.Fatalf("Percent(%v, %v) = %d, want %d", tc.part, tc.whole, got, tc.want)
		}
	}
}

func TestFormatMoney(t *testing.T) {
	cases := []struct {
		amount   float64
		currency string
		want     string
	}{
		{1234.5, "GBP", "£1,234.50"},
		{0.29, "GBP", "£0.29"},
		{10, "nope", "£10.00"},
	}
	for _, tc := range cases {
		if got := FormatMoney(tc.amount, tc.currency); got != tc.want {
			t.Fatalf("FormatMoney(%v, %s) = %q, want %q", tc.amount, tc.currency, got, tc.want)
		}
	}
	if !ValidCurrency("EUR") || ValidCurrency("XYZ") {
		t.Fatalf("currency validation mismatch")
	}
}
