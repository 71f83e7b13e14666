package types

import "testing"

func TestFormatMinor(t *testing.T) {
	cases := map[int64]string{
		0:      "0.00",
		5:      "0.05",
		1500:   "15.00",
		123456: "1234.56",
		-250:   "-2.50",
	}
	for in, want := range cases {
		if got := FormatMinor(in); got != want {
			t.Fatalf("FormatMinor(%d) = %q, want %q", in, got, want)
		}
	}
}
