package yield

import "testing"

func TestFormatUSD(t *testing.T) {
	cases := map[float64]string{
		0:           "$0.00",
		12.345:      "$12.35",
		999.99:      "$999.99",
		1_000:       "$1.00k",
		15_250:      "$15.25k",
		1_000_000:   "$1.00m",
		2_500_000:   "$2.50m",
		-42:         "$0.00",
		123_456_789: "$123.46m",
	}
	for in, want := range cases {
		if got := FormatUSD(in); got != want {
			t.Fatalf("FormatUSD(%v) = %s, want %s", in, got, want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	cases := map[float64]string{
		0:      "0.00%",
		12.5:   "12.50%",
		9.125:  "9.13%",
		0.004:  "0.00%",
		0.005:  "0.01%",
		150.25: "150.25%",
	}
	for in, want := range cases {
		if got := FormatPercent(in); got != want {
			t.Fatalf("FormatPercent(%v) = %s, want %s", in, got, want)
		}
	}
}
