package rules

import "testing"

func TestParseHeight(t *testing.T) {
	cases := []struct {
		name   string
		height string
		want   int
		wantOK bool
	}{
		{name: "standard", height: `5'7"`, want: 67, wantOK: true},
		{name: "no_quote", height: "5'7", want: 67, wantOK: true},
		{name: "spaced", height: `5' 7"`, want: 67, wantOK: true},
		{name: "zero_inches", height: `6'0"`, want: 72, wantOK: true},
		{name: "feet_only", height: "5'", want: 60, wantOK: true},
		{name: "empty", height: "", wantOK: false},
		{name: "centimeters", height: "170cm", wantOK: false},
		{name: "inches_overflow", height: `5'13"`, wantOK: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseHeight(tc.height)
			if ok != tc.wantOK {
				t.Fatalf("unexpected ok: got %v want %v", ok, tc.wantOK)
			}
			if ok && got != tc.want {
				t.Fatalf("unexpected inches: got %d want %d", got, tc.want)
			}
		})
	}
}

func TestHeightBoundFromInches(t *testing.T) {
	bound := HeightBoundFromInches(67)
	if bound.Feet != 5 || bound.Inches != 7 {
		t.Fatalf("unexpected bound: %+v", bound)
	}
	if bound.String() != `5'7"` {
		t.Fatalf("unexpected display form: %s", bound.String())
	}
	if HeightBoundFromInches(-3).TotalInches() != 0 {
		t.Fatalf("negative input must floor at zero")
	}
}
