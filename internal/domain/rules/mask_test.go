package rules

import "testing"

func TestMaskEmail(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "john.doe@gmail.com", want: "j***@gmail.com"},
		{in: "a@b.org", want: "a***@b.org"},
		{in: "no-at-sign", want: "no-at-sign"},
		{in: "", want: ""},
	}
	for _, tc := range cases {
		if got := MaskEmail(tc.in); got != tc.want {
			t.Fatalf("MaskEmail(%q): got %q want %q", tc.in, got, tc.want)
		}
	}
}

func TestMaskPhone(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "+1-555-123-4567", want: "***-***-4567"},
		{in: "555 123 4567 ext 22", want: "***-***-4567"},
		{in: "12", want: "***"},
		{in: "", want: ""},
	}
	for _, tc := range cases {
		if got := MaskPhone(tc.in); got != tc.want {
			t.Fatalf("MaskPhone(%q): got %q want %q", tc.in, got, tc.want)
		}
	}
}

func TestMaskLocation(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "123 Main St, New York, NY", want: "NY"},
		{in: "Apt 4, 123 Main St, New York, NY", want: "New York, NY"},
		{in: "New York, NY", want: "New York, NY"},
		{in: "Dallas", want: "Dallas"},
		{in: "", want: ""},
	}
	for _, tc := range cases {
		if got := MaskLocation(tc.in); got != tc.want {
			t.Fatalf("MaskLocation(%q): got %q want %q", tc.in, got, tc.want)
		}
	}
}

func TestMaskWorkplaceAndLinkedin(t *testing.T) {
	if got := MaskWorkplace("Google Inc, 1600 Amphitheatre Pkwy"); got != "Google Inc" {
		t.Fatalf("unexpected workplace mask: %q", got)
	}
	if got := MaskLinkedinURL("https://linkedin.com/in/someone"); got != linkedinPlaceholder {
		t.Fatalf("unexpected linkedin mask: %q", got)
	}
	if got := MaskLinkedinURL(""); got != "" {
		t.Fatalf("empty linkedin url must stay empty")
	}
}
