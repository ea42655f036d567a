package rules

import (
	"testing"
	"time"
)

func TestAgeFromDOB(t *testing.T) {
	now := time.Date(2026, time.June, 15, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name   string
		dob    string
		want   int
		wantOK bool
	}{
		{name: "iso_birthday_passed", dob: "1996-04-12", want: 30, wantOK: true},
		{name: "iso_birthday_pending", dob: "1996-08-20", want: 29, wantOK: true},
		{name: "us_layout", dob: "04/12/1996", want: 30, wantOK: true},
		{name: "month_year_only", dob: "1996-04", want: 30, wantOK: true},
		{name: "slash_month_year", dob: "04/1996", want: 30, wantOK: true},
		{name: "empty", dob: "", wantOK: false},
		{name: "garbage", dob: "not-a-date", wantOK: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := AgeFromDOB(tc.dob, now)
			if ok != tc.wantOK {
				t.Fatalf("unexpected ok: got %v want %v", ok, tc.wantOK)
			}
			if ok && got != tc.want {
				t.Fatalf("unexpected age: got %d want %d", got, tc.want)
			}
		})
	}
}

func TestClampAge(t *testing.T) {
	if got := ClampAge(15, 19, 100); got != 19 {
		t.Fatalf("expected clamp to lower bound, got %d", got)
	}
	if got := ClampAge(140, 19, 100); got != 100 {
		t.Fatalf("expected clamp to upper bound, got %d", got)
	}
	if got := ClampAge(33, 19, 100); got != 33 {
		t.Fatalf("expected passthrough, got %d", got)
	}
}
