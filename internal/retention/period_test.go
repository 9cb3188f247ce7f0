package retention

import (
	"testing"
	"time"
)

func TestParsePeriod(t *testing.T) {
	cases := []struct {
		in      string
		want    Period
		wantErr bool
	}{
		{in: "2w", want: Period{Weeks: 2}},
		{in: "2mo", want: Period{Months: 2}},
		{in: "1y", want: Period{Years: 1}},
		{in: "10d", want: Period{Days: 10}},
		{in: " 3w ", want: Period{Weeks: 3}},
		{in: "", wantErr: true},
		{in: "2", wantErr: true},
		{in: "w", wantErr: true},
		{in: "2x", wantErr: true},
		{in: "2m", wantErr: true},
		{in: "-1w", wantErr: true},
	}
	for _, tc := range cases {
		got, err := ParsePeriod(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParsePeriod(%q): expected error, got %v", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParsePeriod(%q): unexpected error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParsePeriod(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestPeriodBeforeUsesCalendarArithmetic(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	if got, want := (Period{Weeks: 2}).Before(now), time.Date(2026, 8, 16, 12, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("2w before %s = %s, want %s", now, got, want)
	}
	if got, want := (Period{Months: 2}).Before(now), time.Date(2026, 6, 30, 12, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("2mo before %s = %s, want %s", now, got, want)
	}
	if got, want := (Period{Years: 1}).Before(now), time.Date(2025, 8, 30, 12, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("1y before %s = %s, want %s", now, got, want)
	}

	// Month subtraction normalizes like time.Time.AddDate: one month before
	// March 31 in a non-leap year lands on March 3, not on a fixed hour count.
	endOfMonth := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	if got, want := (Period{Months: 1}).Before(endOfMonth), time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("1mo before %s = %s, want %s", endOfMonth, got, want)
	}
}

func TestPeriodString(t *testing.T) {
	cases := []struct {
		in   Period
		want string
	}{
		{Period{Weeks: 2}, "2w"},
		{Period{Months: 2}, "2mo"},
		{Period{Years: 1}, "1y"},
		{Period{}, "0d"},
	}
	for _, tc := range cases {
		if got := tc.in.String(); got != tc.want {
			t.Errorf("%#v.String() = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestThresholdsValidate(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	good := NewThresholds(now, Period{Weeks: 2}, Period{Months: 2}, Period{Years: 1})
	if err := good.Validate(now); err != nil {
		t.Fatalf("default thresholds should validate, got: %v", err)
	}

	// Delete boundary newer than the monthly boundary makes the tiers overlap.
	bad := NewThresholds(now, Period{Weeks: 2}, Period{Months: 2}, Period{Weeks: 1})
	if err := bad.Validate(now); err == nil {
		t.Fatal("expected validation error for delete boundary inside the monthly tier")
	}

	// Equal monthly and weekly boundaries are rejected too.
	flat := NewThresholds(now, Period{Weeks: 2}, Period{Weeks: 2}, Period{Years: 1})
	if err := flat.Validate(now); err == nil {
		t.Fatal("expected validation error for equal monthly and weekly boundaries")
	}
}
