package retention

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Period is a calendar offset such as "2w", "2mo" or "1y". Unlike
// time.Duration it is applied with calendar arithmetic, so subtracting "2mo"
// lands on the same day-of-month two months earlier rather than a fixed
// number of hours back.
type Period struct {
	Years  int
	Months int
	Weeks  int
	Days   int
}

// ParsePeriod parses a value of the form <n><unit>, where unit is one of
// "d", "w", "mo" or "y".
func ParsePeriod(s string) (Period, error) {
	s = strings.TrimSpace(s)
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 || i == len(s) {
		return Period{}, fmt.Errorf("invalid period %q: expected <number><unit>, e.g. 2w", s)
	}
	n, err := strconv.Atoi(s[:i])
	if err != nil {
		return Period{}, fmt.Errorf("invalid period %q: %w", s, err)
	}
	switch s[i:] {
	case "d":
		return Period{Days: n}, nil
	case "w":
		return Period{Weeks: n}, nil
	case "mo":
		return Period{Months: n}, nil
	case "y":
		return Period{Years: n}, nil
	}
	return Period{}, fmt.Errorf("invalid period %q: unit must be d, w, mo or y", s)
}

// Before returns t shifted back by the period, using calendar arithmetic.
func (p Period) Before(t time.Time) time.Time {
	return t.AddDate(-p.Years, -p.Months, -(p.Weeks*7 + p.Days))
}

func (p Period) String() string {
	var b strings.Builder
	if p.Years != 0 {
		fmt.Fprintf(&b, "%dy", p.Years)
	}
	if p.Months != 0 {
		fmt.Fprintf(&b, "%dmo", p.Months)
	}
	if p.Weeks != 0 {
		fmt.Fprintf(&b, "%dw", p.Weeks)
	}
	if p.Days != 0 {
		fmt.Fprintf(&b, "%dd", p.Days)
	}
	if b.Len() == 0 {
		return "0d"
	}
	return b.String()
}

// Set implements pflag.Value so periods can be passed on the command line.
func (p *Period) Set(s string) error {
	parsed, err := ParsePeriod(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Type implements pflag.Value.
func (p *Period) Type() string { return "period" }

// UnmarshalYAML implements yaml.Unmarshaler for config file values.
func (p *Period) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	return p.Set(s)
}

// MarshalYAML implements yaml.Marshaler.
func (p Period) MarshalYAML() (interface{}, error) {
	return p.String(), nil
}
