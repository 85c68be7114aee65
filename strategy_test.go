package blaze

import "testing"

func TestTermsMatchingStrategy_String(t *testing.T) {
	cases := []struct {
		s    TermsMatchingStrategy
		want string
	}{
		{StrategyLast, "last"},
		{StrategyAll, "all"},
	}
	for _, c := range cases {
		if got := c.s.String(); got != c.want {
			t.Errorf("%v.String() = %q, want %q", int(c.s), got, c.want)
		}
	}
}
