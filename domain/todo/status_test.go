package todo

import "testing"

func TestStatus_Next(t *testing.T) {
	tests := []struct {
		from Status
		want Status
	}{
		{StatusNotStarted, StatusInProgress},
		{StatusInProgress, StatusDone},
		{StatusDone, StatusNotStarted},
		{Status("archived"), StatusNotStarted},
		{Status(""), StatusNotStarted},
	}

	for _, tt := range tests {
		t.Run(string(tt.from), func(t *testing.T) {
			if got := tt.from.Next(); got != tt.want {
				t.Errorf("%q.Next() = %q, want %q", tt.from, got, tt.want)
			}
		})
	}
}

func TestStatus_NextHasPeriodThree(t *testing.T) {
	for _, s := range Statuses() {
		got := s.Next().Next().Next()
		if got != s {
			t.Errorf("three steps from %q ended at %q", s, got)
		}
		if s.Next() == s {
			t.Errorf("%q.Next() did not move", s)
		}
	}
}

func TestStatus_EveryStatusIsInTheCycle(t *testing.T) {
	if len(nextStatus) != len(Statuses()) {
		t.Fatalf("cycle has %d entries, want %d", len(nextStatus), len(Statuses()))
	}
	for _, s := range Statuses() {
		if !s.Valid() {
			t.Errorf("%q is not valid", s)
		}
		if !s.Next().Valid() {
			t.Errorf("%q.Next() = %q is not valid", s, s.Next())
		}
		if s.Label() == string(s) {
			t.Errorf("%q has no label", s)
		}
	}
}
