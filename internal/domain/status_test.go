package domain

import "testing"

func TestStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name   string
		from   Status
		to     Status
		expect bool
	}{
		// Forward, one step
		{"backlog -> planning", StatusBacklog, StatusPlanning, true},
		{"planning -> running", StatusPlanning, StatusRunning, true},
		{"running -> review", StatusRunning, StatusReview, true},
		{"review -> done", StatusReview, StatusDone, true},

		// Resume
		{"review -> running", StatusReview, StatusRunning, true},

		// Skips
		{"backlog -> running", StatusBacklog, StatusRunning, false},
		{"backlog -> review", StatusBacklog, StatusReview, false},
		{"backlog -> done", StatusBacklog, StatusDone, false},
		{"planning -> review", StatusPlanning, StatusReview, false},
		{"running -> done", StatusRunning, StatusDone, false},

		// Other backward edges
		{"planning -> backlog", StatusPlanning, StatusBacklog, false},
		{"running -> planning", StatusRunning, StatusPlanning, false},
		{"done -> review", StatusDone, StatusReview, false},
		{"done -> running", StatusDone, StatusRunning, false},

		// Self
		{"review -> review", StatusReview, StatusReview, false},

		// Unknown
		{"unknown -> planning", Status("todo"), StatusPlanning, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.from.CanTransitionTo(tt.to)
			if got != tt.expect {
				t.Errorf("CanTransitionTo(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.expect)
			}
		})
	}
}

func TestStatus_Next(t *testing.T) {
	tests := []struct {
		from   Status
		want   Status
		wantOK bool
	}{
		{StatusBacklog, StatusPlanning, true},
		{StatusPlanning, StatusRunning, true},
		{StatusRunning, StatusReview, true},
		{StatusReview, StatusDone, true},
		{StatusDone, "", false},
		{Status("bogus"), "", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from), func(t *testing.T) {
			got, ok := tt.from.Next()
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Next(%s) = (%s, %v), want (%s, %v)", tt.from, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestStatus_Previous(t *testing.T) {
	for _, s := range AllStatuses() {
		prev, ok := s.Previous()
		if s == StatusReview {
			if !ok || prev != StatusRunning {
				t.Errorf("Previous(review) = (%s, %v), want (running, true)", prev, ok)
			}
			continue
		}
		if ok {
			t.Errorf("Previous(%s) = (%s, true), want no backward edge", s, prev)
		}
	}
}

func TestParseStatus(t *testing.T) {
	for _, s := range AllStatuses() {
		got, err := ParseStatus(string(s))
		if err != nil || got != s {
			t.Errorf("ParseStatus(%q) = (%s, %v)", s, got, err)
		}
	}
	if _, err := ParseStatus("in_progress"); err != ErrInvalidStatus {
		t.Errorf("ParseStatus(in_progress) err = %v, want ErrInvalidStatus", err)
	}
}

func TestStatus_IsActive(t *testing.T) {
	tests := map[Status]bool{
		StatusBacklog:  false,
		StatusPlanning: true,
		StatusRunning:  true,
		StatusReview:   true,
		StatusDone:     false,
	}
	for s, want := range tests {
		if got := s.IsActive(); got != want {
			t.Errorf("IsActive(%s) = %v, want %v", s, got, want)
		}
	}
}

func TestStatus_Display(t *testing.T) {
	if got := StatusReview.Display(); got != "Review" {
		t.Errorf("Display() = %q", got)
	}
	if got := Status("weird").Display(); got != "weird" {
		t.Errorf("Display() of unknown = %q", got)
	}
}
