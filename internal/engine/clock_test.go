package engine

import "testing"

func TestAddMinutes(t *testing.T) {
	tests := []struct {
		start string
		mins  int
		want  string
	}{
		{"19:00", 120, "21:00"},
		{"23:30", 45, "00:15"},
		{"00:00", 0, "00:00"},
		{"08:15", 60, "09:15"},
		{"22:00", 180, "01:00"},
	}
	for _, tt := range tests {
		if got := addMinutes(tt.start, tt.mins); got != tt.want {
			t.Errorf("addMinutes(%q, %d) = %q, want %q", tt.start, tt.mins, got, tt.want)
		}
	}
}

func TestClockWrapped(t *testing.T) {
	tests := []struct {
		prev, next string
		want       bool
	}{
		{"23:30", "00:15", true},
		{"19:00", "21:00", false},
		{"08:00", "08:30", false},
		{"22:00", "01:00", true},
	}
	for _, tt := range tests {
		if got := clockWrapped(tt.prev, tt.next); got != tt.want {
			t.Errorf("clockWrapped(%q, %q) = %v, want %v", tt.prev, tt.next, got, tt.want)
		}
	}
}

func TestParseClockTolerance(t *testing.T) {
	if h, m := parseClock("19:00"); h != 19 || m != 0 {
		t.Errorf("parseClock(19:00) = %d:%d", h, m)
	}
	if h, _ := parseClock("garbage"); h != 0 {
		t.Errorf("parseClock(garbage) hour = %d, want 0", h)
	}
	if got := hourOf("04:59"); got != 4 {
		t.Errorf("hourOf(04:59) = %d, want 4", got)
	}
}
