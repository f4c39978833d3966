package engine

import "fmt"

// The in-game clock is a bare HH:MM wall time. It wraps past midnight;
// the day counter is advanced by the orchestrator when it does.

func parseClock(t string) (h, m int) {
	fmt.Sscanf(t, "%d:%d", &h, &m)
	if h < 0 || h > 23 {
		h = 0
	}
	if m < 0 || m > 59 {
		m = 0
	}
	return h, m
}

func addMinutes(t string, mins int) string {
	h, m := parseClock(t)
	total := (h*60 + m + mins) % (24 * 60)
	if total < 0 {
		total += 24 * 60
	}
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// clockWrapped reports whether advancing from prev to next crossed
// midnight. Turns never span more than a few hours, so a smaller hour
// means a wrap.
func clockWrapped(prev, next string) bool {
	ph, _ := parseClock(prev)
	nh, _ := parseClock(next)
	return nh < ph
}

func hourOf(t string) int {
	h, _ := parseClock(t)
	return h
}
