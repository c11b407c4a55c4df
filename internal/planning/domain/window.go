package domain

import "fmt"

// TimeWindow is a half-open interval [Start, End) within one day.
type TimeWindow struct {
	Start TimeOfDay `json:"start"`
	End   TimeOfDay `json:"end"`
}

// NewTimeWindow creates a window, rejecting empty or inverted ranges.
func NewTimeWindow(start, end TimeOfDay) (TimeWindow, error) {
	if end <= start {
		return TimeWindow{}, fmt.Errorf("%w: %s-%s", ErrInvalidWindow, start, end)
	}
	return TimeWindow{Start: start, End: end}, nil
}

// Duration returns the window length in minutes.
func (w TimeWindow) Duration() int {
	return int(w.End - w.Start)
}

// Overlaps reports whether two half-open windows intersect.
func (w TimeWindow) Overlaps(other TimeWindow) bool {
	return w.Start < other.End && other.Start < w.End
}

// Contains reports whether other lies entirely within w.
func (w TimeWindow) Contains(other TimeWindow) bool {
	return other.Start >= w.Start && other.End <= w.End
}

func (w TimeWindow) String() string {
	return w.Start.String() + "-" + w.End.String()
}
