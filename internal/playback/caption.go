package playback

import (
	"fmt"
	"math"
	"sort"
)

// Caption is one timed line of text. Time is in seconds from track start.
type Caption struct {
	Time float64
	Text string
}

// SortCaptions returns a copy of captions ordered by time. Entries sharing a
// timestamp keep their original order.
func SortCaptions(captions []Caption) []Caption {
	sorted := append([]Caption(nil), captions...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Time < sorted[j].Time
	})
	return sorted
}

// ActiveIndex returns the index of the last caption whose time is at or
// before t, or -1 before the first caption. captions must be sorted.
func ActiveIndex(captions []Caption, t float64) int {
	if math.IsNaN(t) {
		return -1
	}
	next := sort.Search(len(captions), func(i int) bool {
		return captions[i].Time > t
	})
	return next - 1
}

// FallbackCompletionTime is the last caption time plus grace, or grace alone
// when there are no captions.
func FallbackCompletionTime(captions []Caption, grace float64) float64 {
	if len(captions) == 0 {
		return grace
	}
	return captions[len(captions)-1].Time + grace
}

// ValidDuration reports whether a media-reported duration can be trusted.
func ValidDuration(duration float64) bool {
	return !math.IsNaN(duration) && !math.IsInf(duration, 0) && duration > 0
}

// ResolveCompletionTime prefers a valid media duration and otherwise
// synthesizes one from the captions.
func ResolveCompletionTime(duration float64, captions []Caption, grace float64) float64 {
	if ValidDuration(duration) {
		return duration
	}
	return FallbackCompletionTime(captions, grace)
}

// FormatClock renders seconds as MM:SS. Invalid or non-positive input shows 00:00.
func FormatClock(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds <= 0 {
		return "00:00"
	}
	total := int(math.Floor(seconds))
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
