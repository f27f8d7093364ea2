package faena

import "time"

// Clock abstracts time retrieval so snapshot names and history rows are
// deterministic in tests.
type Clock interface {
	Now() time.Time
}

// RealClock returns the actual current time.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// Timestamp layouts used in history rows and artifact names.
const (
	stampLayout = "20060102_150405"
	isoLayout   = "2006-01-02T15:04:05Z"
)

func stamp(t time.Time) string   { return t.UTC().Format(stampLayout) }
func isoTime(t time.Time) string { return t.UTC().Format(isoLayout) }
