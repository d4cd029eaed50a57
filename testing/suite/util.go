package suite

import (
	"testing"
	"time"
)

// GetDateTime parses "2006-01-02 15:04" or "2006-01-02" as a UTC time.
// Example: GetDateTime(t, "2025-11-07 08:00")
func GetDateTime(t *testing.T, incomingDateTime string) time.Time {
	t.Helper()

	for _, layout := range []string{"2006-01-02 15:04", "2006-01-02"} {
		if dateTime, err := time.Parse(layout, incomingDateTime); err == nil {
			return dateTime
		}
	}

	t.Fatalf("could not parse date time: %q", incomingDateTime)
	return time.Time{}
}
