package util

import "time"

// humanTimeFormat is the layout for human-readable timestamps with timezone.
const humanTimeFormat = "2 Jan 2006 15:04 MST"

// HumanTime returns the current local time in a human-readable format.
func HumanTime() string {
	return time.Now().Format(humanTimeFormat)
}

// TimestampUTC returns the current UTC time in RFC3339 format.
func TimestampUTC() string {
	return time.Now().UTC().Format(time.RFC3339)
}
