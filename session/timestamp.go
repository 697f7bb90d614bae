package session

import "time"

// fixTimeFormat renders SendingTime/TransactTime as UTC with microsecond
// precision: YYYYMMDD-HH:MM:SS.ffffff.
const fixTimeFormat = "20060102-15:04:05.000000"

// formatFixTime renders t in UTC to the wire format used by SendingTime and
// TransactTime.
func formatFixTime(t time.Time) string {
	return t.UTC().Format(fixTimeFormat)
}
