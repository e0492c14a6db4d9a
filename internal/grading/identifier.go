package grading

import (
	"fmt"
	"time"
)

// DefaultIdentifierPrefix prefixes every generated student identifier.
const DefaultIdentifierPrefix = "STU"

// FormatStudentID renders prefix + two-digit year + zero-padded sequence, e.g. STU250042.
func FormatStudentID(prefix string, at time.Time, sequence int64) string {
	if prefix == "" {
		prefix = DefaultIdentifierPrefix
	}
	return fmt.Sprintf("%s%02d%04d", prefix, at.Year()%100, sequence)
}
