package csr

import (
	"strings"
	"time"

	"github.com/kishorebabuysk/VF-Backend/internal/validation"
)

// ParseDay reads DD-MM-YYYY or DD/MM/YYYY and returns the UTC day as the
// half-open range [start, end).
func ParseDay(raw string) (time.Time, time.Time, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(raw), "/", "-")
	day, err := time.ParseInLocation("02-01-2006", normalized, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, validation.Invalid("date", "must be DD-MM-YYYY or DD/MM/YYYY")
	}
	return day, day.AddDate(0, 0, 1), nil
}
