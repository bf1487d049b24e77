// Package buckets provides pure conversion of raw telemetry values into
// coarse, privacy-safe representations. Exact durations, distances, counts,
// and percentages never leave the pipeline; only these buckets do.
package buckets

import "time"

// Seats buckets a seat count for ride events.
func Seats(n int) string {
	switch {
	case n <= 0:
		return "0"
	case n <= 2:
		return "1-2"
	case n <= 4:
		return "3-4"
	default:
		return "5+"
	}
}

// Percentage floors a percentage to the nearest 25-point bucket.
// Values outside [0,100] are clamped first.
func Percentage(pct int) int {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return (pct / 25) * 25
}

// Duration buckets an elapsed duration into a coarse label.
func Duration(d time.Duration) string {
	switch {
	case d < time.Second:
		return "<1s"
	case d < 5*time.Second:
		return "1-5s"
	case d < 15*time.Second:
		return "5-15s"
	case d < time.Minute:
		return "15-60s"
	case d < 5*time.Minute:
		return "1-5m"
	default:
		return "5m+"
	}
}

// DistanceKm buckets a distance in kilometers.
func DistanceKm(km float64) string {
	switch {
	case km < 1:
		return "<1km"
	case km < 5:
		return "1-5km"
	case km < 15:
		return "5-15km"
	case km < 50:
		return "15-50km"
	default:
		return "50km+"
	}
}

// Count buckets a generic count (results, retries, attempts).
func Count(n int) string {
	switch {
	case n <= 0:
		return "0"
	case n <= 2:
		return "1-2"
	case n <= 5:
		return "3-5"
	case n <= 10:
		return "6-10"
	default:
		return "10+"
	}
}

// DeviceType derives a coarse device class from a viewport width in
// CSS pixels. Zero or negative widths fall back to desktop.
func DeviceType(viewportWidth int) string {
	switch {
	case viewportWidth > 0 && viewportWidth < 768:
		return "mobile"
	case viewportWidth >= 768 && viewportWidth < 1024:
		return "tablet"
	default:
		return "desktop"
	}
}
