package buckets

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSeats(t *testing.T) {
	assert.Equal(t, "0", Seats(0))
	assert.Equal(t, "1-2", Seats(1))
	assert.Equal(t, "1-2", Seats(2))
	assert.Equal(t, "3-4", Seats(3))
	assert.Equal(t, "3-4", Seats(4))
	assert.Equal(t, "5+", Seats(5))
	assert.Equal(t, "5+", Seats(8))
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, 0, Percentage(0))
	assert.Equal(t, 0, Percentage(24))
	assert.Equal(t, 25, Percentage(25))
	assert.Equal(t, 50, Percentage(73))
	assert.Equal(t, 75, Percentage(99))
	assert.Equal(t, 100, Percentage(100))

	// Out-of-range inputs clamp rather than error.
	assert.Equal(t, 0, Percentage(-10))
	assert.Equal(t, 100, Percentage(140))
}

func TestDuration(t *testing.T) {
	assert.Equal(t, "<1s", Duration(250*time.Millisecond))
	assert.Equal(t, "1-5s", Duration(time.Second))
	assert.Equal(t, "5-15s", Duration(9*time.Second))
	assert.Equal(t, "15-60s", Duration(30*time.Second))
	assert.Equal(t, "1-5m", Duration(2*time.Minute))
	assert.Equal(t, "5m+", Duration(time.Hour))
}

func TestDistanceKm(t *testing.T) {
	assert.Equal(t, "<1km", DistanceKm(0.4))
	assert.Equal(t, "1-5km", DistanceKm(3.2))
	assert.Equal(t, "5-15km", DistanceKm(12))
	assert.Equal(t, "15-50km", DistanceKm(35))
	assert.Equal(t, "50km+", DistanceKm(120))
}

func TestCount(t *testing.T) {
	assert.Equal(t, "0", Count(0))
	assert.Equal(t, "1-2", Count(2))
	assert.Equal(t, "3-5", Count(4))
	assert.Equal(t, "6-10", Count(10))
	assert.Equal(t, "10+", Count(11))
}

func TestDeviceType(t *testing.T) {
	assert.Equal(t, "mobile", DeviceType(375))
	assert.Equal(t, "tablet", DeviceType(768))
	assert.Equal(t, "tablet", DeviceType(1023))
	assert.Equal(t, "desktop", DeviceType(1440))
	assert.Equal(t, "desktop", DeviceType(0))
}

func TestSanitizePath(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"root", "/", "/"},
		{"empty", "", "/"},
		{"plain", "/rides", "/rides"},
		{"uuid segment", "/rides/550e8400-e29b-41d4-a716-446655440000", "/rides/:id"},
		{"numeric segment", "/users/12345/profile", "/users/:id/profile"},
		{"ulid segment", "/rides/01HGW2N7EHJVJ4CJ999RRS2E97", "/rides/:id"},
		{"long hex segment", "/tokens/deadbeefdeadbeefdeadbeef", "/tokens/:id"},
		{"query stripped", "/search?from=berlin&to=hamburg", "/search"},
		{"fragment stripped", "/rides#top", "/rides"},
		{"trailing slash", "/rides/", "/rides"},
		{"short hex kept", "/rides/abc123", "/rides/abc123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizePath(tt.in)
			assert.Equal(t, tt.want, got)
			if strings.Contains(tt.in, "550e8400") || strings.Contains(tt.in, "12345") {
				assert.NotContains(t, got, "550e8400")
				assert.NotContains(t, got, "12345")
			}
		})
	}
}
