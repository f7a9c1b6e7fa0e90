package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDescribeWeatherCode(t *testing.T) {
	assert.Equal(t, "☀️ Clear sky", DescribeWeatherCode(0))
	assert.Equal(t, "🌧️ Moderate rain", DescribeWeatherCode(63))
	assert.Equal(t, "❓ Unknown (code 42)", DescribeWeatherCode(42))
}

func TestCompass(t *testing.T) {
	tests := map[float64]string{
		0:     "N",
		22:    "N",
		23:    "NE",
		90:    "E",
		180:   "S",
		225:   "SW",
		337.4: "NW",
		359:   "N",
		-90:   "W",
	}
	for deg, want := range tests {
		assert.Equal(t, want, compass(deg), "compass(%v)", deg)
	}
}

func TestTruncateToHour(t *testing.T) {
	assert.Equal(t, "2025-01-02T12:00", truncateToHour("2025-01-02T12:45"))
	assert.Equal(t, "2025-01-02T12:00", truncateToHour("2025-01-02T12:00"))
	assert.Equal(t, "2025-01-02", truncateToHour("2025-01-02"))
}
