package tools

import "fmt"

// weatherCodes maps WMO weather interpretation codes, as reported by
// Open-Meteo, to a glyph and description.
var weatherCodes = map[int]string{
	0:  "☀️ Clear sky",
	1:  "🌤️ Mainly clear",
	2:  "⛅ Partly cloudy",
	3:  "☁️ Overcast",
	45: "🌫️ Fog",
	48: "🌫️ Depositing rime fog",
	51: "🌦️ Light drizzle",
	53: "🌦️ Moderate drizzle",
	55: "🌦️ Dense drizzle",
	56: "🌧️ Light freezing drizzle",
	57: "🌧️ Dense freezing drizzle",
	61: "🌧️ Slight rain",
	63: "🌧️ Moderate rain",
	65: "🌧️ Heavy rain",
	66: "🧊 Light freezing rain",
	67: "🧊 Heavy freezing rain",
	71: "🌨️ Slight snow fall",
	73: "🌨️ Moderate snow fall",
	75: "❄️ Heavy snow fall",
	77: "🌨️ Snow grains",
	80: "🌦️ Slight rain showers",
	81: "🌧️ Moderate rain showers",
	82: "⛈️ Violent rain showers",
	85: "🌨️ Slight snow showers",
	86: "❄️ Heavy snow showers",
	95: "⛈️ Thunderstorm",
	96: "⛈️ Thunderstorm with slight hail",
	99: "⛈️ Thunderstorm with heavy hail",
}

// DescribeWeatherCode returns the description for a WMO code.
func DescribeWeatherCode(code int) string {
	if d, ok := weatherCodes[code]; ok {
		return d
	}
	return fmt.Sprintf("❓ Unknown (code %d)", code)
}

var compassPoints = [...]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

// compass converts a bearing in degrees to an 8-point compass direction.
func compass(deg float64) string {
	for deg < 0 {
		deg += 360
	}
	idx := int((deg+22.5)/45) % len(compassPoints)
	return compassPoints[idx]
}
