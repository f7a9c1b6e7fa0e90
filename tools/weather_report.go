package tools

import (
	"fmt"
	"strings"
)

const hourlyWindow = 24

// weatherSection renders one part of the report, or "" when the forecast
// carries nothing for it.
type weatherSection func(f *forecastResponse, in WeatherInput) string

var weatherSections = []weatherSection{
	headerSection,
	currentSection,
	dailySection,
	hourlySection,
}

func buildWeatherReport(f *forecastResponse, in WeatherInput) string {
	parts := make([]string, 0, len(weatherSections))
	for _, section := range weatherSections {
		if s := section(f, in); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n\n")
}

func headerSection(f *forecastResponse, in WeatherInput) string {
	lat, lon := in.Latitude, in.Longitude
	if f.Latitude != nil {
		lat = *f.Latitude
	}
	if f.Longitude != nil {
		lon = *f.Longitude
	}
	lines := []string{fmt.Sprintf("🌍 Weather for %.4f, %.4f", lat, lon)}
	if f.Timezone != "" {
		tz := f.Timezone
		if f.TimezoneAbbreviation != "" && f.TimezoneAbbreviation != f.Timezone {
			tz += " (" + f.TimezoneAbbreviation + ")"
		}
		lines = append(lines, "Timezone: "+tz)
	}
	if f.Elevation != nil {
		lines = append(lines, fmt.Sprintf("Elevation: %.0f m", *f.Elevation))
	}
	return strings.Join(lines, "\n")
}

func currentSection(f *forecastResponse, _ WeatherInput) string {
	c := f.Current
	if c == nil {
		return ""
	}
	units := f.CurrentUnits
	var lines []string
	if c.Temperature != nil {
		lines = append(lines, "Temperature: "+withUnit(*c.Temperature, unit(units, "temperature_2m", "°C")))
	}
	if c.WeatherCode != nil {
		lines = append(lines, "Conditions: "+DescribeWeatherCode(*c.WeatherCode))
	}
	if c.RelativeHumidity != nil {
		lines = append(lines, fmt.Sprintf("Humidity: %.0f%s", *c.RelativeHumidity, unit(units, "relative_humidity_2m", "%")))
	}
	if w := wind(c.WindSpeed, c.WindDirection, unit(units, "wind_speed_10m", "km/h")); w != "" {
		lines = append(lines, "Wind: "+w)
	}
	if c.Time != "" {
		lines = append(lines, "Observed at: "+c.Time)
	}
	if len(lines) == 0 {
		return ""
	}
	return "🌡️ Current weather\n" + strings.Join(lines, "\n")
}

// dailySection lists min(requested, returned) days.
func dailySection(f *forecastResponse, in WeatherInput) string {
	d := f.Daily
	if d == nil {
		return ""
	}
	n := min(in.ForecastDays, len(d.Time))
	if n <= 0 {
		return ""
	}
	units := f.DailyUnits
	tempUnit := unit(units, "temperature_2m_max", "°C")

	lines := []string{fmt.Sprintf("📅 Daily forecast (%d days)", n)}
	for i := 0; i < n; i++ {
		var parts []string
		lo, hi := at(d.TemperatureMin, i), at(d.TemperatureMax, i)
		switch {
		case lo != nil && hi != nil:
			parts = append(parts, fmt.Sprintf("%s ~ %s", withUnit(*lo, tempUnit), withUnit(*hi, tempUnit)))
		case lo != nil:
			parts = append(parts, "min "+withUnit(*lo, tempUnit))
		case hi != nil:
			parts = append(parts, "max "+withUnit(*hi, tempUnit))
		}
		if code := at(d.WeatherCode, i); code != nil {
			parts = append(parts, DescribeWeatherCode(*code))
		}
		if p := at(d.PrecipitationSum, i); p != nil {
			parts = append(parts, "precipitation "+withUnit(*p, unit(units, "precipitation_sum", "mm")))
		}
		if w := at(d.WindSpeedMax, i); w != nil {
			parts = append(parts, "max wind "+withUnit(*w, unit(units, "wind_speed_10m_max", "km/h")))
		}
		lines = append(lines, fmt.Sprintf("- %s: %s", d.Time[i], strings.Join(parts, ", ")))
	}
	return strings.Join(lines, "\n")
}

// hourlySection covers up to the next 24 hourly entries, starting at the
// current observation hour. It is omitted when every entry is in the past.
func hourlySection(f *forecastResponse, _ WeatherInput) string {
	h := f.Hourly
	if h == nil || len(h.Time) == 0 {
		return ""
	}
	start := 0
	if f.Current != nil && f.Current.Time != "" {
		hour := truncateToHour(f.Current.Time)
		start = len(h.Time)
		for i, ts := range h.Time {
			if ts >= hour {
				start = i
				break
			}
		}
	}
	end := min(start+hourlyWindow, len(h.Time))
	if start >= end {
		return ""
	}
	units := f.HourlyUnits

	lines := []string{fmt.Sprintf("⏰ Hourly forecast (next %d hours)", end-start)}
	for i := start; i < end; i++ {
		var parts []string
		if v := at(h.Temperature, i); v != nil {
			parts = append(parts, withUnit(*v, unit(units, "temperature_2m", "°C")))
		}
		if v := at(h.RelativeHumidity, i); v != nil {
			parts = append(parts, fmt.Sprintf("humidity %.0f%s", *v, unit(units, "relative_humidity_2m", "%")))
		}
		if v := at(h.Precipitation, i); v != nil && *v != 0 {
			parts = append(parts, "precipitation "+withUnit(*v, unit(units, "precipitation", "mm")))
		}
		if w := wind(at(h.WindSpeed, i), at(h.WindDirection, i), unit(units, "wind_speed_10m", "km/h")); w != "" {
			parts = append(parts, "wind "+w)
		}
		if code := at(h.WeatherCode, i); code != nil {
			parts = append(parts, DescribeWeatherCode(*code))
		}
		lines = append(lines, fmt.Sprintf("- %s: %s", h.Time[i], strings.Join(parts, ", ")))
	}
	return strings.Join(lines, "\n")
}

func wind(speed, direction *float64, speedUnit string) string {
	switch {
	case speed != nil && direction != nil:
		return fmt.Sprintf("%s from %.0f° (%s)", withUnit(*speed, speedUnit), *direction, compass(*direction))
	case speed != nil:
		return withUnit(*speed, speedUnit)
	case direction != nil:
		return fmt.Sprintf("from %.0f° (%s)", *direction, compass(*direction))
	}
	return ""
}

func withUnit(v float64, u string) string {
	return fmt.Sprintf("%.1f%s", v, u)
}

func unit(units map[string]string, key, fallback string) string {
	u := fallback
	if v := units[key]; v != "" {
		u = v
	}
	if u == "%" || strings.HasPrefix(u, "°") {
		return u
	}
	return " " + u
}

// truncateToHour maps an ISO local time such as 2025-01-01T12:45 to the
// hourly slot it falls in.
func truncateToHour(ts string) string {
	if len(ts) >= len("2006-01-02T15") {
		return ts[:len("2006-01-02T15")] + ":00"
	}
	return ts
}

func at[T any](values []*T, i int) *T {
	if i < 0 || i >= len(values) {
		return nil
	}
	return values[i]
}
