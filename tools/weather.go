package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
)

const (
	DefaultOpenMeteoURL = "https://api.open-meteo.com"

	defaultForecastDays = 7
	maxForecastDays     = 16
	defaultTimezone     = "auto"

	currentVars = "temperature_2m,relative_humidity_2m,weather_code,wind_speed_10m,wind_direction_10m"
	hourlyVars  = "temperature_2m,relative_humidity_2m,precipitation,weather_code,wind_speed_10m,wind_direction_10m"
	dailyVars   = "weather_code,temperature_2m_max,temperature_2m_min,precipitation_sum,wind_speed_10m_max"
)

type WeatherInput struct {
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	ForecastDays int     `json:"forecast_days"`
	Timezone     string  `json:"timezone,omitempty"`
}

// forecastResponse defines the fields we need from Open-Meteo. Every value
// is optional; absent values are left out of the report.
type forecastResponse struct {
	Latitude             *float64          `json:"latitude"`
	Longitude            *float64          `json:"longitude"`
	Timezone             string            `json:"timezone"`
	TimezoneAbbreviation string            `json:"timezone_abbreviation"`
	Elevation            *float64          `json:"elevation"`
	CurrentUnits         map[string]string `json:"current_units"`
	Current              *forecastCurrent  `json:"current"`
	HourlyUnits          map[string]string `json:"hourly_units"`
	Hourly               *forecastHourly   `json:"hourly"`
	DailyUnits           map[string]string `json:"daily_units"`
	Daily                *forecastDaily    `json:"daily"`

	Error  bool   `json:"error"`
	Reason string `json:"reason"`
}

type forecastCurrent struct {
	Time             string   `json:"time"`
	Temperature      *float64 `json:"temperature_2m"`
	RelativeHumidity *float64 `json:"relative_humidity_2m"`
	WeatherCode      *int     `json:"weather_code"`
	WindSpeed        *float64 `json:"wind_speed_10m"`
	WindDirection    *float64 `json:"wind_direction_10m"`
}

type forecastHourly struct {
	Time             []string   `json:"time"`
	Temperature      []*float64 `json:"temperature_2m"`
	RelativeHumidity []*float64 `json:"relative_humidity_2m"`
	Precipitation    []*float64 `json:"precipitation"`
	WeatherCode      []*int     `json:"weather_code"`
	WindSpeed        []*float64 `json:"wind_speed_10m"`
	WindDirection    []*float64 `json:"wind_direction_10m"`
}

type forecastDaily struct {
	Time             []string   `json:"time"`
	WeatherCode      []*int     `json:"weather_code"`
	TemperatureMax   []*float64 `json:"temperature_2m_max"`
	TemperatureMin   []*float64 `json:"temperature_2m_min"`
	PrecipitationSum []*float64 `json:"precipitation_sum"`
	WindSpeedMax     []*float64 `json:"wind_speed_10m_max"`
}

type WeatherOpts struct {
	BaseURL    string
	UserAgent  string
	HTTPClient Doer
}

type Weather struct {
	endpoint  string
	userAgent string
	http      Doer
}

func NewWeather(opts WeatherOpts) *Weather {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultOpenMeteoURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	return &Weather{
		endpoint:  strings.TrimRight(opts.BaseURL, "/") + "/v1/forecast",
		userAgent: opts.UserAgent,
		http:      opts.HTTPClient,
	}
}

func (t *Weather) Name() string  { return "get_weather" }
func (t *Weather) Title() string { return "Weather Forecast" }
func (t *Weather) Description() string {
	return "Returns current weather plus daily and hourly forecasts for a coordinate using Open-Meteo."
}

func (t *Weather) InputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"latitude": {
				Type:        "number",
				Description: "Latitude in decimal degrees (-90 to 90)",
				Minimum:     bound(-90),
				Maximum:     bound(90),
			},
			"longitude": {
				Type:        "number",
				Description: "Longitude in decimal degrees (-180 to 180)",
				Minimum:     bound(-180),
				Maximum:     bound(180),
			},
			"forecast_days": {
				Type:        "integer",
				Description: "Number of forecast days, 1-16 (default 7)",
				Minimum:     bound(1),
				Maximum:     bound(maxForecastDays),
			},
			"timezone": {
				Type:        "string",
				Description: "Timezone for timestamps, e.g. Asia/Seoul (default auto)",
			},
		},
		Required: []string{"latitude", "longitude"},
	}
}

func (t *Weather) OutputSchema() *jsonschema.Schema { return nil }

func (t *Weather) Defaults() map[string]any {
	return map[string]any{"forecast_days": defaultForecastDays}
}

func (t *Weather) Run(ctx context.Context, input map[string]any) (*Result, error) {
	in, err := decodeInput[WeatherInput](input)
	if err != nil {
		return nil, err
	}
	if in.ForecastDays < 1 {
		in.ForecastDays = defaultForecastDays
	}
	tz := in.Timezone
	if tz == "" {
		tz = defaultTimezone
	}

	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(in.Latitude, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(in.Longitude, 'f', -1, 64))
	q.Set("current", currentVars)
	q.Set("hourly", hourlyVars)
	q.Set("daily", dailyVars)
	q.Set("forecast_days", strconv.Itoa(in.ForecastDays))
	q.Set("timezone", tz)

	body, err := getUpstream(ctx, t.http, "open-meteo", t.endpoint, q, t.userAgent)
	if err != nil {
		return nil, err
	}

	var forecast forecastResponse
	if err := json.Unmarshal(body, &forecast); err != nil {
		return nil, fmt.Errorf("%w: open-meteo: decode response: %v", ErrUpstreamRequest, err)
	}
	if forecast.Error {
		return nil, fmt.Errorf("%w: open-meteo: %s", ErrUpstreamAPI, forecast.Reason)
	}

	return NewTextResult(buildWeatherReport(&forecast, in), nil), nil
}
