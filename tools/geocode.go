package tools

import (
	"bytes"
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
	DefaultNominatimURL = "https://nominatim.openstreetmap.org"
	// Nominatim's usage policy requires an identifying User-Agent.
	DefaultUserAgent = "mcp-tool-server/1.0"

	defaultGeocodeLimit = 1
	maxGeocodeLimit     = 10
)

type GeocodeInput struct {
	Address string `json:"address"`
	Limit   int    `json:"limit"`
	Country string `json:"country,omitempty"`
}

type nominatimPlace struct {
	DisplayName string          `json:"display_name"`
	Lat         string          `json:"lat"`
	Lon         string          `json:"lon"`
	Importance  *float64        `json:"importance"`
	Address     nominatimDetail `json:"address"`
}

type nominatimDetail struct {
	City        string `json:"city"`
	Town        string `json:"town"`
	Village     string `json:"village"`
	State       string `json:"state"`
	Postcode    string `json:"postcode"`
	CountryCode string `json:"country_code"`
}

type GeocodeOpts struct {
	BaseURL    string
	UserAgent  string
	HTTPClient Doer
}

type Geocode struct {
	endpoint  string
	userAgent string
	http      Doer
}

func NewGeocode(opts GeocodeOpts) *Geocode {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultNominatimURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	return &Geocode{
		endpoint:  strings.TrimRight(opts.BaseURL, "/") + "/search",
		userAgent: opts.UserAgent,
		http:      opts.HTTPClient,
	}
}

func (t *Geocode) Name() string  { return "geocode" }
func (t *Geocode) Title() string { return "Geocode Address" }
func (t *Geocode) Description() string {
	return "Looks up coordinates for an address or place name using OpenStreetMap Nominatim."
}

func (t *Geocode) InputSchema() *jsonschema.Schema {
	minLen := 1
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"address": {
				Type:        "string",
				Description: "Address or place name to search for",
				MinLength:   &minLen,
			},
			"limit": {
				Type:        "integer",
				Description: "Maximum number of results, 1-10 (default 1)",
				Minimum:     bound(1),
				Maximum:     bound(maxGeocodeLimit),
			},
			"country": {
				Type:        "string",
				Description: "Optional ISO 3166-1 alpha-2 country code filter, e.g. KR",
				Pattern:     "^[A-Za-z]{2}$",
			},
		},
		Required: []string{"address"},
	}
}

func (t *Geocode) OutputSchema() *jsonschema.Schema { return nil }

func (t *Geocode) Defaults() map[string]any {
	return map[string]any{"limit": defaultGeocodeLimit}
}

func (t *Geocode) Run(ctx context.Context, input map[string]any) (*Result, error) {
	in, err := decodeInput[GeocodeInput](input)
	if err != nil {
		return nil, err
	}
	if in.Limit < 1 {
		in.Limit = defaultGeocodeLimit
	}

	q := url.Values{}
	q.Set("q", in.Address)
	q.Set("format", "json")
	q.Set("limit", strconv.Itoa(in.Limit))
	q.Set("addressdetails", "1")
	if in.Country != "" {
		q.Set("countrycodes", strings.ToLower(in.Country))
	}

	body, err := getUpstream(ctx, t.http, "nominatim", t.endpoint, q, t.userAgent)
	if err != nil {
		return nil, err
	}

	places, err := parsePlaces(body)
	if err != nil {
		return nil, err
	}
	if len(places) == 0 {
		return NewTextResult(fmt.Sprintf("No results found for %q.", in.Address), nil), nil
	}
	if len(places) > in.Limit {
		places = places[:in.Limit]
	}
	return NewTextResult(formatPlaces(in, places), nil), nil
}

// parsePlaces treats an empty body or any JSON value other than an array as
// "no matches". Malformed JSON is an upstream failure.
func parsePlaces(body []byte) ([]nominatimPlace, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		if len(trimmed) > 0 && !json.Valid(trimmed) {
			return nil, fmt.Errorf("%w: nominatim: malformed response", ErrUpstreamRequest)
		}
		return nil, nil
	}
	var places []nominatimPlace
	if err := json.Unmarshal(trimmed, &places); err != nil {
		return nil, fmt.Errorf("%w: nominatim: decode response: %v", ErrUpstreamRequest, err)
	}
	return places, nil
}

func formatPlaces(in GeocodeInput, places []nominatimPlace) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📍 Geocoding results for %q", in.Address)
	if in.Country != "" {
		fmt.Fprintf(&b, " (country: %s)", strings.ToUpper(in.Country))
	}
	fmt.Fprintf(&b, ": %d found\n", len(places))

	blocks := make([]string, 0, len(places))
	for i, p := range places {
		blocks = append(blocks, formatPlace(i+1, p))
	}
	b.WriteString("\n")
	b.WriteString(strings.Join(blocks, "\n\n"))
	return b.String()
}

func formatPlace(n int, p nominatimPlace) string {
	lines := []string{
		fmt.Sprintf("%d. %s", n, p.DisplayName),
		"   Latitude: " + p.Lat,
		"   Longitude: " + p.Lon,
	}
	if p.Address.CountryCode != "" {
		lines = append(lines, "   Country code: "+strings.ToUpper(p.Address.CountryCode))
	}
	if p.Importance != nil {
		lines = append(lines, fmt.Sprintf("   Importance: %.4f", *p.Importance))
	}
	if city := firstNonEmpty(p.Address.City, p.Address.Town, p.Address.Village); city != "" {
		lines = append(lines, "   City: "+city)
	}
	if p.Address.State != "" {
		lines = append(lines, "   State: "+p.Address.State)
	}
	if p.Address.Postcode != "" {
		lines = append(lines, "   Postal code: "+p.Address.Postcode)
	}
	return strings.Join(lines, "\n")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
