package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"assistant/internal/fault"
)

// City extraction is a deliberately naive heuristic over the question text:
// "in/at/on <city>" first, then "<city> weather", then the configured default.
var (
	inCityRe      = regexp.MustCompile(`(?:in|at|on) ([a-z\s]+?)(?:\s+(?:today|now|tomorrow|weather|forecast))?[\s?,.!]*$`)
	beforeWeather = regexp.MustCompile(`([a-z\s]+?)\s+weather`)
)

// ExtractCity pulls a city name out of a free-text question, falling back to
// defaultCity when no pattern matches.
func ExtractCity(question, defaultCity string) string {
	text := strings.ToLower(question)
	if m := inCityRe.FindStringSubmatch(text); m != nil {
		return titleCase(strings.TrimSpace(m[1]))
	}
	if m := beforeWeather.FindStringSubmatch(text); m != nil {
		return titleCase(strings.TrimSpace(m[1]))
	}
	return defaultCity
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// StaticResolver resolves cities against a built-in coordinate table.
type StaticResolver struct {
	defaultCity string
	table       map[string][2]float64
}

func NewStaticResolver(defaultCity string) *StaticResolver {
	return &StaticResolver{
		defaultCity: defaultCity,
		table: map[string][2]float64{
			"paris":     {48.8566, 2.3522},
			"london":    {51.5074, -0.1278},
			"new york":  {40.7128, -74.0060},
			"tokyo":     {35.6762, 139.6503},
			"sydney":    {-33.8688, 151.2093},
			"rome":      {41.9028, 12.4964},
			"berlin":    {52.5200, 13.4050},
			"hyderabad": {17.3850, 78.4867},
			"mumbai":    {19.0760, 72.8777},
			"delhi":     {28.6139, 77.2090},
		},
	}
}

func (r *StaticResolver) Resolve(_ context.Context, question string) (string, float64, float64, error) {
	city := ExtractCity(question, r.defaultCity)
	coords, ok := r.table[strings.ToLower(city)]
	if !ok {
		return "", 0, 0, fmt.Errorf("%w: %s", fault.ErrCityNotFound, city)
	}
	return city, coords[0], coords[1], nil
}

// GeocodeResolver resolves cities through the OpenWeather geocoding API.
type GeocodeResolver struct {
	baseURL     string
	apiKey      string
	defaultCity string
	countryHint string
	client      *http.Client
	maxAttempts uint64
}

// GeocodeConfig configures the geocoding resolver.
type GeocodeConfig struct {
	BaseURL     string
	APIKey      string
	DefaultCity string
	CountryHint string
	Timeout     time.Duration
}

func NewGeocodeResolver(cfg GeocodeConfig) *GeocodeResolver {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openweathermap.org"
	}
	t := cfg.Timeout
	if t == 0 {
		t = 10 * time.Second
	}
	return &GeocodeResolver{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		defaultCity: cfg.DefaultCity,
		countryHint: cfg.CountryHint,
		client:      &http.Client{Timeout: t},
		maxAttempts: 3,
	}
}

func (r *GeocodeResolver) Resolve(ctx context.Context, question string) (string, float64, float64, error) {
	city := ExtractCity(question, r.defaultCity)
	var lat, lon float64
	err := fault.Retry(ctx, r.maxAttempts, func() error {
		var err error
		lat, lon, err = r.geocode(ctx, city)
		return err
	})
	if err != nil {
		return "", 0, 0, err
	}
	return city, lat, lon, nil
}

func (r *GeocodeResolver) geocode(ctx context.Context, city string) (float64, float64, error) {
	q := city
	if r.countryHint != "" {
		q = city + "," + r.countryHint
	}
	u := fmt.Sprintf("%s/geo/1.0/direct?q=%s&limit=1&appid=%s", r.baseURL, url.QueryEscape(q), r.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, 0, err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("geocode: %w: %v", fault.ErrNetwork, err)
	}
	defer resp.Body.Close()
	if err := fault.FromStatus("geocode", resp.StatusCode); err != nil {
		return 0, 0, err
	}
	var places []struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return 0, 0, fmt.Errorf("geocode: %w: %v", fault.ErrMalformed, err)
	}
	if len(places) == 0 {
		return 0, 0, fmt.Errorf("%w: %s", fault.ErrCityNotFound, city)
	}
	return places[0].Lat, places[0].Lon, nil
}
