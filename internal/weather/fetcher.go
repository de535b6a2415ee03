// Package weather fetches and summarizes current conditions for the city
// named in a user question.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"assistant/internal/domain"
	"assistant/internal/fault"
)

// Fetcher resolves a city from the question and fetches current conditions
// from the OpenWeather One Call 3.0 API.
type Fetcher struct {
	baseURL     string
	apiKey      string
	resolver    domain.CityResolver
	cache       domain.WeatherCache
	client      *http.Client
	maxAttempts uint64
	log         *slog.Logger
}

// FetcherConfig configures the weather fetcher.
type FetcherConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

func NewFetcher(cfg FetcherConfig, resolver domain.CityResolver, cache domain.WeatherCache, log *slog.Logger) *Fetcher {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openweathermap.org"
	}
	t := cfg.Timeout
	if t == 0 {
		t = 10 * time.Second
	}
	if cache == nil {
		cache = NopCache{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Fetcher{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		resolver:    resolver,
		cache:       cache,
		client:      &http.Client{Timeout: t},
		maxAttempts: 3,
		log:         log,
	}
}

// Fetch returns a normalized weather report for the city named in question.
// Unresolvable cities yield fault.ErrCityNotFound and are never retried.
func (f *Fetcher) Fetch(ctx context.Context, question string) (domain.WeatherReport, error) {
	city, lat, lon, err := f.resolver.Resolve(ctx, question)
	if err != nil {
		return domain.WeatherReport{}, err
	}
	if cached, ok := f.cache.Get(ctx, city); ok {
		f.log.Debug("weather cache hit", "city", city)
		return *cached, nil
	}
	var report domain.WeatherReport
	err = fault.Retry(ctx, f.maxAttempts, func() error {
		var err error
		report, err = f.fetchOneCall(ctx, city, lat, lon)
		return err
	})
	if err != nil {
		return domain.WeatherReport{}, err
	}
	f.cache.Set(ctx, city, &report)
	return report, nil
}

func (f *Fetcher) fetchOneCall(ctx context.Context, city string, lat, lon float64) (domain.WeatherReport, error) {
	u := fmt.Sprintf("%s/data/3.0/onecall?lat=%g&lon=%g&exclude=minutely,hourly,daily,alerts&units=metric&appid=%s",
		f.baseURL, lat, lon, f.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return domain.WeatherReport{}, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return domain.WeatherReport{}, fmt.Errorf("weather: %w: %v", fault.ErrNetwork, err)
	}
	defer resp.Body.Close()
	if err := fault.FromStatus("weather", resp.StatusCode); err != nil {
		return domain.WeatherReport{}, err
	}
	var parsed struct {
		Current struct {
			Temp      float64 `json:"temp"`
			FeelsLike float64 `json:"feels_like"`
			Humidity  int     `json:"humidity"`
			WindSpeed float64 `json:"wind_speed"`
			Weather   []struct {
				Description string `json:"description"`
			} `json:"weather"`
		} `json:"current"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return domain.WeatherReport{}, fmt.Errorf("weather: %w: %v", fault.ErrMalformed, err)
	}
	if len(parsed.Current.Weather) == 0 {
		return domain.WeatherReport{}, fmt.Errorf("weather: %w: missing current conditions", fault.ErrMalformed)
	}
	cur := parsed.Current
	desc := capitalize(cur.Weather[0].Description)
	report := domain.WeatherReport{
		City:        city,
		Conditions:  desc,
		Temperature: cur.Temp,
		FeelsLike:   cur.FeelsLike,
		Humidity:    cur.Humidity,
		WindSpeed:   cur.WindSpeed,
	}
	report.Summary = fmt.Sprintf("Current weather in %s: %.1f°C (feels like %.1f°C), humidity %d%%, %s, wind %g m/s.",
		city, cur.Temp, cur.FeelsLike, cur.Humidity, desc, cur.WindSpeed)
	return report, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
