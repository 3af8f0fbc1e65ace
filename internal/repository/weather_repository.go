package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/fakhrymubarak/weather-advisor/internal/config"
	"github.com/fakhrymubarak/weather-advisor/internal/model"
)

// DefaultAPIURL is the OpenWeatherMap current-weather endpoint.
const DefaultAPIURL = "https://api.openweathermap.org/data/2.5/weather"

// Custom error types
var (
	ErrCityNotFound      = errors.New("city not found")
	ErrAPIKeyMissing     = config.ErrAPIKeyMissing
	ErrMalformedResponse = errors.New("malformed weather response")
)

// FetchErrorKind tells a rejected lookup apart from one that never got a response.
type FetchErrorKind int

const (
	// KindCityNotFound covers every non-200 status.
	KindCityNotFound FetchErrorKind = iota
	// KindRequestFailed means no HTTP response was received.
	KindRequestFailed
)

func (k FetchErrorKind) String() string {
	switch k {
	case KindCityNotFound:
		return "city not found"
	case KindRequestFailed:
		return "request failed"
	default:
		return "unknown"
	}
}

// FetchError is returned for any unsuccessful lookup. Both kinds match
// ErrCityNotFound with errors.Is.
type FetchError struct {
	Kind       FetchErrorKind
	City       string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Kind == KindRequestFailed && e.Err != nil {
		return fmt.Sprintf("%s for %q: %v", e.Kind, e.City, e.Err)
	}
	return fmt.Sprintf("%s for %q (status %d)", e.Kind, e.City, e.StatusCode)
}

func (e *FetchError) Is(target error) bool {
	return target == ErrCityNotFound
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// WeatherRepository defines the interface for weather data access
type WeatherRepository interface {
	GetWeather(ctx context.Context, city string) (*model.WeatherReading, error)
}

// Options configures NewWeatherRepository.
type Options struct {
	APIKey string
	// APIURL defaults to DefaultAPIURL.
	APIURL string
	// HTTPClient defaults to a client with Timeout.
	HTTPClient *http.Client
	// Timeout applies only when HTTPClient is nil. Defaults to 10s.
	Timeout time.Duration
}

// weatherRepository implements WeatherRepository against OpenWeatherMap.
type weatherRepository struct {
	apiKey     string
	apiURL     string
	httpClient *http.Client
}

// NewWeatherRepository creates a new weather repository instance
func NewWeatherRepository(opts Options) WeatherRepository {
	apiURL := opts.APIURL
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &weatherRepository{
		apiKey:     opts.APIKey,
		apiURL:     apiURL,
		httpClient: client,
	}
}

// GetWeather fetches the current conditions for city. It issues exactly one
// request and never retries.
func (r *weatherRepository) GetWeather(ctx context.Context, city string) (*model.WeatherReading, error) {
	if r.apiKey == "" {
		return nil, ErrAPIKeyMissing
	}

	req, err := r.newRequest(ctx, city)
	if err != nil {
		return nil, err
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Kind: KindRequestFailed, City: city, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Kind: KindCityNotFound, City: city, StatusCode: resp.StatusCode}
	}

	var data model.OpenWeatherMapResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	reading, err := toReading(city, &data)
	if err != nil {
		return nil, err
	}
	return reading, nil
}

func (r *weatherRepository) newRequest(ctx context.Context, city string) (*http.Request, error) {
	u, err := url.Parse(r.apiURL)
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}
	q := u.Query()
	q.Set("q", city)
	q.Set("appid", r.apiKey)
	q.Set("units", "metric")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// toReading flattens the payload, failing on the first missing field.
func toReading(city string, data *model.OpenWeatherMapResponse) (*model.WeatherReading, error) {
	missing := func(field string) error {
		return fmt.Errorf("%w: missing %s", ErrMalformedResponse, field)
	}

	if len(data.Weather) == 0 || data.Weather[0].Description == nil {
		return nil, missing("weather[0].description")
	}
	if data.Main == nil || data.Main.Temp == nil {
		return nil, missing("main.temp")
	}
	if data.Main.Humidity == nil {
		return nil, missing("main.humidity")
	}
	if data.Wind == nil || data.Wind.Speed == nil {
		return nil, missing("wind.speed")
	}
	if data.Sys == nil || data.Sys.Country == nil {
		return nil, missing("sys.country")
	}

	return &model.WeatherReading{
		City:               city,
		Description:        Capitalize(*data.Weather[0].Description),
		TemperatureCelsius: *data.Main.Temp,
		HumidityPercent:    *data.Main.Humidity,
		WindSpeedMps:       *data.Wind.Speed,
		CountryCode:        *data.Sys.Country,
	}, nil
}

// Capitalize upper-cases the first letter of s and lower-cases the rest.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		// An invalid or replacement first rune is kept as is.
		return s[:size] + strings.ToLower(s[size:])
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
