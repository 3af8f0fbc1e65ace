package repository

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const londonBody = `{
	"name": "London",
	"weather": [{"id": 500, "main": "Rain", "description": "light rain", "icon": "10d"}],
	"main": {"temp": 12.5, "feels_like": 11.9, "pressure": 1012, "humidity": 81},
	"wind": {"speed": 4.1, "deg": 240},
	"sys": {"country": "GB"}
}`

func TestGetWeather_Success(t *testing.T) {
	var gotQuery atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery.Store(r.URL.Query())
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(londonBody))
	}))
	defer srv.Close()

	repo := NewWeatherRepository(Options{APIKey: "secret", APIURL: srv.URL, HTTPClient: srv.Client()})
	reading, err := repo.GetWeather(context.Background(), "London, GB")
	require.NoError(t, err)

	assert.Equal(t, "London, GB", reading.City)
	assert.Equal(t, "Light rain", reading.Description)
	assert.Equal(t, 12.5, reading.TemperatureCelsius)
	assert.Equal(t, 81, reading.HumidityPercent)
	assert.Equal(t, 4.1, reading.WindSpeedMps)
	assert.Equal(t, "GB", reading.CountryCode)

	q := gotQuery.Load().(url.Values)
	assert.Equal(t, []string{"London, GB"}, q["q"])
	assert.Equal(t, []string{"secret"}, q["appid"])
	assert.Equal(t, []string{"metric"}, q["units"])
}

func TestGetWeather_SnowBelowZero(t *testing.T) {
	body := `{"weather":[{"description":"Snow"}],"main":{"temp":-5,"humidity":90},"wind":{"speed":2},"sys":{"country":"NO"}}`
	repo := NewWeatherRepository(Options{APIKey: "k", HTTPClient: StubClient(http.StatusOK, body)})

	reading, err := repo.GetWeather(context.Background(), "Tromso")
	require.NoError(t, err)
	assert.Equal(t, "Snow", reading.Description)
	assert.Equal(t, -5.0, reading.TemperatureCelsius)
}

func TestGetWeather_NonOKIsCityNotFound(t *testing.T) {
	for _, status := range []int{
		http.StatusNotFound,
		http.StatusUnauthorized,
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
	} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			repo := NewWeatherRepository(Options{APIKey: "k", HTTPClient: StubClient(status, `{"cod":"404","message":"city not found"}`)})

			reading, err := repo.GetWeather(context.Background(), "Nowhereville")
			assert.Nil(t, reading)
			assert.ErrorIs(t, err, ErrCityNotFound)

			var fetchErr *FetchError
			require.True(t, errors.As(err, &fetchErr))
			assert.Equal(t, KindCityNotFound, fetchErr.Kind)
			assert.Equal(t, status, fetchErr.StatusCode)
			assert.Equal(t, "Nowhereville", fetchErr.City)
		})
	}
}

func TestGetWeather_TransportError(t *testing.T) {
	boom := errors.New("connection refused")
	client := &http.Client{Transport: RoundTripperFunc(func(*http.Request) (*http.Response, error) {
		return nil, boom
	})}
	repo := NewWeatherRepository(Options{APIKey: "k", HTTPClient: client})

	_, err := repo.GetWeather(context.Background(), "Paris")
	assert.ErrorIs(t, err, ErrCityNotFound)
	assert.ErrorIs(t, err, boom)

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, KindRequestFailed, fetchErr.Kind)
}

func TestGetWeather_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	repo := NewWeatherRepository(Options{APIKey: "k", APIURL: srv.URL, Timeout: 50 * time.Millisecond})
	_, err := repo.GetWeather(context.Background(), "Slowtown")
	assert.ErrorIs(t, err, ErrCityNotFound)
}

func TestGetWeather_ContextCancelled(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	repo := NewWeatherRepository(Options{APIKey: "k", APIURL: srv.URL, HTTPClient: srv.Client()})
	_, err := repo.GetWeather(ctx, "Rome")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(0), calls.Load())
}

func TestGetWeather_MissingAPIKey(t *testing.T) {
	var calls atomic.Int32
	client := &http.Client{Transport: RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
		calls.Add(1)
		return StubClient(http.StatusOK, londonBody).Transport.RoundTrip(req)
	})}
	repo := NewWeatherRepository(Options{HTTPClient: client})

	_, err := repo.GetWeather(context.Background(), "London")
	assert.ErrorIs(t, err, ErrAPIKeyMissing)
	assert.Equal(t, int32(0), calls.Load())
}

func TestGetWeather_MalformedResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "not-json"},
		{"empty object", `{}`},
		{"empty weather array", `{"weather":[],"main":{"temp":1,"humidity":2},"wind":{"speed":3},"sys":{"country":"GB"}}`},
		{"missing description", `{"weather":[{"main":"Rain"}],"main":{"temp":1,"humidity":2},"wind":{"speed":3},"sys":{"country":"GB"}}`},
		{"missing temp", `{"weather":[{"description":"rain"}],"main":{"humidity":2},"wind":{"speed":3},"sys":{"country":"GB"}}`},
		{"missing humidity", `{"weather":[{"description":"rain"}],"main":{"temp":1},"wind":{"speed":3},"sys":{"country":"GB"}}`},
		{"missing wind", `{"weather":[{"description":"rain"}],"main":{"temp":1,"humidity":2},"sys":{"country":"GB"}}`},
		{"missing country", `{"weather":[{"description":"rain"}],"main":{"temp":1,"humidity":2},"wind":{"speed":3},"sys":{}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewWeatherRepository(Options{APIKey: "k", HTTPClient: StubClient(http.StatusOK, tt.body)})
			reading, err := repo.GetWeather(context.Background(), "London")
			assert.Nil(t, reading)
			assert.ErrorIs(t, err, ErrMalformedResponse)
			assert.NotErrorIs(t, err, ErrCityNotFound)
		})
	}
}

func TestGetWeather_ZeroValuesArePresent(t *testing.T) {
	body := `{"weather":[{"description":"clear sky"}],"main":{"temp":0,"humidity":0},"wind":{"speed":0},"sys":{"country":""}}`
	repo := NewWeatherRepository(Options{APIKey: "k", HTTPClient: StubClient(http.StatusOK, body)})

	reading, err := repo.GetWeather(context.Background(), "Null Island")
	require.NoError(t, err)
	assert.Equal(t, 0.0, reading.TemperatureCelsius)
	assert.Equal(t, "Clear sky", reading.Description)
}

func TestNewWeatherRepository_Defaults(t *testing.T) {
	repo := NewWeatherRepository(Options{APIKey: "k"}).(*weatherRepository)
	assert.Equal(t, DefaultAPIURL, repo.apiURL)
	assert.Equal(t, 10*time.Second, repo.httpClient.Timeout)
}

func TestCapitalize(t *testing.T) {
	tests := map[string]string{
		"":                "",
		"light rain":      "Light rain",
		"OVERCAST CLOUDS": "Overcast clouds",
		"éclaircies":      "Éclaircies",
		"Clear Sky":       "Clear sky",
		"1 thunderstorm":  "1 thunderstorm",
		"\xffHEAVY RAIN": "\xffheavy rain",
		"\uFFFDMIST":      "\uFFFDmist",
	}
	for in, want := range tests {
		assert.Equal(t, want, Capitalize(in), in)
	}
}

func TestFetchErrorKind_String(t *testing.T) {
	assert.Equal(t, "city not found", KindCityNotFound.String())
	assert.Equal(t, "request failed", KindRequestFailed.String())
	assert.Equal(t, "unknown", FetchErrorKind(42).String())
}
