package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/fakhrymubarak/weather-advisor/internal/config"
	"github.com/fakhrymubarak/weather-advisor/internal/model"
	"github.com/fakhrymubarak/weather-advisor/internal/repository"
	"github.com/fakhrymubarak/weather-advisor/internal/service"
	"github.com/fakhrymubarak/weather-advisor/internal/view"
)

// CityParam is the query parameter carrying the user's city.
const CityParam = "city"

// Routes served by the handlers in this package.
const (
	PagePath    = "/"
	WeatherPath = "/weather"
	HealthPath  = "/health"
)

type WeatherHandler struct {
	WeatherService service.WeatherServiceInterface
	Logger         *zap.SugaredLogger
}

func NewWeatherHandler(svc service.WeatherServiceInterface) *WeatherHandler {
	return &WeatherHandler{
		WeatherService: svc,
		Logger:         config.GetLogger(),
	}
}

func writeJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		config.GetLogger().Errorw("could not encode json", "error", err)
	}
}

// writePage renders into a buffer first so a template failure never leaves
// a half-written page behind.
func writePage(w http.ResponseWriter, statusCode int, p view.Page) {
	var buf bytes.Buffer
	if err := view.Render(&buf, p); err != nil {
		config.GetLogger().Errorw("could not render page", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	_, _ = w.Write(buf.Bytes())
}

// cityFrom returns the city exactly as entered. Only an empty value counts
// as missing; anything else is looked up.
func cityFrom(r *http.Request) string {
	return r.URL.Query().Get(CityParam)
}

// lookupStatus maps a lookup error to the status code and user-facing message.
func lookupStatus(err error) (int, string) {
	switch {
	case errors.Is(err, repository.ErrCityNotFound):
		return http.StatusNotFound, view.CityNotFoundMessage
	case errors.Is(err, repository.ErrAPIKeyMissing):
		return http.StatusInternalServerError, config.MissingAPIKeyMessage
	default:
		return http.StatusBadGateway, view.LookupFailedMessage
	}
}

// HandleWeather serves the JSON API.
func (h *WeatherHandler) HandleWeather(w http.ResponseWriter, r *http.Request) {
	city := cityFrom(r)
	if city == "" {
		writeJSONResponse(w, http.StatusBadRequest, model.ErrorResponse("Missing 'city' query parameter"))
		return
	}

	report, err := h.WeatherService.GetReport(r.Context(), city)
	if err != nil {
		status, msg := lookupStatus(err)
		h.logLookupError(city, status, err)
		writeJSONResponse(w, status, model.ErrorResponse(msg))
		return
	}

	writeJSONResponse(w, http.StatusOK, model.Response{
		Data:    report,
		Message: "Success",
	})
}

// HandlePage serves the HTML page. Without a city it shows the idle state.
func (h *WeatherHandler) HandlePage(w http.ResponseWriter, r *http.Request) {
	city := cityFrom(r)
	p := view.Page{
		BackgroundURL: h.WeatherService.IdleBackgroundURL(),
		City:          city,
	}
	if city == "" {
		writePage(w, http.StatusOK, p)
		return
	}

	report, err := h.WeatherService.GetReport(r.Context(), city)
	if err != nil {
		status, msg := lookupStatus(err)
		h.logLookupError(city, status, err)
		p.Error = msg
		writePage(w, status, p)
		return
	}

	p.Report = report
	p.BackgroundURL = report.BackgroundURL
	writePage(w, http.StatusOK, p)
}

func (h *WeatherHandler) logLookupError(city string, status int, err error) {
	if status == http.StatusNotFound {
		h.Logger.Infow("city lookup rejected", "city", city, "error", err)
		return
	}
	h.Logger.Errorw("city lookup failed", "city", city, "status", status, "error", err)
}

// Health reports liveness.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, model.Response{Message: "OK"})
}

// ConfigErrorHandler answers every request with the configuration error. It
// is mounted instead of the router when no API key is configured, so no
// lookup can be attempted.
func ConfigErrorHandler(cause error) http.Handler {
	msg := config.MissingAPIKeyMessage
	if cause != nil && !errors.Is(cause, config.ErrAPIKeyMissing) {
		msg = cause.Error()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.Header.Get("Accept"), "application/json") || r.URL.Path == WeatherPath {
			writeJSONResponse(w, http.StatusInternalServerError, model.ErrorResponse(msg))
			return
		}
		writePage(w, http.StatusInternalServerError, view.Page{ConfigError: msg})
	})
}
