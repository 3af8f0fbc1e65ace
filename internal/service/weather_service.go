package service

import (
	"context"
	"fmt"

	"github.com/fakhrymubarak/weather-advisor/internal/classifier"
	"github.com/fakhrymubarak/weather-advisor/internal/model"
	"github.com/fakhrymubarak/weather-advisor/internal/repository"
)

// WeatherServiceInterface is what the display surface depends on.
type WeatherServiceInterface interface {
	GetReport(ctx context.Context, city string) (*model.Report, error)
	IdleBackgroundURL() string
}

// WeatherService looks a city up and classifies the reading.
type WeatherService struct {
	WeatherRepo repository.WeatherRepository
	Backgrounds classifier.Backgrounds
}

// NewWeatherService wires repo with backgrounds. A nil backgrounds map uses
// the built-in images.
func NewWeatherService(repo repository.WeatherRepository, backgrounds classifier.Backgrounds) *WeatherService {
	if backgrounds == nil {
		backgrounds = classifier.DefaultBackgrounds()
	}
	return &WeatherService{
		WeatherRepo: repo,
		Backgrounds: backgrounds,
	}
}

// GetReport fetches city and attaches its background and recommendation.
func (s *WeatherService) GetReport(ctx context.Context, city string) (*model.Report, error) {
	reading, err := s.WeatherRepo.GetWeather(ctx, city)
	if err != nil {
		return nil, fmt.Errorf("get weather for %q: %w", city, err)
	}

	result := classifier.Classify(reading.Description, reading.TemperatureCelsius)
	return &model.Report{
		Reading:        *reading,
		Background:     result.BackgroundKey,
		BackgroundURL:  s.Backgrounds.URL(result.BackgroundKey),
		Recommendation: result.RecommendationText,
	}, nil
}

// IdleBackgroundURL is the image shown before any city is entered.
func (s *WeatherService) IdleBackgroundURL() string {
	return s.Backgrounds.URL(classifier.Idle())
}
