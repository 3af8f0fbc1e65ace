package main

import (
	"github.com/fakhrymubarak/weather-advisor/internal/config"
	"github.com/fakhrymubarak/weather-advisor/internal/server"
)

func main() {
	if err := server.Run(); err != nil {
		config.GetLogger().Fatalw("Weather advisor server stopped", "error", err)
	}
}
