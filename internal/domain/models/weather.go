package models

import "time"

// CurrentWeather is the reshaped current conditions.
type CurrentWeather struct {
	City        string    `json:"city"`
	Temperature float64   `json:"temperature"`
	FeelsLike   float64   `json:"feelsLike"`
	Humidity    int       `json:"humidity"`
	WindSpeed   float64   `json:"windSpeed"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	ObservedAt  time.Time `json:"observedAt"`
}

// ForecastDay folds the upstream 3-hour slots of one day.
type ForecastDay struct {
	Date        string  `json:"date"`
	Min         float64 `json:"min"`
	Max         float64 `json:"max"`
	Humidity    int     `json:"humidity"`
	Description string  `json:"description"`
	RainMM      float64 `json:"rainMm"`
}

// Forecast is the reshaped multi-day forecast.
type Forecast struct {
	City string        `json:"city"`
	Days []ForecastDay `json:"days"`
}
