package model

// OpenWeatherMapResponse is the subset of the current-weather payload the
// client reads. Required fields are pointers so that a missing field can be
// told apart from a zero value.
type OpenWeatherMapResponse struct {
	Name    string `json:"name"`
	Weather []struct {
		ID          int     `json:"id"`
		Main        string  `json:"main"`
		Description *string `json:"description"`
		Icon        string  `json:"icon"`
	} `json:"weather"`
	Main *struct {
		Temp      *float64 `json:"temp"`
		FeelsLike float64  `json:"feels_like"`
		Pressure  int      `json:"pressure"`
		Humidity  *int     `json:"humidity"`
	} `json:"main"`
	Wind *struct {
		Speed *float64 `json:"speed"`
		Deg   int      `json:"deg"`
	} `json:"wind"`
	Sys *struct {
		Country *string `json:"country"`
	} `json:"sys"`
}
