// Package classifier maps a weather description and temperature to a
// background image key and a clothing recommendation.
//
// Background and recommendation use two independent rule tables with
// different priority orders. Rain outranks heat in both, but heat and cold
// outrank the snow, clear and cloudy keywords only for recommendations.
package classifier

import (
	"math"
	"strings"
)

// BackgroundKey selects a decorative background image.
type BackgroundKey string

const (
	BackgroundDefault BackgroundKey = "default"
	BackgroundHot     BackgroundKey = "hot"
	BackgroundSnow    BackgroundKey = "snow"
	BackgroundRain    BackgroundKey = "rain"
	BackgroundClear   BackgroundKey = "clear"
	BackgroundCloudy  BackgroundKey = "cloudy"
)

// BackgroundKeys lists every key in declaration order.
var BackgroundKeys = []BackgroundKey{
	BackgroundDefault,
	BackgroundHot,
	BackgroundSnow,
	BackgroundRain,
	BackgroundClear,
	BackgroundCloudy,
}

const (
	hotAbove  = 30.0
	coldBelow = 10.0
)

// Recommendation texts.
const (
	RainAdvice     = "It's rainy outside. Don't forget to carry an umbrella! ☔ Also, wearing waterproof clothing would be advisable."
	HeatAdvice     = "It's quite hot. Stay hydrated and avoid outdoor activities during peak hours. 🥤 Consider wearing light and breathable fabrics like cotton or linen."
	ColdAdvice     = "It's cold. Wear warm clothes if you're heading out! 🧣 A coat or thermal wear could help."
	SnowAdvice     = "It's snowy outside. Make sure to wear heavy and insulated clothing. 🧥 Boots and a warm hat would be beneficial."
	PleasantAdvice = "The weather looks pleasant. Enjoy your day! 🌤️ Consider wearing casual or semi-formal attire if you're heading out."
	CloudyAdvice   = "It’s cloudy today. A sweater or long-sleeve shirt would be comfortable. 🧥"
	NeutralAdvice  = "The weather conditions are neutral. Dress comfortably."
)

// Conditions is the input every rule is evaluated against.
type Conditions struct {
	// Description is lower-cased once before matching.
	Description        string
	TemperatureCelsius float64
}

// NewConditions normalizes a raw description and temperature.
func NewConditions(description string, temperatureCelsius float64) Conditions {
	return Conditions{
		Description:        strings.ToLower(description),
		TemperatureCelsius: temperatureCelsius,
	}
}

// Predicate reports whether a rule applies.
type Predicate func(Conditions) bool

// Rule pairs a predicate with the result it selects.
type Rule[T any] struct {
	Name   string
	Match  Predicate
	Result T
}

// Table is an ordered rule list evaluated first-match-wins. Fallback is
// returned when no rule matches.
type Table[T any] struct {
	Rules    []Rule[T]
	Fallback T
}

// Evaluate returns the result of the first matching rule.
func (t Table[T]) Evaluate(c Conditions) T {
	r, _ := t.Match(c)
	return r
}

// Match is Evaluate but also names the rule that fired. The name is
// "fallback" when no rule matched.
func (t Table[T]) Match(c Conditions) (T, string) {
	for _, rule := range t.Rules {
		if rule.Match(c) {
			return rule.Result, rule.Name
		}
	}
	return t.Fallback, "fallback"
}

// Contains matches when the description contains keyword. keyword must be lower case.
func Contains(keyword string) Predicate {
	return func(c Conditions) bool {
		return strings.Contains(c.Description, keyword)
	}
}

// Above matches temperatures strictly greater than limit. Non-finite
// temperatures never match.
func Above(limit float64) Predicate {
	return func(c Conditions) bool {
		return isFinite(c.TemperatureCelsius) && c.TemperatureCelsius > limit
	}
}

// Below matches temperatures strictly lower than limit. Non-finite
// temperatures never match.
func Below(limit float64) Predicate {
	return func(c Conditions) bool {
		return isFinite(c.TemperatureCelsius) && c.TemperatureCelsius < limit
	}
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// BackgroundRules checks every keyword before the heat threshold.
var BackgroundRules = Table[BackgroundKey]{
	Rules: []Rule[BackgroundKey]{
		{Name: "rain", Match: Contains("rain"), Result: BackgroundRain},
		{Name: "snow", Match: Contains("snow"), Result: BackgroundSnow},
		{Name: "clear", Match: Contains("clear"), Result: BackgroundClear},
		{Name: "cloudy", Match: Contains("cloudy"), Result: BackgroundCloudy},
		{Name: "hot", Match: Above(hotAbove), Result: BackgroundHot},
	},
	Fallback: BackgroundDefault,
}

// RecommendationRules checks rain, then the temperature thresholds, then the
// remaining keywords.
var RecommendationRules = Table[string]{
	Rules: []Rule[string]{
		{Name: "rain", Match: Contains("rain"), Result: RainAdvice},
		{Name: "hot", Match: Above(hotAbove), Result: HeatAdvice},
		{Name: "cold", Match: Below(coldBelow), Result: ColdAdvice},
		{Name: "snow", Match: Contains("snow"), Result: SnowAdvice},
		{Name: "clear", Match: Contains("clear"), Result: PleasantAdvice},
		{Name: "cloudy", Match: Contains("cloudy"), Result: CloudyAdvice},
	},
	Fallback: NeutralAdvice,
}

// SelectBackground picks the background for the given conditions.
func SelectBackground(description string, temperatureCelsius float64) BackgroundKey {
	return BackgroundRules.Evaluate(NewConditions(description, temperatureCelsius))
}

// SelectRecommendation picks the recommendation text for the given conditions.
func SelectRecommendation(description string, temperatureCelsius float64) string {
	return RecommendationRules.Evaluate(NewConditions(description, temperatureCelsius))
}

// Result is the outcome of classifying one reading.
type Result struct {
	BackgroundKey      BackgroundKey `json:"background_key"`
	RecommendationText string        `json:"recommendation_text"`
}

// Classify applies both rule tables.
func Classify(description string, temperatureCelsius float64) Result {
	c := NewConditions(description, temperatureCelsius)
	return Result{
		BackgroundKey:      BackgroundRules.Evaluate(c),
		RecommendationText: RecommendationRules.Evaluate(c),
	}
}

// Idle is the background shown before any lookup.
func Idle() BackgroundKey {
	return SelectBackground("", 0)
}
