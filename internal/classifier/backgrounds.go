package classifier

// Backgrounds maps each key to an image URL.
type Backgrounds map[BackgroundKey]string

// DefaultBackgrounds returns the built-in image set.
func DefaultBackgrounds() Backgrounds {
	return Backgrounds{
		BackgroundDefault: "https://i0.wp.com/picjumbo.com/wp-content/uploads/beautiful-fall-nature-scenery-free-image.jpeg?w=600&quality=80",
		BackgroundHot:     "https://img.freepik.com/free-vector/realistic-hot-background_23-2149443988.jpg?semt=ais_hybrid",
		BackgroundSnow:    "https://img.freepik.com/premium-photo/cold-weather-serenity-moment-peace_1170794-109141.jpg",
		BackgroundRain:    "https://www.wellahealth.com/blog/wp-content/uploads/2021/09/6-ways-to-stay-healthy-during-the-rainy-season.jpg",
		BackgroundClear:   "https://cdn2.hubspot.net/hubfs/2936356/maxresdefault.jpg",
		BackgroundCloudy:  "https://www.shutterstock.com/image-photo/rural-landscape-wild-changing-stormy-260nw-1906424227.jpg",
	}
}

// WithOverrides returns a copy of b where every non-empty value returned by
// lookup replaces the built-in URL.
func (b Backgrounds) WithOverrides(lookup func(key string) string) Backgrounds {
	out := make(Backgrounds, len(b))
	for k, v := range b {
		out[k] = v
	}
	for _, k := range BackgroundKeys {
		if url := lookup(string(k)); url != "" {
			out[k] = url
		}
	}
	return out
}

// URL resolves key, falling back to the default image for unknown keys.
func (b Backgrounds) URL(key BackgroundKey) string {
	if url, ok := b[key]; ok && url != "" {
		return url
	}
	if url, ok := b[BackgroundDefault]; ok {
		return url
	}
	return DefaultBackgrounds()[BackgroundDefault]
}
