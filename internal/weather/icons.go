package weather

import "strings"

// Icon names one of the ASCII weather pictures.
type Icon string

// Known icons.
const (
	IconClear        Icon = "clear"
	IconPartlyCloudy Icon = "partly_cloudy"
	IconCloudy       Icon = "cloudy"
	IconRain         Icon = "rain"
	IconSnow         Icon = "snow"
	IconThunderstorm Icon = "thunderstorm"
	IconFog          Icon = "fog"
)

// Pictures are plain ASCII so every monospace fallback font can draw them.
var iconArt = map[Icon][]string{
	IconClear: {
		`  \   /  `,
		`   .-.   `,
		`-- (   ) --`,
		"   `-'   ",
		`  /   \  `,
	},
	IconPartlyCloudy: {
		`  \  /      `,
		`_ /"".-.    `,
		`  \_(   ).  `,
		`  /(___(__) `,
	},
	IconCloudy: {
		`    .--.    `,
		` .-(    ).  `,
		`(___.__)__) `,
	},
	IconRain: {
		`    .-.     `,
		`   (   ).   `,
		`  (___(__)  `,
		"   ' ' ' '  ",
		"  ' ' ' '   ",
	},
	IconSnow: {
		`    .-.     `,
		`   (   ).   `,
		`  (___(__)  `,
		`   * * * *  `,
		`  * * * *   `,
	},
	IconThunderstorm: {
		`    .-.     `,
		`   (   ).   `,
		`  (___(__)  `,
		`   /' /'    `,
	},
	IconFog: {
		`_ - _ - _ -`,
		` _ - _ - _ `,
		`_ - _ - _ -`,
	},
}

// conditionKeywords is checked in order; the first keyword contained in a
// description wins. Longer phrases come first so "partly cloudy" is not
// caught by "cloudy".
var conditionKeywords = []struct {
	keyword string
	icon    Icon
}{
	{"partly cloudy", IconPartlyCloudy},
	{"partly sunny", IconPartlyCloudy},
	{"mostly sunny", IconPartlyCloudy},
	{"mostly clear", IconPartlyCloudy},
	{"mainly clear", IconPartlyCloudy},
	{"mostly cloudy", IconCloudy},
	{"thunderstorm", IconThunderstorm},
	{"thunder", IconThunderstorm},
	{"lightning", IconThunderstorm},
	{"storm", IconThunderstorm},
	{"snow", IconSnow},
	{"flurries", IconSnow},
	{"sleet", IconSnow},
	{"ice", IconSnow},
	{"rain", IconRain},
	{"drizzle", IconRain},
	{"showers", IconRain},
	{"fog", IconFog},
	{"mist", IconFog},
	{"haze", IconFog},
	{"hazy", IconFog},
	{"cloudy", IconCloudy},
	{"overcast", IconCloudy},
	{"clear", IconClear},
	{"sunny", IconClear},
	{"fair", IconClear},
}

// IconFor maps a condition description to an icon. An empty description
// is clear; an unrecognized one is cloudy.
func IconFor(condition string) Icon {
	c := strings.ToLower(strings.TrimSpace(condition))
	if c == "" {
		return IconClear
	}
	for _, kw := range conditionKeywords {
		if strings.Contains(c, kw.keyword) {
			return kw.icon
		}
	}
	return IconCloudy
}

// Art returns the lines of the icon picture; unknown icons draw as cloudy.
func Art(icon Icon) []string {
	if lines, ok := iconArt[icon]; ok {
		return lines
	}
	return iconArt[IconCloudy]
}
