package weather

// Codes maps WMO weather interpretation codes to short descriptions.
var Codes = map[int]string{
	0:  "Clear",
	1:  "Mainly Clear",
	2:  "Partly Cloudy",
	3:  "Overcast",
	45: "Foggy",
	48: "Fog",
	51: "Light Drizzle",
	53: "Drizzle",
	55: "Dense Drizzle",
	61: "Slight Rain",
	63: "Rain",
	65: "Heavy Rain",
	71: "Slight Snow",
	73: "Snow",
	75: "Heavy Snow",
	77: "Snow Grains",
	80: "Slight Showers",
	81: "Showers",
	82: "Violent Showers",
	85: "Snow Showers",
	86: "Heavy Snow Showers",
	95: "Thunderstorm",
	96: "Thunderstorm w/ Hail",
	99: "Severe Thunderstorm",
}

// Describe returns the description for a WMO code, or "Unknown".
func Describe(code int) string {
	if d, ok := Codes[code]; ok {
		return d
	}
	return "Unknown"
}
