package lsr

// dbTypes maps the uppercased hazard label of a report to the single
// character code stored in the lsrs tables. Marine and land variants of a
// hazard share a code.
var dbTypes = map[string]string{
	"AVALANCHE":                "V",
	"BLIZZARD":                 "Z",
	"BLOWING DUST":             "2",
	"BLOWING SNOW":             "a",
	"COASTAL FLOOD":            "1",
	"DEBRIS FLOW":              "d",
	"DENSE FOG":                "9",
	"DOWNBURST":                "D",
	"DRIFTING SNOW":            "a",
	"DROUGHT":                  "6",
	"DUST DEVIL":               "2",
	"DUST STORM":               "2",
	"EXCESSIVE HEAT":           "I",
	"EXTREME COLD":             "X",
	"EXTR WIND CHILL":          "X",
	"EXTREME HEAT":             "I",
	"FLASH FLOOD":              "F",
	"FLOOD":                    "E",
	"FOG":                      "9",
	"FREEZE":                   "X",
	"FREEZING DRIZZLE":         "r",
	"FREEZING RAIN":            "r",
	"FREEZING SPRAY":           "r",
	"FUNNEL CLOUD":             "C",
	"GUSTNADO":                 "D",
	"HAIL":                     "H",
	"HEAVY RAIN":               "R",
	"HEAVY SLEET":              "s",
	"HEAVY SNOW":               "S",
	"HEAVY SURF":               "P",
	"HIGH ASTR TIDES":          "1",
	"HIGH SURF":                "P",
	"HIGH SUST WINDS":          "O",
	"HIGH WIND":                "O",
	"HURRICANE":                "Q",
	"ICE JAM":                  "E",
	"ICE STORM":                "5",
	"LAKESHORE FLOOD":          "1",
	"LAKE EFFECT SNOW":         "S",
	"LANDSLIDE":                "d",
	"LANDSPOUT":                "T",
	"LIGHTNING":                "L",
	"LOW ASTR TIDES":           "1",
	"MARINE HAIL":              "H",
	"MARINE TSTM WIND":         "M",
	"MARINE THUNDERSTORM WIND": "M",
	"MUDSLIDE":                 "d",
	"NON-TSTM WND DMG":         "N",
	"NON-TSTM WND GST":         "O",
	"RAIN":                     "R",
	"RIP CURRENTS":             "3",
	"ROCKSLIDE":                "d",
	"SEICHE":                   "1",
	"SLEET":                    "s",
	"SNOW":                     "S",
	"SNOW SQUALL":              "S",
	"SNOW/ICE DMG":             "5",
	"SNOWFALL":                 "S",
	"STORM SURGE":              "1",
	"TORNADO":                  "T",
	"TROPICAL STORM":           "Q",
	"TSTM WND DMG":             "D",
	"TSTM WND GST":             "G",
	"TSUNAMI":                  "4",
	"VOLCANIC ASH":             "8",
	"WATERSPOUT":               "W",
	"MARINE WATERSPOUT":        "W",
	"WILDFIRE":                 "7",
	"WIND CHILL":               "X",
	"WINTER STORM":             "S",
	"WINTER WEATHER":           "S",
	"ICE ACCUMULATION":         "5",
	"TIDAL FLOOD":              "1",
	"STREAM FLOOD":             "E",
	"URBAN FLOOD":              "E",
	"SMALL STREAM FLOOD":       "E",
	"RECORD RAINFALL":          "R",
	"MARINE HIGH WIND":         "O",
	"MARINE STRONG WIND":       "O",
	"MARINE DENSE FOG":         "9",
	"MARINE TSTM WIND GUST":    "M",
	"SNEAKER WAVE":             "P",
}

// DBType returns the storage code for a hazard label.
func DBType(typetext string) (string, bool) {
	code, ok := dbTypes[typetext]
	return code, ok
}
