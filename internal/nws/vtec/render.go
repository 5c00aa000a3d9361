package vtec

import (
	"fmt"
	"strings"

	"github.com/paulmach/orb/encoding/wkt"

	"github.com/couchcryptid/nws-text-ingest/internal/nws"
)

var actionVerbs = map[string]string{
	"NEW": "issues",
	"CON": "continues",
	"EXT": "extends time of",
	"EXA": "extends area of",
	"EXB": "extends time and area of",
	"CAN": "cancels",
	"EXP": "expires",
	"UPG": "upgrades",
	"COR": "corrects",
	"ROU": "issues routine",
}

var phenomenaNames = map[string]string{
	"AS": "Air Stagnation", "BZ": "Blizzard", "CF": "Coastal Flood", "DS": "Dust Storm",
	"EC": "Extreme Cold", "EH": "Excessive Heat", "EW": "Extreme Wind", "FA": "Areal Flood",
	"FF": "Flash Flood", "FG": "Dense Fog", "FL": "Flood", "FR": "Frost", "FW": "Fire Weather",
	"FZ": "Freeze", "GL": "Gale", "HT": "Heat", "HU": "Hurricane", "HW": "High Wind",
	"HY": "Hydrologic", "IS": "Ice Storm", "LE": "Lake Effect Snow", "MA": "Marine",
	"RP": "Rip Current", "SC": "Small Craft", "SQ": "Snow Squall", "SS": "Storm Surge",
	"SU": "High Surf", "SV": "Severe Thunderstorm", "TO": "Tornado", "TR": "Tropical Storm",
	"WC": "Wind Chill", "WI": "Wind", "WS": "Winter Storm", "WW": "Winter Weather",
	"ZF": "Freezing Fog",
}

var significanceNames = map[string]string{
	"W": "Warning", "A": "Watch", "Y": "Advisory", "S": "Statement",
	"F": "Forecast", "O": "Outlook", "N": "Synopsis",
}

// EventName spells out a phenomena and significance pair, e.g. "Tornado
// Warning". Unknown codes are echoed.
func EventName(phenomena, significance string) string {
	p, ok := phenomenaNames[phenomena]
	if !ok {
		p = phenomena
	}
	s, ok := significanceNames[significance]
	if !ok {
		s = significance
	}
	return p + " " + s
}

func ugcNames(codes []string, provider nws.UGCProvider) string {
	names := make([]string, 0, len(codes))
	for _, c := range codes {
		if provider != nil {
			if u, ok := provider.LookupUGC(c); ok && u.Name != "" {
				names = append(names, fmt.Sprintf("%s [%s]", u.Name, u.State))
				continue
			}
		}
		names = append(names, c)
	}
	return strings.Join(names, ", ")
}

// Notifications renders one message per segment and operational VTEC.
func (w *Warning) Notifications(baseURL string, ugcs nws.UGCProvider) []nws.Notification {
	prod := w.Product
	url := baseURL + prod.ProductID()
	var out []nws.Notification
	for _, seg := range w.Segments {
		for _, v := range seg.VTECs {
			if v.Status != "O" {
				continue
			}
			verb, ok := actionVerbs[v.Action]
			if !ok {
				verb = v.Action
			}
			event := EventName(v.Phenomena, v.Significance)
			tail := " for " + ugcNames(seg.UGCs, ugcs)
			switch {
			case v.Action == "CAN" || v.Action == "EXP" || v.Action == "UPG":
			case v.End == nil:
				tail += " until further notice"
			default:
				if local, err := nws.InZone(*v.End, prod.TZAbbr); err == nil {
					tail += " till " + local.Format("3:04 PM MST")
				} else {
					tail += " till " + v.End.Format("1504 UTC")
				}
			}
			msg := fmt.Sprintf("%s %s %s%s", v.WFO(), verb, event, tail)
			if seg.Emergency {
				msg = "EMERGENCY: " + msg
			}

			n := nws.Notification{
				Plain: msg + " " + url,
				HTML:  fmt.Sprintf(`<p>%s <a href="%s">%s %s</a>%s</p>`, v.WFO(), url, verb, event, tail),
				Extras: nws.Extras{
					Channels: nws.JoinChannels(v.Phenomena+"."+v.Significance, v.WFO(),
						v.Phenomena+"."+v.Significance+"."+v.WFO()),
					Twitter:   nws.Tweet(msg, url, nws.MaxTwitterLength),
					ProductID: prod.ProductID(),
				},
			}
			if len(seg.Polygon) > 0 {
				n.Extras.Geometry = wkt.MarshalString(seg.Polygon)
			}
			out = append(out, n)
		}
	}
	return out
}
