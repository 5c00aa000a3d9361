package lsr

import (
	"fmt"
	"html"
	"strings"

	"github.com/paulmach/orb/encoding/wkt"

	"github.com/couchcryptid/nws-text-ingest/internal/nws"
)

var hailSizes = map[string]string{
	"0.25": "pea", "0.50": "half inch", "0.75": "penny", "0.88": "nickel",
	"1.00": "quarter", "1.25": "half dollar", "1.50": "ping pong ball",
	"1.75": "golf ball", "2.00": "hen egg", "2.50": "tennis ball",
	"2.75": "baseball", "3.00": "tea cup", "4.00": "grapefruit",
	"4.50": "softball",
}

// TitleCase title-cases tokens longer than three characters. Shorter
// tokens, compass labels among them, keep their case.
func TitleCase(text string) string {
	tokens := strings.Fields(text)
	for i, t := range tokens {
		if len(t) <= 3 {
			continue
		}
		tokens[i] = strings.ToUpper(t[:1]) + strings.ToLower(t[1:])
	}
	return strings.Join(tokens, " ")
}

// MagString renders the magnitude as a trailing phrase, e.g.
// "of quarter size (M1.00 INCH) ". Empty when no magnitude was given.
func (r *Report) MagString() string {
	m := r.Magnitude
	switch {
	case m.Value != nil && m.Units == "MPH":
		return fmt.Sprintf("of %s%.0f MPH ", m.Qualifier, *m.Value)
	case m.Value != nil && m.Units == "INCH" && r.TypeText == "HAIL":
		v := fmt.Sprintf("%.2f", *m.Value)
		if size, ok := hailSizes[v]; ok {
			return fmt.Sprintf("of %s size (%s%s INCH) ", size, m.Qualifier, v)
		}
		return fmt.Sprintf("of %s%s INCH ", m.Qualifier, v)
	case m.Value != nil && m.Units == "F":
		return fmt.Sprintf("of %sF%.0f ", m.Qualifier, *m.Value)
	case m.Value != nil:
		return strings.TrimRight(fmt.Sprintf("of %s%.2f %s", m.Qualifier, *m.Value, m.Units), " ") + " "
	case m.Text != "":
		return fmt.Sprintf("of %s ", m.Text)
	}
	return ""
}

func (r *Report) clock() string {
	return fmt.Sprintf("%s %s", r.ValidLocal.Format("3:04 PM"), r.TZ)
}

func (r *Report) place() string {
	return fmt.Sprintf("%s [%s Co, %s]", TitleCase(r.City), TitleCase(r.County), r.State)
}

func (r *Report) delayedPrefix() string {
	if r.Delayed() {
		return "[delayed report] "
	}
	return ""
}

// Notification renders the report for chat, web and social channels.
func (r *Report) Notification(baseURL string) nws.Notification {
	url := baseURL + r.ProductID
	event := strings.ToLower(r.TypeText)
	remark := ""
	if r.Remark != "" {
		remark = " -- " + r.Remark
	}

	plain := fmt.Sprintf("%s: %s%s %s reports %s %sat %s%s %s",
		r.WFO, r.delayedPrefix(), r.place(), TitleCase(r.Source), event, r.MagString(), r.clock(), remark, url)
	htmlText := fmt.Sprintf(`<p>%s: %s<a href="%s">%s</a> %s reports <strong>%s %s</strong>at %s%s</p>`,
		r.WFO, r.delayedPrefix(), url, html.EscapeString(r.place()), html.EscapeString(TitleCase(r.Source)),
		event, html.EscapeString(r.MagString()), r.clock(), html.EscapeString(remark))
	tweet := nws.Tweet(fmt.Sprintf("%sAt %s, %s %s reports %s %s%s",
		r.delayedPrefix(), r.clock(), r.place(), TitleCase(r.Source), event, strings.TrimSpace(r.MagString()), remark),
		url, nws.MaxTwitterLength)

	return nws.Notification{
		Plain: plain,
		HTML:  htmlText,
		Extras: nws.Extras{
			Channels:  nws.JoinChannels("LSR."+r.WFO, "LSR.ALL", "LSR."+strings.ReplaceAll(r.TypeText, " ", "_")),
			Twitter:   tweet,
			Geometry:  wkt.MarshalString(r.Geometry),
			ProductID: r.ProductID,
		},
	}
}
