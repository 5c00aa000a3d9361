package metar

import (
	"fmt"

	"github.com/paulmach/orb/encoding/wkt"

	"github.com/couchcryptid/nws-text-ingest/internal/nws"
	"github.com/couchcryptid/nws-text-ingest/internal/nws/compass"
)

// DefaultWindThreshold is the gust or peak wind, in knots, that triggers an
// alert.
const DefaultWindThreshold = 50

const knotsToMPH = 1.15078

// WindAlerter announces strong gusts. Each alert carries a throttle key of
// station, speed and time so it is delivered once.
type WindAlerter struct {
	threshold int
	baseURL   string
}

// NewWindAlerter creates a WindAlerter. A threshold of zero selects
// DefaultWindThreshold.
func NewWindAlerter(threshold int, baseURL string) *WindAlerter {
	if threshold <= 0 {
		threshold = DefaultWindThreshold
	}
	return &WindAlerter{threshold: threshold, baseURL: baseURL}
}

// Check returns a notification when the observation's gust or peak wind
// reaches the threshold.
func (w *WindAlerter) Check(o *Observation) *nws.Notification {
	speed, at := o.Report.MaxWind()
	if speed < w.threshold {
		return nil
	}

	label, dir := "gust", o.Report.WindDir
	if o.Report.PeakWind != nil && o.Report.PeakWind.Speed == speed {
		label, dir = "peak gust", &o.Report.PeakWind.Dir
	}
	from := ""
	if dir != nil {
		from = " from " + compass.Label(float64(*dir))
	}
	name := o.Report.Station
	if o.Location.Name != "" {
		name = fmt.Sprintf("%s [%s]", o.Location.Name, o.Report.Station)
	}
	url := w.baseURL + o.ProductID
	msg := fmt.Sprintf("%s %s of %d knots (%.1f mph)%s @ %sZ", name, label, speed,
		float64(speed)*knotsToMPH, from, at.Format("1504"))

	n := &nws.Notification{
		Plain:       fmt.Sprintf("%s %s %s", msg, o.Report.Code, url),
		HTML:        fmt.Sprintf(`<p><a href="%s">%s</a> %s</p>`, url, msg, o.Report.Code),
		ThrottleKey: fmt.Sprintf("wind|%s|%d|%s", o.Report.Station, speed, at.Format("200601021504")),
		Extras: nws.Extras{
			Channels:  nws.JoinChannels(o.Location.WFO, "METAR.WIND", "METAR."+o.Report.Station),
			Twitter:   nws.Tweet(msg, url, nws.MaxTwitterLength),
			ProductID: o.ProductID,
		},
	}
	if o.Located {
		n.Extras.Geometry = wkt.MarshalString(o.Location.Point())
	}
	return n
}
