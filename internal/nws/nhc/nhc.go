// Package nhc classifies tropical cyclone advisories.
package nhc

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/couchcryptid/nws-text-ingest/internal/nws"
)

// TweetLength bounds the tropical tweet template.
const TweetLength = 144

var (
	headerRe   = regexp.MustCompile(`(POST-TROPICAL CYCLONE|TROPICAL STORM|HURRICANE|TROPICAL DEPRESSION|POTENTIAL TROPICAL CYCLONE|REMNANTS OF) ([A-Z0-9\- ]+?) (DISCUSSION|INTERMEDIATE ADVISORY|FORECAST/ADVISORY|ADVISORY) NUMBER +([0-9]+[A-Z]?)`)
	headlineRe = regexp.MustCompile(`\.\.\.([^.].*?)\.\.\.`)
)

var centerNames = map[string]string{
	"KNHC": "National Hurricane Center",
	"PHFO": "Central Pacific Hurricane Center",
	"PGUM": "NWS Guam",
}

// Advisory is the classification of a tropical product.
type Advisory struct {
	Classification string
	Name           string
	Type           string
	Number         string
	Headline       string
	Center         string
	AFOS           string
	ProductID      string
}

// Handles reports whether the AFOS id is a tropical advisory product.
func Handles(prod *nws.Product) bool {
	switch prod.AFOSPrefix() {
	case "TCP", "TCD", "TCM", "TCU":
		return true
	}
	return false
}

// Parse extracts classification, name, advisory type and number from the
// first matching header in the product.
func Parse(prod *nws.Product) (*Advisory, error) {
	text := strings.ToUpper(strings.Join(strings.Fields(prod.Text), " "))
	m := headerRe.FindStringSubmatchIndex(text)
	if m == nil {
		return nil, fmt.Errorf("%w: no tropical advisory header in %s", nws.ErrHeaderMissing, prod.AFOS)
	}
	a := &Advisory{
		Classification: text[m[2]:m[3]],
		Name:           text[m[4]:m[5]],
		Type:           text[m[6]:m[7]],
		Number:         text[m[8]:m[9]],
		Center:         prod.Source,
		AFOS:           prod.AFOS,
		ProductID:      prod.ProductID(),
	}
	if h := headlineRe.FindStringSubmatch(text[m[1]:]); h != nil {
		a.Headline = strings.TrimSpace(h[1])
	}
	return a, nil
}

// CenterName is the spelled out issuing center.
func (a *Advisory) CenterName() string {
	if name, ok := centerNames[a.Center]; ok {
		return name
	}
	return a.Center
}

// Notification renders the advisory announcement.
func (a *Advisory) Notification(baseURL string) nws.Notification {
	url := baseURL + a.ProductID
	storm := a.Classification + " " + a.Name
	plain := fmt.Sprintf("%s issues %s %s for %s %s", a.CenterName(), a.Type, a.Number, storm, url)

	tweet := fmt.Sprintf("%s %s %s", storm, a.Type, a.Number)
	if a.Headline != "" {
		tweet += ": " + a.Headline
	}
	return nws.Notification{
		Plain: plain,
		HTML: fmt.Sprintf(`<p>%s issues <a href="%s">%s %s</a> for %s</p>`,
			a.CenterName(), url, a.Type, a.Number, storm),
		Extras: nws.Extras{
			Channels:  nws.JoinChannels(a.AFOS, "NHC.ALL", "NHC."+a.Center),
			Twitter:   nws.Tweet(tweet, url, TweetLength),
			ProductID: a.ProductID,
		},
	}
}
