package nws

import (
	"strings"
	"unicode/utf8"
)

// MaxTwitterLength bounds Extras.Twitter.
const MaxTwitterLength = 280

// DefaultBaseURL prefixes product ids in notification links.
const DefaultBaseURL = "https://mesonet.agron.iastate.edu/p.php?pid="

// Notification is one outbound message produced by a product.
type Notification struct {
	Plain  string `json:"plain"`
	HTML   string `json:"html"`
	Extras Extras `json:"extras"`

	// ThrottleKey, when set, limits the notification to one delivery per
	// key. It is claimed only after the product's records are stored.
	ThrottleKey string `json:"-"`
}

// Extras carries routing and rendering hints alongside a notification.
type Extras struct {
	Channels  string `json:"channels"`
	Twitter   string `json:"twitter,omitempty"`
	Geometry  string `json:"geometry,omitempty"`
	ProductID string `json:"product_id"`
}

// JoinChannels de-duplicates channels, keeping first occurrence order.
func JoinChannels(channels ...string) string {
	seen := make(map[string]bool, len(channels))
	out := make([]string, 0, len(channels))
	for _, c := range channels {
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return strings.Join(out, ",")
}

// ChannelList splits Extras.Channels.
func (e Extras) ChannelList() []string {
	if e.Channels == "" {
		return nil
	}
	return strings.Split(e.Channels, ",")
}

// Truncate shortens s to at most n runes, ending with "..." when cut.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	if n <= 3 {
		return string([]rune(s)[:n])
	}
	return strings.TrimRight(string([]rune(s)[:n-3]), " ") + "..."
}

// Tweet joins text and url, truncating text so the result fits limit.
func Tweet(text, url string, limit int) string {
	room := limit - utf8.RuneCountInString(url) - 1
	if room < 4 {
		return Truncate(url, limit)
	}
	return Truncate(text, room) + " " + url
}
