package analyzer

import (
	"net/url"
	"sort"
	"strings"

	"github.com/lotas/tabdedupe/internal/types"
)

// Canonicalize maps a tab URL to the key used to decide whether two tabs are
// duplicates under mode. Unparseable input is returned as-is.
//
// The scheme and fragment never take part in the key. A scheme's default
// port is dropped; any other port and percent-encoding are kept as written,
// so a.com:8080 never matches a.com. Opaque URLs such as about:newtab use the
// text after the colon as their path.
func Canonicalize(rawURL string, mode types.MatchMode) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" {
		return rawURL
	}

	host := strings.ToLower(u.Host)
	if port := u.Port(); port != "" && defaultPorts[strings.ToLower(u.Scheme)] == port {
		host = strings.TrimSuffix(host, ":"+port)
	}
	if mode == types.MatchHostPathNoWWW {
		host = strings.TrimPrefix(host, "www.")
	}
	path := u.EscapedPath()
	if u.Opaque != "" {
		path = u.Opaque
	}
	path = strings.TrimRight(path, "/")

	switch mode {
	case types.MatchHost:
		return host
	case types.MatchHostPath, types.MatchHostPathNoWWW:
		return host + path
	}
	// The "?" is kept even when the query is empty, so a.com/x and a.com/x?
	// share a key but neither matches the host+path form.
	return host + path + "?" + normalizeQuery(u.RawQuery)
}

var defaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
	"ws":    "80",
	"wss":   "443",
	"ftp":   "21",
}

type queryPair struct {
	key, value string
}

// normalizeQuery decodes the query into ordered pairs, sorts them by key then
// value and joins them back without re-encoding.
func normalizeQuery(raw string) string {
	var pairs []queryPair
	for _, piece := range strings.Split(raw, "&") {
		if piece == "" {
			continue
		}
		k, v, _ := strings.Cut(piece, "=")
		pairs = append(pairs, queryPair{key: unescapeQuery(k), value: unescapeQuery(v)})
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		if pairs[i].key != pairs[j].key {
			return pairs[i].key < pairs[j].key
		}
		return pairs[i].value < pairs[j].value
	})

	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = p.key + "=" + p.value
	}
	return strings.Join(parts, "&")
}

// unescapeQuery decodes like a browser's URLSearchParams: "+" is a space and
// malformed escapes are kept verbatim.
func unescapeQuery(s string) string {
	decoded, err := url.QueryUnescape(s)
	if err != nil {
		return strings.ReplaceAll(s, "+", " ")
	}
	return decoded
}
