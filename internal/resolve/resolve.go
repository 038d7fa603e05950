// Package resolve extracts canonical page identifiers from raw IDs or
// navigational Confluence URLs.
package resolve

import (
	"fmt"
	"net/url"
	"regexp"
)

// pagePathRe matches the navigational URL shape Confluence uses for pages:
// /wiki/spaces/<space-key>/pages/<id>/<title-slug>
var pagePathRe = regexp.MustCompile(`^/wiki/spaces/[a-zA-Z0-9]+/pages/([0-9]+)(/.*)?$`)

// MalformedURLError reports a URL whose path does not carry a page identifier.
type MalformedURLError struct {
	URL string
}

func (e *MalformedURLError) Error() string {
	return fmt.Sprintf("no page id in url %q: expected path /wiki/spaces/<key>/pages/<id>/...", e.URL)
}

// FromURL extracts the page ID from a navigational page URL. It is purely
// syntactic; no request is made to verify the page exists.
func FromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", &MalformedURLError{URL: raw}
	}

	m := pagePathRe.FindStringSubmatch(u.Path)
	if m == nil {
		return "", &MalformedURLError{URL: raw}
	}
	return m[1], nil
}

// FromID returns the ID unchanged. No digit validation happens here; an
// invalid ID is rejected by the store on the first request that uses it.
func FromID(id string) string {
	return id
}
