package resolve

import (
	"errors"
	"testing"

	"github.com/go-playground/assert/v2"
)

func TestFromURL(t *testing.T) {
	cases := []struct {
		name string
		url  string
		want string
	}{
		{"full page url", "https://example.atlassian.net/wiki/spaces/ENG/pages/123456/Team+Notes", "123456"},
		{"path only", "/wiki/spaces/OPS/pages/42/Runbook", "42"},
		{"trailing slash after id", "https://example.atlassian.net/wiki/spaces/ENG/pages/9/", "9"},
		{"no title segment", "https://example.atlassian.net/wiki/spaces/ENG/pages/777", "777"},
		{"query string ignored", "https://example.atlassian.net/wiki/spaces/A1/pages/31415/X?focusedCommentId=2", "31415"},
		{"slug with nested slashes", "/wiki/spaces/DOCS/pages/808/a/b/c", "808"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := FromURL(tc.url)
			if err != nil {
				t.Fatalf("FromURL(%q) returned error: %v", tc.url, err)
			}
			assert.Equal(t, got, tc.want)
		})
	}
}

func TestFromURLMalformed(t *testing.T) {
	cases := []struct {
		name string
		url  string
	}{
		{"empty", ""},
		{"no pages segment", "https://example.atlassian.net/wiki/spaces/ENG/overview"},
		{"non-digit id", "https://example.atlassian.net/wiki/spaces/ENG/pages/abc/Notes"},
		{"missing space key", "https://example.atlassian.net/wiki/spaces//pages/123/Notes"},
		{"space key with dash", "/wiki/spaces/EN-G/pages/123/Notes"},
		{"wrong prefix", "https://example.atlassian.net/display/ENG/pages/123"},
		{"pages not after spaces", "/wiki/pages/123/Notes"},
		{"unparseable url", "http://%zz"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := FromURL(tc.url)
			if err == nil {
				t.Fatalf("FromURL(%q) succeeded, want MalformedURLError", tc.url)
			}
			var malformed *MalformedURLError
			if !errors.As(err, &malformed) {
				t.Fatalf("FromURL(%q) error = %T, want *MalformedURLError", tc.url, err)
			}
			assert.Equal(t, malformed.URL, tc.url)
		})
	}
}

func TestFromID(t *testing.T) {
	// Identity, including values the store itself would reject.
	for _, id := range []string{"123456", "", "not-a-number"} {
		assert.Equal(t, FromID(id), id)
	}
}
