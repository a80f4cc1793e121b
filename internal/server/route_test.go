package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRouteMatcherDefaultMatchesAll(t *testing.T) {
	m := NewRouteMatcher(nil)

	for _, p := range []string{"/", "", "/a", "/a/b/c", "/favicon.ico"} {
		assert.True(t, m.Match(p), p)
	}
}

func TestRouteMatcherPatterns(t *testing.T) {
	m := NewRouteMatcher([]string{"/", "/apply", "/blog/*", "/docs/*.html", "  "})

	cases := map[string]bool{
		"/":               true,
		"":                true,
		"/apply":          true,
		"/apply/now":      false,
		"/blog":           true,
		"/blog/":          true,
		"/blog/2026/post": true,
		"/blogger":        false,
		"/docs/a.html":    true,
		"/docs/a/b.html":  false,
		"/about":          false,
	}

	for p, want := range cases {
		assert.Equal(t, want, m.Match(p), p)
	}
}

func TestRouteMatcherInvalidPatternNeverMatches(t *testing.T) {
	m := NewRouteMatcher([]string{"/[bad"})
	assert.False(t, m.Match("/[bad"))
}
