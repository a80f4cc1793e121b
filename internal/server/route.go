package server

import (
	"path"
	"strings"
)

// RouteMatcher 는 hook 을 적용할 경로를 고른다.
//
// 패턴 규칙:
//   - "/*"        : 모든 경로
//   - "/blog/*"   : "/blog" 와 그 하위 전체
//   - 그 외       : path.Match (예: "/", "/apply", "/docs/*.html")
type RouteMatcher struct {
	all      bool
	prefixes []string
	patterns []string
}

// NewRouteMatcher 는 패턴 목록으로 matcher 를 만든다. 비어 있으면 "/*".
func NewRouteMatcher(patterns []string) *RouteMatcher {
	if len(patterns) == 0 {
		patterns = []string{"/*"}
	}

	m := &RouteMatcher{}
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		switch {
		case p == "":
			continue
		case p == "/*" || p == "*":
			m.all = true
		case strings.HasSuffix(p, "/*"):
			m.prefixes = append(m.prefixes, strings.TrimSuffix(p, "/*"))
		default:
			m.patterns = append(m.patterns, p)
		}
	}
	return m
}

// Match 는 요청 경로(query 제외)가 패턴 중 하나에 맞는지 여부.
func (m *RouteMatcher) Match(p string) bool {
	if m.all {
		return true
	}
	if p == "" {
		p = "/"
	}
	for _, prefix := range m.prefixes {
		if p == prefix || strings.HasPrefix(p, prefix+"/") {
			return true
		}
	}
	for _, pattern := range m.patterns {
		if ok, err := path.Match(pattern, p); err == nil && ok {
			return true
		}
	}
	return false
}
