package server

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"visitor-logger/internal/model"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRequest 는 net/http 없이 Request 를 흉내 낸다.
type fakeRequest struct {
	headers http.Header
	method  string
	url     string
}

func (f fakeRequest) Header(name string) string { return f.headers.Get(name) }
func (f fakeRequest) Method() string            { return f.method }
func (f fakeRequest) URL() *url.URL {
	u, _ := url.Parse(f.url)
	return u
}

func strPtr(s string) *string { return &s }

func TestBuildRecordAllFields(t *testing.T) {
	now := time.Date(2026, 10, 19, 8, 15, 30, 123456789, time.FixedZone("KST", 9*3600))
	req := fakeRequest{
		headers: http.Header{
			"X-Forwarded-For": {"198.51.100.4, 10.0.0.1"},
			"User-Agent":      {"Mozilla/5.0"},
			"Referer":         {"https://ref.example.com/"},
			"Accept-Language": {"ko-KR,ko;q=0.9"},
		},
		method: http.MethodGet,
		url:    "https://h/a/b?x=1",
	}

	got := BuildRecord(req, now)

	want := &model.VisitorRecord{
		IP:             strPtr("198.51.100.4"),
		UserAgent:      "Mozilla/5.0",
		Referrer:       "https://ref.example.com/",
		AcceptLanguage: "ko-KR,ko;q=0.9",
		Method:         http.MethodGet,
		URL:            "https://h/a/b?x=1",
		Path:           "/a/b?x=1",
		Hostname:       "h",
		Timestamp:      "2026-10-18T23:15:30.123Z",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("record mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildRecordDefaults(t *testing.T) {
	got := BuildRecord(fakeRequest{headers: http.Header{}, method: http.MethodPost, url: "https://h"}, time.Now())

	assert.Nil(t, got.IP)
	assert.Empty(t, got.UserAgent)
	assert.Empty(t, got.Referrer)
	assert.Empty(t, got.AcceptLanguage)
	assert.Equal(t, "https://h/", got.URL)
	assert.Equal(t, "/", got.Path)
	assert.Equal(t, "h", got.Hostname)
}

func TestBuildRecordReferrerAlternateSpelling(t *testing.T) {
	req := fakeRequest{
		headers: http.Header{"Referrer": {"https://alt.example.com/"}},
		method:  http.MethodGet,
		url:     "https://h/",
	}
	assert.Equal(t, "https://alt.example.com/", BuildRecord(req, time.Now()).Referrer)
}

func TestBuildRecordTimestampIsCurrent(t *testing.T) {
	before := time.Now().Truncate(time.Millisecond)
	rec := BuildRecord(FromHTTP(httptest.NewRequest(http.MethodGet, "/", nil)), time.Now())
	after := time.Now()

	ts, err := time.Parse(time.RFC3339Nano, rec.Timestamp)
	require.NoError(t, err)
	assert.False(t, ts.Before(before), "timestamp %s before %s", ts, before)
	assert.False(t, ts.After(after), "timestamp %s after %s", ts, after)
}

func TestFromHTTPResolvesURL(t *testing.T) {
	cases := []struct {
		name     string
		target   string
		host     string
		proto    string
		wantURL  string
		wantPath string
		wantHost string
	}{
		{
			name:     "absolute https target",
			target:   "https://h/a/b?x=1",
			wantURL:  "https://h/a/b?x=1",
			wantPath: "/a/b?x=1",
			wantHost: "h",
		},
		{
			name:     "relative target uses Host",
			target:   "/a?x=1",
			host:     "www.example.com:8080",
			wantURL:  "http://www.example.com:8080/a?x=1",
			wantPath: "/a?x=1",
			wantHost: "www.example.com",
		},
		{
			name:     "forwarded proto https",
			target:   "/p",
			host:     "site.example.com",
			proto:    "https, http",
			wantURL:  "https://site.example.com/p",
			wantPath: "/p",
			wantHost: "site.example.com",
		},
		{
			name:     "escaped path without query",
			target:   "/a%20b",
			host:     "h",
			wantURL:  "http://h/a%20b",
			wantPath: "/a%20b",
			wantHost: "h",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, tc.target, nil)
			if tc.host != "" {
				r.Host = tc.host
			}
			if tc.proto != "" {
				r.Header.Set("X-Forwarded-Proto", tc.proto)
			}

			rec := BuildRecord(FromHTTP(r), time.Now())
			assert.Equal(t, tc.wantURL, rec.URL)
			assert.Equal(t, tc.wantPath, rec.Path)
			assert.Equal(t, tc.wantHost, rec.Hostname)
			assert.Equal(t, http.MethodGet, rec.Method)
		})
	}
}

func TestFromHTTPDoesNotMutateRequestURL(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/a", nil)
	_ = BuildRecord(FromHTTP(r), time.Now())

	assert.Empty(t, r.URL.Scheme)
	assert.Empty(t, r.URL.Host)
}
