package server

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"visitor-logger/internal/model"
)

// Request 는 hook 이 요청에서 필요로 하는 최소 기능.
// net/http 없이도 record 생성 로직을 테스트할 수 있게 분리한다.
type Request interface {
	Header(name string) string
	Method() string
	URL() *url.URL // scheme/host 까지 채워진 절대 URL
}

// httpRequest 는 *http.Request 를 Request 로 감싼다.
type httpRequest struct {
	r *http.Request
}

// FromHTTP 는 서버 측 *http.Request 를 Request 로 변환한다.
func FromHTTP(r *http.Request) Request {
	return httpRequest{r: r}
}

func (h httpRequest) Header(name string) string { return h.r.Header.Get(name) }
func (h httpRequest) Method() string            { return h.r.Method }

// URL
//
// 서버가 받은 r.URL 은 보통 path 만 들어 있는 상대 URL 이다.
// scheme / host 를 채워 브라우저가 보는 전체 URL 로 복원한다.
//   - scheme: TLS 이거나 X-Forwarded-Proto 첫 값이 https 면 https
//   - host: r.Host
func (h httpRequest) URL() *url.URL {
	u := *h.r.URL
	if u.Scheme == "" {
		u.Scheme = "http"
		if h.r.TLS != nil || forwardedProto(h.r) == "https" {
			u.Scheme = "https"
		}
	}
	if u.Host == "" {
		u.Host = h.r.Host
	}
	return &u
}

func forwardedProto(r *http.Request) string {
	first, _, _ := strings.Cut(r.Header.Get("X-Forwarded-Proto"), ",")
	return strings.ToLower(strings.TrimSpace(first))
}

// BuildRecord
// ------------------------------------------------------------
// 요청 1건으로 VisitorRecord 를 만든다.
// 선택 헤더는 없으면 "" 로 채우고, IP 만 nil(null) 을 허용한다.
// 헤더가 이상해도 해당 필드만 비고, 요청 처리는 멈추지 않는다.
func BuildRecord(req Request, now time.Time) *model.VisitorRecord {
	u := *req.URL()
	if u.Path == "" && u.RawPath == "" && u.Opaque == "" {
		u.Path = "/"
	}

	referrer := req.Header("Referer")
	if referrer == "" {
		referrer = req.Header("Referrer")
	}

	path := u.EscapedPath()
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}

	return &model.VisitorRecord{
		IP:             ResolveIP(req.Header),
		UserAgent:      req.Header("User-Agent"),
		Referrer:       referrer,
		AcceptLanguage: req.Header("Accept-Language"),
		Method:         req.Method(),
		URL:            u.String(),
		Path:           path,
		Hostname:       u.Hostname(),
		Timestamp:      now.UTC().Format(model.TimestampLayout),
	}
}
