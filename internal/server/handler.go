package server

import (
	"io"
	"net/http"
	"net/http/httputil"
	"net/url"

	"visitor-logger/internal/metrics"

	zlog "github.com/rs/zerolog/log"
)

// NewOpsHandler
//
// 운영용 엔드포인트 (페이지 서빙 주소와 분리된 OPS_ADDR 에서 제공):
//   - GET /health  : LB health check 용, "ok"
//   - GET /metrics : Prometheus exposition
//
// 페이지 서빙 쪽에 두면 hook 이 health check 까지 기록하므로 분리한다.
func NewOpsHandler(m *metrics.Metrics) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", HandleHealth)
	mux.Handle("GET /metrics", m.Handler())
	return mux
}

// HandleHealth 는 단순 문자열로 살아 있음을 알린다.
func HandleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok")
}

// NewOrigin
//
// hook 다음 단계(continuation)인 "원래의 페이지 서빙"을 만든다.
//   - originURL 이 있으면 해당 origin 으로 reverse proxy
//   - 없으면 staticDir 정적 파일 서빙
func NewOrigin(originURL, staticDir string) (http.Handler, error) {
	if originURL == "" {
		return http.FileServer(http.Dir(staticDir)), nil
	}

	target, err := url.Parse(originURL)
	if err != nil {
		return nil, err
	}

	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		zlog.Error().Err(err).Str("origin", target.Host).Str("path", r.URL.Path).Msg("origin request failed")
		w.WriteHeader(http.StatusBadGateway)
	}
	return proxy, nil
}
