package server

import (
	"context"
	"net/http"
	"time"

	"visitor-logger/internal/metrics"
	"visitor-logger/internal/model"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

// Sink 는 record 를 백그라운드로 내보내는 대상.
// worker.Dispatcher 가 구현한다.
type Sink interface {
	Enabled() bool
	Dispatch(ctx context.Context, rec *model.VisitorRecord)
}

// VisitorLogger
//
// 페이지 서빙 앞단에서 모든 요청을 가로채는 hook.
//
// 요청 1건 처리 순서:
//  1. VisitorRecord 생성
//  2. sink 가 설정되어 있으면 백그라운드 전송 예약 (기다리지 않음)
//  3. 다음 handler 호출 (정확히 1번)
//
// 응답은 다음 handler 가 쓴 그대로 나간다.
// hook 은 응답을 막거나, 바꾸거나, 지연시키지 않는다.
type VisitorLogger struct {
	sink    Sink
	routes  *RouteMatcher
	metrics *metrics.Metrics
	log     *zerolog.Logger
	now     func() time.Time
}

// Option 은 VisitorLogger 선택 설정.
type Option func(*VisitorLogger)

// WithRoutes 는 hook 을 적용할 경로를 제한한다 (기본: 전체).
func WithRoutes(m *RouteMatcher) Option {
	return func(v *VisitorLogger) { v.routes = m }
}

// WithMetrics 는 지표를 기록할 Metrics 를 지정한다.
func WithMetrics(m *metrics.Metrics) Option {
	return func(v *VisitorLogger) { v.metrics = m }
}

// WithLogger 는 진단 로그용 로거를 지정한다 (기본: 전역 zerolog).
func WithLogger(l *zerolog.Logger) Option {
	return func(v *VisitorLogger) { v.log = l }
}

// WithClock 은 timestamp 용 시계를 바꾼다.
func WithClock(now func() time.Time) Option {
	return func(v *VisitorLogger) { v.now = now }
}

func NewVisitorLogger(sink Sink, opts ...Option) *VisitorLogger {
	v := &VisitorLogger{
		sink: sink,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.routes == nil {
		v.routes = NewRouteMatcher(nil)
	}
	if v.metrics == nil {
		v.metrics = metrics.New()
	}
	if v.log == nil {
		v.log = &zlog.Logger
	}
	return v
}

// Handle 은 record 를 만들고 전송을 예약한 뒤 next 를 호출한다.
// sink 가 없거나 비활성이면 전송 단계는 조용히 건너뛴다.
func (v *VisitorLogger) Handle(ctx context.Context, req Request, next func()) {
	rec := BuildRecord(req, v.now())
	v.metrics.RequestsTotal.Inc()

	v.log.Debug().
		Str("method", rec.Method).
		Str("path", rec.Path).
		Msg("visitor logger executed")

	if v.sink != nil && v.sink.Enabled() {
		v.sink.Dispatch(ctx, rec)
	}

	next()
}

// Middleware 는 VisitorLogger 를 net/http 미들웨어로 감싼다.
// 경로 패턴에 맞지 않는 요청은 record 없이 바로 next 로 넘긴다.
func (v *VisitorLogger) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !v.routes.Match(r.URL.Path) {
			v.metrics.RequestsSkippedTotal.Inc()
			next.ServeHTTP(w, r)
			return
		}

		v.Handle(r.Context(), FromHTTP(r), func() {
			next.ServeHTTP(w, r)
		})
	})
}
