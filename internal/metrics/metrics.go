package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 전송 실패 사유 (visitor_dispatch_failures_total 의 reason 라벨)
const (
	ReasonEncode    = "encode"    // record 직렬화 실패
	ReasonRequest   = "request"   // 요청 생성 실패 (잘못된 endpoint 등)
	ReasonTransport = "transport" // 연결 실패, timeout
	ReasonStatus    = "status"    // non-2xx 응답
)

// Metrics 는 hook 과 sink 전송 상태를 나타내는 지표 모음이다.
// 전역 DefaultRegisterer 대신 인스턴스별 Registry 를 쓰므로
// 테스트마다 독립된 Metrics 를 만들 수 있다.
type Metrics struct {
	Registry *prometheus.Registry

	// ======================
	// HTTP 레벨 지표
	// ======================

	// RequestsTotal
	// - hook 이 가로챈(경로 패턴에 매칭된) 요청 수.
	// - 응답 성공/실패와 무관하게 record 를 만들 때마다 1씩 증가.
	RequestsTotal prometheus.Counter

	// RequestsSkippedTotal
	// - 경로 패턴에 매칭되지 않아 hook 없이 바로 넘긴 요청 수.
	RequestsSkippedTotal prometheus.Counter

	// ======================
	// Sink 전송 지표
	// ======================

	// DispatchTotal
	// - 백그라운드 전송을 시작한 횟수 (요청당 최대 1회, 재시도 없음).
	DispatchTotal prometheus.Counter

	// DispatchFailuresTotal
	// - reason 별 전송 실패 횟수. 실패는 로그와 이 카운터에만 남는다.
	DispatchFailuresTotal *prometheus.CounterVec

	// DispatchDroppedTotal
	// - shutdown 이후 들어와 전송을 시작하지 못한 record 수.
	DispatchDroppedTotal prometheus.Counter

	// DispatchInFlight
	// - 현재 진행 중인 백그라운드 전송 수 (gauge).
	DispatchInFlight prometheus.Gauge

	// DispatchDuration
	// - 전송 1회 소요 시간 (성공/실패 모두).
	DispatchDuration prometheus.Histogram
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),

		RequestsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "visitor_requests_total",
			Help: "Total number of requests intercepted by the visitor logger",
		}),
		RequestsSkippedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "visitor_requests_skipped_total",
			Help: "Total number of requests not matching any path pattern",
		}),
		DispatchTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "visitor_dispatch_total",
			Help: "Total number of visitor records sent to the sink",
		}),
		DispatchFailuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "visitor_dispatch_failures_total",
				Help: "Total number of failed sink deliveries",
			},
			[]string{"reason"},
		),
		DispatchDroppedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "visitor_dispatch_dropped_total",
			Help: "Total number of visitor records dropped after shutdown",
		}),
		DispatchInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "visitor_dispatch_in_flight",
			Help: "Number of sink deliveries currently in flight",
		}),
		DispatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "visitor_dispatch_duration_seconds",
			Help:    "Duration of sink deliveries",
			Buckets: prometheus.DefBuckets,
		}),
	}

	m.Registry.MustRegister(
		m.RequestsTotal,
		m.RequestsSkippedTotal,
		m.DispatchTotal,
		m.DispatchFailuresTotal,
		m.DispatchDroppedTotal,
		m.DispatchInFlight,
		m.DispatchDuration,
	)

	// 실패 사유 라벨은 0 으로 미리 노출해 둔다
	for _, r := range []string{ReasonEncode, ReasonRequest, ReasonTransport, ReasonStatus} {
		m.DispatchFailuresTotal.WithLabelValues(r)
	}

	return m
}

// Handler 는 /metrics 용 Prometheus exposition 핸들러를 반환한다.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
