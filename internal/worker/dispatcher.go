// internal/worker/dispatcher.go
package worker

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"visitor-logger/internal/metrics"
	"visitor-logger/internal/model"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

// DefaultTimeout 는 Options.Timeout 이 0 일 때 쓰는 전송 1회 timeout.
const DefaultTimeout = 5 * time.Second

// 응답 body 는 사용하지 않는다. keep-alive 커넥션 재사용을 위해
// 이 크기까지만 읽어서 버린다.
const maxDrainBytes = 4 * 1024

// StatusError 는 sink 가 2xx 가 아닌 응답을 준 경우의 에러.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("sink responded with status %d", e.StatusCode)
}

// Options 는 Dispatcher 생성 옵션.
type Options struct {
	Endpoint string        // 비어 있으면 Dispatcher 는 아무것도 하지 않는다
	Timeout  time.Duration // 전송 1회 timeout (0 이면 DefaultTimeout)
	Gzip     bool          // body gzip 여부

	Client  *http.Client     // nil 이면 전용 client 생성
	Metrics *metrics.Metrics // nil 이면 내부 전용 Metrics
	Logger  *zerolog.Logger  // nil 이면 전역 zerolog 로거
}

// Dispatcher 는 VisitorRecord 를 sink 로 보내는 백그라운드 전송기.
//
//   - Dispatch: 직렬화는 호출 goroutine 에서 끝내고, 전송만 goroutine 으로 띄운다
//   - 요청 context 의 취소와 분리(context.WithoutCancel)되어 응답이 나간 뒤에도 전송은 계속된다
//   - 재시도, 큐, 배치 없음. 실패는 로그와 metrics 에만 남는다
//   - Shutdown: 새 전송을 막고 진행 중인 전송이 끝날 때까지 기다린다
type Dispatcher struct {
	endpoint string
	timeout  time.Duration
	encoder  *Encoder
	client   *http.Client
	metrics  *metrics.Metrics
	log      *zerolog.Logger

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(opts Options) *Dispatcher {
	d := &Dispatcher{
		endpoint: opts.Endpoint,
		timeout:  opts.Timeout,
		encoder:  NewEncoder(opts.Gzip),
		client:   opts.Client,
		metrics:  opts.Metrics,
		log:      opts.Logger,
	}
	if d.timeout <= 0 {
		d.timeout = DefaultTimeout
	}
	if d.client == nil {
		d.client = &http.Client{Transport: http.DefaultTransport.(*http.Transport).Clone()}
	}
	if d.metrics == nil {
		d.metrics = metrics.New()
	}
	if d.log == nil {
		d.log = &zlog.Logger
	}
	return d
}

// Enabled 는 sink 가 설정되어 있는지 여부.
func (d *Dispatcher) Enabled() bool {
	return d.endpoint != ""
}

// Dispatch 는 record 를 직렬화한 뒤 백그라운드 전송을 시작하고 바로 반환한다.
// 전송 결과는 기다리지 않으며 호출자에게 어떤 에러도 돌려주지 않는다.
func (d *Dispatcher) Dispatch(ctx context.Context, rec *model.VisitorRecord) {
	if !d.Enabled() {
		return
	}

	body, err := d.encoder.Encode(rec)
	if err != nil {
		d.metrics.DispatchFailuresTotal.WithLabelValues(metrics.ReasonEncode).Inc()
		d.log.Warn().Err(err).Msg("visitor record encode failed")
		return
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.metrics.DispatchDroppedTotal.Inc()
		d.log.Warn().Msg("dispatcher closed, visitor record dropped")
		return
	}
	d.wg.Add(1)
	d.mu.Unlock()

	d.metrics.DispatchTotal.Inc()

	// 요청이 끝나(응답 flush) context 가 취소되어도 전송은 계속되어야 한다.
	// 수명은 Send 안의 timeout 과 Shutdown 대기로만 제한된다.
	bg := context.WithoutCancel(ctx)

	go func() {
		defer d.wg.Done()

		d.metrics.DispatchInFlight.Inc()
		defer d.metrics.DispatchInFlight.Dec()

		if err := d.Send(bg, body); err != nil {
			d.log.Warn().Err(err).Str("endpoint", d.endpoint).Msg("visitor log delivery failed")
		}
	}()
}

// Send
// ---------
// 인코딩된 body 로 sink 에 POST 를 1회 수행한다.
// - 호출 1회당 timeout 적용
// - 재시도는 하지 않는다
// - 실패 사유별로 metrics 를 올리고 에러를 반환한다
func (d *Dispatcher) Send(ctx context.Context, body []byte) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	start := time.Now()
	defer func() {
		d.metrics.DispatchDuration.Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, bytes.NewReader(body))
	if err != nil {
		d.metrics.DispatchFailuresTotal.WithLabelValues(metrics.ReasonRequest).Inc()
		return fmt.Errorf("build sink request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if d.encoder.Gzip() {
		req.Header.Set("Content-Encoding", "gzip")
	}

	resp, err := d.client.Do(req)
	if err != nil {
		d.metrics.DispatchFailuresTotal.WithLabelValues(metrics.ReasonTransport).Inc()
		return fmt.Errorf("post to sink: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		d.metrics.DispatchFailuresTotal.WithLabelValues(metrics.ReasonStatus).Inc()
		return &StatusError{StatusCode: resp.StatusCode}
	}

	d.log.Debug().Int("status", resp.StatusCode).Msg("visitor record delivered")
	return nil
}

// Shutdown 은 이후의 Dispatch 를 막고(drop 처리),
// 진행 중인 전송이 모두 끝나거나 ctx 가 만료될 때까지 기다린다.
// 여러 번 호출해도 안전하다.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
