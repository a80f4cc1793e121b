package main

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"os/signal"
	"syscall"
	"time"

	"visitor-logger/internal/config"
	"visitor-logger/internal/logger"
	"visitor-logger/internal/metrics"
	"visitor-logger/internal/server"
	"visitor-logger/internal/worker"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

func main() {

	// ====================================================================
	// Config & Logger & Metrics 초기화
	// ====================================================================
	//
	// - Config: 환경변수(+ .env) 기반, 시작 시 한 번만 해석
	// - Logger: zerolog 전역 로거 교체
	// - Metrics: OPS_ADDR 의 /metrics 로 노출
	// ====================================================================
	cfg := config.Load()
	logger.Init(cfg)
	m := metrics.New()

	// ====================================================================
	// Dispatcher (sink 백그라운드 전송)
	// ====================================================================
	//
	// LOG_ENDPOINT 가 비어 있으면 Dispatcher 는 비활성 상태로 만들어지고,
	// hook 은 전송 단계를 조용히 건너뛴다.
	// ====================================================================
	dispatcher := worker.NewDispatcher(worker.Options{
		Endpoint: cfg.LogEndpoint,
		Timeout:  cfg.SinkTimeout,
		Gzip:     cfg.SinkGzip,
		Metrics:  m,
	})
	if !dispatcher.Enabled() {
		log.Info().Msg("LOG_ENDPOINT not set, visitor records will not be sent")
	} else if u, err := url.Parse(cfg.LogEndpoint); err != nil || u.Scheme == "" || u.Host == "" {
		// 잘못된 endpoint 도 전송 실패와 같은 취급: 요청 처리는 계속하고 경고만 남긴다
		log.Warn().Str("endpoint", cfg.LogEndpoint).Msg("LOG_ENDPOINT does not look like an absolute URL, deliveries will fail")
	}

	// ====================================================================
	// HTTP Handler 구성
	// ====================================================================
	//
	//   요청 → VisitorLogger (record 생성 + 전송 예약) → origin (원래 페이지 서빙)
	//
	// origin 은 ORIGIN_URL reverse proxy 또는 STATIC_DIR 정적 파일.
	// ====================================================================
	origin, err := server.NewOrigin(cfg.OriginURL, cfg.StaticDir)
	if err != nil {
		log.Fatal().Err(err).Str("origin", cfg.OriginURL).Msg("invalid ORIGIN_URL")
	}

	visitors := server.NewVisitorLogger(dispatcher,
		server.WithRoutes(server.NewRouteMatcher(cfg.PathPatterns)),
		server.WithMetrics(m),
	)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      visitors.Middleware(origin),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ops := &http.Server{
		Addr:         cfg.OpsAddr,
		Handler:      server.NewOpsHandler(m),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	// ====================================================================
	// 서버 시작 & Graceful Shutdown
	// ====================================================================
	//
	// SIGTERM 수신 시:
	//   1) HTTP 서버들 종료 (새 요청 받지 않음)
	//   2) Dispatcher 종료: 이미 시작된 sink 전송이 끝날 때까지 대기
	//
	// 응답이 나간 뒤에도 전송이 끝날 시간을 주는 단계가 2) 이다.
	// 전체 대기 시간은 SHUTDOWN_TIMEOUT 으로 제한한다.
	// ====================================================================
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("addr", cfg.HTTPAddr).Strs("paths", cfg.PathPatterns).Msg("visitor logger listening")
		return listen(srv)
	})
	g.Go(func() error {
		log.Info().Str("addr", cfg.OpsAddr).Msg("ops server listening")
		return listen(ops)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutdown signal received")

		sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(sctx); err != nil {
			log.Error().Err(err).Msg("http shutdown")
		}
		if err := ops.Shutdown(sctx); err != nil {
			log.Error().Err(err).Msg("ops shutdown")
		}

		log.Info().Msg("waiting for in-flight visitor records...")
		if err := dispatcher.Shutdown(sctx); err != nil {
			log.Warn().Err(err).Msg("dispatcher shutdown timed out")
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("server terminated")
	}
	log.Info().Msg("shutdown complete")
}

// listen 은 ListenAndServe 의 정상 종료(ErrServerClosed)를 nil 로 바꾼다.
func listen(s *http.Server) error {
	if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
