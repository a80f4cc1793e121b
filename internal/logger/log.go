// internal/logger/log.go
package logger

import (
	"io"
	"os"
	"strings"

	"visitor-logger/internal/config"

	stdlog "log"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

// Init
//
// 애플리케이션 시작 시 한 번만 호출한다.
// New 로 만든 로거를 전역 zerolog 로거로 교체하고,
// 표준 라이브러리 log 출력도 zerolog 로 돌린다.
//
// 사용 예:
//
//	logger.Init(cfg)
//	log.Info().Msg("server started")
func Init(cfg config.Config) {
	var w io.Writer = os.Stdout
	if cfg.LogPretty {
		// 로컬 개발: 색상 + 시간만 표시
		w = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: "15:04:05",
		}
	}

	zlog.Logger = New(cfg, w)

	// zerolog 가 시간을 따로 찍으므로 기본 flag 제거
	stdlog.SetFlags(0)
	stdlog.SetOutput(zlog.Logger)
}

// New
//
// cfg 기준으로 zerolog.Logger 를 만든다.
//
//  1. 레벨: LOG_LEVEL 파싱 실패 시 info
//  2. 공통 필드: service, instance
//  3. 샘플링: LOG_SAMPLE_N > 1 이면 debug/info 만 N 개 중 1 개 기록.
//     warn/error (sink 전송 실패 등)는 절대 버리지 않는다.
func New(cfg config.Config, w io.Writer) zerolog.Logger {
	level := zerolog.InfoLevel
	if l, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.LogLevel))); err == nil && l != zerolog.NoLevel {
		level = l
	}
	zerolog.SetGlobalLevel(level)

	base := zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Str("service", cfg.ServiceName).
		Str("instance", cfg.InstanceID).
		Logger()

	if cfg.LogSampleN > 1 {
		return base.Sample(&zerolog.LevelSampler{
			DebugSampler: &zerolog.BasicSampler{N: cfg.LogSampleN},
			InfoSampler:  &zerolog.BasicSampler{N: cfg.LogSampleN},
		})
	}
	return base
}
