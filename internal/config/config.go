// internal/config/config.go
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config
//
// 프로세스 시작 시점에 한 번만 만들어지는 불변(read-only) 설정.
// handler 는 환경변수를 직접 읽지 않고, 여기서 해석된 값을 생성자로 전달받는다.
type Config struct {

	// ---------------------------
	// Sink (방문자 기록 수신 엔드포인트)
	// ---------------------------

	LogEndpoint string        // 방문자 기록을 POST 할 URL. 비어 있으면 dispatch 자체를 건너뜀
	SinkTimeout time.Duration // 전송 1회당 timeout
	SinkGzip    bool          // true 면 body 를 gzip 으로 보낸다 (Content-Encoding: gzip)

	// ---------------------------
	// Hook 적용 범위
	// ---------------------------

	PathPatterns []string // hook 을 태울 경로 패턴 목록 (기본 "/*")

	// ---------------------------
	// 서버 / 네트워크
	// ---------------------------

	HTTPAddr        string        // 실제 페이지 서빙 주소 (예: ":8080")
	OpsAddr         string        // /health, /metrics 주소 (예: ":9090")
	OriginURL       string        // 설정 시 reverse proxy 대상
	StaticDir       string        // OriginURL 이 없을 때 정적 파일 루트
	ShutdownTimeout time.Duration // SIGTERM 후 HTTP 종료 + in-flight 전송 대기 한도

	// ---------------------------
	// 로깅
	// ---------------------------

	ServiceName string // 모든 로그에 붙는 service 필드
	InstanceID  string // 호스트명 기반, 실패 시 랜덤 hex
	LogLevel    string // debug / info / warn / error
	LogPretty   bool   // true 면 사람이 읽기 좋은 console 출력
	LogSampleN  uint32 // >1 이면 debug/info 로그를 N 개 중 1 개만 기록
}

// Load
//
// .env 파일(있다면)과 환경변수를 읽어 Config 를 만든다.
// 형식이 잘못된 값이 있으면 즉시 프로세스를 종료한다(fail-fast).
func Load() Config {
	// .env 는 로컬 개발용. 없으면 그냥 환경변수만 사용한다.
	_ = godotenv.Load()

	cfg, err := Parse(os.LookupEnv)
	if err != nil {
		log.Fatalf("invalid config: %v", err)
	}
	return cfg
}

// Parse 는 lookup 함수로부터 Config 를 해석한다.
// 테스트에서는 map 기반 lookup 을 넘긴다.
func Parse(lookup func(string) (string, bool)) (Config, error) {
	r := reader{lookup: lookup}

	cfg := Config{
		LogEndpoint: r.str("LOG_ENDPOINT", ""),
		SinkTimeout: r.dur("SINK_TIMEOUT", 5*time.Second),
		SinkGzip:    r.boolean("SINK_GZIP", false),

		PathPatterns: r.list("PATH_PATTERNS", []string{"/*"}),

		HTTPAddr:        r.str("HTTP_ADDR", ":8080"),
		OpsAddr:         r.str("OPS_ADDR", ":9090"),
		OriginURL:       r.str("ORIGIN_URL", ""),
		StaticDir:       r.str("STATIC_DIR", "./public"),
		ShutdownTimeout: r.dur("SHUTDOWN_TIMEOUT", 15*time.Second),

		ServiceName: r.str("SERVICE_NAME", "visitor-logger"),
		InstanceID:  fallbackInstanceID(),
		LogLevel:    r.str("LOG_LEVEL", "info"),
		LogPretty:   r.boolean("LOG_PRETTY", false),
		LogSampleN:  uint32(r.integer("LOG_SAMPLE_N", 0)),
	}

	if r.err != nil {
		return Config{}, r.err
	}

	if cfg.SinkTimeout <= 0 {
		return Config{}, fmt.Errorf("SINK_TIMEOUT must be positive, got %s", cfg.SinkTimeout)
	}
	if cfg.ShutdownTimeout <= 0 {
		return Config{}, fmt.Errorf("SHUTDOWN_TIMEOUT must be positive, got %s", cfg.ShutdownTimeout)
	}

	return cfg, nil
}

// reader
//
// 첫 번째 파싱 에러만 기억하고 나머지는 기본값으로 진행한다.
// 에러는 Parse 마지막에 한 번에 반환된다.
type reader struct {
	lookup func(string) (string, bool)
	err    error
}

func (r *reader) raw(key string) (string, bool) {
	v, ok := r.lookup(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func (r *reader) fail(key, v string, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("invalid env %s=%q: %w", key, v, err)
	}
}

func (r *reader) str(key, def string) string {
	if v, ok := r.raw(key); ok {
		return v
	}
	return def
}

func (r *reader) list(key string, def []string) []string {
	v, ok := r.raw(key)
	if !ok {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

func (r *reader) integer(key string, def int) int {
	v, ok := r.raw(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.fail(key, v, err)
		return def
	}
	if n < 0 {
		r.fail(key, v, fmt.Errorf("must not be negative"))
		return def
	}
	return n
}

func (r *reader) boolean(key string, def bool) bool {
	v, ok := r.raw(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.fail(key, v, err)
		return def
	}
	return b
}

func (r *reader) dur(key string, def time.Duration) time.Duration {
	v, ok := r.raw(key)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.fail(key, v, err)
		return def
	}
	return d
}

// fallbackInstanceID
//
// 이 프로세스를 식별하는 고유 값.
//   - 기본: hostname (컨테이너 환경에서는 task-id 형태로 고유)
//   - fallback: 12자리 랜덤 hex
func fallbackInstanceID() string {
	if h, err := os.Hostname(); err == nil && h != "" {
		return h
	}
	var b [6]byte
	if _, err := rand.Read(b[:]); err == nil {
		return hex.EncodeToString(b[:])
	}
	return strconv.FormatInt(time.Now().UnixNano(), 10)
}
