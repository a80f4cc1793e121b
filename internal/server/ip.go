package server

import (
	"strings"
)

// ------------------------------------------------------------
// IP 추출
//
// hook 은 CDN / 프록시 뒤에서 돌기 때문에 RemoteAddr 는 사용자 IP 가 아니다.
// 프록시가 넣어 준 헤더 중 "가장 구체적인 것"을 먼저 믿는다.
// X-Forwarded-For 는 클라이언트가 임의로 붙일 수 있어서 플랫폼 헤더보다 뒤에 둔다.
//
// 값 검증(IP 형식 파싱)은 하지 않는다. 헤더 값을 그대로 기록한다.
// ------------------------------------------------------------

const (
	headerPlatformClientIP = "X-Nf-Client-Connection-Ip"
	headerForwardedFor     = "X-Forwarded-For"
	headerCDNClientIP      = "Cf-Connecting-Ip"
)

// ResolveIP
//
// 우선순위 (처음으로 비어 있지 않은 값 사용):
//  1. X-Nf-Client-Connection-Ip (플랫폼 헤더)
//  2. X-Forwarded-For 의 첫 번째 항목 (trim)
//  3. Cf-Connecting-Ip
//
// 모두 없으면 nil (JSON 에서 null).
func ResolveIP(header func(name string) string) *string {
	if ip := header(headerPlatformClientIP); ip != "" {
		return &ip
	}

	// 예: "203.0.113.1, 10.0.1.24" → "203.0.113.1"
	if xff := header(headerForwardedFor); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return &ip
		}
	}

	if ip := header(headerCDNClientIP); ip != "" {
		return &ip
	}

	return nil
}
