// internal/model/visitor.go
package model

// TimestampLayout
// ------------------------------------------------------------
// VisitorRecord.Timestamp 포맷 (UTC, 밀리초 정밀도 ISO-8601).
// 예: "2026-10-19T08:15:30.123Z"
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// VisitorRecord
// ------------------------------------------------------------
// 요청 1건에서 추출한 방문자 메타데이터.
// 요청마다 새로 만들고, 한 번 직렬화해서 sink 로 넘긴 뒤 버린다.
// 생성 이후에는 절대 수정하지 않는다 (pool 재사용 금지).
//
// JSON 필드명은 sink 쪽 스키마와 그대로 맞물리므로 바꾸면 안 된다.
type VisitorRecord struct {
	IP             *string `json:"ip"`             // 클라이언트 IP, 못 찾으면 null
	UserAgent      string  `json:"userAgent"`      // User-Agent, 없으면 ""
	Referrer       string  `json:"referrer"`       // Referer (또는 Referrer), 없으면 ""
	AcceptLanguage string  `json:"acceptLanguage"` // Accept-Language, 없으면 ""
	Method         string  `json:"method"`         // HTTP method
	URL            string  `json:"url"`            // scheme/host 포함 전체 URL
	Path           string  `json:"path"`           // path + "?" + query
	Hostname       string  `json:"hostname"`       // 포트 제외 host
	Timestamp      string  `json:"timestamp"`      // 수집 시각 (TimestampLayout)
}
