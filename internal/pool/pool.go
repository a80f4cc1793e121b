package pool

import (
	"bytes"
	"sync"

	"github.com/klauspost/compress/gzip"
)

// ---------------------------------------------------------------
// Pool 구성 목적
//
// hook 은 모든 요청마다 record 를 직렬화(+선택적 gzip)한다.
// 직렬화용 버퍼와 gzip.Writer 를 재사용해서 요청 경로의 할당을 줄인다.
//
// VisitorRecord 자체는 풀링하지 않는다.
// 백그라운드 전송이 끝나기 전에 재사용되면 데이터가 오염되기 때문.
// ---------------------------------------------------------------

var (
	// BufferPool:
	//   - JSON / gzip 결과를 담는 임시 버퍼
	//   - record 하나는 보통 1KB 미만이라 초기 용량 2KB
	BufferPool = sync.Pool{
		New: func() any {
			return bytes.NewBuffer(make([]byte, 0, 2*1024))
		},
	}

	// GzipPool:
	//   - gzip.Writer 재사용 (매번 new 하면 비용이 큼)
	//   - BestSpeed: 요청 경로에서 돌기 때문에 속도 우선
	GzipPool = sync.Pool{
		New: func() any {
			w, _ := gzip.NewWriterLevel(nil, gzip.BestSpeed)
			return w
		},
	}
)

// 풀에 되돌려줄 최대 버퍼 용량.
// 비정상적으로 긴 헤더(User-Agent, Referer 등)로 커진 버퍼는 GC 에 맡긴다.
const MaxBufferCap = 64 * 1024

// GetBuffer 는 비어 있는 버퍼를 꺼낸다.
func GetBuffer() *bytes.Buffer {
	buf := BufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

// PutBuffer:
//   - MaxBufferCap 이하면 풀에 반환
//   - 그보다 크면 버려서 메모리를 계속 붙잡지 않게 한다
func PutBuffer(buf *bytes.Buffer) {
	if buf.Cap() <= MaxBufferCap {
		buf.Reset()
		BufferPool.Put(buf)
	}
}
