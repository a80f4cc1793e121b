package worker

import (
	"visitor-logger/internal/model"
	"visitor-logger/internal/pool"

	json "github.com/goccy/go-json"
	"github.com/klauspost/compress/gzip"
)

// Encoder 는 VisitorRecord 하나를 sink 로 보낼 body 로 직렬화한다.
//
// 특징:
//   - goccy/go-json 기반 JSON 인코딩
//   - gzip 옵션 시 gzip.Writer + bytes.Buffer 재사용(pool 기반)
//   - 결과는 새 []byte 로 복사해서 호출자에게 소유권을 넘긴다
//     (백그라운드 goroutine 이 들고 가므로 pool 버퍼를 그대로 넘기면 안 됨)
type Encoder struct {
	gzip bool
}

func NewEncoder(compress bool) *Encoder {
	return &Encoder{gzip: compress}
}

// Gzip 은 body 가 gzip 으로 압축되는지 여부.
func (e *Encoder) Gzip() bool {
	return e.gzip
}

// Encode 는 record 를 JSON 문서 하나로 인코딩한다.
// Encoder.Encode 가 붙이는 마지막 개행은 제거한다.
func (e *Encoder) Encode(rec *model.VisitorRecord) ([]byte, error) {
	buf := pool.GetBuffer()
	defer pool.PutBuffer(buf)

	if !e.gzip {
		if err := json.NewEncoder(buf).Encode(rec); err != nil {
			return nil, err
		}
		return ownedCopy(trimNewline(buf.Bytes())), nil
	}

	gz := pool.GzipPool.Get().(*gzip.Writer)
	gz.Reset(buf)
	defer pool.GzipPool.Put(gz)

	raw, err := json.Marshal(rec)
	if err != nil {
		_ = gz.Close()
		return nil, err
	}
	if _, err := gz.Write(raw); err != nil {
		_ = gz.Close()
		return nil, err
	}
	// Close 시 gzip footer 까지 써야 스트림이 완성된다.
	if err := gz.Close(); err != nil {
		return nil, err
	}

	return ownedCopy(buf.Bytes()), nil
}

func trimNewline(b []byte) []byte {
	if n := len(b); n > 0 && b[n-1] == '\n' {
		return b[:n-1]
	}
	return b
}

func ownedCopy(raw []byte) []byte {
	data := make([]byte, len(raw))
	copy(data, raw)
	return data
}
