package secure

import (
	"encoding/binary"
	"time"

	"github.com/etnz/finance/failure"
)

const stampSize = 8

// now is replaced in tests.
var now = time.Now

// Obscure scrambles data with the current time, so that the same key never
// shows the same bytes twice. It is a reversible storage transform, not a
// protection: anybody can Reveal.
//
// The result is the big-endian nanosecond timestamp followed by data, each
// byte XORed with a byte of the timestamp and its own position.
func Obscure(data []byte) []byte {
	out := make([]byte, stampSize+len(data))
	binary.BigEndian.PutUint64(out, uint64(now().UnixNano()))
	scramble(out[stampSize:], data, out[:stampSize])
	return out
}

// Reveal reverses Obscure.
func Reveal(obscured []byte) ([]byte, error) {
	if len(obscured) < stampSize {
		return nil, failure.New(failure.Data, "obscured data too short: %d bytes", len(obscured))
	}
	out := make([]byte, len(obscured)-stampSize)
	scramble(out, obscured[stampSize:], obscured[:stampSize])
	return out, nil
}

func scramble(dst, src, stamp []byte) {
	for i, b := range src {
		dst[i] = b ^ stamp[i%stampSize] ^ byte(i)
	}
}
