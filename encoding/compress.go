package encoding

import (
	"fmt"

	"github.com/klauspost/compress/s2"
)

// Compression scheme names accepted in sink configuration.
const (
	CompressionNone = "none"
	CompressionS2   = "s2"
)

// Compress applies the named compression scheme to an encoded payload.
// An empty scheme and "none" both pass the payload through untouched.
func Compress(scheme string, data []byte) ([]byte, error) {
	switch scheme {
	case "", CompressionNone:
		return data, nil
	case CompressionS2:
		return s2.Encode(nil, data), nil
	default:
		return nil, fmt.Errorf("unknown compression scheme: %s", scheme)
	}
}

// Decompress reverses Compress for the named scheme.
func Decompress(scheme string, data []byte) ([]byte, error) {
	switch scheme {
	case "", CompressionNone:
		return data, nil
	case CompressionS2:
		return s2.Decode(nil, data)
	default:
		return nil, fmt.Errorf("unknown compression scheme: %s", scheme)
	}
}
