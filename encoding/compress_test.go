package encoding

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompress_NoneIsPassthrough(t *testing.T) {
	data := []byte("payload")

	for _, scheme := range []string{"", CompressionNone} {
		out, err := Compress(scheme, data)
		require.NoError(t, err)
		assert.Equal(t, data, out)

		out, err = Decompress(scheme, data)
		require.NoError(t, err)
		assert.Equal(t, data, out)
	}
}

func TestCompress_S2RoundTrip(t *testing.T) {
	data := bytes.Repeat([]byte("marker batch payload "), 100)

	compressed, err := Compress(CompressionS2, data)
	require.NoError(t, err)
	assert.Less(t, len(compressed), len(data))

	out, err := Decompress(CompressionS2, compressed)
	require.NoError(t, err)
	assert.Equal(t, data, out)
}

func TestCompress_UnknownScheme(t *testing.T) {
	_, err := Compress("zstd", []byte("x"))
	assert.Error(t, err)

	_, err = Decompress("zstd", []byte("x"))
	assert.Error(t, err)
}
