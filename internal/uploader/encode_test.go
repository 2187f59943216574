package uploader

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for _, size := range []int{0, 1, 2, 3, 57, 1024, 10 * 1024, 300 * 1024} {
		data := make([]byte, size)
		rng.Read(data)

		encoded := Encode(data)
		if size == 0 {
			assert.Empty(t, encoded)
			continue
		}

		decoded, err := DecodePayload(encoded)
		require.NoError(t, err)
		assert.Equal(t, data, decoded, "size %d", size)

		decoded, err = DecodePayload(DataURL("image/jpeg", data))
		require.NoError(t, err)
		assert.Equal(t, data, decoded, "data URL, size %d", size)
	}
}

func TestStripDataURLPrefix(t *testing.T) {
	assert.Equal(t, "QUJD", StripDataURLPrefix("data:image/png;base64,QUJD"))
	assert.Equal(t, "QUJD", StripDataURLPrefix("QUJD"))
	assert.Equal(t, "data:broken", StripDataURLPrefix("data:broken"))
	assert.Equal(t, "data:image/gif;base64,R0lG", DataURL("image/gif", []byte("GIF")))
}

func TestDecodePayloadErrors(t *testing.T) {
	_, err := DecodePayload("   ")
	require.Error(t, err)

	_, err = DecodePayload("data:image/png;base64,***")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode base64")
}
