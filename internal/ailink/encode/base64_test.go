package encode

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBase64RoundTrip(t *testing.T) {
	original := []byte("hello")
	encoded := EncodeBase64String(original)
	decoded, err := DecodeBase64String(encoded)
	require.NoError(t, err)
	require.Equal(t, original, decoded)
}

func TestDecodeDataURL(t *testing.T) {
	mediaType, data, err := DecodeDataURL("data:video/mp4;base64," + EncodeBase64String([]byte("clip")))
	require.NoError(t, err)
	require.Equal(t, "video/mp4", mediaType)
	require.Equal(t, []byte("clip"), data)
}

func TestDecodeBase64StringRejectsGarbage(t *testing.T) {
	_, err := DecodeBase64String("not base64!!")
	require.Error(t, err)
}
