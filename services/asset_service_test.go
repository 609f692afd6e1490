// File: /services/asset_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeDataURL(t *testing.T) {
	contentType, raw, err := decodeDataURL("data:image/png;base64,aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, "image/png", contentType)
	assert.Equal(t, []byte("hello"), raw)
}

func TestDecodeDataURLRejectsMalformedInput(t *testing.T) {
	cases := map[string]string{
		"not a data url":   "https://example.com/image.png",
		"missing comma":    "data:image/png;base64",
		"bad encoding":     "data:image/png;quoted,aGVsbG8=",
		"invalid base64":   "data:image/png;base64,!!!",
	}

	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := decodeDataURL(input)
			assert.Error(t, err)
		})
	}
}

func TestObjectNameFromURL(t *testing.T) {
	name, err := ObjectNameFromURL("https://minio.local:9000/chat-images/abc123.png")
	require.NoError(t, err)
	assert.Equal(t, "abc123.png", name)

	_, err = ObjectNameFromURL("https://minio.local:9000/")
	assert.Error(t, err)
}
