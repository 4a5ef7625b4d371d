package petmoji

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 200, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestNewPhoto(t *testing.T) {
	data := pngBytes(t)

	t.Run("accepts png", func(t *testing.T) {
		p, err := NewPhoto("image/png", data)
		require.NoError(t, err)
		assert.Equal(t, "image/png", p.MIMEType)
		assert.Equal(t, data, p.Data)
	})

	t.Run("normalizes content type parameters", func(t *testing.T) {
		p, err := NewPhoto("Image/PNG; charset=binary", data)
		require.NoError(t, err)
		assert.Equal(t, "image/png", p.MIMEType)
	})

	t.Run("empty is no input", func(t *testing.T) {
		_, err := NewPhoto("image/png", nil)
		assert.ErrorIs(t, err, ErrNoInput)
	})

	t.Run("text content type is invalid", func(t *testing.T) {
		_, err := NewPhoto("text/plain", []byte("hello"))
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("renamed text file is invalid", func(t *testing.T) {
		_, err := NewPhoto("image/png", []byte("just some notes about my cat\n"))
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("gif is not offered", func(t *testing.T) {
		_, err := NewPhoto("image/gif", []byte("GIF89a......"))
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestParseDataURI(t *testing.T) {
	data := pngBytes(t)
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(data)

	p, err := ParseDataURI(uri)
	require.NoError(t, err)
	assert.Equal(t, data, p.Data)
	assert.Equal(t, uri, p.DataURI())
	assert.Equal(t, ".png", p.Extension())

	for name, in := range map[string]string{
		"no scheme":   "image/png;base64,AAAA",
		"no payload":  "data:image/png;base64",
		"not base64":  "data:image/png,AAAA",
		"bad base64":  "data:image/png;base64,@@@",
		"text inside": "data:text/plain;base64," + base64.StdEncoding.EncodeToString([]byte("hi")),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseDataURI(in)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}

	_, err = ParseDataURI("   ")
	assert.ErrorIs(t, err, ErrNoInput)
}

func TestEmptyPhotoHasNoDataURI(t *testing.T) {
	assert.True(t, Photo{}.Empty())
	assert.Equal(t, "", Photo{}.DataURI())
}
