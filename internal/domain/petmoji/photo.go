package petmoji

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
)

// AcceptedTypes are the image formats the upload form offers.
var AcceptedTypes = []string{"image/png", "image/jpeg", "image/webp"}

func accepted(mime string) bool {
	for _, t := range AcceptedTypes {
		if t == mime {
			return true
		}
	}
	return false
}

func normalizeMIME(mime string) string {
	mime = strings.ToLower(strings.TrimSpace(mime))
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	if mime == "image/jpg" || mime == "image/pjpeg" {
		mime = "image/jpeg"
	}
	return mime
}

// NewPhoto validates an upload. The declared content type must be one of
// AcceptedTypes and the bytes themselves must sniff as an image, so a text
// file renamed to .png is rejected.
func NewPhoto(declaredMIME string, data []byte) (Photo, error) {
	if len(data) == 0 {
		return Photo{}, ErrNoInput
	}
	mime := normalizeMIME(declaredMIME)
	if !accepted(mime) {
		return Photo{}, fmt.Errorf("%w: content type %q", ErrInvalidInput, declaredMIME)
	}
	sniffed := normalizeMIME(http.DetectContentType(data))
	if !strings.HasPrefix(sniffed, "image/") {
		return Photo{}, fmt.Errorf("%w: content looks like %q", ErrInvalidInput, sniffed)
	}
	return Photo{MIMEType: mime, Data: data}, nil
}

// ParseDataURI decodes "data:<mime>;base64,<payload>" and validates it like NewPhoto.
func ParseDataURI(uri string) (Photo, error) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return Photo{}, ErrNoInput
	}
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return Photo{}, fmt.Errorf("%w: not a data URI", ErrInvalidInput)
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return Photo{}, fmt.Errorf("%w: data URI has no payload", ErrInvalidInput)
	}
	mime, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return Photo{}, fmt.Errorf("%w: data URI is not base64", ErrInvalidInput)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Photo{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return NewPhoto(mime, data)
}

// DataURI encodes the photo back into the form the page and the OpenAI
// image_url part expect.
func (p Photo) DataURI() string {
	if p.Empty() {
		return ""
	}
	return "data:" + p.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(p.Data)
}

// Extension returns the file extension used when archiving the photo.
func (p Photo) Extension() string {
	switch p.MIMEType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".bin"
	}
}
