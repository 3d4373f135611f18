package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// DefaultMaxBytes is the upload size ceiling applied when none is configured.
const DefaultMaxBytes = 10 << 20 // 10 MiB

var (
	// ErrPayloadTooLarge is returned before any decode is attempted.
	ErrPayloadTooLarge = errors.New("image payload exceeds size limit")
	// ErrBadEncoding is returned for malformed base64 input.
	ErrBadEncoding = errors.New("invalid base64 image data")
	// ErrDecode is returned when the bytes are not a supported image.
	ErrDecode = errors.New("could not decode image")
)

var supportedFormats = map[string]bool{
	"png":  true,
	"jpeg": true,
	"gif":  true,
}

// PixelGrid holds a decoded image together with its original dimensions.
// Channels is always 3: every supported source is read back as RGB.
type PixelGrid struct {
	Img      image.Image
	Format   string
	Height   int
	Width    int
	Channels int
}

// Codec decodes uploaded or base64-encoded image bytes into a PixelGrid.
type Codec struct {
	MaxBytes int64
}

func NewCodec(maxBytes int64) *Codec {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Codec{MaxBytes: maxBytes}
}

// Decode parses raw bytes into a PixelGrid. The size ceiling is enforced
// first so oversized payloads never reach the image parser.
func (c *Codec) Decode(data []byte) (*PixelGrid, error) {
	if int64(len(data)) > c.MaxBytes {
		return nil, fmt.Errorf("%w: got %d bytes, limit is %d", ErrPayloadTooLarge, len(data), c.MaxBytes)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if !supportedFormats[format] {
		return nil, fmt.Errorf("%w: unsupported format %q (allowed: png, jpeg, gif)", ErrDecode, format)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: image has empty dimensions", ErrDecode)
	}

	return &PixelGrid{
		Img:      img,
		Format:   format,
		Height:   height,
		Width:    width,
		Channels: 3,
	}, nil
}

// DecodeBase64 decodes a base64 string and feeds the result through Decode.
// The encoded length is bounded up front so a huge string cannot force a
// large allocation before the ceiling check.
func (c *Codec) DecodeBase64(encoded string) (*PixelGrid, error) {
	if int64(len(encoded)) > (c.MaxBytes*4)/3+4 {
		return nil, fmt.Errorf("%w: encoded payload is %d bytes", ErrPayloadTooLarge, len(encoded))
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadEncoding, err)
	}

	return c.Decode(data)
}
