// Package imaging converts heterogeneous photo inputs (JPEG, PNG, HEIC/HEIF)
// into a canonical encoded form bounded in dimensions and byte size, suitable
// for upload to object storage.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"strings"

	"github.com/jdeng/goheif"
	"golang.org/x/image/draw"

	"github.com/dkotelnikov/spotlist/internal/common"
)

// Canonical output media types. Every normalized image is one of these two,
// regardless of input type.
const (
	MimeJPEG = "image/jpeg"
	MimePNG  = "image/png"

	mimeHEIC = "image/heic"
	mimeHEIF = "image/heif"
)

// Defaults for the normalizer tunables.
const (
	DefaultMaxDimension    = 1920
	DefaultJPEGQuality     = 82
	DefaultMaxEncodedBytes = 10 << 20 // 10 MiB, enforced post-compression
)

// Normalized is the canonical output of Normalize.
type Normalized struct {
	Data      []byte
	Width     int
	Height    int
	SizeBytes int64
	MimeType  string // MimeJPEG or MimePNG
}

// Normalizer re-encodes input images so the longest edge fits MaxDimension
// (aspect ratio preserved, never upscaled) and the encoded size fits
// MaxEncodedBytes.
type Normalizer struct {
	MaxDimension    int
	JPEGQuality     int
	MaxEncodedBytes int64
}

// NewNormalizer returns a Normalizer with default tunables.
func NewNormalizer() *Normalizer {
	return &Normalizer{
		MaxDimension:    DefaultMaxDimension,
		JPEGQuality:     DefaultJPEGQuality,
		MaxEncodedBytes: DefaultMaxEncodedBytes,
	}
}

// SupportedMediaType reports whether the declared media type is accepted as
// input.
func SupportedMediaType(mediaType string) bool {
	switch canonicalType(mediaType) {
	case MimeJPEG, MimePNG, mimeHEIC, mimeHEIF:
		return true
	}
	return false
}

// Ext returns the storage-path file extension for a canonical media type.
func Ext(mimeType string) string {
	switch canonicalType(mimeType) {
	case MimeJPEG:
		return "jpg"
	case MimePNG:
		return "png"
	}
	return "bin"
}

// canonicalType lowercases a declared media type and strips any parameters
// ("image/jpeg; charset=..." -> "image/jpeg").
func canonicalType(mediaType string) string {
	mt, _, found := strings.Cut(mediaType, ";")
	if !found {
		mt = mediaType
	}
	return strings.ToLower(strings.TrimSpace(mt))
}

// Normalize converts one input file into a canonical encoded image.
//
// HEIC/HEIF inputs are decoded and re-encoded as JPEG. Images whose longest
// edge exceeds MaxDimension are scaled down (Catmull-Rom), which forces JPEG
// output; a PNG that needs no resize stays PNG. The byte-size ceiling is
// enforced on the final encoded bytes, after any compression.
//
// Fails with common.ErrUnsupportedType for undeclared/unknown media types and
// with common.ErrFileTooLarge when the encoded result exceeds
// MaxEncodedBytes.
func (n *Normalizer) Normalize(data []byte, mediaType string) (*Normalized, error) {
	mt := canonicalType(mediaType)

	var src image.Image
	var err error
	switch mt {
	case MimeJPEG:
		src, err = jpeg.Decode(bytes.NewReader(data))
	case MimePNG:
		src, err = png.Decode(bytes.NewReader(data))
	case mimeHEIC, mimeHEIF:
		src, err = goheif.Decode(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("%w: %q", common.ErrUnsupportedType, mediaType)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", mt, err)
	}

	bounds := src.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()
	if srcW <= 0 || srcH <= 0 {
		return nil, fmt.Errorf("decoding %s: empty image", mt)
	}

	dstW, dstH := fitWithin(srcW, srcH, n.MaxDimension)
	resized := src
	if dstW != srcW || dstH != srcH {
		dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
		resized = dst
	}

	outMime := MimeJPEG
	if mt == MimePNG && dstW == srcW && dstH == srcH {
		outMime = MimePNG
	}

	var buf bytes.Buffer
	switch outMime {
	case MimePNG:
		err = png.Encode(&buf, resized)
	default:
		err = jpeg.Encode(&buf, resized, &jpeg.Options{Quality: n.JPEGQuality})
	}
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", outMime, err)
	}

	// Dimensions are probed from the final bytes, not carried over from the
	// intermediate image.
	cfg, _, err := image.DecodeConfig(bytes.NewReader(buf.Bytes()))
	if err != nil {
		return nil, fmt.Errorf("probing dimensions: %w", err)
	}

	if int64(buf.Len()) > n.MaxEncodedBytes {
		return nil, fmt.Errorf("%w: %d bytes after compression (limit %d)",
			common.ErrFileTooLarge, buf.Len(), n.MaxEncodedBytes)
	}

	return &Normalized{
		Data:      buf.Bytes(),
		Width:     cfg.Width,
		Height:    cfg.Height,
		SizeBytes: int64(buf.Len()),
		MimeType:  outMime,
	}, nil
}

// fitWithin bounds (w, h) so the longest edge is at most maxDim, preserving
// aspect ratio. Images already within the bound keep their exact dimensions.
func fitWithin(w, h, maxDim int) (int, int) {
	if maxDim <= 0 || (w <= maxDim && h <= maxDim) {
		return w, h
	}
	if w >= h {
		scaled := (h*maxDim + w/2) / w
		return maxDim, max(scaled, 1)
	}
	scaled := (w*maxDim + h/2) / h
	return max(scaled, 1), maxDim
}
