// Package media normalizes user-supplied images and animations into the
// formats Telegram accepts for sticker uploads: static stickers are
// 512×512 transparent PNG, video stickers are WEBM/VP9 clips no longer
// than 3 seconds and no larger than 256 KB.
package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"

	// Register decoders for the formats users actually send.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/rs/zerolog/log"
	"golang.org/x/image/draw"
)

// CanvasSize is the fixed square sticker canvas edge in pixels.
const CanvasSize = 512

// ErrDecode indicates the submitted bytes are not a decodable image.
// The user corrects the input; nothing is retried.
var ErrDecode = errors.New("media: cannot decode image")

// NormalizeImage converts arbitrary raster bytes into a 512×512 PNG with
// a transparent background, the source content scaled to fit and
// centered with its aspect ratio preserved.
func NormalizeImage(data []byte) ([]byte, error) {
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	bounds := src.Bounds()
	srcW := bounds.Dx()
	srcH := bounds.Dy()
	if srcW == 0 || srcH == 0 {
		return nil, fmt.Errorf("%w: zero-sized image", ErrDecode)
	}

	ratio := minFloat(float64(CanvasSize)/float64(srcW), float64(CanvasSize)/float64(srcH))
	newW := int(float64(srcW) * ratio)
	newH := int(float64(srcH) * ratio)

	scaled := image.NewNRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), src, bounds, draw.Src, nil)

	// Transparent canvas; NewNRGBA zero value is fully transparent.
	canvas := image.NewNRGBA(image.Rect(0, 0, CanvasSize, CanvasSize))
	offsetX := (CanvasSize - newW) / 2
	offsetY := (CanvasSize - newH) / 2
	target := image.Rect(offsetX, offsetY, offsetX+newW, offsetY+newH)
	draw.Draw(canvas, target, scaled, image.Point{}, draw.Over)

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("failed to encode sticker PNG: %w", err)
	}

	log.Debug().
		Str("source_format", format).
		Int("source_width", srcW).
		Int("source_height", srcH).
		Int("scaled_width", newW).
		Int("scaled_height", newH).
		Int("output_size", buf.Len()).
		Msg("Image normalized")

	return buf.Bytes(), nil
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
