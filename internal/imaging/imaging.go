// Package imaging downsizes uploaded raster images.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const jpegQuality = 85

// MaxPixels caps width*height of any image that gets decoded.
const MaxPixels = 40_000_000

var ErrTooManyPixels = errors.New("image exceeds the pixel limit")

// Config is what the image header says about the file.
type Config struct {
	Width, Height int
	// Format is the registered decoder name: jpeg, png, gif or webp.
	Format string
}

// Inspect reads only the image header and rejects images whose pixel count
// is above MaxPixels.
func Inspect(data []byte) (Config, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Config{}, fmt.Errorf("decode image header: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return Config{}, fmt.Errorf("invalid image dimensions %dx%d", cfg.Width, cfg.Height)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return Config{}, fmt.Errorf("%w: %dx%d", ErrTooManyPixels, cfg.Width, cfg.Height)
	}
	return Config{Width: cfg.Width, Height: cfg.Height, Format: format}, nil
}

// Result is the (possibly re-encoded) image.
type Result struct {
	Data          []byte
	Width, Height int
	Resized       bool
}

// Resize decodes a jpeg or png and scales it down so its width is at most
// maxWidth, keeping the aspect ratio. Images already narrow enough are
// returned unchanged with their dimensions.
func Resize(data []byte, contentType string, maxWidth int) (Result, error) {
	cfg, err := Inspect(data)
	if err != nil {
		return Result{}, err
	}
	if maxWidth <= 0 || cfg.Width <= maxWidth {
		return Result{Data: data, Width: cfg.Width, Height: cfg.Height}, nil
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Result{}, fmt.Errorf("decode image: %w", err)
	}
	b := src.Bounds()

	h := b.Dy() * maxWidth / b.Dx()
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)

	var buf bytes.Buffer
	switch contentType {
	case "image/png":
		err = png.Encode(&buf, dst)
	case "image/jpeg":
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality})
	default:
		return Result{}, fmt.Errorf("cannot re-encode %s", contentType)
	}
	if err != nil {
		return Result{}, fmt.Errorf("encode image: %w", err)
	}
	return Result{Data: buf.Bytes(), Width: maxWidth, Height: h, Resized: true}, nil
}

// Resizable reports whether Resize can handle the content type.
func Resizable(contentType string) bool {
	return contentType == "image/jpeg" || contentType == "image/png"
}
