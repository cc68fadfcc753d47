package util

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"math"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

const jpegQuality = 90

// Downscale shrinks an image whose pixel count exceeds maxPixels, keeping the
// aspect ratio, and re-encodes it as JPEG. Images within the limit, or that
// cannot be decoded, are returned unchanged with resized=false.
func Downscale(data []byte, maxPixels int) (out []byte, mime string, resized bool, err error) {
	if maxPixels <= 0 || len(data) == 0 {
		return data, "", false, nil
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return data, "", false, nil
	}
	total := cfg.Width * cfg.Height
	if total <= maxPixels {
		return data, "", false, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return data, "", false, nil
	}
	scale := math.Sqrt(float64(maxPixels) / float64(total))
	newW := max(int(float64(cfg.Width)*scale), 1)
	newH := max(int(float64(cfg.Height)*scale), 1)

	fitted := imaging.Fit(img, newW, newH, imaging.Lanczos)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, fitted, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return data, "", false, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), "image/jpeg", true, nil
}
