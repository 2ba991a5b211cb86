package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"kgeyst.com/visionbot/pkg/visionbot/domain"
)

var errEmptyImage = errors.New("empty image data")

// scaleStep: if both dimensions of an image exceed `threshold`, the image is downscaled by `divisor`.
type scaleStep struct {
	threshold int
	divisor   int
}

// From the largest to the smallest; the first matching step wins.
var scaleSteps = []scaleStep{
	{threshold: 3200, divisor: 4},
	{threshold: 2400, divisor: 3},
	{threshold: 1600, divisor: 2},
}

// Normalize decodes raw image bytes, downscales large images and converts them to opaque RGB. Images which declare
// more than `maxPixels` pixels are rejected before decoding (0 means no limit).
func Normalize(raw []byte, maxPixels int) (*domain.DecodedImage, error) {
	if len(raw) == 0 {
		return nil, &domain.DecodeError{Err: errEmptyImage}
	}
	if maxPixels > 0 {
		config, _, err := image.DecodeConfig(bytes.NewReader(raw))
		if err != nil {
			return nil, &domain.DecodeError{Err: err}
		}
		if int64(config.Width)*int64(config.Height) > int64(maxPixels) {
			return nil, &domain.DecodeError{Err: fmt.Errorf("%dx%d is too large (at most %d pixels)", config.Width, config.Height, maxPixels)}
		}
	}
	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, &domain.DecodeError{Err: err}
	}
	return &domain.DecodedImage{
		Image:  toOpaqueRGBA(img, ScaledSize(img.Bounds().Dx(), img.Bounds().Dy())),
		Format: format,
	}, nil
}

// ScaledSize returns the size an image of the given dimensions is normalized to.
func ScaledSize(width, height int) image.Point {
	for _, step := range scaleSteps {
		if width > step.threshold && height > step.threshold {
			return image.Pt(width/step.divisor, height/step.divisor)
		}
	}
	return image.Pt(width, height)
}

// DecodeEncoded turns a (cached) encoded image back into pixels. It's already normalized, so no scaling is applied.
func DecodeEncoded(encoded domain.EncodedImage) (*image.RGBA, error) {
	if len(encoded.Data) == 0 {
		return nil, &domain.DecodeError{Err: errEmptyImage}
	}
	img, _, err := image.Decode(bytes.NewReader(encoded.Data))
	if err != nil {
		return nil, &domain.DecodeError{Err: err}
	}
	return toOpaqueRGBA(img, img.Bounds().Size()), nil
}

// toOpaqueRGBA draws `src` over a white background of the given size. Transparent pixels (PNG, GIF) would otherwise
// turn black in a JPEG. Go's JPEG codec has no reduced-resolution ("draft") decoding, so downscaling is done with
// the fast approximate bilinear scaler instead.
func toOpaqueRGBA(src image.Image, size image.Point) *image.RGBA {
	dst := image.NewRGBA(image.Rectangle{Max: size})
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	if size == src.Bounds().Size() {
		draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Over)
	} else {
		draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	}
	return dst
}
