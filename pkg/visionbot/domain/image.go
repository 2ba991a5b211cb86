package domain

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/jpeg"
)

// ImageOrigin is a stable identifier of where an image came from (its URL or an equivalent durable handle). It's only
// used as a cache key and to fetch the image again.
type ImageOrigin string

// EncodedImage is the canonical transport form of an image: the bytes of a JPEG file tagged with its MIME type.
// Must not be modified once produced.
type EncodedImage struct {
	MIMEType string
	Data     []byte
}

// DataURI wraps the image into a self-contained "data:" URI which can be embedded into a JSON payload.
func (e EncodedImage) DataURI() string {
	return "data:" + e.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(e.Data)
}

// DecodedImage is a normalized in-memory image: opaque RGB pixels, already downscaled.
type DecodedImage struct {
	Image *image.RGBA
	// Format the format of the source bytes ("jpeg", "png" etc.)
	Format string
}

func (d *DecodedImage) Width() int {
	return d.Image.Bounds().Dx()
}

func (d *DecodedImage) Height() int {
	return d.Image.Bounds().Dy()
}

// ToEncoded re-encodes the image as a JPEG. Out-of-range qualities fall back to DefaultJPEGQuality.
func (d *DecodedImage) ToEncoded(quality int) (EncodedImage, error) {
	if quality <= 0 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, d.Image, &jpeg.Options{Quality: quality}); err != nil {
		return EncodedImage{}, err
	}
	return EncodedImage{
		MIMEType: "image/jpeg",
		Data:     buf.Bytes(),
	}, nil
}

// ImageRef is what the router hands to the core: where an image came from and, if already available, its bytes.
// When Data is nil, the bytes are fetched by origin (but only if the image isn't cached).
type ImageRef struct {
	Origin   ImageOrigin
	Filename string
	Data     []byte
}

// ImageFetcher retrieves the raw bytes of an image by its origin.
type ImageFetcher interface {
	Fetch(ctx context.Context, origin ImageOrigin) ([]byte, error)
}

// ImageFetcherFunc adapts a function to ImageFetcher.
type ImageFetcherFunc func(ctx context.Context, origin ImageOrigin) ([]byte, error)

func (f ImageFetcherFunc) Fetch(ctx context.Context, origin ImageOrigin) ([]byte, error) {
	return f(ctx, origin)
}
