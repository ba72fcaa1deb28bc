package service

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"strings"

	"github.com/msomdec/plume/internal/domain"
	"golang.org/x/image/draw"
)

// avatarSize is the bounding box profile pictures are shrunk to fit.
const avatarSize = 125

type imageDecoder func(io.Reader) (image.Image, error)
type imageEncoder func(io.Writer, image.Image) error

// Thumbnail decodes an uploaded picture, scales it to fit within
// avatarSize x avatarSize preserving aspect ratio, and re-encodes it in the
// format named by ext. Images already inside the box pass through at their
// original dimensions. Only JPEG and PNG are accepted.
func Thumbnail(data []byte, ext string) ([]byte, error) {
	decode, encode, err := codecForExt(ext)
	if err != nil {
		return nil, err
	}

	original, err := decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: cannot decode image: %v", domain.ErrInvalidInput, err)
	}

	bounds := original.Bounds()
	width, height := fitWithin(bounds.Dx(), bounds.Dy(), avatarSize)

	scaled := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), original, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := encode(&buf, scaled); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

// fitWithin shrinks w x h to fit inside a box x box square, never enlarging.
func fitWithin(w, h, box int) (int, int) {
	if w <= box && h <= box {
		return w, h
	}
	if w >= h {
		return box, max(1, h*box/w)
	}
	return max(1, w*box/h), box
}

func codecForExt(ext string) (imageDecoder, imageEncoder, error) {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg":
		return jpeg.Decode, func(w io.Writer, img image.Image) error {
			return jpeg.Encode(w, img, nil)
		}, nil
	case ".png":
		return png.Decode, png.Encode, nil
	default:
		return nil, nil, fmt.Errorf("%w: This file is not an image!", domain.ErrInvalidInput)
	}
}
