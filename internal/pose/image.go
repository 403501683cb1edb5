package pose

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/example/posture-check/internal/posture"
)

// MinDimension is the smallest edge length accepted for a photo.
const MinDimension = 32

// Image is a validated photo ready for the pose model.
type Image struct {
	Data   []byte
	Format string
	Width  int
	Height int
}

// Decode validates raw upload bytes as a JPEG or PNG image.
// Failures wrap posture.ErrImageDecode.
func Decode(data []byte) (Image, error) {
	if len(data) == 0 {
		return Image{}, fmt.Errorf("%w: empty payload", posture.ErrImageDecode)
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Image{}, fmt.Errorf("%w: %v", posture.ErrImageDecode, err)
	}
	b := img.Bounds()
	if b.Dx() < MinDimension || b.Dy() < MinDimension {
		return Image{}, fmt.Errorf("%w: image %dx%d is too small", posture.ErrImageDecode, b.Dx(), b.Dy())
	}
	return Image{Data: data, Format: format, Width: b.Dx(), Height: b.Dy()}, nil
}
