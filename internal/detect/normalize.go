package detect

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

// Decode reads an image in any registered format (jpeg, png, gif, bmp).
// Undecodable input wraps ErrInvalidImage so callers can tell a bad upload
// apart from an image without a face.
func Decode(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	return img, nil
}

// Normalize crops the image to roi, converts the crop to 8-bit grayscale and
// scales it to a size x size patch. The resize runs even when the crop is
// already canonical so samples re-read from disk take the same path.
func Normalize(src image.Image, roi image.Rectangle, size int) *image.Gray {
	roi = roi.Intersect(src.Bounds())

	gray := image.NewGray(image.Rect(0, 0, roi.Dx(), roi.Dy()))
	for y := 0; y < roi.Dy(); y++ {
		for x := 0; x < roi.Dx(); x++ {
			r, g, b, _ := src.At(roi.Min.X+x, roi.Min.Y+y).RGBA()
			// ITU-R BT.601 luma formula.
			luma := 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8)
			gray.SetGray(x, y, color.Gray{Y: uint8(luma + 0.5)})
		}
	}

	patch := image.NewGray(image.Rect(0, 0, size, size))
	draw.BiLinear.Scale(patch, patch.Bounds(), gray, gray.Bounds(), draw.Src, nil)
	return patch
}
