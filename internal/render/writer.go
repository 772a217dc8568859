package render

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
)

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"

	jpegQuality = 98
)

// Format selects the output image encoding.
type Format string

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatPNG, FormatJPEG:
		return Format(s), nil
	default:
		return "", fmt.Errorf("invalid image format '%s' (png, jpeg)", s)
	}
}

// Write encodes the image to w in the given format.
func Write(w io.Writer, img image.Image, format Format) error {
	switch format {
	case FormatPNG:
		return png.Encode(w, img)
	case FormatJPEG:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: jpegQuality})
	default:
		return fmt.Errorf("unknown image format '%s'", format)
	}
}
