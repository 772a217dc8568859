// Package render turns the pipeline's float RGB images into annotated,
// 8-bit images ready for encoding to PNG or JPEG.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/chromascope/relight/internal/pipeline"
)

const (
	dpi      = 96.0
	fontSize = 11.0

	// Info bar below the image: text on the left, white-point swatch on
	// the right.
	barHeight     = 28
	barPadding    = 8
	swatchSize    = 16
	swatchPadding = 6
)

// Annotation describes the labels drawn under a simulated image.
type Annotation struct {
	Illuminant string
	Gamma      float64
	D          float64
	White      pipeline.WhitePoint
	Adapted    bool
}

// ToRGBA quantizes a float [0, 1] RGB image to 8 bits per channel.
func ToRGBA(img *pipeline.Image) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, img.Width, img.Height))
	for px := 0; px < img.Pixels(); px++ {
		out.SetRGBA(px%img.Width, px/img.Width, color.RGBA{
			R: quantize(img.Pix[px*3]),
			G: quantize(img.Pix[px*3+1]),
			B: quantize(img.Pix[px*3+2]),
			A: 0xff,
		})
	}
	return out
}

func quantize(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 0xff
	}
	return uint8(v*255 + 0.5)
}

// Annotate quantizes the image and appends an info bar naming the
// illuminant and the pipeline parameters, with a swatch showing the
// illuminant's white-point color.
func Annotate(img *pipeline.Image, info Annotation) (*image.RGBA, error) {
	rgba := ToRGBA(img)

	full := image.NewRGBA(image.Rect(0, 0, img.Width, img.Height+barHeight))
	draw.Draw(full, full.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(full, rgba.Bounds(), rgba, image.Point{}, draw.Src)

	parsedFont, err := freetype.ParseFont(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}

	ctx := freetype.NewContext()
	ctx.SetDPI(dpi)
	ctx.SetFont(parsedFont)
	ctx.SetFontSize(fontSize)
	ctx.SetHinting(font.HintingNone)
	ctx.SetSrc(image.Black)
	ctx.SetClip(full.Bounds())
	ctx.SetDst(full)

	face := truetype.NewFace(parsedFont, &truetype.Options{
		Size:    fontSize,
		DPI:     dpi,
		Hinting: font.HintingNone,
	})
	defer face.Close()

	mode := "simple"
	if info.Adapted {
		mode = fmt.Sprintf("adapted D=%.2f", info.D)
	}
	wx, wy := chromaticity(info.White)
	label := fmt.Sprintf("%s; %s; gamma %.1f; white xy (%.4f, %.4f)",
		info.Illuminant, mode, info.Gamma, wx, wy)

	metrics := face.Metrics()
	fontHeight := (metrics.Ascent + metrics.Descent).Round()
	textY := img.Height + (barHeight+fontHeight)/2 - metrics.Descent.Round()

	if _, err = ctx.DrawString(label, freetype.Pt(barPadding, textY)); err != nil {
		return nil, fmt.Errorf("drawing annotation: %w", err)
	}

	drawSwatch(full, img.Width, img.Height, info.White)
	return full, nil
}

// chromaticity projects a white point onto CIE xy.
func chromaticity(w pipeline.WhitePoint) (x, y float64) {
	sum := w[0] + w[1] + w[2]
	if sum == 0 {
		return 0, 0
	}
	return w[0] / sum, w[1] / sum
}

// drawSwatch fills a square at the right end of the info bar with the
// display color of the white point.
func drawSwatch(dst *image.RGBA, width, imgHeight int, white pipeline.WhitePoint) {
	c := colorful.Xyz(white[0]/100, white[1]/100, white[2]/100).Clamped()

	x0 := width - swatchSize - swatchPadding
	y0 := imgHeight + (barHeight-swatchSize)/2
	swatch := image.Rect(x0, y0, x0+swatchSize, y0+swatchSize)

	draw.Draw(dst, swatch, image.NewUniform(c), image.Point{}, draw.Src)

	// 1px black border.
	for x := swatch.Min.X - 1; x <= swatch.Max.X; x++ {
		dst.Set(x, swatch.Min.Y-1, color.Black)
		dst.Set(x, swatch.Max.Y, color.Black)
	}
	for y := swatch.Min.Y - 1; y <= swatch.Max.Y; y++ {
		dst.Set(swatch.Min.X-1, y, color.Black)
		dst.Set(swatch.Max.X, y, color.Black)
	}
}
