// Package pipeline converts resampled reflectance spectra into displayable
// color: tristimulus integration, chromatic adaptation and gamma-encoded
// sRGB output.
package pipeline

// XYZImage holds per-pixel CIE XYZ tristimulus values in row-major order,
// three channels per pixel. Values are normalized so the scene illuminant's
// own luminance is 100; they may be negative and are not clipped here.
type XYZImage struct {
	Width, Height int
	Pix           []float64
}

// NewXYZImage allocates a zeroed tristimulus image.
func NewXYZImage(width, height int) *XYZImage {
	return &XYZImage{Width: width, Height: height, Pix: make([]float64, width*height*3)}
}

// At returns the tristimulus triple of pixel i.
func (m *XYZImage) At(i int) Vec3 {
	return Vec3{m.Pix[i*3], m.Pix[i*3+1], m.Pix[i*3+2]}
}

// Set stores the tristimulus triple of pixel i.
func (m *XYZImage) Set(i int, v Vec3) {
	m.Pix[i*3], m.Pix[i*3+1], m.Pix[i*3+2] = v[0], v[1], v[2]
}

// Pixels returns the number of pixels.
func (m *XYZImage) Pixels() int { return m.Width * m.Height }

// Image is a display-ready RGB image with float channels in [0, 1],
// row-major, three channels per pixel.
type Image struct {
	Width, Height int
	Pix           []float64
}

// NewImage allocates a zeroed RGB image.
func NewImage(width, height int) *Image {
	return &Image{Width: width, Height: height, Pix: make([]float64, width*height*3)}
}

// Pixels returns the number of pixels.
func (m *Image) Pixels() int { return m.Width * m.Height }
