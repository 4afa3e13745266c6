package scanimation

import (
	"image"
	"image/color"
	"math"

	"github.com/cenkalti/dominantcolor"
	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/stat"
)

// Frame diagnostics for authoring: frames pulled from a directory are easy
// to get out of order or accidentally duplicated, and a duplicated frame
// shows up as a stutter when the grille slides. Everything here is advisory;
// nothing in the encoding pipeline depends on it.

// FrameInfo describes one input frame.
type FrameInfo struct {
	Index         int
	Width, Height int
	// Dominant color of the frame, for eyeballing frame order.
	Dominant color.RGBA
	// Mean linear luminance over a uniform sample grid, in [0, 1].
	Luminance float64
}

const (
	// Sample grid cap per axis. Keeps the audit O(1) per frame regardless
	// of image size.
	auditGrid = 64

	duplicateCorrelation = 0.999
	duplicateMeanDelta   = 0.004
	flatVariance         = 1e-6
)

// Describe reports per-frame diagnostics in frame order.
func Describe(frames []*image.NRGBA) []FrameInfo {
	infos := make([]FrameInfo, len(frames))
	for i, f := range frames {
		b := f.Bounds()
		infos[i] = FrameInfo{
			Index:     i,
			Width:     b.Dx(),
			Height:    b.Dy(),
			Dominant:  dominantcolor.Find(f),
			Luminance: stat.Mean(luminanceGrid(f), nil),
		}
	}
	return infos
}

// DuplicateFrames returns every index i where frame i and frame i+1 look
// identical: same size, matching mean luminance, and near-perfect
// correlation of their luminance sample grids. Constant frames have no
// defined correlation and are compared by mean alone.
func DuplicateFrames(frames []*image.NRGBA) []int {
	if len(frames) < 2 {
		return nil
	}
	var dups []int
	prev := luminanceGrid(frames[0])
	for i := 1; i < len(frames); i++ {
		cur := luminanceGrid(frames[i])
		if frames[i].Bounds().Size() == frames[i-1].Bounds().Size() && nearIdentical(prev, cur) {
			dups = append(dups, i-1)
		}
		prev = cur
	}
	return dups
}

func nearIdentical(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	if math.Abs(stat.Mean(a, nil)-stat.Mean(b, nil)) > duplicateMeanDelta {
		return false
	}
	va := stat.Variance(a, nil)
	vb := stat.Variance(b, nil)
	if va < flatVariance || vb < flatVariance {
		return va < flatVariance && vb < flatVariance
	}
	return stat.Correlation(a, b, nil) >= duplicateCorrelation
}

// luminanceGrid samples the frame on a uniform grid and returns the linear
// luminance of each sample. Frames of equal size always produce grids of
// equal length and positions, so grids are directly comparable.
func luminanceGrid(img *image.NRGBA) []float64 {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	sx := max(1, w/auditGrid)
	sy := max(1, h/auditGrid)
	out := make([]float64, 0, (w/sx+1)*(h/sy+1))
	for y := 0; y < h; y += sy {
		for x := 0; x < w; x += sx {
			out = append(out, linearLuminance(img.NRGBAAt(b.Min.X+x, b.Min.Y+y)))
		}
	}
	return out
}

func linearLuminance(c color.NRGBA) float64 {
	col := colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}
	r, g, b := col.LinearRgb()
	return 0.2126*r + 0.7152*g + 0.0722*b
}
