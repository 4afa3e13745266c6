// Package scanimation interlaces an ordered set of frames into a single
// composite base image and generates the matching periodic grille mask.
// Sliding the printed mask across the printed base reveals the frames in
// sequence.
package scanimation

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"
)

var (
	ErrInsufficientFrames = errors.New("scanimation: need at least 2 frames")
	ErrInvalidGeometry    = errors.New("scanimation: non-positive dimensions")
)

// ============ ENUMS ============

// Direction selects the stripe axis. Vertical stripes are columns: the
// grille slides left-right. Horizontal stripes are rows: it slides up-down.
type Direction int

const (
	Vertical Direction = iota
	Horizontal
)

func (d Direction) String() string {
	if d == Horizontal {
		return "horizontal"
	}
	return "vertical"
}

func ParseDirection(s string) (Direction, error) {
	switch s {
	case "vertical":
		return Vertical, nil
	case "horizontal":
		return Horizontal, nil
	}
	return Vertical, fmt.Errorf("scanimation: unknown direction %q (want vertical or horizontal)", s)
}

// ResizeStrategy picks the target size frames are unified to.
type ResizeStrategy int

const (
	// ResizeFirst matches every frame to the first frame's size.
	ResizeFirst ResizeStrategy = iota
	// ResizeMin matches to the per-axis minima over all frames. The two
	// minima are taken independently; the target may equal no single frame.
	ResizeMin
)

func (r ResizeStrategy) String() string {
	if r == ResizeMin {
		return "min"
	}
	return "first"
}

func ParseResizeStrategy(s string) (ResizeStrategy, error) {
	switch s {
	case "first":
		return ResizeFirst, nil
	case "min":
		return ResizeMin, nil
	}
	return ResizeFirst, fmt.Errorf("scanimation: unknown resize strategy %q (want first or min)", s)
}

// CompositeMode is the optional post-pass applied to the interlaced base.
type CompositeMode int

const (
	CompositeNone CompositeMode = iota
	CompositeWhite
	CompositeDropAlpha
)

func (m CompositeMode) String() string {
	switch m {
	case CompositeWhite:
		return "white-background"
	case CompositeDropAlpha:
		return "drop-alpha"
	default:
		return "none"
	}
}

// ============ GEOMETRY ============

// Geometry carries the shared parameters of the base and the mask. Interlace
// and the mask generators must be called with the same Geometry, otherwise
// the printed pair drifts out of register; Encode returns the Geometry it
// used so callers get this for free.
type Geometry struct {
	Width, Height int
	// Requested stripe/slit size in pixels.
	Slice int
	// Number of frames cycled through along the stripe axis.
	Frames    int
	Direction Direction
}

func (g Geometry) Validate() error {
	if g.Width <= 0 || g.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidGeometry, g.Width, g.Height)
	}
	if g.Frames < 2 {
		return fmt.Errorf("%w: got %d", ErrInsufficientFrames, g.Frames)
	}
	return nil
}

// EffectiveSlice is the stripe size Interlace actually uses: the requested
// slice clamped to [1, stripe-axis length].
func (g Geometry) EffectiveSlice() int {
	axis := g.Width
	if g.Direction == Horizontal {
		axis = g.Height
	}
	return max(1, min(g.Slice, axis))
}

// Period is the mask repeat distance, max(1, Slice)*Frames pixels. The mask
// slice is only lower-clamped; it is not bounded by the axis, so a period
// wider than the image yields a single slit at the origin.
func (g Geometry) Period() int {
	return max(1, g.Slice) * g.Frames
}

// ============ SIZE UNIFICATION ============

// UnifySizes returns frames that all share one size, plus that size. Frames
// already at the target pass through by reference; the rest are stretched to
// fit with Catmull-Rom resampling. The stretch is non-uniform: aspect ratio
// is deliberately not preserved.
func UnifySizes(frames []*image.NRGBA, strategy ResizeStrategy) ([]*image.NRGBA, int, int, error) {
	if len(frames) < 2 {
		return nil, 0, 0, fmt.Errorf("%w: got %d", ErrInsufficientFrames, len(frames))
	}

	w := frames[0].Bounds().Dx()
	h := frames[0].Bounds().Dy()
	if strategy == ResizeMin {
		for _, f := range frames[1:] {
			w = min(w, f.Bounds().Dx())
			h = min(h, f.Bounds().Dy())
		}
	}
	if w <= 0 || h <= 0 {
		return nil, 0, 0, fmt.Errorf("%w: %dx%d", ErrInvalidGeometry, w, h)
	}

	out := make([]*image.NRGBA, len(frames))
	for i, f := range frames {
		if f.Bounds().Dx() == w && f.Bounds().Dy() == h {
			out[i] = f
			continue
		}
		dst := image.NewNRGBA(image.Rect(0, 0, w, h))
		xdraw.CatmullRom.Scale(dst, dst.Rect, f, f.Bounds(), xdraw.Src, nil)
		out[i] = dst
	}
	return out, w, h, nil
}

// ============ INTERLACE ============

// Interlace builds the composite base from size-unified frames. The stripe
// axis is partitioned into consecutive bands of EffectiveSlice pixels, the
// last band truncated at the image edge; the band starting at position p
// copies straight from frame (p/slice) mod N. Every output pixel comes from
// exactly one frame, byte for byte.
func Interlace(frames []*image.NRGBA, g Geometry) *image.NRGBA {
	n := len(frames)
	s := g.EffectiveSlice()
	out := image.NewNRGBA(image.Rect(0, 0, g.Width, g.Height))

	if g.Direction == Horizontal {
		for y := 0; y < g.Height; y += s {
			src := frames[(y/s)%n]
			for row := y; row < min(y+s, g.Height); row++ {
				copySpan(out, src, row, 0, g.Width)
			}
		}
		return out
	}

	for x := 0; x < g.Width; x += s {
		src := frames[(x/s)%n]
		x2 := min(x+s, g.Width)
		for row := 0; row < g.Height; row++ {
			copySpan(out, src, row, x, x2)
		}
	}
	return out
}

// copySpan copies the pixel span [x0, x1) on row y from src into dst at the
// same position. dst is origin-anchored; src bounds may start anywhere.
func copySpan(dst, src *image.NRGBA, y, x0, x1 int) {
	sb := src.Bounds()
	so := src.PixOffset(sb.Min.X+x0, sb.Min.Y+y)
	do := dst.PixOffset(x0, y)
	copy(dst.Pix[do:do+(x1-x0)*4], src.Pix[so:so+(x1-x0)*4])
}

// ============ MASK ============

// NewMask builds the grille for g: opaque black with fully transparent slits
// of max(1, Slice) pixels every Period pixels, starting at offset 0 and
// spanning the whole orthogonal axis. It needs no pixel data, only the same
// Geometry the base was interlaced with.
func NewMask(g Geometry) *image.NRGBA {
	return InkMask(g, color.NRGBA{A: 255})
}

// InkMask is NewMask with a custom grille ink. The ink is forced opaque.
func InkMask(g Geometry, ink color.NRGBA) *image.NRGBA {
	ink.A = 255
	s := max(1, g.Slice)
	period := g.Period()
	mask := image.NewNRGBA(image.Rect(0, 0, g.Width, g.Height))

	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			mask.SetNRGBA(x, y, ink)
		}
	}

	clear := color.NRGBA{}
	if g.Direction == Horizontal {
		for y := 0; y < g.Height; y += period {
			for row := y; row < min(y+s, g.Height); row++ {
				for x := 0; x < g.Width; x++ {
					mask.SetNRGBA(x, row, clear)
				}
			}
		}
		return mask
	}

	for x := 0; x < g.Width; x += period {
		for col := x; col < min(x+s, g.Width); col++ {
			for y := 0; y < g.Height; y++ {
				mask.SetNRGBA(col, y, clear)
			}
		}
	}
	return mask
}

// ============ COMPOSITE ============

// CompositeOver flattens img onto an opaque backdrop with a source-over
// blend on non-premultiplied channels. Exact at the endpoints: alpha 0
// yields the backdrop, alpha 255 the source pixel.
func CompositeOver(img *image.NRGBA, bg color.NRGBA) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := img.NRGBAAt(b.Min.X+x, b.Min.Y+y)
			a := uint32(c.A)
			om := 255 - a
			out.SetNRGBA(x, y, color.NRGBA{
				R: uint8((a*uint32(c.R) + om*uint32(bg.R) + 127) / 255),
				G: uint8((a*uint32(c.G) + om*uint32(bg.G) + 127) / 255),
				B: uint8((a*uint32(c.B) + om*uint32(bg.B) + 127) / 255),
				A: 255,
			})
		}
	}
	return out
}

// DropAlpha forces every pixel opaque while leaving the RGB bytes untouched.
// Regions that were fully transparent keep whatever RGB the canvas
// initializer left there (zeroed NRGBA, so black) -- they do NOT come out
// white. Use CompositeOver when that matters.
func DropAlpha(img *image.NRGBA) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := img.NRGBAAt(b.Min.X+x, b.Min.Y+y)
			c.A = 255
			out.SetNRGBA(x, y, c)
		}
	}
	return out
}

// Composite applies the post-pass for mode. CompositeNone returns img as is.
func Composite(img *image.NRGBA, mode CompositeMode) *image.NRGBA {
	switch mode {
	case CompositeWhite:
		return CompositeOver(img, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	case CompositeDropAlpha:
		return DropAlpha(img)
	default:
		return img
	}
}

// ============ PIPELINE ============

type Options struct {
	// Stripe/slit size in pixels. Interlacing clamps it to the stripe
	// axis; the mask period is max(1, Slice) times the frame count.
	Slice     int
	Direction Direction
	// How mismatched frame sizes are unified before interlacing.
	Resize ResizeStrategy
	// Optional post-pass on the interlaced base.
	Mode CompositeMode
}

func DefaultOptions() Options {
	return Options{
		Slice:     1,
		Direction: Vertical,
		Resize:    ResizeFirst,
		Mode:      CompositeNone,
	}
}

// Encode runs the whole pipeline: unify sizes, interlace, post-pass. It
// returns the Geometry it used so the caller can generate the matching mask
// from identical parameters.
func Encode(frames []*image.NRGBA, opt Options) (*image.NRGBA, Geometry, error) {
	unified, w, h, err := UnifySizes(frames, opt.Resize)
	if err != nil {
		return nil, Geometry{}, err
	}
	g := Geometry{
		Width:     w,
		Height:    h,
		Slice:     opt.Slice,
		Frames:    len(unified),
		Direction: opt.Direction,
	}
	if err := g.Validate(); err != nil {
		return nil, Geometry{}, err
	}
	return Composite(Interlace(unified, g), opt.Mode), g, nil
}
