// Package utils holds the I/O collaborators around the encoding core: frame
// collection and decoding, image persistence, and the ink palette report.
package utils

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io/fs"
	"log"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"

	_ "image/gif"
	_ "image/jpeg"

	"github.com/cenkalti/dominantcolor"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/maruel/natural"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ============ FRAME COLLECTION ============

// ParseExtList splits a comma-separated extension list, trimming whitespace
// and leading dots and lowercasing. Empty entries are dropped.
func ParseExtList(s string) []string {
	var out []string
	for _, e := range strings.Split(s, ",") {
		e = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(e), "."))
		if e != "" {
			out = append(out, e)
		}
	}
	return out
}

// Collect lists the files under dir whose extension is in exts
// (case-insensitive, without the dot), ordered by natural comparison of the
// file name so frame2 sorts before frame10. Ties on the name fall back to
// the full path. The extension list is always explicit; defaults live at the
// CLI boundary.
func Collect(dir string, exts []string, recursive bool) ([]string, error) {
	wanted := make(map[string]bool, len(exts))
	for _, e := range exts {
		wanted[e] = true
	}
	match := func(path string) bool {
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
		return wanted[ext]
	}

	var files []string
	if recursive {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && match(path) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	} else {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if !e.IsDir() && match(e.Name()) {
				files = append(files, filepath.Join(dir, e.Name()))
			}
		}
	}

	slices.SortFunc(files, func(a, b string) int {
		an, bn := filepath.Base(a), filepath.Base(b)
		if an != bn {
			if natural.Less(an, bn) {
				return -1
			}
			return 1
		}
		return strings.Compare(a, b)
	})
	return files, nil
}

// ============ DECODE / ENCODE ============

// LoadFrames decodes every path into an NRGBA frame, in path order. The
// registered formats cover png, jpeg, gif, bmp, tiff and webp. A decode
// failure aborts the whole load and names the offending file.
func LoadFrames(paths []string) ([]*image.NRGBA, error) {
	frames := make([]*image.NRGBA, 0, len(paths))
	for _, p := range paths {
		img, err := loadImage(p)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", p, err)
		}
		frames = append(frames, toNRGBA(img))
	}
	return frames, nil
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	return img, err
}

// toNRGBA re-anchors the image at the origin in non-premultiplied RGBA.
// Images that already are origin-anchored NRGBA pass through by reference,
// keeping the RGB bytes of transparent pixels intact.
func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Bounds().Min == (image.Point{}) {
		return n
	}
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Rect, img, b.Min, draw.Src)
	return out
}

// SaveImage writes img as PNG, creating parent directories as needed. PNG
// keeps the alpha channel, which the mask output requires for its slits.
func SaveImage(img image.Image, filename string) error {
	if dir := filepath.Dir(filename); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

// ============ INK PALETTE REPORT ============

// The palette report summarizes the dominant inks of a finished composite
// for print preparation. It is reporting only; outputs are never color
// corrected.

type PaletteMethod int

const (
	PaletteMethodDominantColor PaletteMethod = iota
	PaletteMethodKMeans
)

func (m PaletteMethod) String() string {
	if m == PaletteMethodKMeans {
		return "kmeans"
	}
	return "dominantcolor"
}

func ParsePaletteMethod(s string) (PaletteMethod, error) {
	switch s {
	case "dominantcolor":
		return PaletteMethodDominantColor, nil
	case "kmeans":
		return PaletteMethodKMeans, nil
	}
	return PaletteMethodDominantColor, fmt.Errorf("unknown palette method %q (want dominantcolor or kmeans)", s)
}

// ExtractPalette returns k representative colors of img. KMeans falls back
// to the dominant-color method when clustering comes up empty.
func ExtractPalette(img image.Image, k int, method PaletteMethod) []colorful.Color {
	if method == PaletteMethodKMeans {
		if p := ExtractKMeansPalette(img, k); len(p) != 0 {
			return p
		}
		log.Println("palette warning: kmeans returned empty palette, falling back to dominantcolor")
	}
	return ExtractDominantPalette(img, k)
}

// SortPaletteByBrightness orders colors from darkest to brightest.
func SortPaletteByBrightness(palette []colorful.Color) {
	slices.SortFunc(palette, func(a, b colorful.Color) int {
		ri, gi, bi := a.LinearRgb()
		rj, gj, bj := b.LinearRgb()
		yi := 0.2126*ri + 0.7152*gi + 0.0722*bi
		yj := 0.2126*rj + 0.7152*gj + 0.0722*bj
		if yi < yj {
			return -1
		}
		if yi > yj {
			return 1
		}
		return 0
	})
}

type weightedColor struct {
	col    colorful.Color
	weight float64
}

func ExtractDominantPalette(img image.Image, k int) []colorful.Color {
	if k <= 0 {
		return nil
	}
	candidates := dominantcolor.FindWeight(img, max(24, k*8))
	if len(candidates) == 0 {
		// Keep the report usable even on degenerate inputs.
		candidates = append(candidates, dominantcolor.Color{
			RGBA:   color.RGBA{R: 128, G: 128, B: 128, A: 255},
			Weight: 1.0,
		})
	}
	weighted := make([]weightedColor, 0, len(candidates))
	for _, c := range candidates {
		col, _ := colorful.MakeColor(c.RGBA)
		weighted = append(weighted, weightedColor{col: col.Clamped(), weight: max(c.Weight, 1e-6)})
	}
	return selectDiverseWeighted(weighted, k)
}

func ExtractKMeansPalette(img image.Image, k int) []colorful.Color {
	if k <= 0 {
		return nil
	}
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	if width == 0 || height == 0 {
		return nil
	}

	// Subsample to keep kmeans tractable on large composites.
	maxSamples := 12000
	step := 1
	if width*height > maxSamples {
		step = int(math.Sqrt(float64(width*height)/float64(maxSamples))) + 1
	}

	dataset := make(clusters.Observations, 0, min(width*height, maxSamples))
	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			r16, g16, b16, a16 := img.At(x, y).RGBA()
			if a16 == 0 {
				continue
			}
			dataset = append(dataset, clusters.Coordinates{
				float64(r16) / 65535.0,
				float64(g16) / 65535.0,
				float64(b16) / 65535.0,
			})
		}
	}
	if len(dataset) == 0 {
		return nil
	}

	workK := min(max(k*4, k+2), len(dataset))
	km := kmeans.New()
	cc, err := km.Partition(dataset, workK)
	if err != nil || len(cc) == 0 {
		return nil
	}

	// Rank by cluster population so dominant inks come first.
	slices.SortFunc(cc, func(a, b clusters.Cluster) int {
		return len(b.Observations) - len(a.Observations)
	})

	weighted := make([]weightedColor, 0, len(cc))
	for _, c := range cc {
		if len(c.Center) < 3 {
			continue
		}
		col := colorful.Color{R: c.Center[0], G: c.Center[1], B: c.Center[2]}.Clamped()
		weighted = append(weighted, weightedColor{col: col, weight: max(float64(len(c.Observations)), 1e-6)})
	}
	return selectDiverseWeighted(weighted, k)
}

// selectDiverseWeighted picks k colors favoring both weight and mutual Lab
// distance, seeded with the heaviest candidate.
func selectDiverseWeighted(cands []weightedColor, k int) []colorful.Color {
	if k <= 0 || len(cands) == 0 {
		return nil
	}
	type item struct {
		col colorful.Color
		lab [3]float64
		w   float64
	}
	items := make([]item, len(cands))
	maxW := 0.0
	for i, c := range cands {
		l, a, b := c.col.Lab()
		items[i] = item{col: c.col, lab: [3]float64{l, a, b}, w: c.weight}
		maxW = max(maxW, c.weight)
	}
	if k > len(items) {
		k = len(items)
	}
	if maxW <= 0 {
		maxW = 1.0
	}

	selected := make([]bool, len(items))
	order := make([]int, 0, k)

	seed := 0
	for i := range items {
		if items[i].w > items[seed].w {
			seed = i
		}
	}
	order = append(order, seed)
	selected[seed] = true

	for len(order) < k {
		bestIdx, bestScore := -1, -1.0
		for i := range items {
			if selected[i] {
				continue
			}
			minD2 := math.MaxFloat64
			for _, s := range order {
				d0 := items[i].lab[0] - items[s].lab[0]
				d1 := items[i].lab[1] - items[s].lab[1]
				d2 := items[i].lab[2] - items[s].lab[2]
				minD2 = min(minD2, d0*d0+d1*d1+d2*d2)
			}
			score := math.Sqrt(minD2) * (0.55 + 0.45*math.Sqrt(items[i].w/maxW))
			if score > bestScore {
				bestScore = score
				bestIdx = i
			}
		}
		if bestIdx < 0 {
			break
		}
		selected[bestIdx] = true
		order = append(order, bestIdx)
	}

	out := make([]colorful.Color, len(order))
	for i, idx := range order {
		out[i] = items[idx].col
	}
	return out
}

// SavePalette writes the palette as a horizontal strip of solid tiles.
func SavePalette(palette []colorful.Color, tileSize int, filename string) error {
	if len(palette) == 0 {
		return fmt.Errorf("empty palette")
	}
	if tileSize <= 0 {
		tileSize = 64
	}

	w := tileSize * len(palette)
	h := tileSize
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i, c := range palette {
		r := uint8(max(0, min(255, c.R*255)))
		g := uint8(max(0, min(255, c.G*255)))
		b := uint8(max(0, min(255, c.B*255)))
		x0 := i * tileSize
		for y := 0; y < h; y++ {
			for x := x0; x < x0+tileSize; x++ {
				img.SetRGBA(x, y, color.RGBA{R: r, G: g, B: b, A: 255})
			}
		}
	}
	return SaveImage(img, filename)
}
