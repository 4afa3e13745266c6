// Command scanimation interlaces the image frames found in a folder into a
// single base image and, optionally, the matching grille mask.
package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/cenkalti/dominantcolor"
	"github.com/lucasb-eyer/go-colorful"

	scanimation "github.com/GoJasper57/scanimation-generator"
	"github.com/GoJasper57/scanimation-generator/utils"
)

const defaultExts = "png,jpg,jpeg,webp,bmp,gif,tif,tiff"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "[ERROR]", err)
		os.Exit(1)
	}
}

func run() error {
	dir := flag.String("dir", ".", "folder containing frames")
	recursive := flag.Bool("recursive", false, "recurse into subfolders")
	exts := flag.String("exts", defaultExts, "comma-separated extensions to include")
	sliceSize := flag.Int("slice", 1, "stripe/visible slit size in pixels")
	direction := flag.String("direction", "vertical", "stripe direction: vertical (left-right slide) or horizontal (up-down slide)")
	resize := flag.String("resize", "first", "resize strategy to unify frames: first=match first frame, min=fit to smallest width/height")
	outBase := flag.String("out-base", "scanimation_base.png", "output filename for the interlaced base")
	outMask := flag.String("out-mask", "", "also export the periodic grille mask (PNG)")
	forceRGB := flag.Bool("force-rgb", false, "drop the alpha channel (useful for some printers)")
	whiteBG := flag.Bool("white-bg", false, "composite onto a solid white background")
	bgHex := flag.String("bg", "", "composite onto a solid background color (hex, e.g. #ffeecc)")
	maskInk := flag.String("mask-ink", "#000000", "grille ink color (hex)")
	outPalette := flag.String("out-palette", "", "save an ink report strip of the base's dominant colors")
	paletteSize := flag.Int("palette-size", 5, "number of colors in the ink report")
	paletteMethod := flag.String("palette-method", "dominantcolor", "ink report method: dominantcolor or kmeans")
	audit := flag.Bool("audit", false, "print per-frame diagnostics and duplicate-frame warnings")
	flag.Parse()

	dirv, err := scanimation.ParseDirection(*direction)
	if err != nil {
		return err
	}
	strategy, err := scanimation.ParseResizeStrategy(*resize)
	if err != nil {
		return err
	}
	method, err := utils.ParsePaletteMethod(*paletteMethod)
	if err != nil {
		return err
	}
	ink, err := parseHexColor(*maskInk)
	if err != nil {
		return fmt.Errorf("mask ink: %w", err)
	}

	folder, err := filepath.Abs(*dir)
	if err != nil {
		return err
	}
	if info, err := os.Stat(folder); err != nil || !info.IsDir() {
		return fmt.Errorf("folder not found: %s", folder)
	}

	extList := utils.ParseExtList(*exts)
	files, err := utils.Collect(folder, extList, *recursive)
	if err != nil {
		return err
	}
	if len(files) < 2 {
		return fmt.Errorf("found %d image(s) in %s with exts %v, need at least 2", len(files), folder, extList)
	}

	fmt.Printf("[INFO] Collected %d frame(s) from %s:\n", len(files), folder)
	for _, f := range files {
		fmt.Println("  -", filepath.Base(f))
	}

	frames, err := utils.LoadFrames(files)
	if err != nil {
		return err
	}
	if *audit {
		auditReport(frames)
	}

	// Flatten precedence: -white-bg beats -bg, and either beats -force-rgb.
	mode := scanimation.CompositeNone
	customBG := ""
	switch {
	case *whiteBG:
		mode = scanimation.CompositeWhite
	case *bgHex != "":
		customBG = *bgHex
	case *forceRGB:
		mode = scanimation.CompositeDropAlpha
	}

	base, g, err := scanimation.Encode(frames, scanimation.Options{
		Slice:     *sliceSize,
		Direction: dirv,
		Resize:    strategy,
		Mode:      mode,
	})
	if err != nil {
		return err
	}
	if customBG != "" {
		bg, err := parseHexColor(customBG)
		if err != nil {
			return fmt.Errorf("background: %w", err)
		}
		base = scanimation.CompositeOver(base, bg)
	}

	var baseErr, maskErr error
	if baseErr = utils.SaveImage(base, *outBase); baseErr == nil {
		fmt.Printf("[OK] Base saved -> %s  (size: %dx%d, frames: %d, slice: %d, dir: %s)\n",
			*outBase, g.Width, g.Height, g.Frames, *sliceSize, g.Direction)
	}

	// The mask run is independent of the base write outcome.
	if *outMask != "" {
		mask := scanimation.InkMask(g, ink)
		if maskErr = utils.SaveImage(mask, *outMask); maskErr == nil {
			fmt.Printf("[OK] Mask saved -> %s  (period: %d px)\n", *outMask, g.Period())
		}
	}
	if err := errors.Join(baseErr, maskErr); err != nil {
		return err
	}

	if *outPalette != "" {
		palette := utils.ExtractPalette(base, *paletteSize, method)
		utils.SortPaletteByBrightness(palette)
		if err := utils.SavePalette(palette, 64, *outPalette); err != nil {
			return err
		}
		fmt.Printf("[OK] Ink report saved -> %s  (%d colors, method: %s)\n", *outPalette, len(palette), method)
	}
	return nil
}

func auditReport(frames []*image.NRGBA) {
	for _, info := range scanimation.Describe(frames) {
		fmt.Printf("[INFO] frame %d: %dx%d  dominant=%s  luminance=%.3f\n",
			info.Index, info.Width, info.Height, dominantcolor.Hex(info.Dominant), info.Luminance)
	}
	for _, i := range scanimation.DuplicateFrames(frames) {
		fmt.Printf("[WARN] frames %d and %d look identical; the reveal will stutter there\n", i, i+1)
	}
}

func parseHexColor(s string) (color.NRGBA, error) {
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return color.NRGBA{}, err
	}
	return color.NRGBA{
		R: uint8(max(0, min(255, c.R*255+0.5))),
		G: uint8(max(0, min(255, c.G*255+0.5))),
		B: uint8(max(0, min(255, c.B*255+0.5))),
		A: 255,
	}, nil
}
