package utils

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/require"
)

func TestParseExtList(t *testing.T) {
	require.Equal(t, []string{"png", "jpg", "tiff"}, ParseExtList(" .PNG, jpg ,,tiff ,"))
	require.Nil(t, ParseExtList(""))
	require.Nil(t, ParseExtList(" , ."))
}

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestCollectNaturalOrder(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"frame10.png", "frame2.PNG", "frame1.png", "notes.txt"} {
		writeFile(t, filepath.Join(dir, name))
	}

	files, err := Collect(dir, []string{"png"}, false)
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(dir, "frame1.png"),
		filepath.Join(dir, "frame2.PNG"),
		filepath.Join(dir, "frame10.png"),
	}, files)
}

func TestCollectRecursive(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.png"))
	writeFile(t, filepath.Join(dir, "sub", "b.png"))

	flat, err := Collect(dir, []string{"png"}, false)
	require.NoError(t, err)
	require.Len(t, flat, 1)

	deep, err := Collect(dir, []string{"png"}, true)
	require.NoError(t, err)
	require.Len(t, deep, 2)
}

func TestCollectMissingDir(t *testing.T) {
	_, err := Collect(filepath.Join(t.TempDir(), "nope"), []string{"png"}, false)
	require.Error(t, err)
}

func savePNG(t *testing.T, img image.Image, path string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestLoadFrames(t *testing.T) {
	dir := t.TempDir()
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	src.SetNRGBA(0, 0, color.NRGBA{R: 200, G: 10, B: 30, A: 255})
	src.SetNRGBA(1, 1, color.NRGBA{R: 5, G: 5, B: 250, A: 255})
	path := filepath.Join(dir, "f.png")
	savePNG(t, src, path)

	frames, err := LoadFrames([]string{path, path})
	require.NoError(t, err)
	require.Len(t, frames, 2)
	require.Equal(t, image.Rect(0, 0, 2, 2), frames[0].Bounds())
	require.Equal(t, color.NRGBA{R: 200, G: 10, B: 30, A: 255}, frames[0].NRGBAAt(0, 0))
	require.Equal(t, color.NRGBA{R: 5, G: 5, B: 250, A: 255}, frames[1].NRGBAAt(1, 1))
}

func TestLoadFramesNamesBadFile(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "broken.png")
	writeFile(t, bad)

	_, err := LoadFrames([]string{bad})
	require.Error(t, err)
	require.Contains(t, err.Error(), "broken.png")
}

func TestSaveImageCreatesParents(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "nested", "deep", "img.png")
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))

	require.NoError(t, SaveImage(img, out))

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	decoded, err := png.Decode(f)
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 1, 1), decoded.Bounds())
}

func TestSortPaletteByBrightness(t *testing.T) {
	palette := []colorful.Color{
		{R: 1, G: 1, B: 1},
		{R: 0, G: 0, B: 0},
		{R: 0.5, G: 0.5, B: 0.5},
	}
	SortPaletteByBrightness(palette)
	require.Equal(t, colorful.Color{R: 0, G: 0, B: 0}, palette[0])
	require.Equal(t, colorful.Color{R: 1, G: 1, B: 1}, palette[2])
}

func TestParsePaletteMethod(t *testing.T) {
	m, err := ParsePaletteMethod("kmeans")
	require.NoError(t, err)
	require.Equal(t, PaletteMethodKMeans, m)

	_, err = ParsePaletteMethod("median-cut")
	require.Error(t, err)
}

func TestSavePaletteDimensions(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "palette.png")
	palette := []colorful.Color{{R: 1}, {G: 1}, {B: 1}}

	require.NoError(t, SavePalette(palette, 8, out))

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	decoded, err := png.Decode(f)
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 24, 8), decoded.Bounds())

	require.Error(t, SavePalette(nil, 8, filepath.Join(dir, "empty.png")))
}
