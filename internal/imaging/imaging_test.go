package imaging

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solidRGBA(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	src := solidRGBA(4, 4, color.RGBA{R: 10, G: 20, B: 30, A: 255})

	data, err := EncodePNG(src)
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, src.Bounds(), decoded.Bounds())
	assert.Equal(t, color.RGBA{R: 10, G: 20, B: 30, A: 255}, ToRGBA(decoded).RGBAAt(1, 1))
}

func TestDecode_Garbage(t *testing.T) {
	_, err := Decode([]byte("not an image"))
	assert.Error(t, err)
}

func TestResize(t *testing.T) {
	src := solidRGBA(30, 10, color.RGBA{R: 200, A: 255})

	dst := Resize(src, 900, 900)
	assert.Equal(t, image.Rect(0, 0, 900, 900), dst.Bounds())
	assert.Equal(t, uint8(200), dst.RGBAAt(450, 450).R)
}

func TestCrop(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 10, 10))
	src.SetRGBA(5, 5, color.RGBA{G: 255, A: 255})

	dst := Crop(src, image.Rect(4, 4, 8, 8))
	assert.Equal(t, image.Rect(0, 0, 4, 4), dst.Bounds())
	assert.Equal(t, uint8(255), dst.RGBAAt(1, 1).G)
}

func TestCrop_Degenerate(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 10, 10))

	// Reversed rectangle collapses instead of panicking.
	dst := Crop(src, image.Rectangle{Min: image.Pt(8, 8), Max: image.Pt(2, 2)})
	assert.Equal(t, image.Rect(0, 0, 1, 1), dst.Bounds())
}

func TestAlphaComposite(t *testing.T) {
	base := solidRGBA(2, 2, color.RGBA{R: 255, A: 255})
	overlay := image.NewRGBA(image.Rect(0, 0, 2, 2))
	overlay.SetRGBA(0, 0, color.RGBA{B: 255, A: 255})

	out := AlphaComposite(base, overlay)
	// Opaque overlay pixel replaces the base pixel.
	assert.Equal(t, color.RGBA{B: 255, A: 255}, out.RGBAAt(0, 0))
	// Transparent overlay pixels leave the base untouched.
	assert.Equal(t, color.RGBA{R: 255, A: 255}, out.RGBAAt(1, 1))
	// Inputs are not mutated.
	assert.Equal(t, color.RGBA{R: 255, A: 255}, base.RGBAAt(0, 0))
}

func TestWritePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.png")
	require.NoError(t, WritePNG(path, solidRGBA(3, 3, color.RGBA{A: 255})))

	img, err := DecodeFile(path)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 3, 3), img.Bounds())
}

func TestStamper_Stamp(t *testing.T) {
	stamper, err := NewStamper("")
	require.NoError(t, err)

	img := solidRGBA(200, 50, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	stamper.Stamp(img, image.Pt(5, 30), time.Date(2023, 4, 5, 13, 2, 3, 0, time.UTC))

	// Some pixels must have been darkened by the text.
	darkened := 0
	for y := 0; y < 50; y++ {
		for x := 0; x < 200; x++ {
			if img.RGBAAt(x, y).R < 128 {
				darkened++
			}
		}
	}
	assert.Greater(t, darkened, 0)
}

func TestStamper_MissingFontFile(t *testing.T) {
	_, err := NewStamper(filepath.Join(t.TempDir(), "nope.otf"))
	assert.Error(t, err)
}

func TestTimestampFormat(t *testing.T) {
	ts := time.Date(2023, 4, 5, 13, 2, 3, 0, time.UTC)
	assert.Equal(t, "04-05-2023_01-02-03_PM", ts.Format(TimestampFormat))
}
