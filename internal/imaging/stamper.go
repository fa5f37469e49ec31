package imaging

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// TimestampFormat renders a 12-hour clock timestamp the way the
// original station displays expect: MM-DD-YYYY_HH-MM-SS_AM/PM.
const TimestampFormat = "01-02-2006_03-04-05_PM"

// stampFontSize matches the point size used on the composed radar map.
const stampFontSize = 25

// Stamper burns timestamp strings into composed images. It holds one
// font face for the life of the process.
type Stamper struct {
	face font.Face
}

// NewStamper loads an OpenType face from fontFile. An empty path
// selects the built-in bitmap face, which keeps headless and test
// deployments working without the bundled font asset.
func NewStamper(fontFile string) (*Stamper, error) {
	if fontFile == "" {
		return &Stamper{face: basicfont.Face7x13}, nil
	}

	data, err := os.ReadFile(fontFile)
	if err != nil {
		return nil, fmt.Errorf("reading font file: %w", err)
	}
	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing font file %s: %w", fontFile, err)
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    stampFontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("building font face: %w", err)
	}
	return &Stamper{face: face}, nil
}

// Stamp draws a timestamp onto img at the given pixel offset, black
// fill with no background box. Readability depends on the underlying
// image not being opaque white in that region.
func (s *Stamper) Stamp(img *image.RGBA, at image.Point, ts time.Time) {
	drawer := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Black),
		Face: s.face,
		Dot:  fixed.P(at.X, at.Y),
	}
	drawer.DrawString(ts.Format(TimestampFormat))
}
