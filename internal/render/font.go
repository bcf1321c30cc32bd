package render

import (
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

var (
	regularFont = sync.OnceValue(func() *truetype.Font { return mustParse(goregular.TTF) })
	boldFont    = sync.OnceValue(func() *truetype.Font { return mustParse(gobold.TTF) })
)

func mustParse(ttf []byte) *truetype.Font {
	f, err := truetype.Parse(ttf)
	if err != nil {
		return nil
	}
	return f
}

type faceKey struct {
	size float64
	bold bool
}

// faces caches font faces for one canvas. Faces carry glyph caches and are
// not safe for concurrent use, so each canvas owns its own set.
type faces struct {
	m map[faceKey]font.Face
}

// face returns a Go font face at the given pixel size, or the fixed 7x13
// bitmap face when the embedded font cannot be parsed.
func (f *faces) face(size float64, bold bool) font.Face {
	if size <= 0 {
		size = 12
	}
	k := faceKey{size: size, bold: bold}
	if face, ok := f.m[k]; ok {
		return face
	}
	if f.m == nil {
		f.m = make(map[faceKey]font.Face)
	}
	ttf := regularFont()
	if bold {
		ttf = boldFont()
	}
	var face font.Face = basicfont.Face7x13
	if ttf != nil {
		face = truetype.NewFace(ttf, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingFull})
	}
	f.m[k] = face
	return face
}

// measure returns the advance width of s in pixels.
func (f *faces) measure(s string, size float64, bold bool) float64 {
	return float64(font.MeasureString(f.face(size, bold), s)) / 64
}
