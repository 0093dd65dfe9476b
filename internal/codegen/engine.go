package codegen

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"sync"

	svg "github.com/ajstarks/svgo"
	qrcode "github.com/skip2/go-qrcode"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"go-codegen-pipeline/internal/model"
)

// Matrix geometry: pixels per module and quiet-zone width in modules.
const (
	matrixBoxSize = 10
	matrixBorder  = 2
)

// Linear geometry in millimeters.
const (
	linearModuleMm    = 0.25
	linearBarHeightMm = 18.0
	linearQuietZoneMm = 2.0
	captionGapPx      = 4
)

// encoded is the most recently encoded structure, before any styling.
type encoded struct {
	family  model.CodeFamily
	value   string
	bitmap  [][]bool // matrix modules, row-major
	modules []bool   // linear bar pattern
	backend string
}

// Engine renders normalized values into sized raster images. It is safe
// for concurrent use and keeps a single-entry cache keyed on the value.
type Engine struct {
	linear []LinearBackend

	mu   sync.Mutex
	last *encoded
}

// Option configures an Engine.
type Option func(*Engine)

// WithLinearBackends replaces the linear fallback chain.
func WithLinearBackends(b ...LinearBackend) Option {
	return func(e *Engine) { e.linear = b }
}

// NewEngine returns an Engine using the default linear fallback chain unless overridden.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{linear: LinearBackendsByName(DefaultLinearBackends)}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Render normalizes value and returns it as an image of the configured size.
func (e *Engine) Render(value string, cfg model.GenerationConfig) (image.Image, error) {
	fg, err := ParseColor(cfg.Foreground)
	if err != nil {
		return nil, err
	}
	bg, err := ParseColor(cfg.Background)
	if err != nil {
		return nil, err
	}
	data := Normalize(value, cfg)
	enc, err := e.encode(data, cfg.Family)
	if err != nil {
		return nil, err
	}

	var src image.Image
	if cfg.Family == model.FamilyLinear {
		src = drawLinear(enc.modules, data, fg, bg)
	} else {
		src = drawMatrix(enc.bitmap, fg, bg)
	}
	size := cfg.ActiveSize()
	return Resize(src, CmToPx(size.WidthCm), CmToPx(size.HeightCm), size.KeepRatio), nil
}

// RenderSVG writes a matrix code as SVG sized in millimeters. Linear codes
// have no vector form.
func (e *Engine) RenderSVG(w io.Writer, value string, cfg model.GenerationConfig) error {
	if cfg.Family != model.FamilyMatrix {
		return fmt.Errorf("%w, not %s", ErrVectorUnsupported, cfg.Family)
	}
	fg, err := ParseColor(cfg.Foreground)
	if err != nil {
		return err
	}
	bg, err := ParseColor(cfg.Background)
	if err != nil {
		return err
	}
	enc, err := e.encode(Normalize(value, cfg), model.FamilyMatrix)
	if err != nil {
		return err
	}

	n := len(enc.bitmap) + 2*matrixBorder
	attrs := []string{fmt.Sprintf(`viewBox="0 0 %d %d"`, n, n)}
	if !cfg.Matrix.KeepRatio {
		attrs = append(attrs, `preserveAspectRatio="none"`)
	}
	canvas := svg.New(w)
	canvas.Startunit(
		max(int(math.Round(cfg.Matrix.WidthCm*10)), 1),
		max(int(math.Round(cfg.Matrix.HeightCm*10)), 1),
		"mm", attrs...,
	)
	canvas.Rect(0, 0, n, n, "fill:"+hexColor(bg))
	for y, row := range enc.bitmap {
		for x, dark := range row {
			if dark {
				canvas.Rect(x+matrixBorder, y+matrixBorder, 1, 1, "fill:"+hexColor(fg))
			}
		}
	}
	canvas.End()
	return nil
}

func (e *Engine) encode(data string, family model.CodeFamily) (*encoded, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.last != nil && e.last.family == family && e.last.value == data {
		return e.last, nil
	}

	enc := &encoded{family: family, value: data}
	if family == model.FamilyLinear {
		mods, backend, err := encodeLinear(e.linear, data)
		if err != nil {
			return nil, err
		}
		enc.modules, enc.backend = mods, backend
	} else {
		q, err := qrcode.New(data, qrcode.Medium)
		if err != nil {
			return nil, fmt.Errorf("encode matrix code: %w", err)
		}
		q.DisableBorder = true
		enc.bitmap = q.Bitmap()
	}
	e.last = enc
	return enc, nil
}

// LastBackend reports which linear backend produced the cached pattern, if any.
func (e *Engine) LastBackend() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.last == nil {
		return ""
	}
	return e.last.backend
}

func drawMatrix(bitmap [][]bool, fg, bg color.RGBA) *image.RGBA {
	side := (len(bitmap) + 2*matrixBorder) * matrixBoxSize
	img := image.NewRGBA(image.Rect(0, 0, side, side))
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	dark := image.NewUniform(fg)
	for y, row := range bitmap {
		for x, on := range row {
			if !on {
				continue
			}
			px := (x + matrixBorder) * matrixBoxSize
			py := (y + matrixBorder) * matrixBoxSize
			draw.Draw(img, image.Rect(px, py, px+matrixBoxSize, py+matrixBoxSize), dark, image.Point{}, draw.Src)
		}
	}
	return img
}

// drawLinear lays out bars with quiet zones and a human-readable caption.
func drawLinear(modules []bool, caption string, fg, bg color.RGBA) *image.RGBA {
	modW := MmToPx(linearModuleMm)
	barH := MmToPx(linearBarHeightMm)
	quiet := MmToPx(linearQuietZoneMm)
	face := basicfont.Face7x13

	barsW := len(modules) * modW
	textW := font.MeasureString(face, caption).Ceil()
	w := max(barsW, textW) + 2*quiet
	h := barH + captionGapPx + face.Height + quiet

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	dark := image.NewUniform(fg)
	left := (w - barsW) / 2
	for i, on := range modules {
		if on {
			x := left + i*modW
			draw.Draw(img, image.Rect(x, quiet/2, x+modW, quiet/2+barH), dark, image.Point{}, draw.Src)
		}
	}

	d := &font.Drawer{
		Dst:  img,
		Src:  dark,
		Face: face,
		Dot:  fixed.P((w-textW)/2, quiet/2+barH+captionGapPx+face.Ascent),
	}
	d.DrawString(caption)
	return img
}
