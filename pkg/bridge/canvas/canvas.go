// Package canvas rasterizes the mounted primitive tree to an image.
//
// The renderer is a [bridge.Bridge] like the terminal one, but draws
// frames into an [image.RGBA] instead of a character grid. The demo
// uses it for PNG snapshots; tests use it to diff frames pixel by
// pixel.
package canvas

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/loom-dev/loom/pkg/bridge"
)

// Layout metrics, in pixels.
const (
	indentPx   = 14 // per nesting level
	buttonPadX = 6
	buttonPadY = 2
	imagePadX  = 3
	rowLeading = 2
)

var (
	paper  = color.RGBA{0xff, 0xff, 0xff, 0xff}
	ink    = color.RGBA{0x1a, 0x1a, 0x1a, 0xff}
	muted  = color.RGBA{0x8a, 0x8a, 0x8a, 0xff}
	accent = color.RGBA{0x23, 0x6b, 0xa4, 0xff}
	onAcc  = color.RGBA{0xf5, 0xf8, 0xfb, 0xff}
)

// Renderer is a [bridge.Bridge] that rasterizes the tree on demand.
// Like the other renderers it is single-threaded; rasterize between
// pumps, not during them.
type Renderer struct {
	*bridge.Tree

	face    font.Face
	bg      color.RGBA
	pad     int
	fixedW  int
	fixedH  int
}

var _ bridge.Bridge = (*Renderer)(nil)

// Option configures a Renderer.
type Option func(*Renderer)

// WithBackground sets the frame background color.
func WithBackground(c color.RGBA) Option {
	return func(r *Renderer) { r.bg = c }
}

// WithPadding sets the margin around the content, in pixels.
func WithPadding(px int) Option {
	return func(r *Renderer) { r.pad = px }
}

// WithSize fixes the frame dimensions. The default sizes each frame
// to its content.
func WithSize(w, h int) Option {
	return func(r *Renderer) {
		r.fixedW = w
		r.fixedH = h
	}
}

// New creates a renderer drawing with the bundled bitmap font.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		Tree: bridge.NewTree(),
		face: basicfont.Face7x13,
		bg:   paper,
		pad:  8,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// row is one laid-out line of the frame. Boxes contribute no rows,
// only indentation.
type row struct {
	depth int
	text  string
	kind  bridge.Kind
}

// Rasterize draws the current tree into a fresh image. Frame size
// follows the content unless fixed with [WithSize].
func (r *Renderer) Rasterize() *image.RGBA {
	var rows []row
	for _, root := range r.Roots() {
		r.collect(&rows, root, 0)
	}

	metrics := r.face.Metrics()
	ascent := metrics.Ascent.Ceil()
	rowH := metrics.Height.Ceil() + 2*buttonPadY + rowLeading

	w, h := r.fixedW, r.fixedH
	if w == 0 {
		for _, rw := range rows {
			if adv := r.pad*2 + indentPx*rw.depth + r.contentWidth(rw); adv > w {
				w = adv
			}
		}
		if w < r.pad*2 {
			w = r.pad * 2
		}
	}
	if h == 0 {
		h = r.pad*2 + len(rows)*rowH
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(r.bg), image.Point{}, draw.Src)

	for i, rw := range rows {
		x := r.pad + indentPx*rw.depth
		top := r.pad + i*rowH
		baseline := top + buttonPadY + ascent + rowLeading/2

		switch rw.kind {
		case bridge.KindText:
			r.drawString(img, rw.text, x, baseline, ink)

		case bridge.KindImage:
			textW := font.MeasureString(r.face, rw.text).Ceil()
			box := image.Rect(x, top, x+textW+2*imagePadX, top+rowH-rowLeading)
			strokeRect(img, box, muted)
			r.drawString(img, rw.text, x+imagePadX, baseline, muted)

		case bridge.KindButton:
			textW := font.MeasureString(r.face, rw.text).Ceil()
			box := image.Rect(x, top, x+textW+2*buttonPadX, top+rowH-rowLeading)
			draw.Draw(img, box, image.NewUniform(accent), image.Point{}, draw.Src)
			r.drawString(img, rw.text, x+buttonPadX, baseline, onAcc)
		}
	}
	return img
}

// EncodePNG rasterizes the current tree and writes it as PNG.
func (r *Renderer) EncodePNG(w io.Writer) error {
	return png.Encode(w, r.Rasterize())
}

// collect walks one subtree into rows, splitting multi-line text the
// way the terminal renderer does and flattening button content into
// a single label.
func (r *Renderer) collect(rows *[]row, h bridge.Handle, depth int) {
	desc, _ := r.Desc(h)
	switch desc.Kind {
	case bridge.KindBox:
		for _, c := range r.Children(h) {
			r.collect(rows, c, depth+1)
		}
	case bridge.KindText:
		for _, line := range strings.Split(desc.Text, "\n") {
			*rows = append(*rows, row{depth: depth, text: line, kind: bridge.KindText})
		}
	case bridge.KindImage:
		*rows = append(*rows, row{depth: depth, text: "<" + desc.Image + ">", kind: bridge.KindImage})
	case bridge.KindButton:
		*rows = append(*rows, row{depth: depth, text: r.label(h), kind: bridge.KindButton})
	}
}

func (r *Renderer) label(h bridge.Handle) string {
	kids := r.Children(h)
	parts := make([]string, 0, len(kids))
	for _, c := range kids {
		var s string
		switch desc, _ := r.Desc(c); desc.Kind {
		case bridge.KindText:
			s = strings.ReplaceAll(desc.Text, "\n", " ")
		case bridge.KindImage:
			s = "<" + desc.Image + ">"
		default:
			s = r.label(c)
		}
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

func (r *Renderer) contentWidth(rw row) int {
	textW := font.MeasureString(r.face, rw.text).Ceil()
	switch rw.kind {
	case bridge.KindButton:
		return textW + 2*buttonPadX
	case bridge.KindImage:
		return textW + 2*imagePadX
	default:
		return textW
	}
}

func (r *Renderer) drawString(img *image.RGBA, s string, x, baseline int, c color.RGBA) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: r.face,
		Dot:  fixed.P(x, baseline),
	}
	d.DrawString(s)
}

// strokeRect draws a one-pixel border just inside rect.
func strokeRect(img *image.RGBA, rect image.Rectangle, c color.RGBA) {
	src := image.NewUniform(c)
	draw.Draw(img, image.Rect(rect.Min.X, rect.Min.Y, rect.Max.X, rect.Min.Y+1), src, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(rect.Min.X, rect.Max.Y-1, rect.Max.X, rect.Max.Y), src, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(rect.Min.X, rect.Min.Y, rect.Min.X+1, rect.Max.Y), src, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(rect.Max.X-1, rect.Min.Y, rect.Max.X, rect.Max.Y), src, image.Point{}, draw.Src)
}
