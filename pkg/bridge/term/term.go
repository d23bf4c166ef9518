// Package term renders the mounted primitive tree to a terminal.
//
// The renderer keeps its own copy of the tree the engine describes
// through the [bridge.Bridge] calls and redraws it on [Renderer.Flush].
// When the output is a terminal the redraw happens in place with ANSI
// cursor control; otherwise each flush writes one plain-text frame,
// which is what `loom demo --frames` uses for non-terminal output.
package term

import (
	"io"
	"os"
	"strings"
	"unicode/utf8"

	xterm "golang.org/x/term"

	"github.com/loom-dev/loom/pkg/bridge"
)

// ANSI escape sequences
const (
	clearScreen = "\033[2J" // Clear entire screen
	clearLine   = "\033[K"  // Clear from cursor to end of line
	clearBelow  = "\033[J"  // Clear from cursor to end of screen
	cursorHome  = "\033[H"  // Move cursor to home position (1,1)
	cursorHide  = "\033[?25l"
	cursorShow  = "\033[?25h"

	reset  = "\033[0m"
	bold   = "\033[1m"
	dim    = "\033[2m"
	fgCyan = "\033[36m"
)

// Renderer is a [bridge.Bridge] backed by a terminal. It is not safe
// for concurrent use; drive it from the goroutine that pumps the
// engine and call Flush between pumps.
type Renderer struct {
	*bridge.Tree

	out         io.Writer
	interactive bool
	color       bool
	colorSet    bool
	width       int
	frames      int
}

var _ bridge.Bridge = (*Renderer)(nil)

// Option configures a Renderer.
type Option func(*Renderer)

// WithOutput redirects rendering away from standard output. Anything
// that is not a terminal disables in-place redraw.
func WithOutput(w io.Writer) Option {
	return func(r *Renderer) { r.out = w }
}

// WithColor forces ANSI colors on or off. The default follows
// terminal detection.
func WithColor(enabled bool) Option {
	return func(r *Renderer) {
		r.color = enabled
		r.colorSet = true
	}
}

// WithWidth overrides the detected terminal width. Lines longer than
// the width are clipped. Zero means no clipping.
func WithWidth(w int) Option {
	return func(r *Renderer) { r.width = w }
}

// New creates a renderer writing to standard output unless redirected
// with [WithOutput]. Terminal detection decides in-place redraw,
// default colors, and the clipping width.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		Tree: bridge.NewTree(),
		out:  os.Stdout,
	}
	for _, opt := range opts {
		opt(r)
	}
	if f, ok := r.out.(*os.File); ok && xterm.IsTerminal(int(f.Fd())) {
		r.interactive = true
		if r.width == 0 {
			if w, _, err := xterm.GetSize(int(f.Fd())); err == nil {
				r.width = w
			}
		}
	}
	if !r.colorSet {
		r.color = r.interactive
	}
	return r
}

// Interactive reports whether the output is a terminal.
func (r *Renderer) Interactive() bool {
	return r.interactive
}

// Frames reports how many frames have been flushed.
func (r *Renderer) Frames() int {
	return r.frames
}

// Begin prepares the terminal for in-place rendering: hides the
// cursor and clears the screen. No-op for non-terminal output.
func (r *Renderer) Begin() {
	if !r.interactive {
		return
	}
	io.WriteString(r.out, cursorHide+clearScreen+cursorHome)
}

// End restores the cursor. Call it when rendering is over, typically
// deferred next to Begin.
func (r *Renderer) End() {
	if !r.interactive {
		return
	}
	io.WriteString(r.out, cursorShow)
}

// Flush draws the current tree. In-place rendering homes the cursor,
// overwrites every line, and clears whatever the previous frame left
// below; plain rendering appends one frame to the output.
func (r *Renderer) Flush() error {
	var b strings.Builder
	if r.interactive {
		b.WriteString(cursorHome)
	}
	for _, root := range r.Roots() {
		r.renderNode(&b, root, 0)
	}
	if r.interactive {
		b.WriteString(clearBelow)
	}
	r.frames++
	_, err := io.WriteString(r.out, b.String())
	return err
}

// renderNode writes the lines for one subtree. Boxes are layout only:
// they print nothing themselves and indent their children one level.
func (r *Renderer) renderNode(b *strings.Builder, h bridge.Handle, depth int) {
	desc, _ := r.Desc(h)
	switch desc.Kind {
	case bridge.KindBox:
		for _, c := range r.Children(h) {
			r.renderNode(b, c, depth+1)
		}
	case bridge.KindText:
		for _, line := range strings.Split(desc.Text, "\n") {
			r.line(b, depth, line, "")
		}
	case bridge.KindImage:
		r.line(b, depth, "<"+desc.Image+">", dim)
	case bridge.KindButton:
		label := r.label(h)
		if label == "" {
			r.line(b, depth, "[ ]", bold+fgCyan)
		} else {
			r.line(b, depth, "[ "+label+" ]", bold+fgCyan)
		}
	}
}

// label flattens a container's content into a single line, joining
// the payloads of descendant leaves with spaces.
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

func (r *Renderer) line(b *strings.Builder, depth int, text, style string) {
	s := clip(strings.Repeat("  ", depth)+text, r.width)
	if style != "" && r.color {
		s = style + s + reset
	}
	b.WriteString(s)
	if r.interactive {
		b.WriteString(clearLine)
		b.WriteString("\r\n")
	} else {
		b.WriteByte('\n')
	}
}

// clip truncates s to width runes, marking the cut with an ellipsis.
// Escape codes are applied after clipping, so width counts only
// visible characters.
func clip(s string, width int) string {
	if width <= 0 || utf8.RuneCountInString(s) <= width {
		return s
	}
	runes := []rune(s)
	if width == 1 {
		return "…"
	}
	return string(runes[:width-1]) + "…"
}
