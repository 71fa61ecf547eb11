package shell

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"sync/atomic"

	"go.uber.org/zap"
)

var fallbackTmpl = template.Must(template.New("fallback").Parse(
	`<section id="{{.}}" class="section section-fallback" role="alert">` +
		`<p>This section could not be displayed.</p>` +
		`<button type="button" onclick="window.location.reload()">Reload page</button>` +
		`</section>`))

// Boundary contains rendering failures. A section that errors or panics is
// replaced by a static fallback and the rest of the page keeps rendering.
type Boundary struct {
	log      *zap.Logger
	failures atomic.Int64
}

// NewBoundary creates a boundary.
func NewBoundary(logger *zap.Logger) *Boundary {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Boundary{log: logger}
}

// Render runs fn into a buffer and copies the result to w. If fn fails,
// nothing it wrote reaches w; the fallback for name is written instead.
// The returned error is only ever a write error on w.
func (b *Boundary) Render(w io.Writer, name string, fn func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := b.capture(&buf, name, fn); err != nil {
		b.failures.Add(1)
		b.log.Error("section render failed, using fallback", zap.String("section", name), zap.Error(err))
		return fallbackTmpl.Execute(w, name)
	}
	_, err := buf.WriteTo(w)
	return err
}

func (b *Boundary) capture(buf *bytes.Buffer, name string, fn func(io.Writer) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("render %s panicked: %v", name, r)
		}
	}()
	return fn(buf)
}

// Failures reports how many renders fell back.
func (b *Boundary) Failures() int64 {
	return b.failures.Load()
}
