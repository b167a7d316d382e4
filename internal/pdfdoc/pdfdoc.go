// Package pdfdoc wraps pdfcpu for the PDF utility tools and for assembling
// scanned pages into a document. Every operation takes the input document
// as bytes and returns the complete output, or an error and no output.
package pdfdoc

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var (
	ErrNoPages          = errors.New("no pages selected")
	ErrNoInput          = errors.New("no input documents")
	ErrInvalidRotation  = errors.New("rotation must be a multiple of 90 degrees")
	ErrNothingToStamp   = errors.New("header or footer text is required")
	ErrInvalidParameter = errors.New("invalid parameter")
)

// LibraryError is a failure reported by pdfcpu, usually a malformed input.
type LibraryError struct {
	Op  string
	Err error
}

func (e *LibraryError) Error() string {
	return fmt.Sprintf("pdf %s failed: %v", e.Op, e.Err)
}

func (e *LibraryError) Unwrap() error { return e.Err }

var disableConfigDir sync.Once

// Processor runs PDF operations in private temporary directories.
type Processor struct {
	tmpDir string
}

// NewProcessor returns a Processor that creates its scratch directories in
// tmpDir, or in the system temp directory when tmpDir is empty.
func NewProcessor(tmpDir string) *Processor {
	// pdfcpu otherwise creates a config directory under the user's home.
	disableConfigDir.Do(api.DisableConfigDir)
	return &Processor{tmpDir: tmpDir}
}

func (p *Processor) config() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// workspace is a scratch directory that lives for one operation.
type workspace struct {
	op  string
	dir string
}

func (p *Processor) workspace(op string) (*workspace, error) {
	dir, err := os.MkdirTemp(p.tmpDir, "pdfscan-"+op+"-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}
	return &workspace{op: op, dir: dir}, nil
}

func (w *workspace) path(name string) string {
	return filepath.Join(w.dir, name)
}

func (w *workspace) write(name string, data []byte) (string, error) {
	path := w.path(name)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	return path, nil
}

func (w *workspace) read(name string) ([]byte, error) {
	data, err := os.ReadFile(w.path(name))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}

func (w *workspace) close() {
	_ = os.RemoveAll(w.dir)
}

// libErr tags a pdfcpu failure with the operation that produced it.
// Parameter errors raised by this package pass through unchanged.
func (w *workspace) libErr(err error) error {
	if err == nil {
		return nil
	}
	var libErr *LibraryError
	if errors.As(err, &libErr) || isParamErr(err) {
		return err
	}
	return &LibraryError{Op: w.op, Err: err}
}

func isParamErr(err error) bool {
	for _, target := range []error{ErrNoPages, ErrNoInput, ErrInvalidRotation, ErrNothingToStamp, ErrInvalidParameter} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// transform writes doc as input.pdf, runs fn(in, out) and returns output.pdf.
func (p *Processor) transform(op string, doc []byte, fn func(in, out string) error) ([]byte, error) {
	if len(doc) == 0 {
		return nil, ErrNoInput
	}
	ws, err := p.workspace(op)
	if err != nil {
		return nil, err
	}
	defer ws.close()

	in, err := ws.write("input.pdf", doc)
	if err != nil {
		return nil, err
	}
	out := ws.path("output.pdf")
	if err := fn(in, out); err != nil {
		return nil, ws.libErr(err)
	}
	return ws.read("output.pdf")
}

// PageCount returns the number of pages in doc.
func (p *Processor) PageCount(doc []byte) (int, error) {
	if len(doc) == 0 {
		return 0, ErrNoInput
	}
	ws, err := p.workspace("count")
	if err != nil {
		return 0, err
	}
	defer ws.close()

	in, err := ws.write("input.pdf", doc)
	if err != nil {
		return 0, err
	}
	n, err := api.PageCountFile(in)
	if err != nil {
		return 0, ws.libErr(err)
	}
	return n, nil
}

// Validate checks that doc is a readable PDF.
func (p *Processor) Validate(doc []byte) error {
	if len(doc) == 0 {
		return ErrNoInput
	}
	ws, err := p.workspace("validate")
	if err != nil {
		return err
	}
	defer ws.close()

	in, err := ws.write("input.pdf", doc)
	if err != nil {
		return err
	}
	return ws.libErr(api.ValidateFile(in, p.config()))
}
