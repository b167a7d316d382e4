// Package scanner turns batches of captured or uploaded images into
// scanned pages, running each image through the enhancement pipeline.
package scanner

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log/slog"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lehigh-university-libraries/pdfscan/internal/enhance"
	"github.com/lehigh-university-libraries/pdfscan/internal/models"
	"golang.org/x/sync/errgroup"
)

// Input is one source image in submission order.
type Input struct {
	Name        string
	ContentType string
	Data        []byte
	// Err is set when the source could not be read; it becomes the outcome.
	Err error
}

// Outcome is the result for the input at the same index.
type Outcome struct {
	Index int
	Name  string
	Page  *models.ScannedPage
	Err   error
}

// Scanner processes batches with a shared pipeline.
type Scanner struct {
	pipeline *enhance.Pipeline
	workers  int
	now      func() time.Time
}

// New creates a Scanner. workers bounds how many images are processed at
// once; workers <= 0 means GOMAXPROCS.
func New(pipeline *enhance.Pipeline, workers int) *Scanner {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Scanner{
		pipeline: pipeline,
		workers:  workers,
		now:      time.Now,
	}
}

// ProcessBatch runs every input through the pipeline. The returned slice is
// index-aligned with inputs; a failed input carries its error and does not
// affect the others. If ctx is cancelled, inputs that have not started
// report the context error.
func (s *Scanner) ProcessBatch(ctx context.Context, inputs []Input) []Outcome {
	outcomes := make([]Outcome, len(inputs))

	// Workers never return an error, so the group context is never cancelled
	// by a failing image.
	var g errgroup.Group
	g.SetLimit(s.workers)

	for i, in := range inputs {
		g.Go(func() error {
			out := Outcome{Index: i, Name: in.Name}
			if err := ctx.Err(); err != nil {
				out.Err = err
			} else {
				out.Page, out.Err = s.ProcessOne(ctx, in)
			}
			outcomes[i] = out
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
			slog.Warn("Image rejected", "index", o.Index, "name", o.Name, "err", o.Err)
		}
	}
	slog.Info("Batch processed", "images", len(inputs), "pages", len(inputs)-failed, "failed", failed)

	return outcomes
}

// ProcessOne turns a single input into a page.
func (s *Scanner) ProcessOne(ctx context.Context, in Input) (*models.ScannedPage, error) {
	if in.Err != nil {
		return nil, in.Err
	}
	if !IsImage(in) {
		return nil, &enhance.DecodeError{
			Name: in.Name,
			Err:  fmt.Errorf("unsupported content type %q", contentType(in)),
		}
	}

	res, err := s.pipeline.Process(ctx, in.Name, in.Data)
	if err != nil {
		return nil, err
	}

	return &models.ScannedPage{
		ID:         uuid.NewString(),
		SourceName: in.Name,
		Width:      res.Width,
		Height:     res.Height,
		CreatedAt:  s.now(),
		Image:      res.Full,
		Thumbnail:  res.Thumbnail,
	}, nil
}

// IsImage reports whether the declared or sniffed content type is an image.
func IsImage(in Input) bool {
	return strings.HasPrefix(contentType(in), "image/")
}

func contentType(in Input) string {
	ct := in.ContentType
	if ct == "" || ct == "application/octet-stream" {
		ct = http.DetectContentType(in.Data)
	}
	// TIFF is not sniffed by net/http.
	if ct == "application/octet-stream" {
		if _, format, err := image.DecodeConfig(bytes.NewReader(in.Data)); err == nil {
			ct = "image/" + format
		}
	}
	return strings.ToLower(ct)
}

// Pages returns the successful pages in input order.
func Pages(outcomes []Outcome) []*models.ScannedPage {
	pages := make([]*models.ScannedPage, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Err == nil && o.Page != nil {
			pages = append(pages, o.Page)
		}
	}
	return pages
}

// Failures converts failed outcomes into user-facing notices.
func Failures(outcomes []Outcome) []models.PageError {
	var errs []models.PageError
	for _, o := range outcomes {
		if o.Err != nil {
			errs = append(errs, models.PageError{
				Index:  o.Index,
				Source: o.Name,
				Error:  o.Err.Error(),
			})
		}
	}
	return errs
}
