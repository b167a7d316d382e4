package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strconv"

	"github.com/lehigh-university-libraries/pdfscan/internal/enhance"
	"github.com/lehigh-university-libraries/pdfscan/internal/models"
	"github.com/lehigh-university-libraries/pdfscan/internal/scanner"
	"github.com/lehigh-university-libraries/pdfscan/internal/storage"
)

// scanOverrides are the optional per-request enhancement fields. Nil
// fields keep the session's (or the server's) value.
type scanOverrides struct {
	Enhance    *bool    `json:"enhance"`
	Brightness *int     `json:"brightness"`
	Contrast   *float64 `json:"contrast"`
	Sharpen    *bool    `json:"sharpen"`
}

func (o scanOverrides) apply(enabled bool, s enhance.Settings) (bool, enhance.Settings) {
	if o.Enhance != nil {
		enabled = *o.Enhance
	}
	if o.Brightness != nil {
		s.Brightness = *o.Brightness
	}
	if o.Contrast != nil {
		s.Contrast = *o.Contrast
	}
	if o.Sharpen != nil {
		s.Sharpen = *o.Sharpen
	}
	return enabled, s
}

// formOverrides reads the enhancement fields of a multipart scan request.
func formOverrides(r *http.Request) (scanOverrides, error) {
	var o scanOverrides
	if v := r.FormValue("enhance"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return o, fmt.Errorf("invalid enhance value %q", v)
		}
		o.Enhance = &b
	}
	if v := r.FormValue("brightness"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return o, fmt.Errorf("invalid brightness value %q", v)
		}
		o.Brightness = &n
	}
	if v := r.FormValue("contrast"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return o, fmt.Errorf("invalid contrast value %q", v)
		}
		o.Contrast = &f
	}
	if v := r.FormValue("sharpen"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return o, fmt.Errorf("invalid sharpen value %q", v)
		}
		o.Sharpen = &b
	}
	return o, nil
}

// pendingInput is an input together with its position in the request.
type pendingInput struct {
	index int
	input scanner.Input
}

type scanResponse struct {
	SessionID string              `json:"session_id"`
	Message   string              `json:"message"`
	Added     int                 `json:"added"`
	Session   *models.ScanSession `json:"session"`
	Errors    []models.PageError  `json:"errors,omitempty"`
}

// scanIntoSession enhances inputs and appends the resulting pages to the
// session named by sessionID, creating a new session when it is empty.
// rejected holds inputs that failed before reaching the pipeline.
func (h *Handler) scanIntoSession(ctx context.Context, sessionID string, o scanOverrides, inputs []pendingInput, rejected []models.PageError) (*scanResponse, error) {
	enabled, settings := h.cfg.Enhance, h.cfg.Enhancement

	var session *models.ScanSession
	if sessionID != "" {
		existing, ok := h.sessionStore.Get(sessionID)
		if !ok {
			return nil, fmt.Errorf("failed to scan into session %s: %w", sessionID, storage.ErrSessionNotFound)
		}
		session = existing
		enabled, settings = session.Enhance, enhance.Settings(session.Settings)
	}
	enabled, settings = o.apply(enabled, settings)

	pipeline, err := h.pipelineFor(enabled, settings)
	if err != nil {
		return nil, err
	}

	if session == nil {
		session = h.sessionStore.Create(enabled, models.Enhancement(settings))
		slog.Info("Scan session created", "session_id", session.ID, "enhance", enabled)
	}

	batch := make([]scanner.Input, len(inputs))
	for i, in := range inputs {
		batch[i] = in.input
	}
	outcomes := scanner.New(pipeline, h.cfg.Workers).ProcessBatch(ctx, batch)

	pages := scanner.Pages(outcomes)
	for _, page := range pages {
		page.ImageURL = pageURL(session.ID, page.ID, "image")
		page.ThumbnailURL = pageURL(session.ID, page.ID, "thumbnail")
	}

	failures := scanner.Failures(outcomes)
	for i := range failures {
		failures[i].Index = inputs[failures[i].Index].index
	}
	failures = append(failures, rejected...)
	sort.Slice(failures, func(i, j int) bool { return failures[i].Index < failures[j].Index })

	updated, err := h.sessionStore.AppendPages(session.ID, pages)
	if err != nil {
		return nil, err
	}

	slog.Info("Pages added to session", "session_id", updated.ID, "added", len(pages), "failed", len(failures), "total", len(updated.Pages))

	return &scanResponse{
		SessionID: updated.ID,
		Message:   fmt.Sprintf("Successfully scanned %d of %d images", len(pages), len(inputs)+len(rejected)),
		Added:     len(pages),
		Session:   updated,
		Errors:    failures,
	}, nil
}

func (h *Handler) pipelineFor(enabled bool, settings enhance.Settings) (*enhance.Pipeline, error) {
	opts, err := h.cfg.PipelineOptions()
	if err != nil {
		return nil, err
	}
	opts.Enabled = enabled
	opts.Settings = settings
	pipeline, err := enhance.New(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errBadSettings, err)
	}
	return pipeline, nil
}

// createSessionFromURL downloads one image and scans it into a new session.
func (h *Handler) createSessionFromURL(ctx context.Context, imageURL string) (*scanResponse, error) {
	img, err := h.fetcher.Fetch(ctx, imageURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errBadSource, err)
	}
	in := pendingInput{index: 0, input: scanner.Input{Name: img.Name, ContentType: img.ContentType, Data: img.Data}}
	return h.scanIntoSession(ctx, "", scanOverrides{}, []pendingInput{in}, nil)
}

func pageURL(sessionID, pageID, kind string) string {
	return fmt.Sprintf("/api/sessions/%s/pages/%s/%s", sessionID, pageID, kind)
}
