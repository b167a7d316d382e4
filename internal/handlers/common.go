package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/lehigh-university-libraries/pdfscan/internal/config"
	"github.com/lehigh-university-libraries/pdfscan/internal/enhance"
	"github.com/lehigh-university-libraries/pdfscan/internal/images"
	"github.com/lehigh-university-libraries/pdfscan/internal/models"
	"github.com/lehigh-university-libraries/pdfscan/internal/pdfdoc"
	"github.com/lehigh-university-libraries/pdfscan/internal/storage"
)

type Handler struct {
	cfg          config.Config
	sessionStore *storage.SessionStore
	processor    *pdfdoc.Processor
	fetcher      *images.Fetcher
	staticDir    string
}

func New(cfg config.Config) *Handler {
	return &Handler{
		cfg:          cfg,
		sessionStore: storage.New(),
		processor:    pdfdoc.NewProcessor(cfg.TempDir),
		fetcher:      images.NewFetcher(cfg.MaxUploadBytes()),
		staticDir:    "static",
	}
}

// SetStaticDir changes where the web interface files are served from.
func (h *Handler) SetStaticDir(dir string) {
	h.staticDir = dir
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	if code >= http.StatusInternalServerError {
		slog.Error(message)
	} else {
		slog.Warn(message, "status", code)
	}
	http.Error(w, message, code)
}

// writeErr maps domain errors onto HTTP status codes.
func (h *Handler) writeErr(w http.ResponseWriter, err error) {
	h.writeError(w, err.Error(), statusFor(err))
}

func statusFor(err error) int {
	var (
		decodeErr *enhance.DecodeError
		libErr    *pdfdoc.LibraryError
	)
	switch {
	case errors.Is(err, storage.ErrSessionNotFound), errors.Is(err, storage.ErrPageNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrInvalidOrder),
		errors.Is(err, pdfdoc.ErrNoPages),
		errors.Is(err, pdfdoc.ErrNoInput),
		errors.Is(err, pdfdoc.ErrInvalidRotation),
		errors.Is(err, pdfdoc.ErrNothingToStamp),
		errors.Is(err, pdfdoc.ErrInvalidParameter),
		errors.Is(err, errTooLarge),
		errors.Is(err, errBadSettings),
		errors.Is(err, errBadSource),
		errors.As(err, &decodeErr):
		return http.StatusBadRequest
	case errors.Is(err, pdfdoc.ErrUnknownTool):
		return http.StatusNotFound
	case errors.As(err, &libErr):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// Session helpers
func (h *Handler) getSessionOrError(w http.ResponseWriter, sessionID string) (*models.ScanSession, bool) {
	session, exists := h.sessionStore.Get(sessionID)
	if !exists {
		h.writeError(w, "Session not found", http.StatusNotFound)
		return nil, false
	}
	return session, true
}

var (
	errTooLarge    = errors.New("file too large")
	errBadSettings = errors.New("invalid enhancement settings")
	errBadSource   = errors.New("failed to fetch image")
)

// readUpload reads one multipart file, rejecting anything over the
// configured upload limit.
func (h *Handler) readUpload(fh *multipart.FileHeader) ([]byte, error) {
	file, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", fh.Filename, err)
	}
	defer file.Close()

	limit := h.cfg.MaxUploadBytes()
	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", fh.Filename, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: %s (max %dMB)", errTooLarge, fh.Filename, h.cfg.MaxUploadMB)
	}
	return data, nil
}

// uploadedFiles returns the multipart files under the given field names,
// in the order they were sent.
func uploadedFiles(r *http.Request, fields ...string) []*multipart.FileHeader {
	if r.MultipartForm == nil {
		return nil
	}
	var files []*multipart.FileHeader
	for _, field := range fields {
		files = append(files, r.MultipartForm.File[field]...)
	}
	return files
}

func (h *Handler) parseMultipart(w http.ResponseWriter, r *http.Request) bool {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		h.writeError(w, "Failed to parse form: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}
