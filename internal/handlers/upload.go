package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/lehigh-university-libraries/pdfscan/internal/models"
	"github.com/lehigh-university-libraries/pdfscan/internal/scanner"
)

// HandleScan adds captured or uploaded images to a scan session.
func (h *Handler) HandleScan(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Check if this is a JSON request with image URLs
	contentType := r.Header.Get("Content-Type")
	if strings.Contains(contentType, "application/json") {
		h.handleURLScan(w, r)
		return
	}

	// Handle file upload
	h.handleFileScan(w, r)
}

func (h *Handler) handleURLScan(w http.ResponseWriter, r *http.Request) {
	var request struct {
		scanOverrides
		SessionID string   `json:"session_id"`
		ImageURL  string   `json:"image_url"`
		ImageURLs []string `json:"image_urls"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	urls := request.ImageURLs
	if request.ImageURL != "" {
		urls = append([]string{request.ImageURL}, urls...)
	}
	if len(urls) == 0 {
		h.writeError(w, "image_url is required", http.StatusBadRequest)
		return
	}

	var (
		inputs   []pendingInput
		rejected []models.PageError
	)
	for i, u := range urls {
		img, err := h.fetcher.Fetch(r.Context(), u)
		if err != nil {
			rejected = append(rejected, models.PageError{Index: i, Source: u, Error: err.Error()})
			continue
		}
		inputs = append(inputs, pendingInput{
			index: i,
			input: scanner.Input{Name: img.Name, ContentType: img.ContentType, Data: img.Data},
		})
	}

	resp, err := h.scanIntoSession(r.Context(), request.SessionID, request.scanOverrides, inputs, rejected)
	if err != nil {
		h.writeErr(w, err)
		return
	}

	h.writeJSON(w, resp)
}

func (h *Handler) handleFileScan(w http.ResponseWriter, r *http.Request) {
	if !h.parseMultipart(w, r) {
		return
	}

	files := uploadedFiles(r, "files", "file")
	if len(files) == 0 {
		h.writeError(w, "No files uploaded", http.StatusBadRequest)
		return
	}

	overrides, err := formOverrides(r)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	var (
		inputs   []pendingInput
		rejected []models.PageError
	)
	for i, fh := range files {
		data, err := h.readUpload(fh)
		if err != nil {
			rejected = append(rejected, models.PageError{Index: i, Source: fh.Filename, Error: err.Error()})
			continue
		}
		inputs = append(inputs, pendingInput{
			index: i,
			input: scanner.Input{Name: fh.Filename, ContentType: fh.Header.Get("Content-Type"), Data: data},
		})
	}

	resp, err := h.scanIntoSession(r.Context(), r.FormValue("session_id"), overrides, inputs, rejected)
	if err != nil {
		h.writeErr(w, err)
		return
	}

	h.writeJSON(w, resp)
}
