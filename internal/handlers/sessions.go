package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/lehigh-university-libraries/pdfscan/internal/models"
	"github.com/lehigh-university-libraries/pdfscan/internal/storage"
	"github.com/lehigh-university-libraries/pdfscan/internal/utils"
)

func (h *Handler) HandleSessions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		h.writeJSON(w, h.sessionStore.GetAll())
	case "POST":
		session := h.sessionStore.Create(h.cfg.Enhance, models.Enhancement(h.cfg.Enhancement))
		slog.Info("Scan session created", "session_id", session.ID)
		h.writeJSON(w, session)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleSessionDetail routes everything under /api/sessions/{id}.
func (h *Handler) HandleSessionDetail(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/sessions/"), "/")
	parts := strings.Split(path, "/")
	sessionID := parts[0]
	if sessionID == "" {
		h.writeError(w, "Session ID is required", http.StatusBadRequest)
		return
	}

	switch {
	case len(parts) == 1:
		h.handleSession(w, r, sessionID)
	case len(parts) == 2 && parts[1] == "pages":
		h.handleClearPages(w, r, sessionID)
	case len(parts) == 3 && parts[1] == "pages":
		h.handlePage(w, r, sessionID, parts[2])
	case len(parts) == 4 && parts[1] == "pages":
		h.handlePageImage(w, r, sessionID, parts[2], parts[3])
	case len(parts) == 2 && parts[1] == "move":
		h.handleMove(w, r, sessionID)
	case len(parts) == 2 && parts[1] == "order":
		h.handleOrder(w, r, sessionID)
	case len(parts) == 2 && parts[1] == "pdf":
		h.handleSessionPDF(w, r, sessionID)
	default:
		h.writeError(w, "Not found", http.StatusNotFound)
	}
}

func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request, sessionID string) {
	switch r.Method {
	case "GET":
		session, ok := h.getSessionOrError(w, sessionID)
		if !ok {
			return
		}
		h.writeJSON(w, session)
	case "DELETE":
		if _, ok := h.getSessionOrError(w, sessionID); !ok {
			return
		}
		h.sessionStore.Delete(sessionID)
		slog.Info("Scan session deleted", "session_id", sessionID)
		w.WriteHeader(http.StatusNoContent)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleClearPages(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != "DELETE" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	session, err := h.sessionStore.Clear(sessionID)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	h.writeJSON(w, session)
}

func (h *Handler) handlePage(w http.ResponseWriter, r *http.Request, sessionID, pageID string) {
	switch r.Method {
	case "GET":
		page, err := h.sessionStore.Page(sessionID, pageID)
		if err != nil {
			h.writeErr(w, err)
			return
		}
		h.writeJSON(w, page)
	case "DELETE":
		session, err := h.sessionStore.RemovePage(sessionID, pageID)
		if err != nil {
			h.writeErr(w, err)
			return
		}
		slog.Info("Page removed", "session_id", sessionID, "page_id", pageID, "remaining", len(session.Pages))
		h.writeJSON(w, session)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handlePageImage(w http.ResponseWriter, r *http.Request, sessionID, pageID, kind string) {
	if r.Method != "GET" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	page, err := h.sessionStore.Page(sessionID, pageID)
	if err != nil {
		h.writeErr(w, err)
		return
	}

	var data []byte
	switch kind {
	case "image":
		data = page.Image
	case "thumbnail":
		data = page.Thumbnail
	default:
		h.writeError(w, "Not found", http.StatusNotFound)
		return
	}

	etag := `"` + utils.CalculateDataMD5(data) + `"`
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	if _, err := w.Write(data); err != nil {
		slog.Error("Unable to write page image", "page_id", pageID, "err", err)
	}
}

func (h *Handler) handleMove(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var request struct {
		Index     int               `json:"index"`
		Direction storage.Direction `json:"direction"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	if request.Direction != storage.Up && request.Direction != storage.Down {
		h.writeError(w, fmt.Sprintf("Invalid direction %q. Must be 'up' or 'down'", request.Direction), http.StatusBadRequest)
		return
	}

	session, err := h.sessionStore.MovePage(sessionID, request.Index, request.Direction)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	h.writeJSON(w, session)
}

func (h *Handler) handleOrder(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != "PUT" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var request struct {
		PageIDs []string `json:"page_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	session, err := h.sessionStore.Reorder(sessionID, request.PageIDs)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	h.writeJSON(w, session)
}

// handleSessionPDF assembles the session's pages, in order, into a PDF.
func (h *Handler) handleSessionPDF(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != "POST" && r.Method != "GET" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	session, ok := h.getSessionOrError(w, sessionID)
	if !ok {
		return
	}

	images := make([][]byte, len(session.Pages))
	for i, page := range session.Pages {
		images[i] = page.Image
	}

	doc, err := h.processor.AssembleImages(images)
	if err != nil {
		h.writeErr(w, err)
		return
	}

	slog.Info("Session PDF generated", "session_id", sessionID, "pages", len(images), "bytes", len(doc))
	writePDF(w, "scanned-document.pdf", doc)
}

func writePDF(w http.ResponseWriter, filename string, doc []byte) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if _, err := w.Write(doc); err != nil {
		slog.Error("Unable to write PDF response", "filename", filename, "err", err)
	}
}
