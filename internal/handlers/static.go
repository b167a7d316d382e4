package handlers

import (
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
)

func (h *Handler) HandleStatic(w http.ResponseWriter, r *http.Request) {
	// Extract the file path after /static/
	path := strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, "/static/"), "/")
	if path == "" {
		path = "index.html"
	}

	// Check if image URL parameter is provided
	imageURL := r.URL.Query().Get("image")
	if imageURL != "" {
		resp, err := h.createSessionFromURL(r.Context(), imageURL)
		if err != nil {
			slog.Error("Failed to create session from URL", "url", imageURL, "err", err)
			http.Error(w, "Failed to process image URL: "+err.Error(), statusFor(err))
			return
		}

		// Redirect to the homepage
		http.Redirect(w, r, "/?session="+resp.SessionID, http.StatusFound)
		return
	}

	// Prevent directory traversal attacks
	if strings.Contains(path, "..") {
		http.Error(w, "Invalid file path", http.StatusBadRequest)
		return
	}

	// Set appropriate content type based on file extension
	switch {
	case strings.HasSuffix(path, ".css"):
		w.Header().Set("Content-Type", "text/css")
	case strings.HasSuffix(path, ".js"):
		w.Header().Set("Content-Type", "application/javascript")
	case strings.HasSuffix(path, ".html"):
		w.Header().Set("Content-Type", "text/html")
	}

	http.ServeFile(w, r, filepath.Join(h.staticDir, path))
}
