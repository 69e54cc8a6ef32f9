package handlers

import (
	"net/http"
	"strings"
)

// HandleStatic serves the UI shell and uploaded images.
func (h *Handler) HandleStatic(w http.ResponseWriter, r *http.Request) {
	filepath := strings.TrimPrefix(r.URL.Path, "/static/")

	if strings.HasPrefix(filepath, "uploads/") {
		// Prevent directory traversal attacks
		if strings.Contains(filepath, "..") {
			http.Error(w, "Invalid file path", http.StatusBadRequest)
			return
		}
		http.ServeFile(w, r, filepath)
		return
	}

	if filepath == "" || r.URL.Path == "/" {
		filepath = "index.html"
	}

	if strings.Contains(filepath, "..") {
		http.Error(w, "Invalid file path", http.StatusBadRequest)
		return
	}

	switch {
	case strings.HasSuffix(filepath, ".css"):
		w.Header().Set("Content-Type", "text/css")
	case strings.HasSuffix(filepath, ".js"):
		w.Header().Set("Content-Type", "application/javascript")
	case strings.HasSuffix(filepath, ".html"):
		w.Header().Set("Content-Type", "text/html")
	}

	http.ServeFile(w, r, "static/"+filepath)
}
