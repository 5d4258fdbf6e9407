package http

import (
	_ "embed"
	"net/http"
	"os"
)

//go:embed data.json
var seedMarkers []byte

// DataHandler serves the legacy static marker resource at /data.json.
type DataHandler struct {
	// Path optionally points at a file replacing the embedded seed.
	Path string
}

// ServeHTTP writes the configured file, or the embedded seed when no path is set.
func (h *DataHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body := seedMarkers
	if h.Path != "" {
		data, err := os.ReadFile(h.Path)
		if err != nil {
			http.Error(w, "data not available", http.StatusNotFound)
			return
		}
		body = data
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}
