package server

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// handleSPA serves the built web client from dir. Unknown paths get
// index.html so client-side routes survive a reload; unknown /api paths
// stay JSON 404s.
func handleSPA(dir string) http.HandlerFunc {
	fileServer := http.FileServer(http.Dir(dir))
	index := filepath.Join(dir, "index.html")

	return func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			writeError(w, http.StatusNotFound, "Not Found")
			return
		}

		name := filepath.Join(dir, filepath.FromSlash(path.Clean("/"+r.URL.Path)))
		if info, err := os.Stat(name); err == nil && !info.IsDir() {
			fileServer.ServeHTTP(w, r)
			return
		}

		w.Header().Set("Cache-Control", "no-cache")
		http.ServeFile(w, r, index)
	}
}
