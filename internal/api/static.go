package api

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/gorilla/mux"
)

// MountFrontend serves dir under /static/ and its index.html at /.
// It reports false and mounts nothing when dir is missing.
func MountFrontend(root *mux.Router, dir string) bool {
	if dir == "" {
		return false
	}
	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		return false
	}
	index := filepath.Join(dir, "index.html")
	root.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.Dir(dir)))).Methods("GET")
	root.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, index)
	}).Methods("GET")
	return true
}
