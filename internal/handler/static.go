package handler

import (
	"net/http"

	"github.com/msomdec/taskchat/internal/web/static"
)

// HandleIndex serves the single-page client.
// GET /{$}
func HandleIndex(w http.ResponseWriter, r *http.Request) {
	http.ServeFileFS(w, r, static.FS, "index.html")
}
