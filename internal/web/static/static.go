// Package static embeds the single-page client served at the root.
package static

import "embed"

// FS exposes the client assets for HTTP serving.
//
//go:embed index.html *.css *.js
var FS embed.FS
