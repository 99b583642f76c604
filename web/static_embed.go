// ABOUTME: Embeds web/static/ CSS for serving via the HTTP server.
// ABOUTME: The router serves these files under /static/.
package web

import "embed"

//go:embed static/css/*.css
var StaticFS embed.FS
