// Package routes defines HTTP route constants for the application.
package routes

const (
	Health = "/healthz"

	// Posts
	Posts        = "/api/posts"
	PostBySlug   = "/api/posts/{slug}"
	PostByID     = "/api/posts/{id}"
	PostsPackage = "/api/posts/zip"

	// SSE
	Events = "/api/events"

	// Syntax highlighting
	SyntaxThemes = "/api/syntax"
	SyntaxCSS    = "/api/syntax/{theme}"

	// Auth
	AuthGoogle = "/api/auth/google"
	AuthLogout = "/api/auth/logout"
	AuthMe     = "/api/auth/me"

	// Uploads is only routed for the fs storage backend.
	Uploads = "/uploads/"

	Root = "/"
)

// Method prefixes a path with an HTTP method for http.ServeMux.
func Method(method, path string) string {
	return method + " " + path
}
